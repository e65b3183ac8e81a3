package engagement

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	svcErr "github.com/wellnoosh/engagement/internal/errors"
	"github.com/wellnoosh/engagement/internal/store"
)

type feedbackRequest struct {
	UserID   string              `json:"user_id" validate:"required"`
	RecipeID string              `json:"recipe_id" validate:"required"`
	Event    string              `json:"event" validate:"required,oneof=like dislike hide save pass cook_now share_family"`
	Recipe   *store.CachedRecipe `json:"recipe,omitempty"`
}

type cookedRequest struct {
	UserID           string              `json:"user_id" validate:"required"`
	RecipeID         string              `json:"recipe_id" validate:"required"`
	Rating           int                 `json:"rating" validate:"required,min=1,max=5"`
	Review           string              `json:"review"`
	DifficultyRating string              `json:"difficulty_rating"`
	WouldMakeAgain   bool                `json:"would_make_again"`
	Recipe           *store.CachedRecipe `json:"recipe,omitempty"`
}

type tierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=free premium"`
}

// RegisterRoutes mounts the engagement API under /v1.
func (s *Service) RegisterRoutes(app *fiber.App) {
	v1 := app.Group("/v1")

	v1.Post("/feedback", s.handleFeedback)
	v1.Post("/cooked", s.handleCooked)
	v1.Get("/users/:userID/recipes/:kind", s.handleListRecipes)
	v1.Delete("/users/:userID/recipes/liked/:recipeID", s.handleUnlike)
	v1.Get("/users/:userID/events", s.handleEvents)
	v1.Get("/users/:userID/quota", s.handleQuota)
	v1.Post("/users/:userID/tier", s.handleTier)
	v1.Get("/recipes/:recipeID/scaled", s.handleScaled)
}

func (s *Service) handleFeedback(c *fiber.Ctx) error {
	var req feedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return svcErr.InvalidArgument(err.Error())
	}

	res, err := s.RecordFeedback(c.Context(), req.UserID, req.RecipeID, req.Event, req.Recipe)
	if err != nil {
		return svcErr.Map(err)
	}

	if res.QuotaExceeded {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"recorded":       false,
			"quota_exceeded": true,
			"remaining":      0,
			"message":        "daily engagement limit reached, upgrade for unlimited swipes",
		})
	}

	return c.JSON(fiber.Map{
		"recorded":  res.Recorded,
		"remaining": res.Remaining,
		"unlimited": res.Unlimited,
	})
}

func (s *Service) handleCooked(c *fiber.Ctx) error {
	var req cookedRequest
	if err := c.BodyParser(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return svcErr.InvalidArgument(err.Error())
	}

	recorded := s.RateCooked(c.Context(), req.UserID, req.RecipeID, CookedInput{
		Rating:           req.Rating,
		Review:           req.Review,
		DifficultyRating: req.DifficultyRating,
		WouldMakeAgain:   req.WouldMakeAgain,
	}, req.Recipe)

	return c.JSON(fiber.Map{"recorded": recorded})
}

func (s *Service) handleListRecipes(c *fiber.Ctx) error {
	userID := c.Params("userID")

	var kind store.ListKind
	switch c.Params("kind") {
	case "liked":
		kind = store.ListLiked
	case "cooked":
		kind = store.ListCooked
	default:
		return svcErr.InvalidArgument("kind must be liked or cooked")
	}

	recipes := s.BuildList(c.Context(), userID, kind)
	if recipes == nil {
		recipes = []store.CachedRecipe{}
	}

	return c.JSON(fiber.Map{
		"recipes": recipes,
		"count":   len(recipes),
	})
}

func (s *Service) handleUnlike(c *fiber.Ctx) error {
	recorded := s.Unlike(c.Context(), c.Params("userID"), c.Params("recipeID"))
	return c.JSON(fiber.Map{"recorded": recorded})
}

func (s *Service) handleEvents(c *fiber.Ctx) error {
	userID := c.Params("userID")

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var token *string
	if t := c.Query("page_token"); t != "" {
		token = &t
	}

	events, next, err := s.Events(c.Context(), userID, token, limit)
	if err != nil {
		return svcErr.Map(err)
	}

	resp := fiber.Map{"events": events}
	if next != nil {
		resp["next_page_token"] = *next
	}
	return c.JSON(resp)
}

func (s *Service) handleQuota(c *fiber.Ctx) error {
	decision, err := s.QuotaStatus(c.Context(), c.Params("userID"))
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(fiber.Map{
		"remaining": decision.Remaining,
		"unlimited": decision.Unlimited,
	})
}

func (s *Service) handleTier(c *fiber.Ctx) error {
	var req tierRequest
	if err := c.BodyParser(&req); err != nil {
		return svcErr.InvalidArgument("invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return svcErr.InvalidArgument(err.Error())
	}

	if err := s.UpgradeTier(c.Context(), c.Params("userID"), req.Tier); err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(fiber.Map{"tier": req.Tier})
}

func (s *Service) handleScaled(c *fiber.Ctx) error {
	servings, _ := strconv.Atoi(c.Query("servings", "0"))

	scaled, err := s.Scaled(c.Context(), c.Params("recipeID"), servings)
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(scaled)
}
