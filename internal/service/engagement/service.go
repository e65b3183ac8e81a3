package engagement

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wellnoosh/engagement/internal/app"
	"github.com/wellnoosh/engagement/internal/db"
	"github.com/wellnoosh/engagement/internal/quota"
	"github.com/wellnoosh/engagement/internal/repository"
	"github.com/wellnoosh/engagement/internal/scale"
	"github.com/wellnoosh/engagement/internal/store"
)

// Service implements the engagement API: recording feedback events against
// the remote log, reconciling the per-user cache with that log, gating
// free-tier usage, and scaling recipe quantities on demand.
type Service struct {
	appCtx     *app.AppContext
	eventRepo  *repository.EventRepository
	ratingRepo *repository.RatingRepository
	recipeRepo *repository.RecipeRepository
	userRepo   *repository.UserRepository
	gate       *quota.Gate
	validate   *validator.Validate
}

// NewService creates the engagement service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:     appCtx,
		eventRepo:  repository.NewEventRepository(appCtx.DB),
		ratingRepo: repository.NewRatingRepository(appCtx.DB),
		recipeRepo: repository.NewRecipeRepository(appCtx.DB),
		userRepo:   repository.NewUserRepository(appCtx.DB),
		gate:       quota.New(appCtx.RedisCache, appCtx.Config.Quota.FreeDailyCeiling),
		validate:   validator.New(),
	}
}

// StoreFor returns the engagement cache bound to one user identity.
func (s *Service) StoreFor(userID string) *store.Store {
	return store.New(s.appCtx.RedisCache, userID)
}

// Record appends one engagement event to the remote log (primary path) and
// notifies the recommendation trainer (secondary, best-effort). The return
// value reflects the primary write only: a failed training notification is
// logged and swallowed, never retried synchronously.
//
// The client-facing kind "dislike" is stored as "hide"; the trainer still
// receives the raw "dislike" signal.
func (s *Service) Record(ctx context.Context, userID, recipeID, eventKind string) bool {
	stored := eventKind
	if stored == "dislike" {
		stored = db.EventHide
	}

	if err := s.eventRepo.Append(ctx, userID, recipeID, stored); err != nil {
		s.appCtx.Logger.Error("event append failed",
			"user", userID, "recipe", recipeID, "event", stored, "err", err)
		return false
	}

	if err := s.appCtx.Recommender.NotifyFeedback(ctx, userID, recipeID, eventKind); err != nil {
		s.appCtx.Logger.Warn("recommendation notify failed", "recipe", recipeID, "err", err)
	}

	return true
}

// FeedbackResult is the outcome of a gated engagement action.
type FeedbackResult struct {
	Recorded      bool
	QuotaExceeded bool
	Remaining     int
	Unlimited     bool
}

// RecordFeedback runs the full engagement flow: quota gate, optimistic cache
// write (tagged pending), remote append, sync-state flip. The optimistic
// write is deliberately not rolled back on remote failure: the entry stays
// tagged failed and the reconciler sorts it out on next load.
func (s *Service) RecordFeedback(ctx context.Context, userID, recipeID, eventKind string, snapshot *store.CachedRecipe) (FeedbackResult, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return FeedbackResult{}, err
	}

	unlimited := user.Tier == db.TierPremium
	decision, err := s.gate.CheckAndConsume(ctx, userID, unlimited)
	if err != nil {
		return FeedbackResult{}, err
	}
	if !decision.Allowed {
		return FeedbackResult{QuotaExceeded: true}, nil
	}

	st := s.StoreFor(userID)
	kind := listKindFor(eventKind)

	if snapshot != nil && kind != "" {
		snap := *snapshot
		snap.ID = recipeID
		snap.SyncState = store.SyncPending
		if err := st.Upsert(ctx, kind, snap); err != nil {
			s.appCtx.Logger.Warn("optimistic cache write failed", "user", userID, "err", err)
		}
	}
	if eventKind == "dislike" || eventKind == db.EventHide {
		if err := st.Remove(ctx, store.ListLiked, recipeID); err != nil {
			s.appCtx.Logger.Warn("cache removal failed", "user", userID, "err", err)
		}
	}

	recorded := s.Record(ctx, userID, recipeID, eventKind)

	if snapshot != nil && kind != "" {
		state := store.SyncConfirmed
		if !recorded {
			state = store.SyncFailed
		}
		if err := st.SetSyncState(ctx, kind, recipeID, state); err != nil {
			s.appCtx.Logger.Warn("sync state update failed", "user", userID, "err", err)
		}
	}

	return FeedbackResult{
		Recorded:  recorded,
		Remaining: decision.Remaining,
		Unlimited: decision.Unlimited,
	}, nil
}

// Unlike removes a recipe from the liked cache and appends a hide event.
// Not gated: removals never count against the daily allowance.
func (s *Service) Unlike(ctx context.Context, userID, recipeID string) bool {
	st := s.StoreFor(userID)
	if err := st.Remove(ctx, store.ListLiked, recipeID); err != nil {
		s.appCtx.Logger.Warn("cache removal failed", "user", userID, "err", err)
	}
	return s.Record(ctx, userID, recipeID, db.EventHide)
}

// CookedInput carries a user's rating of a recipe they cooked.
type CookedInput struct {
	Rating           int
	Review           string
	DifficultyRating string
	WouldMakeAgain   bool
}

// RateCooked upserts the cooked rating (primary path; repeat cooks increment
// made_count), appends a cook_now event to the history log, and refreshes the
// cooked cache entry. Returns true iff the rating write succeeded; the event
// append and cache refresh are best-effort.
func (s *Service) RateCooked(ctx context.Context, userID, recipeID string, in CookedInput, snapshot *store.CachedRecipe) bool {
	err := s.ratingRepo.Upsert(ctx, &db.CookedRating{
		UserID:           userID,
		RecipeID:         recipeID,
		Rating:           in.Rating,
		Review:           in.Review,
		DifficultyRating: in.DifficultyRating,
		WouldMakeAgain:   in.WouldMakeAgain,
	})
	if err != nil {
		s.appCtx.Logger.Error("cooked rating upsert failed",
			"user", userID, "recipe", recipeID, "err", err)
		return false
	}

	// the ratings table stays authoritative for the cooked list; the event is
	// history/training only, so its failure does not demote the result
	s.Record(ctx, userID, recipeID, db.EventCookNow)

	if snapshot != nil {
		snap := *snapshot
		snap.ID = recipeID
		snap.Rating = in.Rating
		snap.SyncState = store.SyncConfirmed
		if err := s.StoreFor(userID).Upsert(ctx, store.ListCooked, snap); err != nil {
			s.appCtx.Logger.Warn("cooked cache write failed", "user", userID, "err", err)
		}
	}

	return true
}

// Events returns the user's engagement history, newest first.
func (s *Service) Events(ctx context.Context, userID string, token *string, limit int) ([]db.RecipeEvent, *string, error) {
	return s.eventRepo.ListEvents(ctx, userID, token, limit)
}

// QuotaStatus reports the remaining daily allowance without consuming.
func (s *Service) QuotaStatus(ctx context.Context, userID string) (quota.Decision, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return quota.Decision{}, err
	}
	return s.gate.Remaining(ctx, userID, user.Tier == db.TierPremium)
}

// UpgradeTier flips the user's subscription tier. Premium short-circuits the
// quota gate on the very next check.
func (s *Service) UpgradeTier(ctx context.Context, userID, tier string) error {
	return s.userRepo.UpdateTier(ctx, userID, tier)
}

// ScaledIngredient is one ingredient with its amount rescaled.
type ScaledIngredient struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Category string `json:"category,omitempty"`
}

// ScaledRecipe is a catalog recipe with quantities and nutrition recomputed
// for a target serving count.
type ScaledRecipe struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Servings    int                `json:"servings"`
	Ingredients []ScaledIngredient `json:"ingredients"`
	Nutrition   scale.Macros       `json:"nutrition"`
}

// Scaled fetches a recipe and rescales every ingredient amount and the
// nutrition record to the requested serving count.
func (s *Service) Scaled(ctx context.Context, recipeID string, servings int) (*ScaledRecipe, error) {
	recipe, err := s.recipeRepo.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if servings < 1 {
		servings = recipe.Servings
	}

	out := &ScaledRecipe{
		ID:       recipe.ID,
		Title:    recipe.Title,
		Servings: servings,
	}
	for _, ing := range recipe.Ingredients {
		out.Ingredients = append(out.Ingredients, ScaledIngredient{
			Name:     ing.Name,
			Amount:   scale.Amount(ing.Amount, recipe.Servings, servings),
			Category: ing.Category,
		})
	}
	out.Nutrition = scale.Apply(macrosOf(recipe), recipe.Servings, servings)

	return out, nil
}

// listKindFor maps an event kind to the cache list it affects, or "" when
// the event has no cached representation (save, pass, share).
func listKindFor(eventKind string) store.ListKind {
	switch eventKind {
	case db.EventLike:
		return store.ListLiked
	case db.EventCookNow:
		return store.ListCooked
	}
	return ""
}

func macrosOf(r *db.Recipe) scale.Macros {
	deref := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	return scale.Macros{
		Calories: deref(r.Calories),
		Protein:  deref(r.Protein),
		Carbs:    deref(r.Carbs),
		Fat:      deref(r.Fat),
		Fiber:    deref(r.Fiber),
	}
}

// instructionLines splits the catalog's newline-separated instruction text
// into display steps.
func instructionLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
