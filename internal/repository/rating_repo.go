package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wellnoosh/engagement/internal/db"
)

// RatingRepository provides data access for the cooked_ratings table.
// One row per (user, recipe); repeat cooks increment made_count.
type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(database *gorm.DB) *RatingRepository {
	return &RatingRepository{db: database}
}

// Upsert inserts a first cook (made_count = 1) or, on conflict with the
// (user_id, recipe_id) composite PK, overwrites rating/review/difficulty/
// would_make_again/last_made_date and increments made_count.
func (r *RatingRepository) Upsert(ctx context.Context, rating *db.CookedRating) error {
	rating.MadeCount = 1
	if rating.LastMadeDate.IsZero() {
		rating.LastMadeDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"rating":            rating.Rating,
				"review":            rating.Review,
				"difficulty_rating": rating.DifficultyRating,
				"would_make_again":  rating.WouldMakeAgain,
				"last_made_date":    rating.LastMadeDate,
				"made_count":        gorm.Expr("made_count + 1"),
				"updated_at":        time.Now(),
			}),
		}).
		Create(rating).Error
}

// CookedRecipeIDs returns the recipe IDs the user has rated as cooked,
// most recently made first.
func (r *RatingRepository) CookedRecipeIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&db.CookedRating{}).
		Where("user_id = ?", userID).
		Order("last_made_date DESC, updated_at DESC").
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Get returns the rating row for one (user, recipe) pair.
func (r *RatingRepository) Get(ctx context.Context, userID, recipeID string) (*db.CookedRating, error) {
	var rating db.CookedRating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}
