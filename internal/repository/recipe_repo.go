package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/wellnoosh/engagement/internal/db"
)

// RecipeRepository reads the recipe catalog. The catalog is read-only from
// this service's point of view.
type RecipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(database *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: database}
}

// GetByIDs batch-fetches full recipe detail (with ingredients) in a single
// query. IDs not present in the catalog are silently absent from the result;
// callers decide how to handle the gap.
func (r *RecipeRepository) GetByIDs(ctx context.Context, ids []string) ([]db.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var recipes []db.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Where("id IN ?", ids).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// Get fetches one recipe with its ingredients.
func (r *RecipeRepository) Get(ctx context.Context, id string) (*db.Recipe, error) {
	var recipe db.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Where("id = ?", id).
		First(&recipe).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}
