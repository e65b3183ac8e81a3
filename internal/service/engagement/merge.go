package engagement

import "github.com/wellnoosh/engagement/internal/store"

// mergeRecipe combines a locally cached snapshot with a hydrated catalog
// payload for the same recipe.
//
// Precedence:
//   - remote wins identity facts: id, title, image, category, area, servings
//   - local wins detail captured at engagement time, used only where the
//     catalog row leaves the field empty: ingredients, instructions,
//     nutrition, difficulty, cook time, rating, tags, description
//
// The merged entry keeps the local cachedAt stamp and is always tagged
// remote-confirmed.
func mergeRecipe(local, remote store.CachedRecipe) store.CachedRecipe {
	out := remote

	if out.ImageURL == "" {
		out.ImageURL = local.ImageURL
	}
	if len(out.Ingredients) == 0 {
		out.Ingredients = local.Ingredients
	}
	if len(out.Instructions) == 0 {
		out.Instructions = local.Instructions
	}
	if out.Calories == nil {
		out.Calories = local.Calories
	}
	if out.Protein == nil {
		out.Protein = local.Protein
	}
	if out.Carbs == nil {
		out.Carbs = local.Carbs
	}
	if out.Fat == nil {
		out.Fat = local.Fat
	}
	if out.Fiber == nil {
		out.Fiber = local.Fiber
	}
	if out.Difficulty == "" {
		out.Difficulty = local.Difficulty
	}
	if out.CookTime == "" {
		out.CookTime = local.CookTime
	}
	if out.Rating == 0 {
		out.Rating = local.Rating
	}
	if len(out.Tags) == 0 {
		out.Tags = local.Tags
	}
	if out.Description == "" {
		out.Description = local.Description
	}

	out.CachedAt = local.CachedAt
	out.SyncState = store.SyncConfirmed
	return out
}
