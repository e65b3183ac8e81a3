package engagement

import (
	"context"

	"github.com/wellnoosh/engagement/internal/db"
	"github.com/wellnoosh/engagement/internal/store"
)

// BuildList produces the definitive display list for one (user, list kind).
//
// Algorithm:
//  1. Fetch the remote authoritative recipe IDs (liked = like event with no
//     later hide; cooked = rows in cooked_ratings).
//  2. Read the local cache partition.
//  3. Reuse local payloads for remote-confirmed IDs; shallow or absent
//     entries go into one batch catalog hydration.
//  4. Append local cache-only entries (engaged offline, not yet synced).
//
// The result has unique IDs, remote-confirmed entries first in remote order,
// cache-only entries after. If the remote ID query fails, the full local
// cache is returned unfiltered and no error surfaces to the caller.
func (s *Service) BuildList(ctx context.Context, userID string, kind store.ListKind) []store.CachedRecipe {
	st := s.StoreFor(userID)

	local, err := st.GetAll(ctx, kind)
	if err != nil {
		s.appCtx.Logger.Warn("local cache read failed", "user", userID, "kind", kind, "err", err)
		local = nil
	}

	var remoteIDs []string
	var remoteErr error
	if kind == store.ListCooked {
		remoteIDs, remoteErr = s.ratingRepo.CookedRecipeIDs(ctx, userID)
	} else {
		remoteIDs, remoteErr = s.eventRepo.LikedRecipeIDs(ctx, userID)
	}
	if remoteErr != nil {
		// degraded mode: remote unavailable, serve the cache as-is
		s.appCtx.Logger.Warn("remote list unavailable, serving cache only",
			"user", userID, "kind", kind, "err", remoteErr)
		return local
	}

	byID := make(map[string]store.CachedRecipe, len(local))
	for _, r := range local {
		byID[r.ID] = r
	}

	var missing []string
	for _, id := range remoteIDs {
		cached, ok := byID[id]
		if !ok || shallow(cached) {
			missing = append(missing, id)
		}
	}

	hydrated := make(map[string]store.CachedRecipe, len(missing))
	if len(missing) > 0 {
		recipes, err := s.recipeRepo.GetByIDs(ctx, missing)
		if err != nil {
			s.appCtx.Logger.Warn("catalog hydration failed", "count", len(missing), "err", err)
		}
		for _, r := range recipes {
			hydrated[r.ID] = fromCatalog(r)
		}
	}

	result := make([]store.CachedRecipe, 0, len(remoteIDs)+len(local))
	seen := make(map[string]bool, len(remoteIDs))

	for _, id := range remoteIDs {
		if seen[id] {
			continue
		}
		cached, hasLocal := byID[id]
		remote, hasRemote := hydrated[id]

		var entry store.CachedRecipe
		switch {
		case hasLocal && hasRemote:
			entry = mergeRecipe(cached, remote)
		case hasLocal:
			entry = cached
			entry.SyncState = store.SyncConfirmed
		case hasRemote:
			entry = remote
		default:
			// confirmed remotely but absent from both cache and catalog:
			// nothing to display
			continue
		}
		seen[id] = true
		result = append(result, entry)
	}

	// cache-only entries: engaged while offline, not yet reflected remotely
	for _, r := range local {
		if seen[r.ID] {
			continue
		}
		if r.SyncState == "" || r.SyncState == store.SyncConfirmed {
			r.SyncState = store.SyncPending
		}
		seen[r.ID] = true
		result = append(result, r)
	}

	return result
}

// shallow reports whether a cached entry lacks the detail payload (swipe-time
// snapshots sometimes carry only identity fields) and should be rehydrated.
func shallow(r store.CachedRecipe) bool {
	return len(r.Ingredients) == 0 && len(r.Instructions) == 0
}

// fromCatalog converts a catalog row into a remote-confirmed cache entry.
func fromCatalog(r db.Recipe) store.CachedRecipe {
	out := store.CachedRecipe{
		ID:           r.ID,
		Title:        r.Title,
		ImageURL:     r.ImageURL,
		Category:     r.Category,
		Area:         r.Area,
		Servings:     r.Servings,
		Difficulty:   r.Difficulty,
		CookTime:     r.CookTime,
		Calories:     r.Calories,
		Protein:      r.Protein,
		Carbs:        r.Carbs,
		Fat:          r.Fat,
		Fiber:        r.Fiber,
		Instructions: instructionLines(r.Instructions),
		SyncState:    store.SyncConfirmed,
	}
	for _, ing := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, store.Ingredient{
			Name:     ing.Name,
			Amount:   ing.Amount,
			Category: ing.Category,
		})
	}
	return out
}
