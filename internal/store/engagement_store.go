// Package store is the per-user engagement cache: denormalized recipe
// snapshots taken at the moment of a like or cook, partitioned by user
// identity, kept in Redis as JSON arrays. The cache is a display/offline
// optimization; the recipe_events log remains the source of truth and the
// reconciler resolves any divergence on load.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wellnoosh/engagement/internal/cache"
)

type ListKind string

const (
	ListLiked  ListKind = "liked"
	ListCooked ListKind = "cooked"
)

// SyncState tags a cached entry with its relationship to the remote log.
type SyncState string

const (
	// SyncConfirmed means the remote log is known to agree with this entry.
	SyncConfirmed SyncState = "confirmed"
	// SyncPending means the optimistic local write happened but the remote
	// append has not been confirmed yet (offline or in flight).
	SyncPending SyncState = "pending"
	// SyncFailed means the remote append was attempted and failed; the entry
	// is kept for display and retried on a later engagement.
	SyncFailed SyncState = "failed"
)

type Ingredient struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Category string `json:"category,omitempty"`
}

// CachedRecipe is a denormalized snapshot of a recipe at engagement time.
type CachedRecipe struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	ImageURL     string       `json:"image_url,omitempty"`
	Category     string       `json:"category,omitempty"`
	Area         string       `json:"area,omitempty"`
	Calories     *float64     `json:"calories,omitempty"`
	Protein      *float64     `json:"protein,omitempty"`
	Carbs        *float64     `json:"carbs,omitempty"`
	Fat          *float64     `json:"fat,omitempty"`
	Fiber        *float64     `json:"fiber,omitempty"`
	Servings     int          `json:"servings,omitempty"`
	Ingredients  []Ingredient `json:"ingredients,omitempty"`
	Instructions []string     `json:"instructions,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Description  string       `json:"description,omitempty"`
	Difficulty   string       `json:"difficulty,omitempty"`
	CookTime     string       `json:"cook_time,omitempty"`
	Rating       int          `json:"rating,omitempty"`
	CachedAt     string       `json:"cached_at"`
	SyncState    SyncState    `json:"sync_state,omitempty"`
}

// Store is bound to one user identity at construction. There is no ambient
// "current user" slot: callers hold an instance per identity and pass it
// around explicitly.
//
// An empty userID selects the legacy shared partition kept for
// pre-multi-user data. Call PurgeLegacyPartition once a real identity is
// known to avoid cross-user leakage on shared devices.
type Store struct {
	cache  *cache.RedisCache
	userID string
}

func New(c *cache.RedisCache, userID string) *Store {
	return &Store{cache: c, userID: userID}
}

func (s *Store) key(kind ListKind) string {
	if s.userID == "" {
		return fmt.Sprintf("%s_recipes", kind)
	}
	return fmt.Sprintf("%s_recipes_%s", kind, s.userID)
}

// Upsert replaces any entry with the same ID in the list and prepends the
// new one. Most-recent-first ordering is an observable property: callers
// display lists in exactly this order. The cachedAt stamp is set here.
func (s *Store) Upsert(ctx context.Context, kind ListKind, recipe CachedRecipe) error {
	existing, err := s.GetAll(ctx, kind)
	if err != nil {
		return err
	}

	recipe.CachedAt = time.Now().UTC().Format(time.RFC3339)
	updated := make([]CachedRecipe, 0, len(existing)+1)
	updated = append(updated, recipe)
	for _, r := range existing {
		if r.ID != recipe.ID {
			updated = append(updated, r)
		}
	}

	return s.save(ctx, kind, updated)
}

// Remove deletes by identifier. Removing an absent ID is a no-op.
func (s *Store) Remove(ctx context.Context, kind ListKind, recipeID string) error {
	existing, err := s.GetAll(ctx, kind)
	if err != nil {
		return err
	}

	filtered := existing[:0]
	for _, r := range existing {
		if r.ID != recipeID {
			filtered = append(filtered, r)
		}
	}

	return s.save(ctx, kind, filtered)
}

// GetAll returns the full list, most-recently-upserted first. A missing
// partition is an empty list, not an error.
func (s *Store) GetAll(ctx context.Context, kind ListKind) ([]CachedRecipe, error) {
	raw, err := s.cache.Get(ctx, s.key(kind))
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var recipes []CachedRecipe
	if err := json.Unmarshal([]byte(raw), &recipes); err != nil {
		return nil, fmt.Errorf("corrupt cache partition %s: %w", s.key(kind), err)
	}
	return recipes, nil
}

// SetSyncState flips the sync tag on one cached entry in place. Unknown IDs
// are a no-op: the entry may have been removed concurrently.
func (s *Store) SetSyncState(ctx context.Context, kind ListKind, recipeID string, state SyncState) error {
	existing, err := s.GetAll(ctx, kind)
	if err != nil {
		return err
	}

	changed := false
	for i := range existing {
		if existing[i].ID == recipeID {
			existing[i].SyncState = state
			changed = true
		}
	}
	if !changed {
		return nil
	}

	return s.save(ctx, kind, existing)
}

// Clear empties one list for this user.
func (s *Store) Clear(ctx context.Context, kind ListKind) error {
	return s.cache.Del(ctx, s.key(kind))
}

// PurgeLegacyPartition removes the shared anonymous partitions. Call this
// once a real user identity is bound so stale pre-sign-in data cannot leak
// into another account on the same device.
func (s *Store) PurgeLegacyPartition(ctx context.Context) error {
	return s.cache.Del(ctx,
		fmt.Sprintf("%s_recipes", ListLiked),
		fmt.Sprintf("%s_recipes", ListCooked),
	)
}

func (s *Store) save(ctx context.Context, kind ListKind, recipes []CachedRecipe) error {
	b, err := json.Marshal(recipes)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.key(kind), string(b), 0)
}
