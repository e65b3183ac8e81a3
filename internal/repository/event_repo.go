package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wellnoosh/engagement/internal/db"
	"github.com/wellnoosh/engagement/internal/utils/pagination"
)

// EventRepository provides data access for the append-only recipe_events log.
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new repository bound to the given DB connection.
func NewEventRepository(database *gorm.DB) *EventRepository {
	return &EventRepository{db: database}
}

// Append writes one immutable engagement event. Events are never updated or
// deleted; an un-like is a later "hide" event, not a row mutation.
func (r *EventRepository) Append(ctx context.Context, userID, recipeID, event string) error {
	row := db.RecipeEvent{
		UserID:   userID,
		RecipeID: recipeID,
		Event:    event,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// LikedRecipeIDs derives the current liked set: recipe IDs that have a "like"
// event with no later "hide" for the same user.
//
// "Later" means greater created_at, ties broken by greater row ID (insertion
// order), which makes the like/hide precedence deterministic even when both
// land in the same millisecond. Ordered by most recent surviving like first.
func (r *EventRepository) LikedRecipeIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table("recipe_events e").
		Where("e.user_id = ? AND e.event = ?", userID, db.EventLike).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM recipe_events h
				WHERE h.user_id = e.user_id
				  AND h.recipe_id = e.recipe_id
				  AND h.event = ?
				  AND (h.created_at > e.created_at
				       OR (h.created_at = e.created_at AND h.id > e.id))
			)`, db.EventHide).
		Group("e.recipe_id").
		Order("MAX(e.created_at) DESC").
		Pluck("e.recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListEvents returns the user's engagement history, most recent first, with
// cursor-based pagination.
func (r *EventRepository) ListEvents(
	ctx context.Context,
	userID string,
	paginationToken *string,
	limit int,
) ([]db.RecipeEvent, *string, error) {
	var events []db.RecipeEvent

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("recipe_events e").
		Where("e.user_id = ?", userID).
		Order("e.created_at DESC, e.id DESC").
		Limit(limit + 1)

	if cursor.EventID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		query = query.Where(
			"(e.created_at < ? OR (e.created_at = ? AND e.id < ?))",
			ts, ts, cursor.EventID,
		)
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(events) > limit {
		last := events[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			EventID:     last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		events = events[:limit]
	}

	return events, nextToken, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
