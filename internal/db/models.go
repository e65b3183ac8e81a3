package db

import (
	"time"
)

// Subscription tiers. Free tier users are subject to the daily engagement
// quota; premium users are not.
const (
	TierFree    = "free"
	TierPremium = "premium"
)

// Engagement event kinds stored in the recipe_events log. "dislike" from
// clients is normalized to EventHide before it reaches this layer.
const (
	EventLike        = "like"
	EventHide        = "hide"
	EventSave        = "save"
	EventPass        = "pass"
	EventCookNow     = "cook_now"
	EventShareFamily = "share_family"
)

// User table
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	DisplayName  string `gorm:"size:64"`
	Tier         string `gorm:"size:16;not null;default:free"`
	Active       bool   `gorm:"default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Recipe is the read-only catalog row. Nutrition fields are per serving and
// optional; a nil pointer means the source never provided the figure.
type Recipe struct {
	ID           string `gorm:"primaryKey;size:36"`
	Title        string `gorm:"size:255;not null"`
	ImageURL     string `gorm:"size:512"`
	Category     string `gorm:"size:64;index"`
	Area         string `gorm:"size:64"`
	Servings     int    `gorm:"not null;default:1"`
	Instructions string `gorm:"type:text"`
	Difficulty   string `gorm:"size:16"`
	CookTime     string `gorm:"size:32"`
	Calories     *float64
	Protein      *float64
	Carbs        *float64
	Fat          *float64
	Fiber        *float64
	Ingredients  []Ingredient `gorm:"foreignKey:RecipeID"`
	CreatedAt    time.Time    `gorm:"autoCreateTime"`
}

// Ingredient belongs to a catalog recipe. Amount is free text ("1/2 cup"),
// scaled on demand, never normalized at rest.
type Ingredient struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	RecipeID string `gorm:"size:36;not null;index"`
	Name     string `gorm:"size:128;not null"`
	Amount   string `gorm:"size:64"`
	Category string `gorm:"size:64"`
}

// RecipeEvent is one immutable row in the append-only engagement log.
// The log is the sole authority for "is recipe X currently liked by user Y";
// the Redis-side cache never contradicts it once reconciled.
//
// Index idx_user_event_created(user_id, event, created_at DESC) serves the
// liked-set and history queries.
type RecipeEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"size:36;not null;index:idx_user_event_created,priority:1"`
	RecipeID  string    `gorm:"size:36;not null;index"`
	Event     string    `gorm:"size:16;not null;index:idx_user_event_created,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_user_event_created,priority:3,sort:desc"`
}

// CookedRating holds at most one row per (user, recipe). A repeat
// "mark as cooked" increments MadeCount and overwrites the rest.
//
// Composite PK: (UserID, RecipeID) gives the overwrite guarantee.
type CookedRating struct {
	UserID           string    `gorm:"primaryKey;size:36"`
	RecipeID         string    `gorm:"primaryKey;size:36"`
	Rating           int       `gorm:"not null"`
	Review           string    `gorm:"type:text"`
	MadeCount        int       `gorm:"not null;default:1"`
	LastMadeDate     time.Time `gorm:"index"`
	DifficultyRating string    `gorm:"size:16"`
	WouldMakeAgain   bool
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}
