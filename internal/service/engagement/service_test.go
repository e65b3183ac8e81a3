package engagement_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wellnoosh/engagement/internal/app"
	"github.com/wellnoosh/engagement/internal/cache"
	"github.com/wellnoosh/engagement/internal/config"
	"github.com/wellnoosh/engagement/internal/db"
	"github.com/wellnoosh/engagement/internal/recommend"
	"github.com/wellnoosh/engagement/internal/service/engagement"
	"github.com/wellnoosh/engagement/internal/store"
)

const (
	freeUser    = "user-free"
	premiumUser = "user-premium"
	salmonID    = "recipe-salmon"
	curryID     = "recipe-curry"
)

func f(v float64) *float64 { return &v }

type testEnv struct {
	svc *engagement.Service
	gdb *gorm.DB
}

// seedBaseData inserts a deterministic dataset: one free user, one premium
// user, and two catalog recipes with ingredients.
func seedBaseData(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	users := []db.User{
		{ID: freeUser, Email: "free@test.com", PasswordHash: "x", Tier: db.TierFree},
		{ID: premiumUser, Email: "premium@test.com", PasswordHash: "x", Tier: db.TierPremium},
	}
	require.NoError(t, gdb.Create(&users).Error)

	recipes := []db.Recipe{
		{
			ID: salmonID, Title: "Garlic Butter Salmon", Category: "Seafood",
			Servings: 2, Instructions: "Season salmon\nBake 15 minutes",
			Calories: f(520), Protein: f(42), Carbs: f(3), Fat: f(36),
			Ingredients: []db.Ingredient{
				{Name: "salmon fillet", Amount: "2", Category: "Seafood"},
				{Name: "butter", Amount: "2 tbsp", Category: "Dairy"},
				{Name: "garlic", Amount: "4 cloves", Category: "Produce"},
			},
		},
		{
			ID: curryID, Title: "Chickpea Curry", Category: "Vegetarian",
			Servings: 4, Instructions: "Fry spices\nSimmer 25 minutes",
			Calories: f(380), Protein: f(14), Carbs: f(48), Fat: f(15), Fiber: f(11),
			Ingredients: []db.Ingredient{
				{Name: "chickpeas", Amount: "2 cups", Category: "Pantry"},
				{Name: "coconut milk", Amount: "1/2 cup", Category: "Pantry"},
			},
		},
	}
	require.NoError(t, gdb.Create(&recipes).Error)
}

// setupService spins up an in-memory SQLite DB, a miniredis, and an httptest
// recommendation endpoint (nil handler → always 200), and wires everything
// into an engagement Service. Each test gets its own isolated stack.
func setupService(t *testing.T, recHandler http.Handler) testEnv {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&db.User{}, &db.Recipe{}, &db.Ingredient{}, &db.RecipeEvent{}, &db.CookedRating{}))
	seedBaseData(t, gdb)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	if recHandler == nil {
		recHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	}
	recSrv := httptest.NewServer(recHandler)
	t.Cleanup(recSrv.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.Quota.FreeDailyCeiling = 5
	cfg.Recommender.BaseURL = recSrv.URL

	redisCache := cache.NewRedisCache(cfg)
	recommender := recommend.New(cfg.Recommender.BaseURL, cfg.Recommender.Timeout)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	appCtx := app.New(gdb, redisCache, logger, recommender, cfg)
	return testEnv{svc: engagement.NewService(appCtx), gdb: gdb}
}

func salmonSnapshot() *store.CachedRecipe {
	return &store.CachedRecipe{
		ID:       salmonID,
		Title:    "Garlic Butter Salmon",
		Category: "Seafood",
		Servings: 2,
		Ingredients: []store.Ingredient{
			{Name: "salmon fillet", Amount: "2"},
		},
	}
}

//
// Recording
//

func TestRecordFeedbackSuccess(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)

	res, err := env.svc.RecordFeedback(ctx, freeUser, salmonID, "like", salmonSnapshot())
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.Equal(t, 4, res.Remaining)

	// event appended to the log
	var count int64
	require.NoError(t, env.gdb.Model(&db.RecipeEvent{}).
		Where("user_id = ? AND recipe_id = ? AND event = ?", freeUser, salmonID, db.EventLike).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// optimistic cache entry confirmed after the remote append
	cached, err := env.svc.StoreFor(freeUser).GetAll(ctx, store.ListLiked)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, store.SyncConfirmed, cached[0].SyncState)
}

func TestRecordFeedbackDislikeStoredAsHide(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)

	res, err := env.svc.RecordFeedback(ctx, freeUser, salmonID, "dislike", nil)
	require.NoError(t, err)
	assert.True(t, res.Recorded)

	var event db.RecipeEvent
	require.NoError(t, env.gdb.Where("user_id = ?", freeUser).First(&event).Error)
	assert.Equal(t, db.EventHide, event.Event)
}

func TestRecordSecondaryFailureDoesNotAffectResult(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	assert.True(t, env.svc.Record(ctx, freeUser, salmonID, "like"))
}

func TestRecordPrimaryFailure(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)

	// take down the event log only; users and quota still reachable
	require.NoError(t, env.gdb.Exec("DROP TABLE recipe_events").Error)

	res, err := env.svc.RecordFeedback(ctx, freeUser, salmonID, "like", salmonSnapshot())
	require.NoError(t, err)
	assert.False(t, res.Recorded)

	// the optimistic write is kept, tagged failed for the reconciler
	cached, err := env.svc.StoreFor(freeUser).GetAll(ctx, store.ListLiked)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, store.SyncFailed, cached[0].SyncState)
}

//
// Quota
//

func TestQuotaExhaustion(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)

	for i := 0; i < 5; i++ {
		res, err := env.svc.RecordFeedback(ctx, freeUser, salmonID, "like", nil)
		require.NoError(t, err)
		require.True(t, res.Recorded)
	}

	res, err := env.svc.RecordFeedback(ctx, freeUser, salmonID, "like", nil)
	require.NoError(t, err)
	assert.True(t, res.QuotaExceeded)
	assert.False(t, res.Recorded)

	// the refused action left no trace in the log
	var count int64
	require.NoError(t, env.gdb.Model(&db.RecipeEvent{}).Where("user_id = ?", freeUser).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestPremiumTierUnlimited(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)

	for i := 0; i < 10; i++ {
		res, err := env.svc.RecordFeedback(ctx, premiumUser, salmonID, "like", nil)
		require.NoError(t, err)
		assert.True(t, res.Recorded)
		assert.True(t, res.Unlimited)
	}
}

func TestTierUpgradeUnblocksExhaustedUser(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)

	for i := 0; i < 5; i++ {
		_, err := env.svc.RecordFeedback(ctx, freeUser, salmonID, "like", nil)
		require.NoError(t, err)
	}
	res, err := env.svc.RecordFeedback(ctx, freeUser, salmonID, "like", nil)
	require.NoError(t, err)
	require.True(t, res.QuotaExceeded)

	require.NoError(t, env.svc.UpgradeTier(ctx, freeUser, db.TierPremium))

	res, err = env.svc.RecordFeedback(ctx, freeUser, salmonID, "like", nil)
	require.NoError(t, err)
	assert.True(t, res.Recorded)
	assert.True(t, res.Unlimited)
}

//
// Reconciliation
//

func TestReconcileOfflineLikeThenSync(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)
	st := env.svc.StoreFor(freeUser)

	// offline: cache gains the recipe with no remote event
	snap := salmonSnapshot()
	snap.SyncState = store.SyncPending
	require.NoError(t, st.Upsert(ctx, store.ListLiked, *snap))

	list := env.svc.BuildList(ctx, freeUser, store.ListLiked)
	require.Len(t, list, 1)
	assert.Equal(t, store.SyncPending, list[0].SyncState)

	// connectivity restored: the like reaches the remote log
	require.NoError(t, env.gdb.Create(&db.RecipeEvent{
		UserID: freeUser, RecipeID: salmonID, Event: db.EventLike,
	}).Error)

	list = env.svc.BuildList(ctx, freeUser, store.ListLiked)
	require.Len(t, list, 1)
	assert.Equal(t, salmonID, list[0].ID)
	assert.Equal(t, store.SyncConfirmed, list[0].SyncState)
	// full detail still comes from the local snapshot
	assert.Equal(t, "Garlic Butter Salmon", list[0].Title)
}

func TestReconcileHydratesMissingFromCatalog(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)

	// remote knows about a like the local cache never saw
	require.NoError(t, env.gdb.Create(&db.RecipeEvent{
		UserID: freeUser, RecipeID: curryID, Event: db.EventLike,
	}).Error)

	list := env.svc.BuildList(ctx, freeUser, store.ListLiked)
	require.Len(t, list, 1)
	assert.Equal(t, curryID, list[0].ID)
	assert.Equal(t, "Chickpea Curry", list[0].Title)
	assert.Len(t, list[0].Ingredients, 2)
	assert.Equal(t, store.SyncConfirmed, list[0].SyncState)
}

func TestReconcileOrderAndCacheOnlyAppend(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)
	st := env.svc.StoreFor(freeUser)

	base := time.Now().UTC().Truncate(time.Millisecond).Add(-time.Hour)
	require.NoError(t, env.gdb.Create(&db.RecipeEvent{
		UserID: freeUser, RecipeID: salmonID, Event: db.EventLike, CreatedAt: base,
	}).Error)
	require.NoError(t, env.gdb.Create(&db.RecipeEvent{
		UserID: freeUser, RecipeID: curryID, Event: db.EventLike, CreatedAt: base.Add(time.Minute),
	}).Error)

	// one cache-only entry on top
	require.NoError(t, st.Upsert(ctx, store.ListLiked, store.CachedRecipe{
		ID: "recipe-offline", Title: "Offline Pasta", SyncState: store.SyncPending,
	}))

	list := env.svc.BuildList(ctx, freeUser, store.ListLiked)
	require.Len(t, list, 3)
	// remote-authoritative first, in remote (latest like first) order
	assert.Equal(t, curryID, list[0].ID)
	assert.Equal(t, salmonID, list[1].ID)
	// cache-only appended last
	assert.Equal(t, "recipe-offline", list[2].ID)
	assert.Equal(t, store.SyncPending, list[2].SyncState)
}

func TestReconcileNoDuplicates(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)
	st := env.svc.StoreFor(freeUser)

	// same recipe both remote-confirmed and cached locally
	require.NoError(t, st.Upsert(ctx, store.ListLiked, *salmonSnapshot()))
	require.NoError(t, env.gdb.Create(&db.RecipeEvent{
		UserID: freeUser, RecipeID: salmonID, Event: db.EventLike,
	}).Error)

	list := env.svc.BuildList(ctx, freeUser, store.ListLiked)
	require.Len(t, list, 1)

	seen := map[string]bool{}
	for _, r := range list {
		assert.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestReconcileDegradedMode(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)
	st := env.svc.StoreFor(freeUser)

	require.NoError(t, st.Upsert(ctx, store.ListLiked, *salmonSnapshot()))
	require.NoError(t, st.Upsert(ctx, store.ListLiked, store.CachedRecipe{ID: "recipe-x", Title: "X"}))

	// remote unavailable: the full local cache comes back, no error surfaces
	require.NoError(t, env.gdb.Exec("DROP TABLE recipe_events").Error)

	list := env.svc.BuildList(ctx, freeUser, store.ListLiked)
	require.Len(t, list, 2)
	assert.Equal(t, "recipe-x", list[0].ID)
	assert.Equal(t, salmonID, list[1].ID)
}

//
// Un-like, cooked, scaling
//

func TestUnlike(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)

	res, err := env.svc.RecordFeedback(ctx, freeUser, salmonID, "like", salmonSnapshot())
	require.NoError(t, err)
	require.True(t, res.Recorded)

	assert.True(t, env.svc.Unlike(ctx, freeUser, salmonID))

	// cache entry gone and the liked set no longer includes the recipe
	cached, err := env.svc.StoreFor(freeUser).GetAll(ctx, store.ListLiked)
	require.NoError(t, err)
	assert.Empty(t, cached)

	list := env.svc.BuildList(ctx, freeUser, store.ListLiked)
	assert.Empty(t, list)
}

func TestRateCookedAndReconcile(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)

	ok := env.svc.RateCooked(ctx, freeUser, curryID, engagement.CookedInput{
		Rating: 5, Review: "family favourite", WouldMakeAgain: true,
	}, nil)
	require.True(t, ok)

	// a cook_now event lands in the history log
	var eventCount int64
	require.NoError(t, env.gdb.Model(&db.RecipeEvent{}).
		Where("user_id = ? AND event = ?", freeUser, db.EventCookNow).
		Count(&eventCount).Error)
	assert.Equal(t, int64(1), eventCount)

	// cooked list reconciles from the ratings table, hydrated from catalog
	list := env.svc.BuildList(ctx, freeUser, store.ListCooked)
	require.Len(t, list, 1)
	assert.Equal(t, curryID, list[0].ID)
	assert.Equal(t, "Chickpea Curry", list[0].Title)

	// repeat cook increments made_count, still one row
	require.True(t, env.svc.RateCooked(ctx, freeUser, curryID, engagement.CookedInput{Rating: 4}, nil))

	var rating db.CookedRating
	require.NoError(t, env.gdb.Where("user_id = ? AND recipe_id = ?", freeUser, curryID).First(&rating).Error)
	assert.Equal(t, 2, rating.MadeCount)
	assert.Equal(t, 4, rating.Rating)
}

func TestScaled(t *testing.T) {
	ctx := context.Background()
	env := setupService(t, nil)

	scaled, err := env.svc.Scaled(ctx, salmonID, 4)
	require.NoError(t, err)

	assert.Equal(t, 4, scaled.Servings)
	require.Len(t, scaled.Ingredients, 3)

	amounts := map[string]string{}
	for _, ing := range scaled.Ingredients {
		amounts[ing.Name] = ing.Amount
	}
	assert.Equal(t, "4", amounts["salmon fillet"])
	assert.Equal(t, "4 tbsp", amounts["butter"])
	assert.Equal(t, "8 cloves", amounts["garlic"])

	assert.Equal(t, float64(1040), scaled.Nutrition.Calories)
	assert.Equal(t, float64(84), scaled.Nutrition.Protein)
}
