// Package quota gates free-tier engagement actions behind a daily ceiling.
// Counters live in Redis keyed by user and local calendar day, so day
// rollover is a key rollover rather than a scheduled reset.
package quota

import (
	"context"
	"time"

	"github.com/wellnoosh/engagement/internal/cache"
)

// counterTTL keeps yesterday's counter around briefly for debugging, then
// lets Redis reclaim it.
const counterTTL = 48 * time.Hour

// Decision is the outcome of a gate check. Quota exhaustion is a normal
// refusal, not an error: I/O failures come back through the error return.
type Decision struct {
	Allowed   bool
	Remaining int
	Unlimited bool
}

type Gate struct {
	cache   *cache.RedisCache
	ceiling int
	now     func() time.Time
}

func New(c *cache.RedisCache, ceiling int) *Gate {
	return &Gate{cache: c, ceiling: ceiling, now: time.Now}
}

func (g *Gate) key(userID string) string {
	return g.cache.KeyForQuota(userID, g.now().Format("2006-01-02"))
}

// CheckAndConsume increments the user's daily counter and allows the action,
// unless the free-tier ceiling is already reached, in which case it refuses
// without consuming (the caller presents an upgrade prompt). Unlimited users
// short-circuit the counter entirely.
//
// The consume is atomic: INCR first, then refuse and roll back when the
// returned value lands past the ceiling. A read-then-increment would let
// concurrent requests race past the limit.
func (g *Gate) CheckAndConsume(ctx context.Context, userID string, unlimited bool) (Decision, error) {
	if unlimited {
		return Decision{Allowed: true, Unlimited: true}, nil
	}

	key := g.key(userID)

	n, err := g.cache.Incr(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	if n == 1 {
		_ = g.cache.Expire(ctx, key, counterTTL)
	}

	if n > int64(g.ceiling) {
		// roll back so used stays capped at the ceiling; best-effort, a
		// failed rollback only overstates the counter, never the allowance
		_, _ = g.cache.Decr(ctx, key)
		return Decision{Allowed: false, Remaining: 0}, nil
	}

	return Decision{Allowed: true, Remaining: g.ceiling - int(n)}, nil
}

// Remaining reports the current allowance without consuming.
func (g *Gate) Remaining(ctx context.Context, userID string, unlimited bool) (Decision, error) {
	if unlimited {
		return Decision{Allowed: true, Unlimited: true}, nil
	}

	used, err := g.cache.GetInt(ctx, g.key(userID))
	if err != nil {
		return Decision{}, err
	}

	remaining := g.ceiling - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: remaining > 0, Remaining: remaining}, nil
}
