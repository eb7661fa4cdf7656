package memory

import (
	"time"

	"billing-engine-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

const activePlansKey = "plans:active"

// PlanCache holds the active plan catalogue between reads.
type PlanCache struct {
	cache *cache.Cache
}

func NewPlanCache(ttl time.Duration) *PlanCache {
	return &PlanCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *PlanCache) Save(plans []*entity.Plan) {
	c.cache.Set(activePlansKey, plans, cache.DefaultExpiration)
}

func (c *PlanCache) Get() ([]*entity.Plan, bool) {
	if x, found := c.cache.Get(activePlansKey); found {
		return x.([]*entity.Plan), true
	}
	return nil, false
}
