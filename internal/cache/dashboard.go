// internal/cache/dashboard.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gustirama/shelfsense/internal/config"
	"github.com/gustirama/shelfsense/internal/domain"
	"github.com/redis/go-redis/v9"
)

const kpiCacheKey = "dashboard:kpis"

// DashboardCache keeps the KPI aggregates warm between runs. The payload has
// no query dimensions, so a single fixed key is enough.
type DashboardCache interface {
	GetKpis(ctx context.Context) (*domain.Kpis, bool, error)
	SetKpis(ctx context.Context, kpis *domain.Kpis) error
	InvalidateKpis(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

func NewDashboardCache(cfg config.CacheConfig) (DashboardCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisDashboardCache{client: client, ttl: ttl}, nil
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) GetKpis(ctx context.Context) (*domain.Kpis, bool, error) {
	payload, err := c.client.Get(ctx, kpiCacheKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var kpis domain.Kpis
	if err := json.Unmarshal(payload, &kpis); err != nil {
		return nil, false, fmt.Errorf("decode kpi cache: %w", err)
	}

	return &kpis, true, nil
}

func (c *redisDashboardCache) SetKpis(ctx context.Context, kpis *domain.Kpis) error {
	payload, err := json.Marshal(kpis)
	if err != nil {
		return fmt.Errorf("encode kpi cache: %w", err)
	}

	if err := c.client.Set(ctx, kpiCacheKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisDashboardCache) InvalidateKpis(ctx context.Context) error {
	return c.client.Del(ctx, kpiCacheKey).Err()
}

func (n *noopDashboardCache) GetKpis(ctx context.Context) (*domain.Kpis, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetKpis(ctx context.Context, kpis *domain.Kpis) error {
	return nil
}

func (n *noopDashboardCache) InvalidateKpis(ctx context.Context) error {
	return nil
}
