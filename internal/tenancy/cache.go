package tenancy

import (
	"errors"
	"sync"

	"github.com/DeXpertmx/Smile360-sub004/internal/store"
	"github.com/DeXpertmx/Smile360-sub004/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrCacheClosed is returned by For after Close.
var ErrCacheClosed = errors.New("tenant accessor cache is closed")

// Cache hands out one Accessor per organization over a shared store. It is
// created at process start and closed on shutdown; accessors share only the
// store's connection pool.
type Cache struct {
	base   store.Store
	policy *Policy
	log    *zap.Logger

	mu        sync.RWMutex
	accessors map[string]*Accessor
	closed    bool
	group     singleflight.Group
}

// NewCache creates a cache over base.
func NewCache(base store.Store, policy *Policy, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		base:      base,
		policy:    policy,
		log:       log,
		accessors: make(map[string]*Accessor),
	}
}

// For returns the accessor bound to tenantID, creating it on first use.
func (c *Cache) For(tenantID string) (*Accessor, error) {
	c.mu.RLock()
	a, ok := c.accessors[tenantID]
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrCacheClosed
	}
	if ok {
		return a, nil
	}

	v, err, _ := c.group.Do(tenantID, func() (interface{}, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return nil, ErrCacheClosed
		}
		if existing, ok := c.accessors[tenantID]; ok {
			return existing, nil
		}
		created, err := NewAccessor(tenantID, c.base, c.policy, c.log)
		if err != nil {
			return nil, err
		}
		c.accessors[tenantID] = created
		metrics.SetAccessorCacheSize(len(c.accessors))
		c.log.Debug("Tenant accessor created", zap.String("organization_id", tenantID))
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Accessor), nil
}

// Len returns the number of cached accessors.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.accessors)
}

// Close drops every accessor and closes the underlying store. Closing twice
// is a no-op.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.accessors = make(map[string]*Accessor)
	metrics.SetAccessorCacheSize(0)
	return c.base.Close()
}
