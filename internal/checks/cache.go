// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// DefaultCacheTTL bounds how long a cached copy is served.
const DefaultCacheTTL = 5 * time.Minute

// Cache keeps the latest fetched copy of checks and templates so views can
// render immediately while a refresh is in flight.
type Cache struct {
	store *ristretto.Cache
	ttl   time.Duration
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) (*Cache, error) {
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        10_000,
		MaxCost:            1_000, // entries, not bytes
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{store: store, ttl: ttl}, nil
}

func checkKey(id string) string    { return "check/" + id }
func templateKey(id string) string { return "template/" + id }

const (
	checkListKey    = "checks"
	templateListKey = "templates"
)

func (c *Cache) set(key string, value any) {
	c.store.SetWithTTL(key, value, 1, c.ttl)
}

// PutChecks stores a full check listing and each check in it.
func (c *Cache) PutChecks(list []Check) {
	c.set(checkListKey, append([]Check(nil), list...))
	for _, check := range list {
		c.set(checkKey(check.ID), check)
	}
	c.store.Wait()
}

// PutCheck stores one check.
func (c *Cache) PutCheck(check Check) {
	c.set(checkKey(check.ID), check)
	c.store.Wait()
}

// Check returns the cached copy of a check.
func (c *Cache) Check(id string) (Check, bool) {
	v, ok := c.store.Get(checkKey(id))
	if !ok {
		return Check{}, false
	}
	check, ok := v.(Check)
	return check, ok
}

// Checks returns the cached check listing.
func (c *Cache) Checks() ([]Check, bool) {
	v, ok := c.store.Get(checkListKey)
	if !ok {
		return nil, false
	}
	list, ok := v.([]Check)
	return list, ok
}

// DeleteCheck drops a check and the listing that contains it.
func (c *Cache) DeleteCheck(id string) {
	c.store.Del(checkKey(id))
	c.store.Del(checkListKey)
}

// PutTemplates stores a full template listing and each template in it.
func (c *Cache) PutTemplates(list []Template) {
	c.set(templateListKey, append([]Template(nil), list...))
	for _, t := range list {
		c.set(templateKey(t.ID), t)
	}
	c.store.Wait()
}

// PutTemplate stores one template.
func (c *Cache) PutTemplate(t Template) {
	c.set(templateKey(t.ID), t)
	c.store.Wait()
}

// Template returns the cached copy of a template.
func (c *Cache) Template(id string) (Template, bool) {
	v, ok := c.store.Get(templateKey(id))
	if !ok {
		return Template{}, false
	}
	t, ok := v.(Template)
	return t, ok
}

// Templates returns the cached template listing.
func (c *Cache) Templates() ([]Template, bool) {
	v, ok := c.store.Get(templateListKey)
	if !ok {
		return nil, false
	}
	list, ok := v.([]Template)
	return list, ok
}

// Close releases the cache goroutines.
func (c *Cache) Close() {
	c.store.Close()
}
