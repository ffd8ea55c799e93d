// Package suggest implements the phrase suggestion panel used while editing the
// objective of a CV.
//
// Phrases are toggled with plain substring edits on the objective HTML. A phrase
// whose text overlaps a tag boundary in the objective can therefore corrupt the
// markup; callers accept this in exchange for keeping free-form rich text.
package suggest

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize bounds the number of roles whose phrases are kept.
// The remote catalog is far smaller, so nothing is evicted in practice.
const DefaultCacheSize = 512

// RoleSource is the read-only part of the remote store used by the panel.
type RoleSource interface {
	ListRoles(ctx context.Context) ([]string, error)
	ListPhrases(ctx context.Context, role string) ([]string, error)
}

// Catalog caches the role list and phrases per role for the lifetime of a session.
// Entries are never refreshed once fetched.
type Catalog struct {
	source  RoleSource
	phrases *lru.Cache[string, []string]
	roles   []string
	group   singleflight.Group
}

// NewCatalog creates a catalog backed by source.
func NewCatalog(source RoleSource) (*Catalog, error) {
	cache, err := lru.New[string, []string](DefaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create phrase cache: %w", err)
	}
	return &Catalog{source: source, phrases: cache}, nil
}

// Roles returns the role names, fetching them on first use.
func (c *Catalog) Roles(ctx context.Context) ([]string, error) {
	v, err, _ := c.group.Do("\x00roles", func() (any, error) {
		if c.roles != nil {
			return c.roles, nil
		}
		roles, err := c.source.ListRoles(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load roles: %w", err)
		}
		if roles == nil {
			roles = []string{}
		}
		c.roles = roles
		return roles, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Phrases returns the candidate phrases for role, fetching them on first use.
func (c *Catalog) Phrases(ctx context.Context, role string) ([]string, error) {
	if cached, ok := c.phrases.Get(role); ok {
		return cached, nil
	}
	v, err, _ := c.group.Do(role, func() (any, error) {
		if cached, ok := c.phrases.Get(role); ok {
			return cached, nil
		}
		phrases, err := c.source.ListPhrases(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("failed to load phrases for %q: %w", role, err)
		}
		if phrases == nil {
			phrases = []string{}
		}
		c.phrases.Add(role, phrases)
		return phrases, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}
