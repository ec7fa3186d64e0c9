package server

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/julianshen/repodoc/internal/source"
)

const (
	defaultTreeCacheSize = 128
	defaultTreeCacheTTL  = 5 * time.Minute
)

// treeCache keeps recent tree listings fetched with the shared credential.
// Entries expire after ttl so a moving branch is listed again. Listings
// fetched with a user token are never cached.
type treeCache struct {
	lru *expirable.LRU[string, *source.Tree]
}

func newTreeCache(size int, ttl time.Duration) *treeCache {
	if size <= 0 {
		size = defaultTreeCacheSize
	}
	if ttl <= 0 {
		ttl = defaultTreeCacheTTL
	}
	return &treeCache{lru: expirable.NewLRU[string, *source.Tree](size, nil, ttl)}
}

func treeKey(ref source.RepoRef, branch string) string {
	return ref.Host + "/" + ref.FullName() + "@" + branch
}

func (c *treeCache) get(ref source.RepoRef, branch string) (*source.Tree, bool) {
	return c.lru.Get(treeKey(ref, branch))
}

func (c *treeCache) add(ref source.RepoRef, branch string, tree *source.Tree) {
	c.lru.Add(treeKey(ref, branch), tree)
}
