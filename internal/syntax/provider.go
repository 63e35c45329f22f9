package syntax

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/smartmd/internal/cachemanager"
	"github.com/zjrosen/smartmd/internal/document"
)

// TreeTTL bounds how long a parsed tree for a superseded version lingers.
const TreeTTL = time.Minute

// Provider parses documents on demand and caches trees per document version.
type Provider struct {
	cache *cachemanager.InMemoryCacheManager[string, *Markdown]
	trees *cachemanager.ReadThroughCache[string, *Markdown, *document.Document]
}

// NewProvider creates a Provider. With disabled set every call reparses.
func NewProvider(disabled bool) *Provider {
	cache := cachemanager.NewInMemoryCacheManager[string, *Markdown]("syntax-trees",
		cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	return &Provider{
		cache: cache,
		trees: cachemanager.NewReadThroughCache[string, *Markdown, *document.Document](cache, func(_ context.Context, doc *document.Document) (*Markdown, error) {
			return Parse(doc.Text())
		}, disabled),
	}
}

// Tree returns the syntax tree for doc.
func (p *Provider) Tree(ctx context.Context, doc *document.Document) (Tree, error) {
	tree, err := p.trees.Get(ctx, treeKey(doc), doc, TreeTTL)
	if err != nil {
		return nil, fmt.Errorf("tree for %s: %w", doc.ID(), err)
	}
	return tree, nil
}

// Forget drops cached trees for a closed document version.
func (p *Provider) Forget(ctx context.Context, doc *document.Document) {
	_ = p.cache.Delete(ctx, treeKey(doc))
}

func treeKey(doc *document.Document) string {
	return fmt.Sprintf("%s@%d", doc.ID(), doc.Version())
}
