package favorites

import (
	"context"
	"fmt"
	"slices"

	"github.com/iudanet/lostlibrary/pkg/api"
)

//go:generate moq -out lookup_mock.go . ArticleLookup

// ArticleLookup fetches published articles by id in one round trip of at most
// api.MaxArticlesPerRequest ids.
// Ids that are unknown or unpublished are simply absent from the result.
type ArticleLookup interface {
	GetArticlesByIDs(ctx context.Context, ids []string) ([]api.Article, error)
}

// Hydrate resolves favorite ids into articles, keeping the order of ids
// and dropping the ones the backend did not return. Long lists are fetched
// in batches of api.MaxArticlesPerRequest.
func Hydrate(ctx context.Context, lookup ArticleLookup, ids []string) ([]api.Article, error) {
	if len(ids) == 0 {
		return []api.Article{}, nil
	}

	byID := make(map[string]api.Article, len(ids))
	for batch := range slices.Chunk(ids, api.MaxArticlesPerRequest) {
		found, err := lookup.GetArticlesByIDs(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch favorite articles: %w", err)
		}
		for _, a := range found {
			byID[a.ID] = a
		}
	}

	articles := make([]api.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			articles = append(articles, a)
		}
	}
	return articles, nil
}

// Articles hydrates the favorites of the given user
func (s *Store) Articles(ctx context.Context, lookup ArticleLookup, userID string) ([]api.Article, error) {
	return Hydrate(ctx, lookup, s.Get(ctx, userID))
}
