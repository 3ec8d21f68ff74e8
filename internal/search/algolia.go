package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	algolia "github.com/algolia/algoliasearch-client-go/v3/algolia/search"
)

// objectIndex is the part of *algolia.Index the adapter calls.
type objectIndex interface {
	SaveObjects(objects interface{}, opts ...interface{}) (algolia.GroupBatchRes, error)
	Search(query string, opts ...interface{}) (algolia.QueryRes, error)
}

// AlgoliaIndex is an Index hosted on Algolia.
type AlgoliaIndex struct {
	index objectIndex
	wait  func(algolia.GroupBatchRes) error
}

// NewAlgoliaIndex connects to the named index.
func NewAlgoliaIndex(appID, apiKey, indexName string) (*AlgoliaIndex, error) {
	if appID == "" || apiKey == "" || indexName == "" {
		return nil, errors.New("algolia app id, api key and index name are required")
	}
	client := algolia.NewClient(appID, apiKey)
	return newAlgoliaIndex(client.InitIndex(indexName)), nil
}

func newAlgoliaIndex(index objectIndex) *AlgoliaIndex {
	return &AlgoliaIndex{
		index: index,
		wait:  func(res algolia.GroupBatchRes) error { return res.Wait() },
	}
}

// SaveObjects upserts records and waits for the indexing tasks to finish.
func (a *AlgoliaIndex) SaveObjects(ctx context.Context, records []Record) (int, error) {
	return race(ctx, func() (int, error) {
		res, err := a.index.SaveObjects(records)
		if err != nil {
			return 0, fmt.Errorf("algolia save objects: %w", err)
		}
		if err := a.wait(res); err != nil {
			return 0, fmt.Errorf("algolia wait: %w", err)
		}

		saved := 0
		for _, batch := range res.Responses {
			saved += len(batch.ObjectIDs)
		}
		return saved, nil
	})
}

// Search runs query against the hosted index.
func (a *AlgoliaIndex) Search(ctx context.Context, query string, limit int) (Results, error) {
	limit = clampLimit(limit)
	return race(ctx, func() (Results, error) {
		res, err := a.index.Search(query, opt.HitsPerPage(limit))
		if err != nil {
			return Results{}, fmt.Errorf("algolia search: %w", err)
		}

		hits := make([]Record, 0, len(res.Hits))
		if err := res.UnmarshalHits(&hits); err != nil {
			return Results{}, fmt.Errorf("decode hits: %w", err)
		}
		return Results{Hits: hits, Total: res.NbHits}, nil
	})
}

// race runs call in the background and returns early when ctx ends. The
// client has no context support, so an abandoned call finishes on its own.
func race[T any](ctx context.Context, call func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		v, err := call()
		done <- result{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}
