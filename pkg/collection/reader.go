/*
 Copyright 2023 NanaFS Authors.

 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package collection

import (
	"context"
	"errors"
	"iter"

	"go.uber.org/zap"

	"github.com/basenana/graphdump/pkg/types"
	"github.com/basenana/graphdump/utils"
	"github.com/basenana/graphdump/utils/logger"
)

// ErrDone is returned by Next when the collection has no more items.
var ErrDone = errors.New("no more items in collection")

// Fetcher requests url and decodes the JSON body into into.
type Fetcher interface {
	GetJSON(ctx context.Context, url string, into any) error
}

// Reader walks a cursor paginated collection as one flat sequence.
// Pages are only requested when the cursor crosses the end of what was fetched so far.
// A Reader is not safe for concurrent use.
type Reader[T any] struct {
	fetcher   Fetcher
	sourceURL string
	page      *types.Collection[T]
	items     []T
	cursor    int
	exhausted bool
	logger    *zap.SugaredLogger
}

func NewReader[T any](fetcher Fetcher) *Reader[T] {
	return &Reader[T]{fetcher: fetcher, logger: logger.NewLogger("collection")}
}

// Fetch requests the first page of url, it replaces the current page and
// appends the page items to the accumulated items.
func (r *Reader[T]) Fetch(ctx context.Context, url string) (int, error) {
	n, err := r.fetch(ctx, url)
	if err != nil {
		return 0, err
	}
	r.sourceURL = url
	return n, nil
}

// FetchNext follows the next link of the current page. Before any Fetch, or
// when the current page is the last one, it returns 0 without a request.
func (r *Reader[T]) FetchNext(ctx context.Context) (int, error) {
	if !r.HasNext() {
		return 0, nil
	}
	return r.fetch(ctx, r.page.NextLink)
}

func (r *Reader[T]) HasNext() bool {
	return r.page.HasNextLink()
}

// Next returns the next item or ErrDone. Crossing the end of the accumulated items
// triggers exactly one FetchNext. An empty page ends the sequence, whatever its next link says,
// items fetched before it are still returned.
func (r *Reader[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if r.page == nil {
		return zero, ErrDone
	}
	if r.cursor == len(r.items) {
		if r.exhausted || !r.HasNext() {
			return zero, ErrDone
		}
		n, err := r.FetchNext(ctx)
		if err != nil {
			return zero, err
		}
		if n == 0 {
			return zero, ErrDone
		}
	}
	item := r.items[r.cursor]
	r.cursor++
	return item, nil
}

// All yields the remaining items, a failed page fetch is yielded once and ends the sequence.
func (r *Reader[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, err := r.Next(ctx)
			if errors.Is(err, ErrDone) {
				return
			}
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Drain reads the remaining items, fetching every page left.
func (r *Reader[T]) Drain(ctx context.Context) ([]T, error) {
	result := make([]T, 0)
	for item, err := range r.All(ctx) {
		if err != nil {
			return result, err
		}
		result = append(result, item)
	}
	return result, nil
}

// Items returns every item fetched so far, read or not.
func (r *Reader[T]) Items() []T {
	return r.items
}

func (r *Reader[T]) SourceURL() string {
	return r.sourceURL
}

func (r *Reader[T]) fetch(ctx context.Context, url string) (int, error) {
	defer utils.TraceRegion(ctx, "collection.fetch")()
	page := &types.Collection[T]{}
	if err := r.fetcher.GetJSON(ctx, url, page); err != nil {
		return 0, err
	}
	r.page = page
	r.exhausted = len(page.Value) == 0
	r.items = append(r.items, page.Value...)
	r.logger.Debugw("page fetched", "url", url, "items", len(page.Value), "hasNext", page.HasNextLink())
	return len(page.Value), nil
}

// List fetches url and drains every page of it.
func List[T any](ctx context.Context, fetcher Fetcher, url string) ([]T, error) {
	r := NewReader[T](fetcher)
	if _, err := r.Fetch(ctx, url); err != nil {
		return nil, err
	}
	return r.Drain(ctx)
}
