package fetcher

import (
	"context"
	"fmt"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/interfaces"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

// PageFetcher walks a table's key-projection scan one page at a time. It is
// pull-based: a page is fetched only once the previous one is fully consumed,
// so the remote query never runs ahead of the pipeline.
//
// A fetcher is single-use; once exhausted it stays exhausted.
type PageFetcher struct {
	store    interfaces.TableStore
	table    string
	pageSize int32

	// maxPages caps how many pages are fetched; 0 means unlimited.
	maxPages int

	page  []models.EntityRef
	index int
	token models.ContinuationToken
	pages int
	done  bool
}

func NewPageFetcher(store interfaces.TableStore, table string, pageSize int32, maxPages int) *PageFetcher {
	return &PageFetcher{
		store:    store,
		table:    table,
		pageSize: pageSize,
		maxPages: maxPages,
	}
}

// Next returns the next entity reference. The second return is false once the
// table is exhausted. A query error ends the sequence permanently.
func (f *PageFetcher) Next(ctx context.Context) (models.EntityRef, bool, error) {
	for f.index >= len(f.page) {
		if f.done {
			return models.EntityRef{}, false, nil
		}
		if err := f.fetchPage(ctx); err != nil {
			f.done = true
			return models.EntityRef{}, false, err
		}
	}

	ref := f.page[f.index]
	f.index++
	return ref, true, nil
}

func (f *PageFetcher) fetchPage(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.maxPages > 0 && f.pages >= f.maxPages {
		f.done = true
		f.page = nil
		f.index = 0
		return nil
	}

	page, err := f.store.FetchPage(ctx, f.table, f.token, f.pageSize)
	if err != nil {
		return fmt.Errorf("failed to iterate over next page: %w", err)
	}
	f.pages++
	f.page = page.Items
	f.index = 0
	f.token = page.NextToken
	if page.NextToken == nil {
		f.done = true
	}
	return nil
}

// Pages reports how many pages have been fetched so far.
func (f *PageFetcher) Pages() int {
	return f.pages
}
