package handler

import (
	"context"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/interfaces"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/accumulator"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/constants"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/deleter"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/fetcher"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/middleware"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

// TablePurgeHandler runs the fetch → accumulate → delete pipeline for one
// account's tables, one table per call.
type TablePurgeHandler struct {
	account    string
	store      interfaces.TableStore
	middleware *middleware.Middleware

	pageSize  int32
	cacheSize int
	maxPages  int
}

func NewTablePurgeHandler(account string, store interfaces.TableStore, mw *middleware.Middleware, job models.PurgeJob) *TablePurgeHandler {
	return &TablePurgeHandler{
		account:    account,
		store:      store,
		middleware: mw,
		pageSize:   job.PageSize,
		cacheSize:  job.CacheSize,
		maxPages:   job.MaxPages,
	}
}

// Run purges one table. An unresolvable table is skipped with a warning and
// an empty result; it does not fail the run.
func (h *TablePurgeHandler) Run(ctx context.Context, table string) (models.DeleteResult, error) {
	if err := h.store.ResolveTable(ctx, table); err != nil {
		h.middleware.LogWarn(ctx, "Skipping unresolvable table",
			constants.LogAccountKey, h.account,
			constants.LogTableKey, table,
			constants.LogErrorKey, err.Error())
		return models.DeleteResult{}, nil
	}

	h.middleware.LogHandler(ctx, "Purging table",
		constants.LogAccountKey, h.account,
		constants.LogTableKey, table,
		"page-size", h.pageSize,
		"cache-size", h.cacheSize)

	pages := fetcher.NewPageFetcher(h.store, table, h.pageSize, h.maxPages)
	batches := accumulator.NewBatchAccumulator(pages, constants.TransactWriteItemSize, h.cacheSize)
	del := deleter.NewBatchDeleter(h.store, func(progress models.DeleteResult) {
		h.middleware.LogHandler(ctx, "Purge progress",
			constants.LogAccountKey, h.account,
			constants.LogTableKey, table,
			"total", progress.TotalCount,
			"errors", progress.ErrorCount)
	})

	return del.Execute(ctx, batches)
}
