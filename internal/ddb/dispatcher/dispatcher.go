package dispatcher

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/interfaces"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/handler"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/middleware"
	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

// JobDispatcher fans the purge out to one pipeline per (account, table)
// pair. Units share nothing but the external context; one unit's failure
// never cancels its siblings.
type JobDispatcher struct {
	stores     map[string]interfaces.TableStore
	middleware *middleware.Middleware
}

// NewJobDispatcher takes one resolved store per account name.
func NewJobDispatcher(stores map[string]interfaces.TableStore, mw *middleware.Middleware) *JobDispatcher {
	return &JobDispatcher{
		stores:     stores,
		middleware: mw,
	}
}

type unit struct {
	account string
	table   string
	runner  interfaces.PurgeRunner
}

// Run starts every pipeline, waits for all of them, and sums their tallies.
// Partial counts from failed units are included; their errors come back
// combined alongside the aggregate.
func (d *JobDispatcher) Run(ctx context.Context, job models.PurgeJob) (models.DeleteResult, error) {
	units := make([]unit, 0, len(job.Accounts)*len(job.Tables))
	for _, account := range job.Accounts {
		store, ok := d.stores[account.Name]
		if !ok {
			return models.DeleteResult{}, fmt.Errorf("no store configured for account %s", account.Name)
		}
		runner := handler.NewTablePurgeHandler(account.Name, store, d.middleware, job)
		for _, table := range job.Tables {
			units = append(units, unit{account: account.Name, table: table, runner: runner})
		}
	}

	results := make([]models.DeleteResult, len(units))
	errs := make([]error, len(units))

	g := new(errgroup.Group)
	if job.MaxParallel > 0 {
		g.SetLimit(job.MaxParallel)
	}
	for i, u := range units {
		i, u := i, u
		g.Go(func() error {
			result, err := u.runner.Run(ctx, u.table)
			results[i] = result
			if err != nil {
				errs[i] = fmt.Errorf("purge of %s/%s: %w", u.account, u.table, err)
				d.middleware.LogError("Pipeline unit failed", errs[i])
			}
			return nil
		})
	}
	// Unit errors are collected, not returned, so Wait never fails early.
	_ = g.Wait()

	var total models.DeleteResult
	for i := range results {
		total.Add(results[i])
	}
	return total, multierr.Combine(errs...)
}
