package interfaces

import (
	"context"

	"github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"
)

// PurgeRunner executes the pipeline for one (account, table) pair and
// reports its tally. Partial counts survive a mid-run error.
type PurgeRunner interface {
	Run(ctx context.Context, table string) (models.DeleteResult, error)
}
