package constants

import "github.com/sanjiv-madhavan/dynamodb-table-purge/internal/ddb/models"

const (
	CliRequestId    models.RequestId = "request-id"
	LogRequestIdKey                  = "request-id"
	LogErrorKey                      = "error"
	LogAccountKey                    = "account"
	LogTableKey                      = "table"
)

// TransactWriteItemSize is the DynamoDB per-transaction operation limit and
// therefore the cap on every pending batch.
const TransactWriteItemSize = 100

const (
	DefaultPageSize  = 10000
	DefaultCacheSize = 50000

	// ProgressInterval is how many executed batches pass between two
	// progress observations from the deleter.
	ProgressInterval = 25
)

// OpStatusOK is the per-operation status recorded for a delete that the
// store committed. Anything else counts toward the error tally.
const OpStatusOK = "OK"

const (
	ExitOK = 0
	// ExitClientUnavailable is returned when no DynamoDB client could be
	// built before any work started.
	ExitClientUnavailable = 2
)
