package models

// EntityRef identifies one row scheduled for deletion. Produced by the page
// fetcher, consumed exactly once by the accumulator.
type EntityRef struct {
	Table        string
	PartitionKey string
	RowKey       string
}

// BatchKey groups entity refs that are legal inside one delete transaction:
// same table, same partition.
type BatchKey struct {
	Table        string
	PartitionKey string
}

func (r EntityRef) BatchKey() BatchKey {
	return BatchKey{Table: r.Table, PartitionKey: r.PartitionKey}
}

// PendingBatch is a partially filled delete transaction. The accumulator
// owns it until emission; after that ownership moves to the deleter.
type PendingBatch struct {
	Key       BatchKey
	Ops       []EntityRef
	Remaining int
}

func NewPendingBatch(key BatchKey, batchSize int) *PendingBatch {
	return &PendingBatch{
		Key:       key,
		Ops:       make([]EntityRef, 0, batchSize),
		Remaining: batchSize,
	}
}

// Append records one delete operation and consumes one unit of capacity.
func (b *PendingBatch) Append(ref EntityRef) {
	b.Ops = append(b.Ops, ref)
	b.Remaining--
}

func (b *PendingBatch) Full() bool {
	return b.Remaining <= 0
}

// ContinuationToken is the opaque paging cursor. For DynamoDB it carries the
// LastEvaluatedKey attribute values; nil means start (or no further pages).
type ContinuationToken map[string]string

// Page is one projection-scan result page.
type Page struct {
	Items     []EntityRef
	NextToken ContinuationToken
}

// OperationResult is the per-operation outcome of an executed batch.
type OperationResult struct {
	Ref    EntityRef
	Status string
}

// DeleteResult is the per-pipeline tally; the dispatcher sums them.
type DeleteResult struct {
	TotalCount int
	ErrorCount int
}

// Add folds another result into this one.
func (r *DeleteResult) Add(other DeleteResult) {
	r.TotalCount += other.TotalCount
	r.ErrorCount += other.ErrorCount
}

// Account is one client configuration a purge runs against.
type Account struct {
	Name        string `yaml:"name"`
	Profile     string `yaml:"profile"`
	Region      string `yaml:"region"`
	EndpointUrl string `yaml:"endpointUrl"`
}

// PurgeJob describes one full run: every (account, table) pair becomes an
// independent pipeline.
type PurgeJob struct {
	Accounts    []Account
	Tables      []string
	PageSize    int32
	CacheSize   int
	MaxParallel int

	// MaxPages caps pages fetched per table; 0 means unlimited. Used by
	// tests as a circuit breaker.
	MaxPages int
}

// TableKeySchema captures a table's hash and optional range key attributes.
type TableKeySchema struct {
	TableName    string
	PartitionKey string
	RangeKey     string
}

type RequestId string
