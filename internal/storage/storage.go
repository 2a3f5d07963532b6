package storage

import (
	"context"
	"errors"
	"time"

	"repodoc/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// Snapshot is a cached repository snapshot identity
type Snapshot struct {
	ID        int64
	RootPath  string
	Hash      string
	FileCount int
	CreatedAt time.Time
}

// PartitionKey identifies a cached partition of a snapshot
type PartitionKey struct {
	SnapshotID int64
	Method     string
	MinSize    int
	MaxSize    int
}

// Analysis is one section's documentation output within a run
type Analysis struct {
	ID          int64
	RunID       string
	PartitionID int64
	SectionName string
	State       string
	Analysis    string
	Error       string
	CreatedAt   time.Time
}

// Store persists snapshots, partitions, and documentation runs so repeat
// invocations over an unchanged repository skip recomputation
type Store interface {
	// Snapshot operations
	CreateSnapshot(ctx context.Context, snap *Snapshot) error
	GetSnapshot(ctx context.Context, rootPath, hash string) (*Snapshot, error)

	// Partition operations
	SavePartition(ctx context.Context, key PartitionKey, p *types.Partition) (int64, error)
	GetPartition(ctx context.Context, key PartitionKey) (int64, *types.Partition, error)
	DeletePartitionsBySnapshot(ctx context.Context, snapshotID int64) error

	// Analysis operations
	SaveAnalysis(ctx context.Context, a *Analysis) error
	ListAnalysesByRun(ctx context.Context, runID string) ([]*Analysis, error)
	ListAnalysesByPartition(ctx context.Context, partitionID int64) ([]*Analysis, error)

	// Database operations
	Close() error
}
