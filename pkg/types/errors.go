package types

import "errors"

// Domain errors shared between the extractor, partitioner and context manager.
// Only ErrEmptySnapshot and ErrInvalidBounds are fatal to a partitioning run;
// the rest are recovered by the component that observes them.
var (
	ErrEmptySnapshot          = errors.New("snapshot contains no files")
	ErrInvalidBounds          = errors.New("min section size exceeds max section size")
	ErrDuplicatePath          = errors.New("duplicate file path in snapshot")
	ErrUnknownNode            = errors.New("edge endpoint not present in snapshot")
	ErrClusteringUnavailable  = errors.New("community detection unavailable")
	ErrMalformedModelResponse = errors.New("malformed model grouping response")
	ErrCoverViolation         = errors.New("partition is not a strict cover of the snapshot")
	ErrBoundsViolation        = errors.New("section violates size bounds")
)
