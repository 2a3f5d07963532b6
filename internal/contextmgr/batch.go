package contextmgr

import (
	"context"

	"golang.org/x/sync/errgroup"

	"repodoc/pkg/types"
)

// documentBatch documents sections concurrently when no cross-section
// context is carried. Results land in partition order regardless of
// completion order.
func (m *Manager) documentBatch(ctx context.Context, sections []types.Section, run *Run) error {
	results := make([]SectionResult, len(sections))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Concurrency)
	for i, sec := range sections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.documentSection(gctx, sec, "")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	run.Results = results
	return nil
}
