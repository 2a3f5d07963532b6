package contextmgr

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"repodoc/internal/docgen"
	"repodoc/pkg/types"
)

// State tracks a section through a documentation run
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Defaults for run options
const (
	DefaultMaxSummaryLen  = 10000
	DefaultConcurrency    = 4
	DefaultSectionTimeout = 5 * time.Minute
)

// Options configure a documentation run
type Options struct {
	// Query is the question asked about every section. Empty selects a
	// general analysis prompt.
	Query string
	// UseContext threads a summary of earlier sections into each prompt.
	// When false, sections are documented concurrently instead.
	UseContext bool
	// MaxSummaryLen bounds the carried summary in bytes; older section
	// summaries are dropped first
	MaxSummaryLen int
	// Concurrency limits in-flight model calls when UseContext is false
	Concurrency int
	// SectionTimeout bounds each model call
	SectionTimeout time.Duration
}

func (o *Options) defaults() {
	if o.MaxSummaryLen <= 0 {
		o.MaxSummaryLen = DefaultMaxSummaryLen
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.SectionTimeout <= 0 {
		o.SectionTimeout = DefaultSectionTimeout
	}
}

// SectionResult is the outcome of documenting one section
type SectionResult struct {
	Section  types.Section
	State    State
	Analysis string
	Err      error
	Elapsed  time.Duration
}

// Run is a completed documentation pass over a partition
type Run struct {
	ID      string
	Method  string
	Results []SectionResult
	// Summary is the final accumulated context, empty for runs without
	// context threading
	Summary  string
	Started  time.Time
	Finished time.Time
}

// Completed returns the number of sections documented successfully
func (r *Run) Completed() int {
	n := 0
	for _, res := range r.Results {
		if res.State == StateCompleted {
			n++
		}
	}
	return n
}

// Manager documents every section of a partition, carrying discoveries
// from earlier sections into later prompts when context is enabled. A
// section whose model call fails is recorded as failed and contributes
// nothing to the carried summary; the run continues.
type Manager struct {
	gen  docgen.Generator
	opts Options
}

// New returns a manager documenting sections through gen
func New(gen docgen.Generator, opts Options) *Manager {
	opts.defaults()
	return &Manager{gen: gen, opts: opts}
}

// DocumentAll documents every section of the partition, in partition
// order when context is threaded and concurrently otherwise. Results are
// always in partition order. The only errors returned are an empty
// partition and context cancellation; per-section failures live in the
// results.
func (m *Manager) DocumentAll(ctx context.Context, p *types.Partition) (*Run, error) {
	if p == nil || len(p.Sections) == 0 {
		return nil, fmt.Errorf("%w: no sections to document", types.ErrEmptySnapshot)
	}

	run := &Run{
		ID:      uuid.NewString(),
		Method:  p.Method,
		Started: time.Now(),
	}
	var err error
	if m.opts.UseContext {
		err = m.documentSequential(ctx, p.Sections, run)
	} else {
		err = m.documentBatch(ctx, p.Sections, run)
	}
	run.Finished = time.Now()
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (m *Manager) documentSequential(ctx context.Context, sections []types.Section, run *Run) error {
	summary := ""
	for _, sec := range sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := m.documentSection(ctx, sec, summary)
		run.Results = append(run.Results, res)
		if res.State != StateCompleted {
			log.Printf("section %q failed, continuing without its summary: %v", sec.Name, res.Err)
			continue
		}
		summary = appendSummary(summary, sec.Name, res.Analysis, m.opts.MaxSummaryLen)
	}
	run.Summary = summary
	return nil
}

// documentSection runs one model call under the per-section timeout
func (m *Manager) documentSection(ctx context.Context, sec types.Section, summary string) SectionResult {
	callCtx, cancel := context.WithTimeout(ctx, m.opts.SectionTimeout)
	defer cancel()

	start := time.Now()
	analysis, err := m.gen.Generate(callCtx, docgen.Request{
		Prompt:  sectionPrompt(sec, m.opts.Query),
		Context: summary,
	})
	res := SectionResult{Section: sec, Elapsed: time.Since(start)}
	if err != nil {
		res.State = StateFailed
		res.Err = err
		return res
	}
	res.State = StateCompleted
	res.Analysis = analysis
	return res
}

// sectionPrompt renders a section's files and the query into the prompt
// sent to the model
func sectionPrompt(sec types.Section, query string) string {
	var files strings.Builder
	for _, f := range sec.Files {
		fmt.Fprintf(&files, "\n\n### File: %s\n```\n%s\n```\n", f.Path, f.Content)
	}
	if query == "" {
		query = fmt.Sprintf("Analyze this section of code ('%s'). Explain its purpose, key components, and how it fits into the larger codebase.", sec.Name)
	}
	return fmt.Sprintf(`I'm analyzing the '%s' section of a codebase which contains these files:
%s
%s

Provide a detailed but concise analysis focusing on:
1. The purpose and functionality of this section
2. Key classes, functions, and design patterns
3. How this fits into a larger codebase
4. Any notable implementation details
`, sec.Name, files.String(), query)
}
