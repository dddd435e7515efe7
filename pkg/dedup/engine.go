package dedup

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"pixdedup/internal/scan"
	"pixdedup/pkg/fingerprint"
	"pixdedup/pkg/logger"
	"pixdedup/pkg/retry"
)

// Options configures an Engine. Fs and Fingerprinter are required.
type Options struct {
	Fs            afero.Fs
	Fingerprinter fingerprint.Fingerprinter
	Logger        logger.Logger

	// Audit receives the group and removal lines; nil discards them
	Audit io.Writer

	Scan scan.Options

	DryRun      bool
	OnFailure   FailurePolicy
	MaxAttempts int
	RetryDelay  time.Duration
	Backoff     retry.BackoffStrategy
}

// Report summarises one run
type Report struct {
	Root       string
	DryRun     bool
	Listed     int
	Candidates int
	Groups     int
	Skipped    []Skipped
	// Removed holds what was deleted, or what would have been in a dry run
	Removed   []Candidate
	Failed    []Failure
	Reclaimed int64
	Duration  time.Duration
}

// Engine runs listing, fingerprinting, grouping, resolution and deletion
// over one directory.
type Engine struct {
	fs       afero.Fs
	logger   logger.Logger
	audit    *Audit
	scan     scan.Options
	indexer  *Indexer
	executor *Executor
}

// New creates an Engine from opts
func New(opts Options) (*Engine, error) {
	if opts.Fs == nil {
		return nil, errors.New("file system is required")
	}
	if opts.Fingerprinter == nil {
		return nil, errors.New("fingerprinter is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	if opts.OnFailure == "" {
		opts.OnFailure = FailFast
	}

	audit := NewAudit(opts.Audit)
	return &Engine{
		fs:      opts.Fs,
		logger:  opts.Logger,
		audit:   audit,
		scan:    opts.Scan,
		indexer: NewIndexer(opts.Fs, opts.Fingerprinter, opts.Logger),
		executor: NewExecutor(opts.Fs, audit, opts.Logger, ExecutorOptions{
			Policy:      opts.OnFailure,
			DryRun:      opts.DryRun,
			MaxAttempts: opts.MaxAttempts,
			Backoff:     opts.Backoff,
			RetryDelay:  opts.RetryDelay,
		}),
	}, nil
}

// Run deduplicates root. The returned report is never nil and reflects
// everything done up to the point of any error.
func (e *Engine) Run(ctx context.Context, root string) (*Report, error) {
	start := time.Now()
	report := &Report{Root: root, DryRun: e.executor.dryRun}
	defer func() { report.Duration = time.Since(start) }()

	log := e.logger.WithField("root", root)
	log.InfoWithFields("Starting dedup run", map[string]interface{}{
		"recursive": e.scan.Recursive,
		"dry_run":   report.DryRun,
	})

	if err := ctx.Err(); err != nil {
		return report, err
	}

	entries, err := scan.List(e.fs, root, e.scan)
	if err != nil {
		return report, err
	}
	report.Listed = len(entries)
	log.DebugWithFields("Listed candidate files", map[string]interface{}{"count": len(entries)})

	idx, skipped, err := e.indexer.Build(ctx, entries)
	report.Skipped = skipped
	if err != nil {
		return report, err
	}
	report.Candidates = idx.Len()

	for _, g := range idx.Duplicates() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Groups++

		e.audit.Members(g)
		plan := Resolve(g)
		for _, c := range plan.Delete {
			log.DebugWithFields("Marked for removal", map[string]interface{}{
				"path":        c.Path,
				"source":      c.Source.String(),
				"size":        humanize.Bytes(uint64(c.Size)),
				"fingerprint": g.Fingerprint.String(),
			})
		}

		out, err := e.executor.Execute(ctx, plan)
		report.Removed = append(report.Removed, out.Removed...)
		report.Failed = append(report.Failed, out.Failed...)
		report.Reclaimed += out.Reclaimed
		if err != nil {
			log.WithError(err).Error("Dedup run aborted")
			return report, err
		}
	}

	log.InfoWithFields("Dedup run complete", map[string]interface{}{
		"candidates": report.Candidates,
		"groups":     report.Groups,
		"skipped":    len(report.Skipped),
		"removed":    len(report.Removed),
		"failed":     len(report.Failed),
		"reclaimed":  humanize.Bytes(uint64(report.Reclaimed)),
	})

	return report, nil
}
