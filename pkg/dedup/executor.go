package dedup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	errs "pixdedup/pkg/errors"
	"pixdedup/pkg/logger"
	"pixdedup/pkg/retry"
)

// FailurePolicy decides what a failed removal does to the run
type FailurePolicy string

const (
	// FailFast aborts the run on the first failed removal
	FailFast FailurePolicy = "fail"
	// SkipFailed logs the failure and moves on
	SkipFailed FailurePolicy = "skip"
	// RetryFailed retries with backoff, then aborts like FailFast
	RetryFailed FailurePolicy = "retry"
)

// ParseFailurePolicy maps a configuration value to a FailurePolicy
func ParseFailurePolicy(name string) (FailurePolicy, error) {
	switch p := FailurePolicy(strings.ToLower(name)); p {
	case FailFast, SkipFailed, RetryFailed:
		return p, nil
	case "":
		return FailFast, nil
	default:
		return "", fmt.Errorf("unknown deletion failure policy %q", name)
	}
}

// Outcome is what the executor did with one plan
type Outcome struct {
	Removed   []Candidate
	Failed    []Failure
	Reclaimed int64
}

// Executor carries out the deletions of a Plan
type Executor struct {
	fs          afero.Fs
	audit       *Audit
	logger      logger.Logger
	policy      FailurePolicy
	dryRun      bool
	maxAttempts int
	backoff     retry.BackoffStrategy
}

// ExecutorOptions configures an Executor
type ExecutorOptions struct {
	Policy      FailurePolicy
	DryRun      bool
	MaxAttempts int
	// Backoff defaults to exponential backoff starting at RetryDelay
	Backoff    retry.BackoffStrategy
	RetryDelay time.Duration
}

// NewExecutor creates an Executor removing files from fsys
func NewExecutor(fsys afero.Fs, audit *Audit, log logger.Logger, opts ExecutorOptions) *Executor {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if audit == nil {
		audit = NewAudit(nil)
	}
	if opts.Policy == "" {
		opts.Policy = FailFast
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.Backoff == nil {
		b := retry.DefaultExponentialBackoff()
		if opts.RetryDelay > 0 {
			b.BaseDelay = opts.RetryDelay
		}
		opts.Backoff = b
	}

	return &Executor{
		fs:          fsys,
		audit:       audit,
		logger:      log,
		policy:      opts.Policy,
		dryRun:      opts.DryRun,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
	}
}

// Execute removes every candidate in plan.Delete. Under FailFast and
// RetryFailed the first unrecoverable failure is returned together with the
// outcome so far; files removed before it stay removed.
func (e *Executor) Execute(ctx context.Context, plan Plan) (Outcome, error) {
	var out Outcome

	for _, c := range plan.Delete {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		if e.dryRun {
			e.audit.WouldRemove(c.Path)
			out.Removed = append(out.Removed, c)
			out.Reclaimed += c.Size
			continue
		}

		if err := e.remove(ctx, c.Path); err != nil {
			removeErr := errs.New(errs.ErrorTypeRemove, c.Path, err)
			if e.policy == SkipFailed {
				e.logger.WithError(err).WithField("path", c.Path).Warn("Failed to remove file, skipping")
				out.Failed = append(out.Failed, Failure{Candidate: c, Err: removeErr})
				continue
			}
			return out, removeErr
		}

		e.audit.Removed(c.Path)
		e.logger.DebugWithFields("Removed file", map[string]interface{}{
			"path": c.Path,
			"size": humanize.Bytes(uint64(c.Size)),
		})
		out.Removed = append(out.Removed, c)
		out.Reclaimed += c.Size
	}

	return out, nil
}

func (e *Executor) remove(ctx context.Context, path string) error {
	if e.policy != RetryFailed {
		return e.fs.Remove(path)
	}

	return retry.Do(func() error {
		return e.fs.Remove(path)
	}, &retry.Config{
		MaxAttempts: e.maxAttempts,
		Backoff:     e.backoff,
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      e.logger.WithField("path", path),
	})
}
