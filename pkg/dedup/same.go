package dedup

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"pixdedup/internal/scan"
	"pixdedup/pkg/logger"
	"pixdedup/pkg/retry"
	"pixdedup/pkg/source"
)

// SameOptions configures a SameName run. Fs is required.
type SameOptions struct {
	Fs     afero.Fs
	Logger logger.Logger
	Audit  io.Writer

	StrictExtensions bool

	DryRun      bool
	OnFailure   FailurePolicy
	MaxAttempts int
	RetryDelay  time.Duration
	Backoff     retry.BackoffStrategy
}

// SameName removes images from a scan tree that already exist in a base
// tree under the same file name with the same size. No image is decoded.
//
// Both trees are walked recursively. When several base files share a name,
// the last one in path order is the one compared against.
type SameName struct {
	fs       afero.Fs
	logger   logger.Logger
	audit    *Audit
	strict   bool
	executor *Executor
}

// NewSameName creates a SameName runner from opts
func NewSameName(opts SameOptions) (*SameName, error) {
	if opts.Fs == nil {
		return nil, errors.New("file system is required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}

	audit := NewAudit(opts.Audit)
	return &SameName{
		fs:     opts.Fs,
		logger: opts.Logger,
		audit:  audit,
		strict: opts.StrictExtensions,
		executor: NewExecutor(opts.Fs, audit, opts.Logger, ExecutorOptions{
			Policy:      opts.OnFailure,
			DryRun:      opts.DryRun,
			MaxAttempts: opts.MaxAttempts,
			Backoff:     opts.Backoff,
			RetryDelay:  opts.RetryDelay,
		}),
	}, nil
}

// Run removes from scanDir every image matching a base image by name and
// size. A file is never matched against itself, so baseDir may contain or
// equal scanDir. Each match is reported as a two member group, base first.
func (s *SameName) Run(ctx context.Context, baseDir, scanDir string) (*Report, error) {
	start := time.Now()
	report := &Report{Root: scanDir, DryRun: s.executor.dryRun}
	defer func() { report.Duration = time.Since(start) }()

	log := s.logger.WithFields(map[string]interface{}{"base": baseDir, "root": scanDir})
	log.Info("Starting same-name run")

	if err := ctx.Err(); err != nil {
		return report, err
	}

	opts := scan.Options{Recursive: true, StrictExtensions: s.strict}
	base, err := scan.List(s.fs, baseDir, opts)
	if err != nil {
		return report, err
	}
	scanned, err := scan.List(s.fs, scanDir, opts)
	if err != nil {
		return report, err
	}
	report.Listed = len(scanned)

	originals := make(map[string]Candidate, len(base))
	for _, e := range base {
		originals[filepath.Base(e.Path)] = Candidate{Path: e.Path, Size: e.Size, Source: source.Classify(e.Path)}
	}

	for _, e := range scanned {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		orig, ok := originals[filepath.Base(e.Path)]
		if !ok {
			continue
		}
		report.Candidates++
		if orig.Size != e.Size || samePath(orig.Path, e.Path) {
			continue
		}

		dup := Candidate{Path: e.Path, Size: e.Size, Source: source.Classify(e.Path)}
		g := &Group{Members: []Candidate{orig, dup}}
		report.Groups++
		s.audit.Members(g)

		out, err := s.executor.Execute(ctx, Plan{Group: g, Keep: []Candidate{orig}, Delete: []Candidate{dup}})
		report.Removed = append(report.Removed, out.Removed...)
		report.Failed = append(report.Failed, out.Failed...)
		report.Reclaimed += out.Reclaimed
		if err != nil {
			log.WithError(err).Error("Same-name run aborted")
			return report, err
		}
	}

	log.InfoWithFields("Same-name run complete", map[string]interface{}{
		"compared":  report.Candidates,
		"matches":   report.Groups,
		"removed":   len(report.Removed),
		"failed":    len(report.Failed),
		"reclaimed": humanize.Bytes(uint64(report.Reclaimed)),
	})

	return report, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
