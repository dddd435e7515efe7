package dedup

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"pixdedup/internal/scan"
	"pixdedup/pkg/fingerprint"
	"pixdedup/pkg/logger"
	"pixdedup/pkg/source"
)

// Index maps fingerprints to the groups of candidates sharing them. Groups
// keep the order in which their fingerprint was first seen.
type Index struct {
	groups map[fingerprint.Fingerprint]*Group
	order  []fingerprint.Fingerprint
	size   int
}

// NewIndex returns an empty index
func NewIndex() *Index {
	return &Index{groups: make(map[fingerprint.Fingerprint]*Group)}
}

// Add appends c to the group for its fingerprint
func (idx *Index) Add(c Candidate) {
	g, ok := idx.groups[c.Fingerprint]
	if !ok {
		g = &Group{Fingerprint: c.Fingerprint}
		idx.groups[c.Fingerprint] = g
		idx.order = append(idx.order, c.Fingerprint)
	}
	g.Members = append(g.Members, c)
	idx.size++
}

// Len returns the number of indexed candidates
func (idx *Index) Len() int {
	return idx.size
}

// Groups returns every group, singletons included
func (idx *Index) Groups() []*Group {
	groups := make([]*Group, len(idx.order))
	for i, fp := range idx.order {
		groups[i] = idx.groups[fp]
	}
	return groups
}

// Duplicates returns the groups with two or more members
func (idx *Index) Duplicates() []*Group {
	var groups []*Group
	for _, fp := range idx.order {
		if g := idx.groups[fp]; len(g.Members) > 1 {
			groups = append(groups, g)
		}
	}
	return groups
}

// Indexer fingerprints listed files and builds an Index from them
type Indexer struct {
	fs            afero.Fs
	fingerprinter fingerprint.Fingerprinter
	logger        logger.Logger
}

// NewIndexer creates an Indexer reading files from fsys
func NewIndexer(fsys afero.Fs, fp fingerprint.Fingerprinter, log logger.Logger) *Indexer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Indexer{fs: fsys, fingerprinter: fp, logger: log}
}

// Build fingerprints entries in the order given and groups them. Files that
// cannot be opened or decoded are logged and returned as skipped; they never
// stop the build. Only context cancellation does.
func (x *Indexer) Build(ctx context.Context, entries []scan.Entry) (*Index, []Skipped, error) {
	idx := NewIndex()
	var skipped []Skipped

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return idx, skipped, err
		}

		fp, err := x.fingerprint(entry.Path)
		if err != nil {
			x.logger.WithError(err).WithField("path", entry.Path).Warn("Problem fingerprinting image, skipping")
			skipped = append(skipped, Skipped{Path: entry.Path, Err: err})
			continue
		}

		idx.Add(Candidate{
			Path:        entry.Path,
			Size:        entry.Size,
			Source:      source.Classify(entry.Path),
			Fingerprint: fp,
		})
	}

	return idx, skipped, nil
}

func (x *Indexer) fingerprint(path string) (fp fingerprint.Fingerprint, err error) {
	f, err := x.fs.Open(path)
	if err != nil {
		return fp, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	return x.fingerprinter.Fingerprint(f)
}
