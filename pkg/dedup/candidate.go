package dedup

import (
	"pixdedup/pkg/fingerprint"
	"pixdedup/pkg/source"
)

// Candidate is one file considered for deduplication.
type Candidate struct {
	// Path is the listed location of the file; unique within a run.
	Path string

	// Size is the size on disk at listing time, used as the fidelity proxy.
	Size int64

	// Source is derived from the file name once and never changes.
	Source source.Tag

	// Fingerprint is the perceptual hash of the decoded image.
	Fingerprint fingerprint.Fingerprint
}

// Group is every candidate sharing one fingerprint, in path order.
type Group struct {
	Fingerprint fingerprint.Fingerprint
	Members     []Candidate
}

// Paths returns the member paths in group order
func (g *Group) Paths() []string {
	paths := make([]string, len(g.Members))
	for i := range g.Members {
		paths[i] = g.Members[i].Path
	}
	return paths
}

// Skipped is a listed file that could not be fingerprinted
type Skipped struct {
	Path string
	Err  error
}

// Failure is a planned removal that did not happen
type Failure struct {
	Candidate Candidate
	Err       error
}
