package dedup

import (
	"fmt"
	"io"
	"strings"
)

// Audit writes the line-oriented record of a run: one line listing the
// members of each duplicate group and one line per deletion.
type Audit struct {
	w io.Writer
}

// NewAudit creates an Audit writing to w. A nil writer discards everything.
func NewAudit(w io.Writer) *Audit {
	if w == nil {
		w = io.Discard
	}
	return &Audit{w: w}
}

// Members records the member paths of a duplicate group
func (a *Audit) Members(g *Group) {
	a.println(strings.Join(g.Paths(), " "))
}

// Removed records a completed deletion
func (a *Audit) Removed(path string) {
	a.println("removed " + path)
}

// WouldRemove records a deletion skipped because of a dry run
func (a *Audit) WouldRemove(path string) {
	a.println("would remove " + path)
}

func (a *Audit) println(line string) {
	fmt.Fprintln(a.w, line)
}
