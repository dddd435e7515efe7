package dedup

import "pixdedup/pkg/source"

// Plan is the resolution of one group: which members stay and which go.
type Plan struct {
	Group  *Group
	Keep   []Candidate
	Delete []Candidate
}

// Resolve decides which members of g to delete.
//
// When the group has trusted-platform members, the largest of them is the
// anchor and only re-post members no larger than the anchor are deleted;
// everything else is left alone. Without an anchor, the single largest member
// is kept (the earliest in path order on ties) and every other member is
// deleted.
//
// Groups with fewer than two members resolve to keeping everything.
func Resolve(g *Group) Plan {
	plan := Plan{Group: g}
	if len(g.Members) < 2 {
		plan.Keep = append(plan.Keep, g.Members...)
		return plan
	}

	if anchor, ok := anchorSize(g.Members); ok {
		for _, m := range g.Members {
			if m.Source != source.Repost || m.Size > anchor {
				plan.Keep = append(plan.Keep, m)
				continue
			}
			plan.Delete = append(plan.Delete, m)
		}
		return plan
	}

	largest := 0
	for i := range g.Members {
		if g.Members[i].Size > g.Members[largest].Size {
			largest = i
		}
	}
	for i, m := range g.Members {
		if i == largest {
			plan.Keep = append(plan.Keep, m)
		} else {
			plan.Delete = append(plan.Delete, m)
		}
	}
	return plan
}

// anchorSize returns the largest size among trusted members
func anchorSize(members []Candidate) (int64, bool) {
	var anchor int64
	found := false
	for _, m := range members {
		if !m.Source.Trusted() {
			continue
		}
		if !found || m.Size > anchor {
			anchor = m.Size
			found = true
		}
	}
	return anchor, found
}
