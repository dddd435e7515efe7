package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pixdedup/pkg/fingerprint"
	"pixdedup/pkg/source"
)

func member(path string, size int64) Candidate {
	return Candidate{
		Path:        path,
		Size:        size,
		Source:      source.Classify(path),
		Fingerprint: fingerprint.Fingerprint{Algorithm: fingerprint.Average, Hash: 7},
	}
}

func group(members ...Candidate) *Group {
	return &Group{Fingerprint: members[0].Fingerprint, Members: members}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		members    []Candidate
		wantDelete []string
	}{
		{
			name: "anchor deletes only smaller or equal reposts",
			members: []Candidate{
				member("d/100_p0.png", 100),
				member("d/"+repostA+".jpg", 80),
				member("d/"+repostB+".jpg", 120),
			},
			wantDelete: []string{"d/" + repostA + ".jpg"},
		},
		{
			name: "repost equal to anchor is deleted",
			members: []Candidate{
				member("d/100_p0.png", 100),
				member("d/"+repostA+".jpg", 100),
			},
			wantDelete: []string{"d/" + repostA + ".jpg"},
		},
		{
			name: "anchor is the largest trusted member",
			members: []Candidate{
				member("d/100_p0.png", 60),
				member("d/100_p1.png", 150),
				member("d/"+repostA+".jpg", 120),
			},
			wantDelete: []string{"d/" + repostA + ".jpg"},
		},
		{
			name: "unknown and trusted members survive an anchor",
			members: []Candidate{
				member("d/100_p0.png", 500),
				member("d/100_p1.png", 10),
				member("d/holiday.png", 20),
				member("d/"+repostA+".jpg", 30),
			},
			wantDelete: []string{"d/" + repostA + ".jpg"},
		},
		{
			name: "only trusted members deletes nothing",
			members: []Candidate{
				member("d/100_p0.png", 10),
				member("d/100_p0_master.png", 20),
			},
			wantDelete: nil,
		},
		{
			name: "no anchor keeps first largest",
			members: []Candidate{
				member("d/a.png", 50),
				member("d/b.png", 200),
				member("d/c.png", 200),
			},
			wantDelete: []string{"d/a.png", "d/c.png"},
		},
		{
			name: "no anchor applies to reposts too",
			members: []Candidate{
				member("d/"+repostA+".jpg", 300),
				member("d/"+repostB+".jpg", 400),
				member("d/other.gif", 100),
			},
			wantDelete: []string{"d/" + repostA + ".jpg", "d/other.gif"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Resolve(group(tt.members...))
			assert.Equal(t, tt.wantDelete, nilIfEmpty(paths(plan.Delete)))
			assert.Len(t, plan.Keep, len(tt.members)-len(tt.wantDelete))
		})
	}
}

func TestResolveSingleMemberKeepsEverything(t *testing.T) {
	plan := Resolve(group(member("d/a.png", 1)))
	assert.Empty(t, plan.Delete)
	assert.Len(t, plan.Keep, 1)
}

func TestResolveIsPure(t *testing.T) {
	g := group(member("d/a.png", 50), member("d/b.png", 200))
	first := Resolve(g)
	second := Resolve(g)
	assert.Equal(t, first, second)
	assert.Len(t, g.Members, 2)
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
