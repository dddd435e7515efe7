package dedup

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixdedup/internal/scan"
	errs "pixdedup/pkg/errors"
	"pixdedup/pkg/fingerprint"
	"pixdedup/pkg/logger"
	"pixdedup/pkg/source"
)

func TestIndexKeepsFirstSeenOrder(t *testing.T) {
	fp := func(h uint64) fingerprint.Fingerprint {
		return fingerprint.Fingerprint{Algorithm: fingerprint.Average, Hash: h}
	}

	idx := NewIndex()
	idx.Add(Candidate{Path: "a", Fingerprint: fp(2)})
	idx.Add(Candidate{Path: "b", Fingerprint: fp(1)})
	idx.Add(Candidate{Path: "c", Fingerprint: fp(2)})
	idx.Add(Candidate{Path: "d", Fingerprint: fp(3)})
	idx.Add(Candidate{Path: "e", Fingerprint: fp(1)})

	assert.Equal(t, 5, idx.Len())

	groups := idx.Groups()
	require.Len(t, groups, 3)
	assert.Equal(t, fp(2), groups[0].Fingerprint)
	assert.Equal(t, []string{"a", "c"}, groups[0].Paths())
	assert.Equal(t, []string{"b", "e"}, groups[1].Paths())
	assert.Equal(t, []string{"d"}, groups[2].Paths())

	dups := idx.Duplicates()
	require.Len(t, dups, 2)
	assert.Equal(t, fp(2), dups[0].Fingerprint)
	assert.Equal(t, fp(1), dups[1].Fingerprint)
}

func TestIndexerBuild(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeImage(t, fsys, "/in/1_p0.png", 9, 40)
	writeImage(t, fsys, "/in/"+repostA+".jpg", 9, 30)
	writeFile(t, fsys, "/in/broken.png", "garbage")

	entries, err := scan.List(fsys, "/in", scan.Options{})
	require.NoError(t, err)

	log := logger.NewTestLogger()
	idx, skipped, err := NewIndexer(fsys, contentFingerprinter{}, log).Build(context.Background(), entries)
	require.NoError(t, err)

	assert.Equal(t, 2, idx.Len())
	require.Len(t, idx.Duplicates(), 1)
	members := idx.Duplicates()[0].Members
	assert.Equal(t, source.TrustedPost, members[0].Source)
	assert.Equal(t, int64(40), members[0].Size)
	assert.Equal(t, source.Repost, members[1].Source)

	require.Len(t, skipped, 1)
	assert.Equal(t, "/in/broken.png", skipped[0].Path)
	assert.ErrorIs(t, skipped[0].Err, errs.ErrDecode)

	warnings := log.GetMessagesByLevel("WARN")
	require.Len(t, warnings, 1)
	assert.Equal(t, "/in/broken.png", warnings[0].Fields["path"])
	assert.Error(t, warnings[0].Error)
}

func TestIndexerBuildStopsOnCancel(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeImage(t, fsys, "/in/a.png", 1, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewIndexer(fsys, contentFingerprinter{}, nil).Build(ctx, []scan.Entry{{Path: "/in/a.png", Size: 10}})
	assert.ErrorIs(t, err, context.Canceled)
}
