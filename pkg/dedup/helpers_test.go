package dedup

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	errs "pixdedup/pkg/errors"
	"pixdedup/pkg/fingerprint"
)

// contentFingerprinter reads the hash straight out of files written by
// writeImage, so tests control grouping without encoding real images.
type contentFingerprinter struct{}

func (contentFingerprinter) Fingerprint(r io.Reader) (fingerprint.Fingerprint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return fingerprint.Fingerprint{}, errs.New(errs.ErrorTypeDecode, "", err)
	}

	var hash uint64
	if _, err := fmt.Sscanf(string(data), "fp=%d;", &hash); err != nil {
		return fingerprint.Fingerprint{}, errs.New(errs.ErrorTypeDecode, "", fmt.Errorf("not an image: %w", err))
	}
	return fingerprint.Fingerprint{Algorithm: fingerprint.Average, Hash: hash}, nil
}

// writeImage creates a fake image of exactly size bytes carrying hash
func writeImage(t *testing.T, fsys afero.Fs, path string, hash uint64, size int) {
	t.Helper()
	header := fmt.Sprintf("fp=%d;", hash)
	require.GreaterOrEqual(t, size, len(header), "size too small for %s", path)
	content := header + strings.Repeat("x", size-len(header))
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0644))
}

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0644))
}

func exists(t *testing.T, fsys afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fsys, path)
	require.NoError(t, err)
	return ok
}

func auditLines(buf *bytes.Buffer) []string {
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func paths(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Path
	}
	return out
}

// 15 character stems classify as re-posts
const (
	repostA = "AAAAAAAAAAAAAAA"
	repostB = "BBBBBBBBBBBBBBB"
	repostC = "CCCCCCCCCCCCCCC"
)
