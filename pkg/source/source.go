// Package source infers which platform produced an image from its file name.
//
// The result is a rank signal for duplicate resolution only. It never
// inspects file content and is never used to identify a file.
package source

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Tag is the platform classification of a file name
type Tag int

const (
	// Unknown is any name that matches neither platform's naming scheme.
	Unknown Tag = iota
	// TrustedPost is the original-upload platform, named <post>_p<page>.
	TrustedPost
	// Repost is the re-post platform, named by a 15 character media id.
	Repost
)

// repostStemLength is the re-post platform's media id length.
const repostStemLength = 15

// trustedPattern matches at the start of the stem only, so suffixed variants
// such as 123_p0_master1200 still count as trusted. \d is ASCII only.
var trustedPattern = regexp.MustCompile(`^\d+_p\d+`)

func (t Tag) String() string {
	switch t {
	case TrustedPost:
		return "platform_a_post"
	case Repost:
		return "platform_b_post"
	default:
		return "unknown"
	}
}

// Trusted reports whether the tag can anchor a group
func (t Tag) Trusted() bool {
	return t == TrustedPost
}

// Classify returns the tag for the file at path. Directories in path are
// ignored; the stem is everything before the first dot of the base name.
func Classify(path string) Tag {
	stem := Stem(path)
	switch {
	case trustedPattern.MatchString(stem):
		return TrustedPost
	case utf8.RuneCountInString(stem) == repostStemLength:
		return Repost
	default:
		return Unknown
	}
}

// Stem returns the base name of path up to its first dot
func Stem(path string) string {
	stem, _, _ := strings.Cut(filepath.Base(path), ".")
	return stem
}
