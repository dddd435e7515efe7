// Package fingerprint decodes raster images and reduces them to a 64-bit
// perceptual hash. Two visually near-identical images (re-encoded or resized
// copies) are expected to produce the same value; equality is the only
// comparison the rest of pixdedup performs.
package fingerprint

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	errs "pixdedup/pkg/errors"
)

// Algorithm names a perceptual hash. One algorithm is used per run.
type Algorithm string

const (
	// Average is the coarse average-intensity digest.
	Average Algorithm = "average"
	// Perception is the DCT (frequency-domain) digest.
	Perception Algorithm = "perception"
	// Difference is the horizontal gradient digest.
	Difference Algorithm = "difference"
)

// ParseAlgorithm converts a configuration value to an Algorithm
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(name))); a {
	case Average, Perception, Difference:
		return a, nil
	default:
		return "", fmt.Errorf("unknown fingerprint algorithm %q", name)
	}
}

// Fingerprint is a comparable hash value, usable as a map key. Values from
// different algorithms never compare equal.
type Fingerprint struct {
	Algorithm Algorithm
	Hash      uint64
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%s:%016x", f.Algorithm, f.Hash)
}

// Fingerprinter computes the fingerprint of an encoded image
type Fingerprinter interface {
	Fingerprint(r io.Reader) (Fingerprint, error)
}

// Hasher is the goimagehash-backed Fingerprinter
type Hasher struct {
	algorithm Algorithm
	hash      func(image.Image) (*goimagehash.ImageHash, error)
}

// NewHasher returns a Hasher for the given algorithm
func NewHasher(algorithm Algorithm) (*Hasher, error) {
	h := &Hasher{algorithm: algorithm}
	switch algorithm {
	case Average:
		h.hash = goimagehash.AverageHash
	case Perception:
		h.hash = goimagehash.PerceptionHash
	case Difference:
		h.hash = goimagehash.DifferenceHash
	default:
		return nil, fmt.Errorf("unknown fingerprint algorithm %q", algorithm)
	}
	return h, nil
}

// Algorithm returns the hash the Hasher computes
func (h *Hasher) Algorithm() Algorithm {
	return h.algorithm
}

// Fingerprint decodes r and hashes the decoded pixels. Any failure, including
// an unsupported format or an image without pixels, is returned as a decode
// error.
func (h *Hasher) Fingerprint(r io.Reader) (Fingerprint, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return Fingerprint{}, errs.New(errs.ErrorTypeDecode, "", err)
	}
	if b := img.Bounds(); b.Empty() {
		return Fingerprint{}, errs.New(errs.ErrorTypeDecode, "", fmt.Errorf("%s image has no pixels (%dx%d)", format, b.Dx(), b.Dy()))
	}

	hash, err := h.digest(img)
	if err != nil {
		return Fingerprint{}, errs.New(errs.ErrorTypeDecode, "", fmt.Errorf("hashing %s image: %w", format, err))
	}

	return Fingerprint{Algorithm: h.algorithm, Hash: hash.GetHash()}, nil
}

// digest runs the hash function, converting a panic inside it into an error
// so one malformed file cannot end a run.
func (h *Hasher) digest(img image.Image) (hash *goimagehash.ImageHash, err error) {
	defer func() {
		if r := recover(); r != nil {
			hash, err = nil, fmt.Errorf("hash panicked: %v", r)
		}
	}()
	return h.hash(img)
}
