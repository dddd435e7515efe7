package fingerprint

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/corona10/goimagehash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	errs "pixdedup/pkg/errors"
)

// checkerboard returns a 64x64 grayscale image of 16px squares
func checkerboard(inverted bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			white := (x/16+y/16)%2 == 0
			if white != inverted {
				img.SetGray(x, y, color.Gray{Y: 255})
			} else {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestParseAlgorithm(t *testing.T) {
	for _, name := range []string{"average", "Perception", " difference "} {
		_, err := ParseAlgorithm(name)
		assert.NoError(t, err, name)
	}

	_, err := ParseAlgorithm("wavelet")
	assert.Error(t, err)
}

func TestNewHasherRejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewHasher("wavelet")
	assert.Error(t, err)
}

func TestFingerprintIgnoresEncodingDifferences(t *testing.T) {
	original := encodePNG(t, checkerboard(false))
	// a larger copy of the same pixels: trailing bytes after IEND are ignored
	padded := append(append([]byte{}, original...), bytes.Repeat([]byte{0}, 4096)...)

	for _, algorithm := range []Algorithm{Average, Perception, Difference} {
		t.Run(string(algorithm), func(t *testing.T) {
			h, err := NewHasher(algorithm)
			require.NoError(t, err)

			a, err := h.Fingerprint(bytes.NewReader(original))
			require.NoError(t, err)
			b, err := h.Fingerprint(bytes.NewReader(padded))
			require.NoError(t, err)

			assert.Equal(t, a, b)
			assert.Equal(t, algorithm, a.Algorithm)
		})
	}
}

func TestAverageHashMatchesAcrossFormats(t *testing.T) {
	h, err := NewHasher(Average)
	require.NoError(t, err)

	img := checkerboard(false)
	fromPNG, err := h.Fingerprint(bytes.NewReader(encodePNG(t, img)))
	require.NoError(t, err)

	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, img, &jpeg.Options{Quality: 100}))
	fromJPEG, err := h.Fingerprint(&jpg)
	require.NoError(t, err)

	var bm bytes.Buffer
	require.NoError(t, bmp.Encode(&bm, img))
	fromBMP, err := h.Fingerprint(&bm)
	require.NoError(t, err)

	assert.Equal(t, fromPNG, fromJPEG)
	assert.Equal(t, fromPNG, fromBMP)
}

func TestFingerprintDistinguishesDifferentImages(t *testing.T) {
	h, err := NewHasher(Average)
	require.NoError(t, err)

	a, err := h.Fingerprint(bytes.NewReader(encodePNG(t, checkerboard(false))))
	require.NoError(t, err)
	b, err := h.Fingerprint(bytes.NewReader(encodePNG(t, checkerboard(true))))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestFingerprintsFromDifferentAlgorithmsNeverCollide(t *testing.T) {
	a := Fingerprint{Algorithm: Average, Hash: 42}
	b := Fingerprint{Algorithm: Perception, Hash: 42}
	assert.NotEqual(t, a, b)
	assert.Equal(t, "average:000000000000002a", a.String())
}

func TestFingerprintDecodeFailures(t *testing.T) {
	h, err := NewHasher(Average)
	require.NoError(t, err)

	full := encodePNG(t, checkerboard(false))
	inputs := map[string][]byte{
		"garbage":   []byte("definitely not an image"),
		"truncated": full[:len(full)/2],
		"svg":       []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"></svg>`),
		"empty":     nil,
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := h.Fingerprint(bytes.NewReader(data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrDecode), "expected decode error, got %v", err)
		})
	}
}

func TestFingerprintReadsFromAnyReader(t *testing.T) {
	h, err := NewHasher(Difference)
	require.NoError(t, err)

	_, err = h.Fingerprint(strings.NewReader(string(encodePNG(t, checkerboard(true)))))
	assert.NoError(t, err)
}

// zeroWidthBMP returns a well-formed 24-bit BMP header declaring a 0x4 image
func zeroWidthBMP() []byte {
	var buf bytes.Buffer
	buf.WriteString("BM")
	binary.Write(&buf, binary.LittleEndian, uint32(54)) // file size
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // reserved
	binary.Write(&buf, binary.LittleEndian, uint32(54)) // pixel offset
	binary.Write(&buf, binary.LittleEndian, uint32(40)) // info header size
	binary.Write(&buf, binary.LittleEndian, int32(0))   // width
	binary.Write(&buf, binary.LittleEndian, int32(4))   // height
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	binary.Write(&buf, binary.LittleEndian, uint16(24)) // bits per pixel
	buf.Write(make([]byte, 24))
	return buf.Bytes()
}

func TestFingerprintRejectsImagesWithoutPixels(t *testing.T) {
	data := zeroWidthBMP()
	require.Len(t, data, 54)

	for _, algorithm := range []Algorithm{Average, Perception, Difference} {
		t.Run(string(algorithm), func(t *testing.T) {
			h, err := NewHasher(algorithm)
			require.NoError(t, err)

			var fp Fingerprint
			require.NotPanics(t, func() {
				fp, err = h.Fingerprint(bytes.NewReader(data))
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrDecode)
			assert.Zero(t, fp)
		})
	}
}

func TestFingerprintRecoversFromHashPanic(t *testing.T) {
	h, err := NewHasher(Average)
	require.NoError(t, err)
	h.hash = func(image.Image) (*goimagehash.ImageHash, error) {
		var pixels []float64
		_ = pixels[0]
		return nil, nil
	}

	_, err = h.Fingerprint(bytes.NewReader(encodePNG(t, checkerboard(false))))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDecode)
	assert.Contains(t, err.Error(), "index out of range")
}
