// Package phash computes perceptual fingerprints and tracks which ones have
// been accepted within a role.
package phash

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/corona10/goimagehash"
)

// Bits is the length of a fingerprint.
const Bits = 64

// DefaultThreshold is the similarity at or above which two images are
// considered duplicates.
const DefaultThreshold = 0.85

// Fingerprint is a 64-bit DCT perceptual hash. The zero value is invalid.
type Fingerprint struct {
	h *goimagehash.ImageHash
}

// Compute derives a fingerprint from pixel content only.
func Compute(img image.Image) (Fingerprint, error) {
	if img == nil {
		return Fingerprint{}, errors.New("phash: nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Fingerprint{}, fmt.Errorf("phash: empty image %dx%d", b.Dx(), b.Dy())
	}
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("phash: %w", err)
	}
	return Fingerprint{h: h}, nil
}

// FromUint64 wraps a raw hash value.
func FromUint64(v uint64) Fingerprint {
	return Fingerprint{h: goimagehash.NewImageHash(v, goimagehash.PHash)}
}

// Parse reads the form produced by String.
func Parse(s string) (Fingerprint, error) {
	hexPart, ok := strings.CutPrefix(s, "p:")
	if !ok || len(hexPart) != 16 {
		return Fingerprint{}, fmt.Errorf("phash: malformed fingerprint %q", s)
	}
	v, err := strconv.ParseUint(hexPart, 16, 64)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("phash: malformed fingerprint %q: %w", s, err)
	}
	return FromUint64(v), nil
}

// Valid reports whether f holds a hash.
func (f Fingerprint) Valid() bool { return f.h != nil }

// Uint64 returns the raw hash bits.
func (f Fingerprint) Uint64() uint64 {
	if f.h == nil {
		return 0
	}
	return f.h.GetHash()
}

// String renders the fingerprint as "p:" followed by 16 hex digits.
func (f Fingerprint) String() string {
	if f.h == nil {
		return ""
	}
	return fmt.Sprintf("p:%016x", f.h.GetHash())
}

// Equal reports bit equality.
func (f Fingerprint) Equal(o Fingerprint) bool {
	return f.Valid() && o.Valid() && f.Uint64() == o.Uint64()
}

// Distance is the Hamming distance between two fingerprints.
func Distance(a, b Fingerprint) (int, error) {
	if !a.Valid() || !b.Valid() {
		return 0, errors.New("phash: invalid fingerprint")
	}
	return a.h.Distance(b.h)
}

// Similarity maps Hamming distance onto [0,1]: 1 for identical hashes, 0 when
// every bit differs. Invalid fingerprints are never similar.
func Similarity(a, b Fingerprint) float64 {
	d, err := Distance(a, b)
	if err != nil {
		return 0
	}
	return 1 - float64(d)/Bits
}
