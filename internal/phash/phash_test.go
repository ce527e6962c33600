package phash

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blocks returns a w×h image tiled with an 8×8 grid of pseudo-random gray
// levels, which gives the DCT plenty of structure to hash.
func blocks(w, h int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	var levels [8][8]uint8
	for i := range levels {
		for j := range levels[i] {
			levels[i][j] = uint8(rng.Intn(256))
		}
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := levels[y*8/h][x*8/w]
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func reencode(t *testing.T, img image.Image, quality int) image.Image {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}))
	out, err := jpeg.Decode(&buf)
	require.NoError(t, err)
	return out
}

func TestComputeIsDeterministic(t *testing.T) {
	t.Parallel()

	img := blocks(256, 320, 1)
	a, err := Compute(img)
	require.NoError(t, err)
	b, err := Compute(img)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, 1.0, Similarity(a, b))
}

func TestComputeIgnoresEncodingNoise(t *testing.T) {
	t.Parallel()

	img := blocks(256, 320, 2)
	a, err := Compute(img)
	require.NoError(t, err)
	b, err := Compute(reencode(t, img, 90))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, Similarity(a, b), DefaultThreshold)
}

func TestComputeSeparatesDifferentImages(t *testing.T) {
	t.Parallel()

	a, err := Compute(blocks(256, 320, 3))
	require.NoError(t, err)
	b, err := Compute(blocks(256, 320, 4))
	require.NoError(t, err)

	assert.Less(t, Similarity(a, b), DefaultThreshold)
}

func TestComputeRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := Compute(nil)
	assert.Error(t, err)
	_, err = Compute(image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	assert.Error(t, err)
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	a := FromUint64(0)
	b := FromUint64(0xFF) // 8 bits differ
	assert.InDelta(t, 1-8.0/64, Similarity(a, b), 1e-9)
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
	assert.Equal(t, 0.0, Similarity(FromUint64(0), FromUint64(^uint64(0))))
	assert.Equal(t, 0.0, Similarity(Fingerprint{}, a))
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	fp := FromUint64(0xdeadbeef00c0ffee)
	assert.Equal(t, "p:deadbeef00c0ffee", fp.String())
	got, err := Parse(fp.String())
	require.NoError(t, err)
	assert.True(t, fp.Equal(got))

	_, err = Parse("d:deadbeef00c0ffee")
	assert.Error(t, err)
	_, err = Parse("p:xyz")
	assert.Error(t, err)
}

func TestIndexCheckAndRegister(t *testing.T) {
	t.Parallel()

	x := NewIndex(0.85)
	dup, _ := x.CheckAndRegister(FromUint64(0), "a.jpg")
	assert.False(t, dup)

	// 5 differing bits: similarity 0.92, a duplicate at 0.85.
	dup, of := x.CheckAndRegister(FromUint64(0x1F), "b.jpg")
	assert.True(t, dup)
	assert.Equal(t, "a.jpg", of)

	// 16 differing bits: similarity 0.75, distinct.
	dup, _ = x.CheckAndRegister(FromUint64(0xFFFF), "c.jpg")
	assert.False(t, dup)

	assert.Equal(t, 2, x.Len())
	refs := []string{}
	for _, e := range x.Entries() {
		refs = append(refs, e.Ref)
	}
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, refs)
}

func TestIndexHigherThresholdIsMorePermissive(t *testing.T) {
	t.Parallel()

	x := NewIndex(0.95)
	dup, _ := x.CheckAndRegister(FromUint64(0), "a")
	require.False(t, dup)
	dup, _ = x.CheckAndRegister(FromUint64(0x1F), "b") // 0.92 < 0.95
	assert.False(t, dup)
}

func TestIndexDefaultsThreshold(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultThreshold, NewIndex(0).Threshold())
	assert.Equal(t, DefaultThreshold, NewIndex(1.5).Threshold())
}

func TestIndexConcurrentInvariant(t *testing.T) {
	t.Parallel()

	x := NewIndex(0.85)
	rng := rand.New(rand.NewSource(42))
	fps := make([]Fingerprint, 400)
	for i := range fps {
		// Few distinct bases so many candidates collide.
		base := uint64(rng.Intn(6)) * 0x0F0F0F0F0F0F0F0F
		fps[i] = FromUint64(base ^ uint64(rng.Intn(8)))
	}

	var wg sync.WaitGroup
	for i, fp := range fps {
		wg.Add(1)
		go func(i int, fp Fingerprint) {
			defer wg.Done()
			x.CheckAndRegister(fp, "img")
		}(i, fp)
	}
	wg.Wait()

	entries := x.Entries()
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			require.Less(t, Similarity(entries[i].Fingerprint, entries[j].Fingerprint), x.Threshold())
		}
	}
}
