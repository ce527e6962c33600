package printformat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(fs []Format) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Name)
	}
	return out
}

func TestSelect(t *testing.T) {
	t.Parallel()

	s := NewSelector(nil, 0, 0)
	tests := []struct {
		name string
		w, h int
		want []string
	}{
		{"exact 8x10", 2400, 3000, []string{"8x10"}},
		{"exact 11x17", 3300, 5100, []string{"11x17"}},
		{"landscape 8x10", 3000, 2400, []string{"8x10"}},
		{"8x10 band only", 3600, 5000, []string{"8x10"}},
		{"overlapping bands", 4000, 5500, []string{"8x10", "11x17"}},
		{"too small", 800, 600, nil},
		{"short side too small", 2000, 6000, nil},
		{"square falls back to nearest", 3000, 3000, []string{"8x10"}},
		{"elongated gets both", 3300, 10000, []string{"8x10", "11x17"}},
		{"panorama meets one", 9000, 3000, []string{"8x10"}},
		{"zero", 0, 100, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := s.Select(tc.w, tc.h)
			if tc.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, names(got))
		})
	}
}

func TestSelectCoversEveryImageMeetingAMinimum(t *testing.T) {
	t.Parallel()

	s := NewSelector(nil, 0, 0)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		w := 1000 + rng.Intn(12000)
		h := 1000 + rng.Intn(12000)
		got := s.Select(w, h)
		if s.MeetsAny(w, h) {
			require.NotEmpty(t, got, "%dx%d meets a minimum but got no format", w, h)
			require.LessOrEqual(t, len(got), 2)
		} else {
			require.Empty(t, got, "%dx%d", w, h)
		}
		for _, f := range got {
			require.True(t, f.Fits(w, h), "%dx%d assigned %s it does not fit", w, h, f.Name)
		}
	}
}

func TestSelectCustomTolerance(t *testing.T) {
	t.Parallel()

	// A tight band pushes the overlapping case back to a single format.
	s := NewSelector(Defaults(), 0.05, 0.2)
	assert.Equal(t, []string{"8x10"}, names(s.Select(4000, 5500)))
}

func TestFormatDimensions(t *testing.T) {
	t.Parallel()

	w, h := Print8x10.Dimensions(Landscape)
	assert.Equal(t, [2]int{3000, 2400}, [2]int{w, h})
	w, h = Print8x10.Dimensions(Portrait)
	assert.Equal(t, [2]int{2400, 3000}, [2]int{w, h})
	w, h = Print11x17.Dimensions(Square)
	assert.Equal(t, [2]int{3300, 5100}, [2]int{w, h})

	assert.Equal(t, Landscape, OrientationOf(10, 5))
	assert.Equal(t, Square, OrientationOf(5, 5))
	assert.Equal(t, Portrait, OrientationOf(5, 10))
}

func TestLookup(t *testing.T) {
	t.Parallel()

	s := NewSelector(nil, 0, 0)
	f, ok := s.Lookup("11x17")
	require.True(t, ok)
	assert.Equal(t, Print11x17, f)
	_, ok = s.Lookup("4x6")
	assert.False(t, ok)
}

func TestFormatValidate(t *testing.T) {
	t.Parallel()

	for _, f := range Defaults() {
		assert.NoError(t, f.Validate(), f.Name)
	}
	assert.NoError(t, Format{Name: "5x7", Width: 1500, Height: 2100}.Validate())

	for _, f := range []Format{
		{Name: "", Width: 10, Height: 10},
		{Name: "4x6", Width: 0, Height: 10},
		{Name: "../x", Width: 10, Height: 10},
		{Name: "a/b", Width: 10, Height: 10},
		{Name: `a\b`, Width: 10, Height: 10},
		{Name: "..", Width: 10, Height: 10},
		{Name: ".", Width: 10, Height: 10},
	} {
		assert.Error(t, f.Validate(), "%q", f.Name)
	}
}
