// Package render produces the print-ready progressive JPEG files.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"syscall"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/jpegli"
	"go.uber.org/zap"

	"github.com/AnyUserName/printcurate-cli/internal/candidate"
	"github.com/AnyUserName/printcurate-cli/internal/phash"
	"github.com/AnyUserName/printcurate-cli/internal/printformat"
)

// DefaultQuality is the JPEG quality used for prints.
const DefaultQuality = 95

// ResizedDir is the directory under the output root holding format folders.
const ResizedDir = "resized"

var (
	// ErrOutputDir means the output tree could not be created.
	ErrOutputDir = errors.New("render: cannot create output directory")
	// ErrDiskFull means a write failed for lack of space.
	ErrDiskFull = errors.New("render: disk full")
)

// Output is one accepted image rendered for one format.
type Output struct {
	Path        string // absolute path on disk
	RelPath     string // relative to the output root, slash separated
	Filename    string
	Format      string
	Sequence    int
	Width       int
	Height      int
	Size        int64
	Orientation printformat.Orientation
	Source      candidate.Image
	Fingerprint phash.Fingerprint
}

// Renderer writes outputs beneath an output root.
type Renderer struct {
	root    string
	quality int
	logger  *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithQuality overrides DefaultQuality.
func WithQuality(q int) Option {
	return func(r *Renderer) {
		if q > 0 && q <= 100 {
			r.quality = q
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a Renderer rooted at root.
func New(root string, opts ...Option) *Renderer {
	r := &Renderer{root: root, quality: DefaultQuality, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FormatDir returns the directory for a format.
func (r *Renderer) FormatDir(format string) string {
	return filepath.Join(r.root, ResizedDir, format)
}

// Prepare empties the resized tree left by any earlier run and creates the
// directory for every format, so the tree holds only this run's prints.
func (r *Renderer) Prepare(formats []printformat.Format) error {
	resized := filepath.Join(r.root, ResizedDir)
	if err := os.RemoveAll(resized); err != nil {
		return fmt.Errorf("%w: clear %s: %v", ErrOutputDir, ResizedDir, err)
	}
	for _, f := range formats {
		if err := os.MkdirAll(r.FormatDir(f.Name), 0o755); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrOutputDir, f.Name, err)
		}
	}
	return nil
}

// Render fits img into f (rotated for landscape sources), encodes it and
// writes exactly one file named from seq and names.
func (r *Renderer) Render(img image.Image, f printformat.Format, seq int, names Names) (Output, error) {
	b := img.Bounds()
	orientation := printformat.OrientationOf(b.Dx(), b.Dy())
	w, h := f.Dimensions(orientation)

	data, err := Encode(Compose(img, w, h), r.quality)
	if err != nil {
		return Output{}, fmt.Errorf("encode %s #%d: %w", f.Name, seq, err)
	}

	dir := r.FormatDir(f.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Output{}, fmt.Errorf("%w: %s: %v", ErrOutputDir, f.Name, err)
	}
	name := Filename(seq, names, f.Name)
	path := filepath.Join(dir, name)
	if err := writeAtomic(path, data); err != nil {
		return Output{}, err
	}

	r.logger.Debug("rendered output",
		zap.String("file", name),
		zap.String("format", f.Name),
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Int("bytes", len(data)),
	)
	return Output{
		Path:        path,
		RelPath:     filepath.ToSlash(filepath.Join(ResizedDir, f.Name, name)),
		Filename:    name,
		Format:      f.Name,
		Sequence:    seq,
		Width:       w,
		Height:      h,
		Size:        int64(len(data)),
		Orientation: orientation,
	}, nil
}

// Compose fits img inside w×h preserving aspect ratio and centers it on a
// white canvas of exactly w×h. Sources larger than the box are scaled down;
// a source smaller than the box on both axes is scaled up just enough to
// touch it.
func Compose(img image.Image, w, h int) *image.NRGBA {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()

	var fitted *image.NRGBA
	switch {
	case sw == w && sh == h:
		fitted = imaging.Clone(img)
	case sw <= w && sh <= h:
		scale := min(float64(w)/float64(sw), float64(h)/float64(sh))
		fw := min(w, max(1, int(float64(sw)*scale+0.5)))
		fh := min(h, max(1, int(float64(sh)*scale+0.5)))
		fitted = imaging.Resize(img, fw, fh, imaging.Lanczos)
	default:
		fitted = imaging.Fit(img, w, h, imaging.Lanczos)
	}

	if fitted.Bounds().Dx() == w && fitted.Bounds().Dy() == h {
		return fitted
	}
	canvas := imaging.New(w, h, color.White)
	return imaging.PasteCenter(canvas, fitted)
}

// progressiveLevel is jpegli's most progressive scan script.
const progressiveLevel = 2

// Encode renders img as a progressive JPEG. Identical input and quality
// give identical bytes.
func Encode(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	var buf bytes.Buffer
	buf.Grow(2 << 20)
	err := jpegli.Encode(&buf, img, &jpegli.EncodingOptions{
		Quality:          quality,
		ProgressiveLevel: progressiveLevel,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAtomic writes data to a temp file in the target directory and renames
// it into place, so readers never see a partial print.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".render-*.tmp")
	if err != nil {
		return wrapWriteErr(path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return wrapWriteErr(path, err)
	}
	if err := tmp.Close(); err != nil {
		return wrapWriteErr(path, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return wrapWriteErr(path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return wrapWriteErr(path, err)
	}
	return nil
}

func wrapWriteErr(path string, err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return fmt.Errorf("%w: write %s: %v", ErrDiskFull, filepath.Base(path), err)
	}
	return fmt.Errorf("write %s: %w", filepath.Base(path), err)
}
