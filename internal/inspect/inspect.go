// Package inspect decodes candidate files and decides whether they are
// usable print sources.
package inspect

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/printcurate-cli/internal/candidate"
	"github.com/AnyUserName/printcurate-cli/internal/hasher"
	"github.com/AnyUserName/printcurate-cli/internal/logging"
	"github.com/AnyUserName/printcurate-cli/internal/phash"
	"github.com/AnyUserName/printcurate-cli/internal/printformat"
	"github.com/AnyUserName/printcurate-cli/internal/verdict"
)

// DefaultMinFileSize is the byte floor below which a file is treated as a
// thumbnail or placeholder regardless of its declared resolution.
const DefaultMinFileSize = 50 * 1024

// DefaultMaxPixels caps the declared canvas decoded in full. A 16x20 print
// needs under 29 megapixels.
const DefaultMaxPixels = 100_000_000

// DigestLen is the length in hex characters of Result.Digest.
const DigestLen = 16

// AllowedFormats are the decoded formats accepted as print sources.
var AllowedFormats = []string{"jpeg", "png", "webp"}

// Result is everything learned about an accepted candidate in one pass.
type Result struct {
	Accepted    verdict.Accepted
	Formats     []printformat.Format
	Fingerprint phash.Fingerprint
	// Image is the decoded source, kept for rendering.
	Image image.Image
	// Digest is the xxHash64 of the file bytes. It is set whenever the file
	// could be read, even when the verdict is a rejection.
	Digest string
}

// Config controls an Inspector.
type Config struct {
	Selector      *printformat.Selector
	MinFileSize   int64 // default DefaultMinFileSize
	MaxPixels     int64 // default DefaultMaxPixels
	CheckMetadata bool  // reject stock-agency EXIF/IPTC/XMP credits
	Logger        *zap.Logger
}

// Inspector is stateless apart from its configuration and safe for
// concurrent use.
type Inspector struct {
	cfg     Config
	allowed map[string]bool
}

// New returns an Inspector.
func New(cfg Config) *Inspector {
	if cfg.Selector == nil {
		cfg.Selector = printformat.NewSelector(nil, 0, 0)
	}
	if cfg.MinFileSize <= 0 {
		cfg.MinFileSize = DefaultMinFileSize
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	cfg.Logger = logging.OrNop(cfg.Logger)
	allowed := make(map[string]bool, len(AllowedFormats))
	for _, f := range AllowedFormats {
		allowed[f] = true
	}
	return &Inspector{cfg: cfg, allowed: allowed}
}

// Inspect reads and decodes c. On success the verdict is verdict.Accepted and
// res is populated, including the fingerprint, since hashing needs the same
// decode. Otherwise the verdict is verdict.Rejected and res holds only the
// digest of a file that could be read.
func (in *Inspector) Inspect(c candidate.Image) (res Result, v verdict.Verdict) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return Result{}, verdict.Reject(verdict.ProcessingError, err.Error())
	}
	res, v = in.InspectBytes(c, data)
	res.Digest = hasher.ContentHash(data, DigestLen)
	return res, v
}

// InspectBytes is Inspect on an in-memory file.
func (in *Inspector) InspectBytes(c candidate.Image, data []byte) (Result, verdict.Verdict) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Result{}, verdict.Rejectf(verdict.ProcessingError, "decode header: %v", err)
	}
	if !in.allowed[format] {
		return Result{}, verdict.Reject(verdict.UnsupportedFormat, format)
	}
	// The full decode allocates the declared canvas, so cap it first.
	if px := int64(cfg.Width) * int64(cfg.Height); px > in.cfg.MaxPixels {
		return Result{}, verdict.Rejectf(verdict.ProcessingError,
			"image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, in.cfg.MaxPixels)
	}

	size := int64(len(data))
	if size < in.cfg.MinFileSize {
		return Result{}, verdict.Rejectf(verdict.FileTooSmall, "%d bytes", size)
	}

	formats := in.cfg.Selector.Select(cfg.Width, cfg.Height)
	if len(formats) == 0 {
		return Result{}, verdict.Rejectf(verdict.ResolutionTooLow, "format_too_small: %dx%d", cfg.Width, cfg.Height)
	}

	if in.cfg.CheckMetadata {
		if agency, ok := stockAgency(data, format); ok {
			return Result{}, verdict.Reject(verdict.WatermarkDetected, "metadata credit: "+agency)
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, verdict.Rejectf(verdict.ProcessingError, "decode: %v", err)
	}
	// A header that lies about its dimensions is as bad as a corrupt file.
	if b := img.Bounds(); b.Dx() != cfg.Width || b.Dy() != cfg.Height {
		return Result{}, verdict.Rejectf(verdict.ProcessingError,
			"decoded %dx%d, header %dx%d", b.Dx(), b.Dy(), cfg.Width, cfg.Height)
	}

	fp, err := phash.Compute(img)
	if err != nil {
		return Result{}, verdict.Rejectf(verdict.ProcessingError, "fingerprint: %v", err)
	}

	acc := verdict.Accepted{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
		Size:   size,
	}
	in.cfg.Logger.Debug("inspected candidate",
		zap.String("file", c.Filename()),
		zap.String("format", format),
		zap.String("declared", candidate.Format(c.Path)),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.String("fingerprint", fp.String()),
	)
	return Result{
		Accepted:    acc,
		Formats:     formats,
		Fingerprint: fp,
		Image:       img,
	}, acc
}

// Describe is a one-line summary of a result for CLI output.
func (r Result) Describe() string {
	names := make([]string, 0, len(r.Formats))
	for _, f := range r.Formats {
		names = append(names, f.Name)
	}
	return fmt.Sprintf("%dx%d %s %d bytes formats=%v hash=%s digest=%s",
		r.Accepted.Width, r.Accepted.Height, r.Accepted.Format, r.Accepted.Size, names, r.Fingerprint, r.Digest)
}

// Decode reads and fully decodes the image at path.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
