// Package verdict defines the outcome of vetting a single candidate image.
//
// A Verdict is either Accepted (with decoded facts about the image) or
// Rejected (with a Reason from a closed set). Rejections are values, not
// errors: they exclude an image from the output without failing the batch.
package verdict

import "fmt"

// Reason is a machine-readable rejection code.
type Reason string

const (
	WatermarkDetected     Reason = "watermark_detected"
	FanContentDetected    Reason = "fan_content_detected"
	ActorPhotoInVoiceRole Reason = "actor_photo_in_voice_role"
	VisionRejected        Reason = "vision_rejected"
	ProcessingError       Reason = "processing_error"
	ResolutionTooLow      Reason = "resolution_too_low"
	FileTooSmall          Reason = "file_too_small"
	UnsupportedFormat     Reason = "unsupported_format"
	DuplicateDetected     Reason = "duplicate_detected"
)

// Reasons lists every rejection code in reporting order.
var Reasons = []Reason{
	WatermarkDetected,
	FanContentDetected,
	ActorPhotoInVoiceRole,
	VisionRejected,
	ProcessingError,
	ResolutionTooLow,
	FileTooSmall,
	UnsupportedFormat,
	DuplicateDetected,
}

// Valid reports whether r is one of the known codes.
func (r Reason) Valid() bool {
	for _, known := range Reasons {
		if r == known {
			return true
		}
	}
	return false
}

// Verdict is implemented by Accepted and Rejected only.
type Verdict interface {
	verdict()
	// OK reports whether the image survived.
	OK() bool
	String() string
}

// Accepted carries the facts the inspector learned while decoding.
type Accepted struct {
	Width  int
	Height int
	Format string // "jpeg", "png" or "webp"
	Size   int64  // bytes on disk
}

func (Accepted) verdict()  {}
func (Accepted) OK() bool { return true }

func (a Accepted) String() string {
	return fmt.Sprintf("accepted %dx%d %s %d bytes", a.Width, a.Height, a.Format, a.Size)
}

// Rejected is terminal for the candidate.
type Rejected struct {
	Reason Reason
	Detail string // optional human-readable context, e.g. "format_too_small: 800x600"
}

func (Rejected) verdict()  {}
func (Rejected) OK() bool { return false }

func (r Rejected) String() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return string(r.Reason) + " (" + r.Detail + ")"
}

// Reject builds a Rejected verdict.
func Reject(reason Reason, detail string) Rejected {
	return Rejected{Reason: reason, Detail: detail}
}

// Rejectf builds a Rejected verdict with a formatted detail.
func Rejectf(reason Reason, format string, args ...any) Rejected {
	return Rejected{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf returns the rejection reason, or "" for accepted verdicts.
func ReasonOf(v Verdict) Reason {
	if r, ok := v.(Rejected); ok {
		return r.Reason
	}
	return ""
}
