// Package candidate describes the images handed to the curation pipeline by
// the download stage, and the role each batch was fetched for.
package candidate

import (
	"path/filepath"
	"strings"
)

// Role identifies the target of a batch: a character/work pairing.
// A Role is never mutated once a batch is built.
type Role struct {
	// Name is the role or show name, e.g. "Twilight".
	Name string `yaml:"name" json:"name"`
	// Celebrity is the performer the images were sourced for.
	Celebrity string `yaml:"celebrity" json:"celebrity"`
	// Character is the character name, if known.
	Character string `yaml:"character,omitempty" json:"character,omitempty"`
	// VoiceRole is set when the performer only voiced the character.
	VoiceRole bool `yaml:"voiceRole,omitempty" json:"voiceRole,omitempty"`
	// Franchise is the umbrella franchise name, if any.
	Franchise string `yaml:"franchise,omitempty" json:"franchise,omitempty"`
}

// VisionVerdict is an externally computed semantic check.
type VisionVerdict string

const (
	VisionAccept VisionVerdict = "accept"
	VisionReject VisionVerdict = "reject"
)

// Image is one downloaded candidate file plus its provenance.
type Image struct {
	// Path is the file on local disk.
	Path string `yaml:"path" json:"path"`
	// SourceURL is where the file was downloaded from.
	SourceURL string `yaml:"sourceUrl,omitempty" json:"sourceUrl,omitempty"`
	// Title is the search result title or snippet.
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	// Vision is an optional verdict from a vision-model collaborator.
	Vision VisionVerdict `yaml:"vision,omitempty" json:"vision,omitempty"`
	// Role is filled in from the enclosing batch.
	Role Role `yaml:"-" json:"-"`
}

// Filename returns the base name of the candidate file.
func (img Image) Filename() string {
	return filepath.Base(img.Path)
}

// Batch is an ordered list of candidates for a single role.
type Batch struct {
	Role       Role
	Candidates []Image
}

// Format guesses the declared format from the file extension.
func Format(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	}
	return ext
}
