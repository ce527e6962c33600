// Package profile names preset combinations of print formats and JPEG
// quality.
package profile

import (
	"sort"

	"github.com/AnyUserName/printcurate-cli/internal/printformat"
)

// Default is the profile used when none is configured.
const Default = "standard"

// Profile is a named print preset.
type Profile struct {
	Name    string
	Formats []printformat.Format // in output order
	Quality int                  // JPEG quality 1-100
}

var profiles = map[string]Profile{
	"standard": {
		Name:    "standard",
		Formats: []printformat.Format{printformat.Print8x10, printformat.Print11x17},
		Quality: 95,
	},
	"gallery": {
		Name:    "gallery",
		Formats: []printformat.Format{printformat.Print8x10, printformat.Print11x17, printformat.Print16x20},
		Quality: 95,
	},
	// proof is for quick review passes: one small format, lighter files.
	"proof": {
		Name:    "proof",
		Formats: []printformat.Format{printformat.Print8x10},
		Quality: 85,
	},
}

// Get returns a profile by name.
func Get(name string) (Profile, bool) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, false
	}
	p.Formats = append([]printformat.Format(nil), p.Formats...)
	return p, true
}

// Names lists the built-in profiles in sorted order.
func Names() []string {
	out := make([]string, 0, len(profiles))
	for n := range profiles {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
