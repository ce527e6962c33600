// Package manifest aggregates rendered outputs into the manifest.json record.
package manifest

import (
	"strings"
	"time"

	"github.com/AnyUserName/printcurate-cli/internal/hasher"
	"github.com/AnyUserName/printcurate-cli/internal/render"
)

// Info carries run-level fields not derivable from the outputs.
type Info struct {
	Celebrity string
	RunID     string
	Generated time.Time
	// Roles lists every role processed, so roles with no output still
	// appear with a zero count.
	Roles []string
}

// Build aggregates outputs in the given order. It performs no I/O.
func Build(outputs []render.Output, info Info) *Manifest {
	generated := info.Generated
	if generated.IsZero() {
		generated = time.Now()
	}
	m := &Manifest{
		Celebrity: info.Celebrity,
		Generated: generated.UTC().Format(time.RFC3339),
		RunID:     info.RunID,
		Formats:   make(map[string]int),
		Roles:     make(map[string]int, len(info.Roles)),
		Images:    make([]Entry, 0, len(outputs)),
	}
	for _, r := range info.Roles {
		m.Roles[r] = 0
	}

	for _, o := range outputs {
		role := o.Source.Role.Name
		m.Images = append(m.Images, Entry{
			ID:               hasher.StableID(o.Filename, o.Format, role),
			Filename:         o.Filename,
			OriginalFilename: o.Source.Filename(),
			Role:             role,
			Format:           o.Format,
			Dimensions:       Dimensions{Width: o.Width, Height: o.Height},
			Tags:             tags(o),
			SourceURL:        o.Source.SourceURL,
			Orientation:      string(o.Orientation),
			FileSize:         o.Size,
			Hash:             o.Fingerprint.String(),
		})
		m.Formats[o.Format]++
		m.Roles[role]++
	}
	m.TotalImages = len(m.Images)
	return m
}

func tags(o render.Output) []string {
	role := o.Source.Role
	t := []string{role.Name, o.Format, string(o.Orientation)}
	if role.Character != "" {
		t = append(t, role.Character)
	}
	if role.Franchise != "" && !strings.EqualFold(role.Franchise, role.Name) {
		t = append(t, role.Franchise)
	}
	if role.VoiceRole {
		t = append(t, "voice-role")
	}
	return t
}

// EmptyRoles returns roles with no outputs, in sorted order.
func (m *Manifest) EmptyRoles() []string {
	var out []string
	for r, n := range m.Roles {
		if n == 0 {
			out = append(out, r)
		}
	}
	sortStrings(out)
	return out
}
