package printformat

// Default tolerance bands around a format's canonical short/long ratio.
// These are tuning knobs, not business rules.
const (
	DefaultTolerance     = 0.1
	DefaultWideTolerance = 0.2
)

// Selector maps source dimensions to qualifying formats.
type Selector struct {
	formats       []Format
	tolerance     float64
	wideTolerance float64
}

// NewSelector returns a Selector over formats. Non-positive tolerances fall
// back to the defaults.
func NewSelector(formats []Format, tolerance, wideTolerance float64) *Selector {
	if len(formats) == 0 {
		formats = Defaults()
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if wideTolerance < tolerance {
		wideTolerance = DefaultWideTolerance
		if wideTolerance < tolerance {
			wideTolerance = tolerance
		}
	}
	return &Selector{
		formats:       append([]Format(nil), formats...),
		tolerance:     tolerance,
		wideTolerance: wideTolerance,
	}
}

// Formats returns the configured formats in order.
func (s *Selector) Formats() []Format {
	return append([]Format(nil), s.formats...)
}

// Lookup returns the configured format with the given name.
func (s *Selector) Lookup(name string) (Format, bool) {
	for _, f := range s.formats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

// Select returns the formats a w×h image qualifies for, in configured order.
//
// A format qualifies when the image meets its minimum resolution and the
// image's short/long ratio lies within the tolerance band of the format's.
// When no format is in band, an image that still meets some minimum is not
// dropped: if its ratio is beyond the wide band of every format it is
// assigned all formats it meets, otherwise only the nearest one by ratio.
// The result is empty only when the image meets no minimum at all.
func (s *Selector) Select(w, h int) []Format {
	if w <= 0 || h <= 0 {
		return nil
	}
	r := ratio(w, h)

	var fitting, inBand []Format
	for _, f := range s.formats {
		if !f.Fits(w, h) {
			continue
		}
		fitting = append(fitting, f)
		if distance(r, f) <= s.tolerance {
			inBand = append(inBand, f)
		}
	}
	if len(fitting) == 0 {
		return nil
	}
	if len(inBand) > 0 {
		return inBand
	}

	nearest := fitting[0]
	beyondWide := true
	for _, f := range fitting {
		d := distance(r, f)
		if d < distance(r, nearest) {
			nearest = f
		}
		if d <= s.wideTolerance {
			beyondWide = false
		}
	}
	if beyondWide {
		return fitting
	}
	return []Format{nearest}
}

// MeetsAny reports whether w×h meets the minimum of at least one format.
func (s *Selector) MeetsAny(w, h int) bool {
	for _, f := range s.formats {
		if f.Fits(w, h) {
			return true
		}
	}
	return false
}
