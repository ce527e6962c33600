package pipeline

import (
	"sort"

	"github.com/AnyUserName/printcurate-cli/internal/candidate"
	"github.com/AnyUserName/printcurate-cli/internal/manifest"
	"github.com/AnyUserName/printcurate-cli/internal/phash"
	"github.com/AnyUserName/printcurate-cli/internal/render"
	"github.com/AnyUserName/printcurate-cli/internal/verdict"
)

// Outcome is the final disposition of one candidate.
type Outcome struct {
	Candidate candidate.Image
	Verdict   verdict.Verdict
	// Formats names the formats rendered for an accepted candidate.
	Formats []string
	// Capped is set on accepted candidates dropped by MaxImagesPerRole.
	Capped bool
	// Fingerprint is set once the candidate was inspected.
	Fingerprint phash.Fingerprint
	// Digest is the content hash of the source file, set once it was read.
	Digest string
}

// Accepted reports whether the candidate passed every check and fell within
// the per-role limit.
func (o Outcome) Accepted() bool {
	return o.Verdict != nil && o.Verdict.OK() && !o.Capped
}

// RoleReport collects everything that happened to one role's batch.
type RoleReport struct {
	Role     candidate.Role
	Outcomes []Outcome // in input order
	Outputs  []render.Output
	// Err is set when the role hit a fatal condition. Its outputs were
	// discarded.
	Err error
}

// Accepted counts candidates that produced outputs.
func (r RoleReport) Accepted() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Accepted() {
			n++
		}
	}
	return n
}

// Report is the result of one Run.
type Report struct {
	RunID    string
	Roles    []RoleReport
	Manifest *manifest.Manifest
}

// Outputs returns all outputs in stable order.
func (r *Report) Outputs() []render.Output {
	var out []render.Output
	for _, rr := range r.Roles {
		out = append(out, rr.Outputs...)
	}
	return out
}

// Rejections returns every rejected outcome across roles.
func (r *Report) Rejections() []Outcome {
	var out []Outcome
	for _, rr := range r.Roles {
		for _, o := range rr.Outcomes {
			if o.Verdict != nil && !o.Verdict.OK() {
				out = append(out, o)
			}
		}
	}
	return out
}

// ReasonCounts tallies rejections by reason.
func (r *Report) ReasonCounts() map[verdict.Reason]int {
	out := map[verdict.Reason]int{}
	for _, o := range r.Rejections() {
		out[verdict.ReasonOf(o.Verdict)]++
	}
	return out
}

// EmptyRoles names roles that ended with zero outputs, fatal or not.
// Surfacing these is left to the caller.
func (r *Report) EmptyRoles() []string {
	var out []string
	for _, rr := range r.Roles {
		if len(rr.Outputs) == 0 {
			out = append(out, rr.Role.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Failed returns roles that hit a fatal error.
func (r *Report) Failed() []RoleReport {
	var out []RoleReport
	for _, rr := range r.Roles {
		if rr.Err != nil {
			out = append(out, rr)
		}
	}
	return out
}
