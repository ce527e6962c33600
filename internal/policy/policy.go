// Package policy applies cheap metadata-only checks to candidate images
// before any file is opened.
//
// Checks run in a fixed order and stop at the first match:
//  1. watermark / stock source
//  2. fan content
//  3. voice-role character context
//  4. external vision verdict, when one was supplied
package policy

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/AnyUserName/printcurate-cli/internal/candidate"
	"github.com/AnyUserName/printcurate-cli/internal/verdict"
)

// Filter evaluates candidates against a fixed set of lists.
// It holds no mutable state and is safe for concurrent use.
type Filter struct {
	lists  Lists
	logger *zap.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithLists replaces the built-in lists.
func WithLists(l Lists) Option {
	return func(f *Filter) { f.lists = l }
}

// WithLogger sets the logger used for debug tracing of matches.
func WithLogger(l *zap.Logger) Option {
	return func(f *Filter) {
		if l != nil {
			f.logger = l
		}
	}
}

// New returns a Filter using DefaultLists unless overridden.
func New(opts ...Option) *Filter {
	f := &Filter{lists: DefaultLists(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Evaluate returns verdict.Accepted{} (with no decoded facts yet) when the
// candidate passes every check, or the first Rejected verdict.
func (f *Filter) Evaluate(c candidate.Image) verdict.Verdict {
	t := newText(c.Filename(), c.SourceURL, c.Title)

	checks := []func(candidate.Image, text) (verdict.Rejected, bool){
		f.checkWatermark,
		f.checkFanContent,
		f.checkVoiceRole,
		checkVision,
	}
	for _, check := range checks {
		if rej, hit := check(c, t); hit {
			f.logger.Debug("policy rejected candidate",
				zap.String("file", c.Filename()),
				zap.String("reason", string(rej.Reason)),
				zap.String("detail", rej.Detail),
			)
			return rej
		}
	}
	return verdict.Accepted{}
}

func (f *Filter) checkWatermark(c candidate.Image, t text) (verdict.Rejected, bool) {
	if kw, ok := t.containsAny(f.lists.StockVendors); ok {
		return verdict.Reject(verdict.WatermarkDetected, "stock vendor: "+kw), true
	}
	if p, ok := t.rawContainsAny(f.lists.StockURLPatterns); ok {
		return verdict.Reject(verdict.WatermarkDetected, "url pattern: "+p), true
	}
	if d, ok := hostMatches(c.SourceURL, f.lists.StockDomains); ok {
		return verdict.Reject(verdict.WatermarkDetected, "stock domain: "+d), true
	}
	return verdict.Rejected{}, false
}

func (f *Filter) checkFanContent(c candidate.Image, t text) (verdict.Rejected, bool) {
	if d, ok := hostMatches(c.SourceURL, f.lists.FanDomains); ok {
		return verdict.Reject(verdict.FanContentDetected, "fan domain: "+d), true
	}
	if kw, ok := t.containsAny(f.lists.FanKeywords); ok {
		return verdict.Reject(verdict.FanContentDetected, "keyword: "+kw), true
	}
	return verdict.Rejected{}, false
}

// checkVoiceRole rejects photos of the performer for roles they only voiced.
// The image is kept if it mentions any animation keyword, the character or
// the franchise. Otherwise it is rejected when it names the performer or
// carries a performer-photo keyword such as "headshot".
func (f *Filter) checkVoiceRole(c candidate.Image, t text) (verdict.Rejected, bool) {
	role := c.Role
	if !role.VoiceRole || strings.TrimSpace(role.Character) == "" {
		return verdict.Rejected{}, false
	}

	contextWords := append([]string{role.Character}, f.lists.AnimationKeywords...)
	if role.Franchise != "" {
		contextWords = append(contextWords, role.Franchise)
	}
	if role.Name != "" {
		contextWords = append(contextWords, role.Name)
	}
	for _, kw := range contextWords {
		if t.hasPhrase(kw) {
			return verdict.Rejected{}, false
		}
	}

	if role.Celebrity != "" && t.hasAllWords(role.Celebrity) {
		return verdict.Reject(verdict.ActorPhotoInVoiceRole, "performer name without character context"), true
	}
	for _, kw := range f.lists.PerformerKeywords {
		if t.hasPhrase(kw) {
			return verdict.Reject(verdict.ActorPhotoInVoiceRole, "performer keyword: "+kw), true
		}
	}
	return verdict.Rejected{}, false
}

func checkVision(c candidate.Image, _ text) (verdict.Rejected, bool) {
	if c.Vision == candidate.VisionReject {
		return verdict.Reject(verdict.VisionRejected, "external vision verdict"), true
	}
	return verdict.Rejected{}, false
}

// hostMatches reports whether rawURL's host equals or is a subdomain of any
// listed domain.
func hostMatches(rawURL string, domains []string) (string, bool) {
	if rawURL == "" {
		return "", false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	if host == "" {
		return "", false
	}
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(d), "www.")
		if host == d || strings.HasSuffix(host, "."+d) {
			return d, true
		}
	}
	return "", false
}
