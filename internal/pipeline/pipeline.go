// Package pipeline runs candidate batches through filtering, inspection,
// deduplication, format selection and rendering.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AnyUserName/printcurate-cli/internal/candidate"
	"github.com/AnyUserName/printcurate-cli/internal/inspect"
	"github.com/AnyUserName/printcurate-cli/internal/ledger"
	"github.com/AnyUserName/printcurate-cli/internal/logging"
	"github.com/AnyUserName/printcurate-cli/internal/manifest"
	"github.com/AnyUserName/printcurate-cli/internal/phash"
	"github.com/AnyUserName/printcurate-cli/internal/policy"
	"github.com/AnyUserName/printcurate-cli/internal/printformat"
	"github.com/AnyUserName/printcurate-cli/internal/render"
	"github.com/AnyUserName/printcurate-cli/internal/verdict"
)

// Recorder receives every final verdict. *ledger.Ledger satisfies it.
type Recorder interface {
	Record(ctx context.Context, e ledger.Entry) error
}

// Renderer writes prints beneath the output root. *render.Renderer
// satisfies it.
type Renderer interface {
	Prepare(formats []printformat.Format) error
	Render(img image.Image, f printformat.Format, seq int, names render.Names) (render.Output, error)
}

// Config holds all parameters for a pipeline run. Zero values get defaults.
type Config struct {
	OutputDir string
	// Celebrity overrides the manifest's celebrity field, which otherwise
	// comes from the roles.
	Celebrity        string
	Workers          int
	DedupThreshold   float64
	MaxImagesPerRole int // 0 means unlimited

	Selector  *printformat.Selector
	Policy    *policy.Filter
	Inspector *inspect.Inspector
	Renderer  Renderer
	// Sequencer numbers outputs per format. One is created per run if nil.
	Sequencer *render.Sequencer
	Recorder  Recorder
	RunID     string
	Logger    *zap.Logger
	Now       func() time.Time
}

// Pipeline orchestrates one or more runs with a fixed configuration.
type Pipeline struct {
	cfg       Config
	selector  *printformat.Selector
	policy    *policy.Filter
	inspector *inspect.Inspector
	renderer  Renderer
	logger    *zap.Logger
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	cfg.Logger = logging.OrNop(cfg.Logger)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Selector == nil {
		cfg.Selector = printformat.NewSelector(nil, 0, 0)
	}
	if cfg.Policy == nil {
		cfg.Policy = policy.New(policy.WithLogger(cfg.Logger))
	}
	if cfg.Inspector == nil {
		cfg.Inspector = inspect.New(inspect.Config{Selector: cfg.Selector, CheckMetadata: true, Logger: cfg.Logger})
	}
	if cfg.Renderer == nil {
		cfg.Renderer = render.New(cfg.OutputDir, render.WithLogger(cfg.Logger))
	}
	return &Pipeline{
		cfg:       cfg,
		selector:  cfg.Selector,
		policy:    cfg.Policy,
		inspector: cfg.Inspector,
		renderer:  cfg.Renderer,
		logger:    cfg.Logger,
	}
}

// Run processes batches and returns the report with its manifest. Per-image
// problems become rejections and fatal conditions fail only their role; the
// returned error is reserved for cancellation and invalid input.
func (p *Pipeline) Run(ctx context.Context, batches []candidate.Batch) (*Report, error) {
	if len(batches) == 0 {
		return nil, errors.New("pipeline: no roles to process")
	}
	runID := p.cfg.RunID
	if runID == "" {
		runID = ledger.NewRunID()
	}
	log := p.logger.With(zap.String("run", runID))

	// Flatten in input order; roles keep their batch index.
	var items []*item
	byRole := make([][]*item, len(batches))
	for ri, b := range batches {
		if strings.TrimSpace(b.Role.Name) == "" {
			return nil, fmt.Errorf("pipeline: role %d has no name", ri)
		}
		for _, c := range b.Candidates {
			c.Role = b.Role
			it := &item{role: ri, cand: c}
			items = append(items, it)
			byRole[ri] = append(byRole[ri], it)
		}
	}
	log.Info("starting run",
		zap.Int("roles", len(batches)),
		zap.Int("candidates", len(items)),
		zap.Int("workers", p.cfg.Workers),
	)

	// Phase 1: filter, inspect and fingerprint every candidate.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for _, it := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.screen(it)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: screening: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 2: per-role dedup in input order, then the per-role cap.
	for ri, b := range batches {
		p.dedupRole(byRole[ri], b.Role.Name, log)
	}

	// Phase 3: claim sequence numbers in stable order, then render.
	seq := p.cfg.Sequencer
	if seq == nil {
		names := make([]string, 0, len(p.selector.Formats()))
		for _, f := range p.selector.Formats() {
			names = append(names, f.Name)
		}
		seq = render.NewSequencer(names...)
	}
	jobs := make([][]*job, len(batches))
	for ri := range batches {
		for _, it := range byRole[ri] {
			if !it.verdict.OK() || it.capped {
				continue
			}
			j := &job{role: ri, item: it, formats: it.result.Formats}
			for _, f := range j.formats {
				n, err := seq.Next(f.Name)
				if err != nil {
					return nil, fmt.Errorf("pipeline: %w", err)
				}
				j.seqs = append(j.seqs, n)
			}
			jobs[ri] = append(jobs[ri], j)
		}
	}

	roleErrs := make([]error, len(batches))
	if err := p.renderer.Prepare(p.selector.Formats()); err != nil {
		for ri, b := range batches {
			if len(jobs[ri]) > 0 {
				roleErrs[ri] = fmt.Errorf("role %s: %w", b.Role.Name, err)
			}
		}
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for ri, b := range batches {
		names := render.Names{Celebrity: firstNonEmpty(b.Role.Celebrity, p.cfg.Celebrity), Show: b.Role.Name}
		for _, j := range jobs[ri] {
			if roleErrs[ri] != nil || gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				p.renderJob(j, names)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: rendering: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{RunID: runID, Roles: make([]RoleReport, len(batches))}
	roleNames := make([]string, 0, len(batches))
	for ri, b := range batches {
		rr := RoleReport{Role: b.Role, Err: roleErrs[ri]}
		var outs []render.Output
		for _, j := range jobs[ri] {
			switch {
			case j.err != nil && isFatal(j.err):
				if rr.Err == nil {
					rr.Err = fmt.Errorf("role %s: %w", b.Role.Name, j.err)
				}
				outs = append(outs, j.outputs...)
			case j.err != nil:
				p.discard(j.outputs)
				j.outputs = nil
				j.item.verdict = verdict.Rejectf(verdict.ProcessingError, "render: %v", j.err)
				p.logRejection(j.item, b.Role.Name)
			default:
				outs = append(outs, j.outputs...)
			}
		}
		if rr.Err != nil {
			log.Error("role failed, discarding outputs", zap.String("role", b.Role.Name), zap.Error(rr.Err))
			p.discard(outs)
			outs = nil
		} else {
			rr.Outputs = outs
		}

		for _, it := range byRole[ri] {
			o := Outcome{
				Candidate:   it.cand,
				Verdict:     it.verdict,
				Capped:      it.capped,
				Fingerprint: it.result.Fingerprint,
				Digest:      it.result.Digest,
			}
			if it.verdict.OK() && !it.capped && rr.Err == nil {
				for _, f := range it.result.Formats {
					o.Formats = append(o.Formats, f.Name)
				}
			}
			rr.Outcomes = append(rr.Outcomes, o)
		}
		p.record(ctx, runID, rr)

		log.Info("role complete",
			zap.String("role", b.Role.Name),
			zap.Int("candidates", len(rr.Outcomes)),
			zap.Int("accepted", rr.Accepted()),
			zap.Int("outputs", len(rr.Outputs)),
		)
		report.Roles[ri] = rr
		roleNames = append(roleNames, b.Role.Name)
	}

	report.Manifest = manifest.Build(report.Outputs(), manifest.Info{
		Celebrity: p.celebrity(batches),
		RunID:     runID,
		Generated: p.cfg.Now(),
		Roles:     roleNames,
	})
	for _, name := range report.EmptyRoles() {
		log.Warn("role produced no images", zap.String("role", name))
	}
	return report, nil
}

// dedupRole registers fingerprints in input order against a fresh index,
// so the earliest of two near-duplicates survives.
func (p *Pipeline) dedupRole(items []*item, roleName string, log *zap.Logger) {
	idx := phash.NewIndex(p.cfg.DedupThreshold)
	kept := 0
	for _, it := range items {
		if !it.verdict.OK() {
			p.logRejection(it, roleName)
			continue
		}
		if dup, of := idx.CheckAndRegister(it.result.Fingerprint, it.cand.Filename()); dup {
			it.verdict = verdict.Reject(verdict.DuplicateDetected, "near-duplicate of "+of)
			p.logRejection(it, roleName)
			continue
		}
		if p.cfg.MaxImagesPerRole > 0 && kept >= p.cfg.MaxImagesPerRole {
			it.capped = true
			log.Debug("over per-role limit", zap.String("file", it.cand.Filename()), zap.String("role", roleName))
			continue
		}
		kept++
	}
}

func (p *Pipeline) record(ctx context.Context, runID string, rr RoleReport) {
	if p.cfg.Recorder == nil {
		return
	}
	for _, o := range rr.Outcomes {
		e := ledger.Entry{
			RunID:     runID,
			Role:      rr.Role.Name,
			File:      o.Candidate.Path,
			SourceURL: o.Candidate.SourceURL,
			Accepted:  o.Accepted(),
			Digest:    o.Digest,
		}
		if r, ok := o.Verdict.(verdict.Rejected); ok {
			e.Reason, e.Detail = string(r.Reason), r.Detail
		}
		if o.Fingerprint.Valid() {
			e.Hash = o.Fingerprint.String()
		}
		if err := p.cfg.Recorder.Record(ctx, e); err != nil {
			p.logger.Warn("ledger write failed", zap.String("file", e.File), zap.Error(err))
		}
	}
}

func (p *Pipeline) celebrity(batches []candidate.Batch) string {
	if p.cfg.Celebrity != "" {
		return p.cfg.Celebrity
	}
	var names []string
	seen := map[string]bool{}
	for _, b := range batches {
		c := strings.TrimSpace(b.Role.Celebrity)
		if c != "" && !seen[c] {
			seen[c] = true
			names = append(names, c)
		}
	}
	return strings.Join(names, ", ")
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
