package pipeline

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/AnyUserName/printcurate-cli/internal/candidate"
	"github.com/AnyUserName/printcurate-cli/internal/inspect"
	"github.com/AnyUserName/printcurate-cli/internal/printformat"
	"github.com/AnyUserName/printcurate-cli/internal/render"
	"github.com/AnyUserName/printcurate-cli/internal/verdict"
)

// item is one candidate moving through the phases.
type item struct {
	role    int
	cand    candidate.Image
	verdict verdict.Verdict
	result  inspect.Result
	capped  bool
}

// screen runs the policy filters and then the inspector. The decoded pixels
// are dropped once fingerprinted; rendering decodes again so memory stays
// bounded by the worker count.
func (p *Pipeline) screen(it *item) {
	if v := p.policy.Evaluate(it.cand); !v.OK() {
		it.verdict = v
		return
	}
	res, v := p.inspector.Inspect(it.cand)
	res.Image = nil
	it.result, it.verdict = res, v
}

// job renders one survivor into every format it was assigned, with
// sequence numbers claimed ahead of time.
type job struct {
	role    int
	item    *item
	formats []printformat.Format
	seqs    []int
	outputs []render.Output
	err     error
}

// isFatal reports whether err aborts the whole role.
func isFatal(err error) bool {
	return errors.Is(err, render.ErrDiskFull) || errors.Is(err, render.ErrOutputDir)
}

func (p *Pipeline) renderJob(j *job, names render.Names) {
	img, err := inspect.Decode(j.item.cand.Path)
	if err != nil {
		j.err = err
		return
	}
	for i, f := range j.formats {
		out, err := p.renderer.Render(img, f, j.seqs[i], names)
		if err != nil {
			j.err = fmt.Errorf("%s: %w", f.Name, err)
			return
		}
		out.Source = j.item.cand
		out.Fingerprint = j.item.result.Fingerprint
		j.outputs = append(j.outputs, out)
	}
}

// discard removes files already written for outputs that will not be
// delivered.
func (p *Pipeline) discard(outs []render.Output) {
	for _, o := range outs {
		if err := os.Remove(o.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("could not remove discarded output", zap.String("file", o.Path), zap.Error(err))
		}
	}
}

func (p *Pipeline) logRejection(it *item, roleName string) {
	r, ok := it.verdict.(verdict.Rejected)
	if !ok {
		return
	}
	p.logger.Info("candidate rejected",
		zap.String("file", it.cand.Filename()),
		zap.String("role", roleName),
		zap.String("reason", string(r.Reason)),
		zap.String("detail", r.Detail),
	)
}
