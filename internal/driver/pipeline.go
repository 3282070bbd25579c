// Package driver runs programs through the build, liveness and render
// phases, alone or many at once.
package driver

import (
	"context"
	"fmt"
	"strings"

	"shady/internal/build"
	"shady/internal/glsl"
	"shady/internal/ir"
	"shady/internal/liveness"
	"shady/internal/observ"
	"shady/internal/samples"
	"shady/internal/snapshot"
	"shady/internal/trace"
)

// Options configure a pipeline run.
type Options struct {
	Storage ir.StorageMode
	GLSL    glsl.Options
	// Cache, when set, is consulted before liveness and rendering.
	Cache    *DiskCache
	Observer PhaseObserver
}

// Unit is one program to render: either a recipe that builds it or an
// already finished program.
type Unit struct {
	Name    string
	Build   func(build.Options) (*ir.Program, error)
	Program *ir.Program
}

// SampleUnits resolves sample names; no names selects every sample.
func SampleUnits(names []string) ([]Unit, error) {
	if len(names) == 0 {
		all := samples.All()
		units := make([]Unit, len(all))
		for i, s := range all {
			units[i] = Unit{Name: s.Name, Build: s.Build}
		}
		return units, nil
	}
	units := make([]Unit, 0, len(names))
	for _, name := range names {
		s, ok := samples.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown sample %q", name)
		}
		units = append(units, Unit{Name: s.Name, Build: s.Build})
	}
	return units, nil
}

// Stats are the liveness counters of one render.
type Stats struct {
	Temporaries int
	Unused      int
	Consts      int
}

// Result is the outcome of compiling one unit.
type Result struct {
	Name    string
	Program *ir.Program
	// Annotations is nil when the source came from the cache.
	Annotations *liveness.Annotations
	Source      string
	Stats       Stats
	Cached      bool
	Timing      observ.Report
}

type run struct {
	ctx   context.Context
	unit  string
	opts  Options
	timer *observ.Timer
	tr    trace.Tracer
	span  uint64
}

func (r *run) phase(name string, fn func() (string, error)) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	sp := trace.Begin(r.tr, trace.ScopeProgram, name, r.span)
	idx := r.timer.Begin(name)
	r.notify(PhaseEvent{Unit: r.unit, Name: name, Status: PhaseStart})
	note, err := fn()
	if err != nil {
		note = err.Error()
	}
	elapsed := r.timer.End(idx, note)
	sp.End(note)
	r.notify(PhaseEvent{Unit: r.unit, Name: name, Status: PhaseEnd, Elapsed: elapsed})
	return err
}

func (r *run) notify(ev PhaseEvent) {
	if r.opts.Observer != nil {
		r.opts.Observer(ev)
	}
}

// Compile builds (when needed), analyzes and renders one unit.
func Compile(ctx context.Context, u Unit, opts Options) (*Result, error) {
	tr := trace.FromContext(ctx)
	sp := trace.Begin(tr, trace.ScopeDriver, "compile:"+u.Name, trace.CurrentSpan(ctx))
	r := &run{ctx: ctx, unit: u.Name, opts: opts, timer: observ.NewTimer(), tr: tr, span: sp.ID()}
	res := &Result{Name: u.Name, Program: u.Program}

	err := r.compile(u, res)
	res.Timing = r.timer.Report()
	if err != nil {
		sp.End(err.Error())
		r.notify(PhaseEvent{Unit: u.Name, Status: UnitFailed, Err: err})
		return nil, fmt.Errorf("%s: %w", u.Name, err)
	}
	r.notify(PhaseEvent{Unit: u.Name, Status: UnitDone, Elapsed: r.timer.Total()})
	detail := "rendered"
	if res.Cached {
		detail = "cached"
	}
	sp.End(detail)
	return res, nil
}

func (r *run) compile(u Unit, res *Result) error {
	if res.Program == nil {
		if u.Build == nil {
			return fmt.Errorf("nothing to compile")
		}
		err := r.phase("build", func() (string, error) {
			p, err := u.Build(build.Options{
				Name:       u.Name,
				Storage:    r.opts.Storage,
				Tracer:     r.tr,
				ParentSpan: r.span,
			})
			if err != nil {
				return "", err
			}
			res.Program = p
			return fmt.Sprintf("%d exprs, %d instrs", p.Exprs.Len(), p.Instrs.Len()), nil
		})
		if err != nil {
			return err
		}
	}

	var key Digest
	if r.opts.Cache != nil {
		err := r.phase("cache", func() (string, error) {
			data, err := snapshot.Marshal(res.Program)
			if err != nil {
				return "", err
			}
			key = CacheKey(data, r.opts.GLSL)
			entry, ok, err := r.opts.Cache.Get(key)
			if err != nil || !ok {
				// A broken entry is rewritten after rendering.
				return "miss", nil
			}
			res.Source = entry.Source
			res.Stats = Stats{Temporaries: entry.Temporaries, Unused: entry.Unused, Consts: entry.Consts}
			res.Cached = true
			return "hit", nil
		})
		if err != nil || res.Cached {
			return err
		}
	}

	err := r.phase("liveness", func() (string, error) {
		res.Annotations = liveness.Analyze(res.Program)
		res.Stats = Stats{
			Temporaries: res.Annotations.Count(ir.DeclTemporary),
			Unused:      res.Annotations.Count(ir.DeclUnused),
			Consts:      res.Annotations.Count(ir.DeclConst),
		}
		return fmt.Sprintf("%d temporaries, %d unused", res.Stats.Temporaries, res.Stats.Unused), nil
	})
	if err != nil {
		return err
	}

	err = r.phase("render", func() (string, error) {
		src, err := glsl.Render(res.Program, res.Annotations, r.opts.GLSL)
		if err != nil {
			return "", err
		}
		res.Source = src
		return fmt.Sprintf("%d lines", strings.Count(src, "\n")), nil
	})
	if err != nil {
		return err
	}

	if r.opts.Cache != nil {
		entry := &CachedRender{
			Name:        res.Name,
			Source:      res.Source,
			Temporaries: res.Stats.Temporaries,
			Unused:      res.Stats.Unused,
			Consts:      res.Stats.Consts,
		}
		if err := r.opts.Cache.Put(key, entry); err != nil {
			trace.Point(r.tr, trace.ScopeDriver, "cache-put", err.Error(), r.span)
		}
	}
	return nil
}
