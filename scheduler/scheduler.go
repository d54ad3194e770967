// Package scheduler runs a remap over a closure of classes: it builds the
// hierarchy index and the remap plan once, then rewrites the classes on a
// fixed number of workers.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/sabre/classfile"
	"github.com/dhamidi/sabre/hierarchy"
	"github.com/dhamidi/sabre/mapping"
	"github.com/dhamidi/sabre/remap"
)

// ErrFailFast is returned when a FailFast run stops after a failed class.
var ErrFailFast = errors.New("remap stopped after a failed class")

type Policy uint8

const (
	// BestEffort remaps every class and reports the failures.
	BestEffort Policy = iota
	// FailFast stops dispatching classes after the first failure.
	FailFast
)

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "best-effort", "besteffort":
		return BestEffort, nil
	case "fail-fast", "failfast":
		return FailFast, nil
	}
	return BestEffort, fmt.Errorf("unknown policy %q", s)
}

type State uint8

const (
	Pending State = iota
	Resolving
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "pending"
}

type Option func(*Scheduler)

func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithPolicy(p Policy) Option {
	return func(s *Scheduler) { s.policy = p }
}

// WithStrict fails classes with unresolved references.
func WithStrict(strict bool) Option {
	return func(s *Scheduler) { s.strict = strict }
}

func WithLogger(log commonlog.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithHierarchyOptions passes options to the hierarchy builder.
func WithHierarchyOptions(opts ...hierarchy.Option) Option {
	return func(s *Scheduler) { s.hierarchyOpts = append(s.hierarchyOpts, opts...) }
}

// WithRemapOptions passes options to the remapper.
func WithRemapOptions(opts ...remap.Option) Option {
	return func(s *Scheduler) { s.remapOpts = append(s.remapOpts, opts...) }
}

type Scheduler struct {
	workers       int
	policy        Policy
	strict        bool
	log           commonlog.Logger
	hierarchyOpts []hierarchy.Option
	remapOpts     []remap.Option
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		workers: runtime.GOMAXPROCS(0),
		log:     commonlog.GetLogger("sabre.scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RunOption func(*run)

type run struct {
	libraries []*classfile.ClassFile
}

// WithLibraries adds classes that take part in resolution but are not
// rewritten.
func WithLibraries(classes ...*classfile.ClassFile) RunOption {
	return func(r *run) { r.libraries = append(r.libraries, classes...) }
}

// Result is the outcome for one class. Class is nil when the class could
// not be rewritten at all.
type Result struct {
	Name        string
	State       State
	Class       *classfile.ClassFile
	Diagnostics []remap.Diagnostic
}

// Report collects the outcome of a run. Done and Failed are in completion
// order until Sort is called.
type Report struct {
	Done     []Result
	Failed   []Result
	Warnings []remap.Diagnostic
	Pending  []string
}

// Sort orders every list by class name, for output that does not depend on
// scheduling.
func (r *Report) Sort() {
	byName := func(a, b Result) int { return strings.Compare(a.Name, b.Name) }
	slices.SortFunc(r.Done, byName)
	slices.SortFunc(r.Failed, byName)
	slices.SortFunc(r.Warnings, remap.Compare)
	slices.Sort(r.Pending)
	for _, res := range r.Done {
		slices.SortFunc(res.Diagnostics, remap.Compare)
	}
	for _, res := range r.Failed {
		slices.SortFunc(res.Diagnostics, remap.Compare)
	}
}

// Diagnostics returns every class diagnostic of the report.
func (r *Report) Diagnostics() []remap.Diagnostic {
	var out []remap.Diagnostic
	for _, res := range r.Done {
		out = append(out, res.Diagnostics...)
	}
	for _, res := range r.Failed {
		out = append(out, res.Diagnostics...)
	}
	return out
}

// Plan builds the hierarchy index over classes and libraries and the remap
// plan for table. It is the barrier between the two phases of Run.
func (s *Scheduler) Plan(classes []*classfile.ClassFile, table *mapping.Table, opts ...RunOption) (*remap.Remapper, error) {
	var cfg run
	for _, opt := range opts {
		opt(&cfg)
	}
	b := hierarchy.NewBuilder(s.hierarchyOpts...)
	for _, cf := range classes {
		if err := b.AddClassFile(cf); err != nil {
			return nil, err
		}
	}
	for _, cf := range cfg.libraries {
		if err := b.AddClassFile(cf); err != nil {
			// a library class shadowed by an input class is ignored
			if errors.Is(err, hierarchy.ErrDuplicateClass) {
				s.log.Debugf("library class %s shadowed by input", cf.ClassName())
				continue
			}
			return nil, err
		}
	}
	idx := b.Build()
	s.log.Infof("indexed %d classes (%d override families)", idx.Len(), idx.Families())

	opt := append([]remap.Option{remap.WithStrict(s.strict)}, s.remapOpts...)
	r, err := remap.New(idx, table, opt...)
	if err != nil {
		return nil, fmt.Errorf("plan remap: %w", err)
	}
	return r, nil
}

// Run remaps classes with table. Fatal errors of the plan, such as an
// ambiguous mapping, are returned before any class is touched. Class
// failures are in the report; the error is only non-nil when ctx is
// cancelled or a FailFast run stopped, and the report then lists the
// classes that never started.
func (s *Scheduler) Run(ctx context.Context, classes []*classfile.ClassFile, table *mapping.Table, opts ...RunOption) (*Report, error) {
	r, err := s.Plan(classes, table, opts...)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, w := range r.Index().Warnings() {
		report.Warnings = append(report.Warnings, remap.Diagnostic{
			Class:    w.Class,
			Kind:     remap.KindPartialHierarchy,
			Severity: remap.SeverityWarning,
			Detail:   w.Error(),
		})
	}
	report.Warnings = append(report.Warnings, r.Warnings()...)

	states := make([]State, len(classes))
	visitors := make(chan *remap.Visitor, s.workers)
	for range s.workers {
		visitors <- r.NewVisitor()
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, cf := range classes {
		if gctx.Err() != nil {
			break
		}
		states[i] = Resolving
		g.Go(func() error {
			// g.Go may have waited for a slot past the stop signal
			if gctx.Err() != nil {
				states[i] = Pending
				return nil
			}
			v := <-visitors
			out, diags := v.Remap(cf)
			visitors <- v

			res := Result{Name: cf.ClassName(), State: Done, Class: out, Diagnostics: diags}
			if out == nil || remap.HasErrors(diags) {
				res.State = Failed
			}
			states[i] = res.State

			mu.Lock()
			defer mu.Unlock()
			if res.State == Done {
				report.Done = append(report.Done, res)
				return nil
			}
			report.Failed = append(report.Failed, res)
			s.log.Warningf("class %s failed with %d diagnostics", res.Name, len(diags))
			if s.policy == FailFast {
				return fmt.Errorf("%w: %s: %s", ErrFailFast, res.Name, firstError(diags))
			}
			return nil
		})
	}
	err = g.Wait()

	for i, st := range states {
		if st == Pending {
			report.Pending = append(report.Pending, classes[i].ClassName())
		}
	}
	s.log.Infof("remapped %d classes, %d failed, %d not started", len(report.Done), len(report.Failed), len(report.Pending))
	if err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func firstError(diags []remap.Diagnostic) string {
	for _, d := range diags {
		if d.Severity == remap.SeverityError {
			return d.Kind.String() + ": " + d.Detail
		}
	}
	return "no output"
}
