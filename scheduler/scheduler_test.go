package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/sabre/classfile"
	"github.com/dhamidi/sabre/classfile/classtest"
	"github.com/dhamidi/sabre/hierarchy"
	"github.com/dhamidi/sabre/mapping"
	"github.com/dhamidi/sabre/remap"
	"github.com/dhamidi/sabre/scheduler"
)

// closure builds n classes extending each other, each overriding run and
// calling it on its superclass. Classes at the positions in broken also
// call a method of a class that is not in the closure.
func closure(t testing.TB, n int, broken ...int) ([]*classfile.ClassFile, *mapping.Table) {
	t.Helper()
	b := mapping.NewBuilder()
	b.AddMethod("p/C0", "run", "()V", "execute")
	var classes []*classfile.ClassFile
	super := hierarchy.ObjectClass
	for i := range n {
		name := fmt.Sprintf("p/C%d", i)
		b.AddClass(name, fmt.Sprintf("q/K%d", i))
		c := classtest.New(name, super)
		code := []byte{classtest.OpAload0}
		if i > 0 {
			code = classtest.Ops(code, classtest.Invoke(classfile.OpInvokeVirtual, c.MethodRef(super, "run", "()V")))
		}
		for _, j := range broken {
			if j == i {
				code = classtest.Ops(code, classtest.Invoke(classfile.OpInvokeVirtual, c.MethodRef("x/Gone", "call", "()V")))
			}
		}
		code = classtest.Ops(code, []byte{classtest.OpReturn})
		c.Method(classfile.AccPublic, "run", "()V", c.Code(code))
		classes = append(classes, c.Build())
		super = name
	}
	tbl, err := b.Build()
	require.NoError(t, err)
	return classes, tbl
}

func encoded(t testing.TB, r *scheduler.Report) map[string][]byte {
	t.Helper()
	out := make(map[string][]byte)
	for _, res := range r.Done {
		data, err := res.Class.Encode()
		require.NoError(t, err)
		out[res.Name] = data
	}
	return out
}

func TestParsePolicy(t *testing.T) {
	p, err := scheduler.ParsePolicy("fail-fast")
	require.NoError(t, err)
	assert.Equal(t, scheduler.FailFast, p)
	p, err = scheduler.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, scheduler.BestEffort, p)
	_, err = scheduler.ParsePolicy("sometimes")
	assert.Error(t, err)
}

func TestRunRenamesEveryClass(t *testing.T) {
	classes, tbl := closure(t, 5)
	report, err := scheduler.New(scheduler.WithWorkers(2)).Run(context.Background(), classes, tbl)
	require.NoError(t, err)
	report.Sort()

	require.Len(t, report.Done, 5)
	assert.Empty(t, report.Failed)
	assert.Empty(t, report.Pending)
	for i, res := range report.Done {
		assert.Equal(t, fmt.Sprintf("p/C%d", i), res.Name)
		assert.Equal(t, scheduler.Done, res.State)
		assert.Equal(t, fmt.Sprintf("q/K%d", i), res.Class.ClassName())
		m := &res.Class.Methods[0]
		assert.Equal(t, "execute", m.Name(res.Class.ConstantPool))
	}
}

func TestOutputDoesNotDependOnWorkerCount(t *testing.T) {
	classes, tbl := closure(t, 40, 7, 23)

	one, err := scheduler.New(scheduler.WithWorkers(1)).Run(context.Background(), classes, tbl)
	require.NoError(t, err)
	many, err := scheduler.New(scheduler.WithWorkers(8)).Run(context.Background(), classes, tbl)
	require.NoError(t, err)
	one.Sort()
	many.Sort()

	assert.Equal(t, encoded(t, one), encoded(t, many))
	assert.Equal(t, one.Diagnostics(), many.Diagnostics())
	assert.Len(t, one.Diagnostics(), 2)
}

func TestStrictFailsUnresolvedClasses(t *testing.T) {
	classes, tbl := closure(t, 6, 2, 4)
	report, err := scheduler.New(scheduler.WithStrict(true), scheduler.WithWorkers(3)).Run(context.Background(), classes, tbl)
	require.NoError(t, err)
	report.Sort()

	require.Len(t, report.Failed, 2)
	assert.Equal(t, "p/C2", report.Failed[0].Name)
	assert.Equal(t, "p/C4", report.Failed[1].Name)
	for _, res := range report.Failed {
		assert.Equal(t, scheduler.Failed, res.State)
		assert.True(t, remap.HasErrors(res.Diagnostics))
		assert.Equal(t, remap.KindUnresolvedMember, res.Diagnostics[0].Kind)
	}
	assert.Len(t, report.Done, 4)
}

func TestFailFastStopsDispatch(t *testing.T) {
	classes, tbl := closure(t, 10, 0)
	s := scheduler.New(
		scheduler.WithStrict(true),
		scheduler.WithWorkers(1),
		scheduler.WithPolicy(scheduler.FailFast),
	)
	report, err := s.Run(context.Background(), classes, tbl)
	require.Error(t, err)
	assert.True(t, errors.Is(err, scheduler.ErrFailFast))
	assert.Contains(t, err.Error(), "p/C0")

	require.NotNil(t, report)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "p/C0", report.Failed[0].Name)
	assert.Empty(t, report.Done, "no class may start after the failure")
	assert.Len(t, report.Pending, len(classes)-1)
}

func TestCancelledRunLeavesClassesPending(t *testing.T) {
	classes, tbl := closure(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := scheduler.New().Run(ctx, classes, tbl)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	report.Sort()
	assert.Empty(t, report.Done)
	assert.Equal(t, []string{"p/C0", "p/C1", "p/C2", "p/C3"}, report.Pending)
}

func TestAmbiguousMappingAbortsBeforeRewriting(t *testing.T) {
	classes, _ := closure(t, 2)
	b := mapping.NewBuilder()
	b.AddMethod("p/C0", "run", "()V", "one")
	b.AddMethod("p/C1", "run", "()V", "two")
	tbl, err := b.Build()
	require.NoError(t, err)

	report, err := scheduler.New().Run(context.Background(), classes, tbl)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, mapping.ErrAmbiguousMapping)
}

func TestLibrariesResolveButAreNotRewritten(t *testing.T) {
	lib := classtest.New("l/Base", hierarchy.ObjectClass)
	lib.Method(classfile.AccPublic, "hook", "()V")

	c := classtest.New("p/Impl", "l/Base")
	c.Method(classfile.AccPublic, "hook", "()V")

	b := mapping.NewBuilder()
	b.AddMethod("l/Base", "hook", "()V", "onHook")
	tbl, err := b.Build()
	require.NoError(t, err)

	report, err := scheduler.New().Run(context.Background(), []*classfile.ClassFile{c.Build()}, tbl,
		scheduler.WithLibraries(lib.Build()))
	require.NoError(t, err)
	require.Len(t, report.Done, 1)
	out := report.Done[0].Class
	assert.Equal(t, "onHook", out.Methods[0].Name(out.ConstantPool))
}

func TestPartialHierarchyWarnings(t *testing.T) {
	c := classtest.New("p/Orphan", "p/Missing")
	c.Method(classfile.AccPublic, "run", "()V")

	report, err := scheduler.New().Run(context.Background(), []*classfile.ClassFile{c.Build()}, mapping.Empty())
	require.NoError(t, err)
	require.NotEmpty(t, report.Warnings)
	assert.Equal(t, remap.KindPartialHierarchy, report.Warnings[0].Kind)
	assert.Equal(t, "p/Orphan", report.Warnings[0].Class)
	assert.Len(t, report.Done, 1)
}

func BenchmarkRun(b *testing.B) {
	classes, tbl := closure(b, 500)
	s := scheduler.New()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Run(context.Background(), classes, tbl); err != nil {
			b.Fatal(err)
		}
	}
}
