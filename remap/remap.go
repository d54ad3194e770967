// Package remap rewrites the symbolic content of class files through a
// mapping table. A Remapper turns the table into a plan keyed by member
// declarations, so that an overridden method and all its overrides receive
// one name; Visitors apply the plan to single classes.
//
// The constant pool keeps its indices: renamed strings are appended as new
// entries and the referring entries are redirected, so bytecode is never
// touched.
package remap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhamidi/sabre/hierarchy"
	"github.com/dhamidi/sabre/mapping"
)

// DefaultCacheSize is the number of rewritten descriptors a Visitor keeps.
const DefaultCacheSize = 4096

type Option func(*Remapper)

// WithStrict makes unresolved references errors, which fail their class.
func WithStrict(strict bool) Option {
	return func(r *Remapper) { r.strict = strict }
}

// WithSourceNames regenerates the SourceFile attribute of renamed classes
// from their new simple name.
func WithSourceNames(rebuild bool) Option {
	return func(r *Remapper) { r.sourceNames = rebuild }
}

// WithCacheSize sets the size of the per-visitor descriptor cache.
func WithCacheSize(n int) Option {
	return func(r *Remapper) {
		if n > 0 {
			r.cacheSize = n
		}
	}
}

// Remapper holds the remap plan. It is immutable after New and may be shared
// by any number of Visitors.
type Remapper struct {
	idx         *hierarchy.Index
	table       *mapping.Table
	strict      bool
	sourceNames bool
	cacheSize   int

	names    map[hierarchy.MemberRef]string
	families map[hierarchy.FamilyID]string
	warnings []Diagnostic
}

// New builds the remap plan: every member entry of the table is resolved to
// the declaration it names, and every override family receives the target
// of its entries. Two different targets for one declaration or one family
// fail with mapping.ErrAmbiguousMapping. Entries that do not resolve are
// kept as plan warnings.
func New(idx *hierarchy.Index, table *mapping.Table, opts ...Option) (*Remapper, error) {
	r := &Remapper{
		idx:       idx,
		table:     table,
		cacheSize: DefaultCacheSize,
		names:     make(map[hierarchy.MemberRef]string),
		families:  make(map[hierarchy.FamilyID]string),
	}
	for _, opt := range opts {
		opt(r)
	}

	// the first entry claiming a declaration or family names it
	claimed := make(map[any]mapping.Entry)
	for e := range table.All() {
		if e.Kind != mapping.KindField && e.Kind != mapping.KindMethod {
			continue
		}
		refs, err := r.declarations(e)
		if err != nil {
			r.warnings = append(r.warnings, r.planDiagnostic(e, err))
			continue
		}
		for _, ref := range refs {
			if err := r.claim(claimed, e, ref); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// declarations finds the members an entry renames. Field entries without a
// descriptor rename every field of that name in the owner.
func (r *Remapper) declarations(e mapping.Entry) ([]hierarchy.MemberRef, error) {
	if e.Kind == mapping.KindField && e.Descriptor == "" {
		id, ok := r.idx.Lookup(e.Owner)
		if !ok {
			return nil, &hierarchy.UnresolvedError{Owner: e.Owner, Name: e.Name, Kind: hierarchy.FieldMember}
		}
		var refs []hierarchy.MemberRef
		for i, m := range r.idx.Class(id).Members {
			if m.Kind == hierarchy.FieldMember && m.Name == e.Name {
				refs = append(refs, hierarchy.MemberRef{Class: id, Index: i})
			}
		}
		if len(refs) == 0 {
			return nil, &hierarchy.UnresolvedError{Owner: e.Owner, Name: e.Name, Kind: hierarchy.FieldMember}
		}
		return refs, nil
	}

	kind := hierarchy.MethodMember
	if e.Kind == mapping.KindField {
		kind = hierarchy.FieldMember
	}
	res, err := r.idx.DeclaringClassOf(e.Owner, e.Name, e.Descriptor, kind)
	if err != nil {
		return nil, err
	}
	if res.External {
		return nil, errExternal
	}
	return []hierarchy.MemberRef{res.Ref}, nil
}

var errExternal = errors.New("declared outside the closure")

func (r *Remapper) claim(claimed map[any]mapping.Entry, e mapping.Entry, ref hierarchy.MemberRef) error {
	m := r.idx.Member(ref)
	if m.Name == "<init>" || m.Name == "<clinit>" {
		return nil
	}
	var key any = ref
	subject := fmt.Sprintf("%s %s.%s%s", m.Kind, r.idx.Name(ref.Class), m.Name, m.Descriptor)
	fam := r.idx.Family(ref)
	if fam != hierarchy.NoFamily {
		key = fam
		subject = "override family of " + subject
		for _, member := range r.idx.FamilyMembers(fam) {
			if name := r.idx.Name(member.Class); r.idx.IsLibrary(name) {
				r.warnings = append(r.warnings, Diagnostic{
					Kind:     KindLibraryMember,
					Severity: SeverityWarning,
					Detail:   fmt.Sprintf("%s overrides %s.%s%s and keeps its name", e.Source(), name, m.Name, m.Descriptor),
				})
				return nil
			}
		}
	}
	if prev, ok := claimed[key]; ok {
		if prev.Target != e.Target {
			return &mapping.AmbiguityError{Subject: subject, First: prev.Target, Second: e.Target}
		}
		return nil
	}
	claimed[key] = e
	if fam != hierarchy.NoFamily {
		r.families[fam] = e.Target
	} else {
		r.names[ref] = e.Target
	}
	return nil
}

func (r *Remapper) planDiagnostic(e mapping.Entry, err error) Diagnostic {
	d := Diagnostic{Kind: KindUnresolvedMember, Severity: SeverityWarning}
	if ue, ok := err.(*hierarchy.UnresolvedError); ok && ue.Partial {
		d.Kind = KindPartialHierarchy
	}
	d.Detail = fmt.Sprintf("mapping %s: %v", e, err)
	return d
}

// Warnings returns the problems found while planning.
func (r *Remapper) Warnings() []Diagnostic { return r.warnings }

func (r *Remapper) Index() *hierarchy.Index { return r.idx }

func (r *Remapper) Table() *mapping.Table { return r.table }

// MemberName returns the planned name of a declaration.
func (r *Remapper) MemberName(ref hierarchy.MemberRef) string {
	if fam := r.idx.Family(ref); fam != hierarchy.NoFamily {
		if name, ok := r.families[fam]; ok {
			return name
		}
	} else if name, ok := r.names[ref]; ok {
		return name
	}
	return r.idx.Member(ref).Name
}

// sourceFileName derives a SourceFile value from a class name, keeping the
// extension of the previous value.
func sourceFileName(class, previous string) string {
	simple := class[strings.LastIndexByte(class, '/')+1:]
	if i := strings.IndexByte(simple, '$'); i > 0 {
		simple = simple[:i]
	}
	ext := ".java"
	if i := strings.LastIndexByte(previous, '.'); i >= 0 {
		ext = previous[i:]
	}
	return simple + ext
}
