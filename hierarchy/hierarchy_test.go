package hierarchy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/sabre/classfile"
	"github.com/dhamidi/sabre/classfile/classtest"
	"github.com/dhamidi/sabre/hierarchy"
)

const (
	pub      = classfile.AccPublic
	abstract = classfile.AccPublic | classfile.AccAbstract
)

func method(flags classfile.AccessFlags, name, desc string) hierarchy.Member {
	return hierarchy.Member{Kind: hierarchy.MethodMember, Name: name, Descriptor: desc, Flags: flags}
}

func field(flags classfile.AccessFlags, name, desc string) hierarchy.Member {
	return hierarchy.Member{Kind: hierarchy.FieldMember, Name: name, Descriptor: desc, Flags: flags}
}

func class(name, super string, ifaces []string, members ...hierarchy.Member) hierarchy.ClassDescriptor {
	return hierarchy.ClassDescriptor{
		Name:       name,
		Super:      super,
		Interfaces: ifaces,
		Flags:      classfile.AccPublic | classfile.AccSuper,
		Members:    members,
	}
}

func iface(name string, supers []string, members ...hierarchy.Member) hierarchy.ClassDescriptor {
	return hierarchy.ClassDescriptor{
		Name:       name,
		Super:      hierarchy.ObjectClass,
		Interfaces: supers,
		Flags:      classfile.AccPublic | classfile.AccInterface | classfile.AccAbstract,
		Members:    members,
	}
}

func build(t *testing.T, classes ...hierarchy.ClassDescriptor) *hierarchy.Index {
	t.Helper()
	b := hierarchy.NewBuilder()
	for _, c := range classes {
		require.NoError(t, b.Add(c))
	}
	return b.Build()
}

func declaringName(t *testing.T, idx *hierarchy.Index, owner, name, desc string, kind hierarchy.MemberKind) string {
	t.Helper()
	res, err := idx.DeclaringClassOf(owner, name, desc, kind)
	require.NoError(t, err)
	require.False(t, res.External, "unexpected external resolution")
	return idx.Name(res.Ref.Class)
}

func TestBuilderRejectsDuplicatesAndLateAdds(t *testing.T) {
	b := hierarchy.NewBuilder()
	require.NoError(t, b.Add(class("a/A", hierarchy.ObjectClass, nil)))
	err := b.Add(class("a/A", hierarchy.ObjectClass, nil))
	assert.ErrorIs(t, err, hierarchy.ErrDuplicateClass)

	b.Build()
	assert.ErrorIs(t, b.Add(class("a/B", hierarchy.ObjectClass, nil)), hierarchy.ErrFrozen)
}

func TestBuiltinObjectRoot(t *testing.T) {
	idx := build(t, class("a/A", hierarchy.ObjectClass, nil))
	assert.Equal(t, 2, idx.Len())

	assert.Equal(t, hierarchy.ObjectClass, declaringName(t, idx, "a/A", "hashCode", "()I", hierarchy.MethodMember))
	assert.Equal(t, hierarchy.ObjectClass, declaringName(t, idx, "[La/A;", "clone", "()Ljava/lang/Object;", hierarchy.MethodMember))

	// members of the platform Object the built-in root does not list
	res, err := idx.DeclaringClassOf(hierarchy.ObjectClass, "registerNatives", "()V", hierarchy.MethodMember)
	require.NoError(t, err)
	assert.True(t, res.External)
}

func TestMethodResolutionOrder(t *testing.T) {
	idx := build(t,
		class("a/Base", hierarchy.ObjectClass, nil,
			method(pub, "run", "()V"),
			method(classfile.AccPrivate, "secret", "()V")),
		class("a/Child", "a/Base", nil,
			method(classfile.AccPrivate, "own", "()V")),
	)

	assert.Equal(t, "a/Base", declaringName(t, idx, "a/Child", "run", "()V", hierarchy.MethodMember))
	assert.Equal(t, "a/Child", declaringName(t, idx, "a/Child", "own", "()V", hierarchy.MethodMember))

	_, err := idx.DeclaringClassOf("a/Child", "secret", "()V", hierarchy.MethodMember)
	var unresolved *hierarchy.UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.ErrorIs(t, err, hierarchy.ErrUnresolvedMember)
	assert.Equal(t, "a/Child", unresolved.Owner)
	assert.False(t, unresolved.Partial)
}

func TestInterfaceDefaultPriority(t *testing.T) {
	idx := build(t,
		iface("a/I1", nil, method(pub, "greet", "()V")),
		iface("a/I2", nil, method(pub, "greet", "()V")),
		class("a/D", hierarchy.ObjectClass, []string{"a/I1", "a/I2"}),
	)
	assert.Equal(t, "a/I1", declaringName(t, idx, "a/D", "greet", "()V", hierarchy.MethodMember))

	swapped := build(t,
		iface("a/I1", nil, method(pub, "greet", "()V")),
		iface("a/I2", nil, method(pub, "greet", "()V")),
		class("a/D", hierarchy.ObjectClass, []string{"a/I2", "a/I1"}),
	)
	assert.Equal(t, "a/I2", declaringName(t, swapped, "a/D", "greet", "()V", hierarchy.MethodMember))
}

func TestMaximallySpecificInterfaceMethod(t *testing.T) {
	idx := build(t,
		iface("a/Top", nil, method(abstract, "size", "()I")),
		iface("a/Sub", []string{"a/Top"}, method(pub, "size", "()I")),
		iface("a/Other", nil, method(abstract, "size", "()I")),
		class("a/Impl", hierarchy.ObjectClass, []string{"a/Top", "a/Other", "a/Sub"}),
	)
	// Sub overrides Top and is a default, Other is abstract
	assert.Equal(t, "a/Sub", declaringName(t, idx, "a/Impl", "size", "()I", hierarchy.MethodMember))
}

func TestInterfaceSkipsStaticMembers(t *testing.T) {
	idx := build(t,
		iface("a/I", nil, method(pub|classfile.AccStatic, "of", "()La/I;")),
		class("a/C", hierarchy.ObjectClass, []string{"a/I"}),
	)
	assert.Equal(t, "a/I", declaringName(t, idx, "a/I", "of", "()La/I;", hierarchy.MethodMember))
	_, err := idx.DeclaringClassOf("a/C", "of", "()La/I;", hierarchy.MethodMember)
	assert.ErrorIs(t, err, hierarchy.ErrUnresolvedMember)
}

func TestFieldResolution(t *testing.T) {
	idx := build(t,
		iface("a/Consts", nil, field(pub|classfile.AccStatic|classfile.AccFinal, "MAX", "I")),
		class("a/Base", hierarchy.ObjectClass, nil,
			field(pub, "MAX", "I"),
			field(classfile.AccPrivate, "hidden", "J")),
		class("a/Child", "a/Base", []string{"a/Consts"}),
	)
	// superinterfaces are searched before the superclass
	assert.Equal(t, "a/Consts", declaringName(t, idx, "a/Child", "MAX", "I", hierarchy.FieldMember))
	assert.Equal(t, "a/Base", declaringName(t, idx, "a/Base", "hidden", "J", hierarchy.FieldMember))

	_, err := idx.DeclaringClassOf("a/Child", "hidden", "J", hierarchy.FieldMember)
	assert.ErrorIs(t, err, hierarchy.ErrUnresolvedMember)
}

func TestPartialAndOpaqueClasses(t *testing.T) {
	idx := build(t,
		class("a/Partial", "a/Missing", nil),
		class("a/Below", "a/Partial", nil),
		class("a/Widget", "javax/swing/JPanel", nil),
		class("a/Button", "a/Widget", nil),
	)

	require.Len(t, idx.Warnings(), 1)
	w := idx.Warnings()[0]
	assert.Equal(t, hierarchy.Warning{Class: "a/Partial", Missing: "a/Missing"}, w)
	assert.True(t, errors.Is(w, hierarchy.ErrPartialHierarchy))

	below, ok := idx.Lookup("a/Below")
	require.True(t, ok)
	assert.True(t, idx.Partial(below))

	button, _ := idx.Lookup("a/Button")
	assert.False(t, idx.Partial(button))
	assert.True(t, idx.Opaque(button))

	_, err := idx.DeclaringClassOf("a/Below", "run", "()V", hierarchy.MethodMember)
	var unresolved *hierarchy.UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.True(t, unresolved.Partial)

	res, err := idx.DeclaringClassOf("a/Button", "repaint", "()V", hierarchy.MethodMember)
	require.NoError(t, err)
	assert.True(t, res.External)

	res, err = idx.DeclaringClassOf("java/lang/String", "length", "()I", hierarchy.MethodMember)
	require.NoError(t, err)
	assert.True(t, res.External)

	_, err = idx.DeclaringClassOf("b/Unknown", "x", "I", hierarchy.FieldMember)
	assert.ErrorIs(t, err, hierarchy.ErrUnresolvedMember)
}

func TestCustomLibraryPrefixes(t *testing.T) {
	b := hierarchy.NewBuilder(hierarchy.WithLibraryPrefixes("org/lib/"))
	require.NoError(t, b.Add(class("a/A", "org/lib/Base", nil)))
	require.NoError(t, b.Add(class("a/B", "java/util/AbstractList", nil)))
	idx := b.Build()

	a, _ := idx.Lookup("a/A")
	bid, _ := idx.Lookup("a/B")
	assert.True(t, idx.Opaque(a))
	assert.True(t, idx.Partial(bid))
}

func TestSubtypesAndOverrides(t *testing.T) {
	idx := build(t,
		iface("a/Shape", nil, method(abstract, "area", "()D")),
		class("a/Square", hierarchy.ObjectClass, []string{"a/Shape"},
			method(pub, "area", "()D"),
			method(pub|classfile.AccStatic, "unit", "()La/Square;")),
		class("a/Tile", "a/Square", nil,
			method(pub, "area", "()D"),
			method(pub|classfile.AccStatic, "unit", "()La/Square;")),
	)
	shape, _ := idx.Lookup("a/Shape")
	square, _ := idx.Lookup("a/Square")
	tile, _ := idx.Lookup("a/Tile")
	object, _ := idx.Lookup(hierarchy.ObjectClass)

	assert.True(t, idx.IsSubtypeOf(tile, shape))
	assert.True(t, idx.IsSubtypeOf(tile, tile))
	assert.True(t, idx.IsSubtypeOf(shape, object))
	assert.False(t, idx.IsSubtypeOf(square, tile))

	tileArea := hierarchy.MemberRef{Class: tile, Index: 0}
	squareArea := hierarchy.MemberRef{Class: square, Index: 0}
	shapeArea := hierarchy.MemberRef{Class: shape, Index: 0}
	assert.True(t, idx.IsOverrideOf(tileArea, squareArea))
	assert.True(t, idx.IsOverrideOf(tileArea, shapeArea))
	assert.False(t, idx.IsOverrideOf(squareArea, tileArea))
	assert.False(t, idx.IsOverrideOf(tileArea, tileArea))
	assert.False(t, idx.IsOverrideOf(
		hierarchy.MemberRef{Class: tile, Index: 1},
		hierarchy.MemberRef{Class: square, Index: 1}))
}

func TestOverrideFamilies(t *testing.T) {
	idx := build(t,
		iface("a/Runner", nil, method(abstract, "run", "()V")),
		class("a/Base", hierarchy.ObjectClass, nil,
			method(pub, "run", "()V"),
			method(classfile.AccPrivate, "helper", "()V")),
		// Impl makes Base.run implement Runner.run without declaring it
		class("a/Impl", "a/Base", []string{"a/Runner"}),
		class("a/Unrelated", hierarchy.ObjectClass, nil, method(pub, "run", "()V")),
	)
	runner, _ := idx.Lookup("a/Runner")
	base, _ := idx.Lookup("a/Base")
	unrelated, _ := idx.Lookup("a/Unrelated")

	fam := idx.Family(hierarchy.MemberRef{Class: base, Index: 0})
	require.NotEqual(t, hierarchy.NoFamily, fam)
	assert.Equal(t, fam, idx.Family(hierarchy.MemberRef{Class: runner, Index: 0}))
	assert.NotEqual(t, fam, idx.Family(hierarchy.MemberRef{Class: unrelated, Index: 0}))
	assert.ElementsMatch(t, []hierarchy.MemberRef{
		{Class: runner, Index: 0},
		{Class: base, Index: 0},
	}, idx.FamilyMembers(fam))

	assert.Equal(t, hierarchy.NoFamily, idx.Family(hierarchy.MemberRef{Class: base, Index: 1}))
}

func TestBridgeJoinsTargetFamily(t *testing.T) {
	bridge := method(pub|classfile.AccBridge|classfile.AccSynthetic, "compareTo", "(Ljava/lang/Object;)I")
	bridge.BridgeTarget = &hierarchy.NameAndType{Name: "compareTo", Descriptor: "(La/Version;)I"}
	idx := build(t,
		iface("a/Ordered", nil, method(abstract, "compareTo", "(Ljava/lang/Object;)I")),
		class("a/Version", hierarchy.ObjectClass, []string{"a/Ordered"},
			method(pub, "compareTo", "(La/Version;)I"),
			bridge),
	)
	version, _ := idx.Lookup("a/Version")
	ordered, _ := idx.Lookup("a/Ordered")

	target := idx.Family(hierarchy.MemberRef{Class: version, Index: 0})
	assert.Equal(t, target, idx.Family(hierarchy.MemberRef{Class: version, Index: 1}))
	assert.Equal(t, target, idx.Family(hierarchy.MemberRef{Class: ordered, Index: 0}))
}

func TestDescribe(t *testing.T) {
	c := classtest.New("a/Version", hierarchy.ObjectClass, "java/lang/Comparable")
	target := c.MethodRef("a/Version", "compareTo", "(La/Version;)I")
	c.Field(classfile.AccPrivate, "parts", "Ljava/util/List;", c.Signature("Ljava/util/List<Ljava/lang/Integer;>;"))
	c.Method(pub, "compareTo", "(La/Version;)I")
	c.Method(pub|classfile.AccBridge|classfile.AccSynthetic, "compareTo", "(Ljava/lang/Object;)I",
		c.Code(classtest.Ops(
			[]byte{classtest.OpAload0},
			classtest.Invoke(classfile.OpInvokeVirtual, target),
			[]byte{0xac},
		)))

	cd := hierarchy.Describe(c.Build())
	assert.Equal(t, "a/Version", cd.Name)
	assert.Equal(t, hierarchy.ObjectClass, cd.Super)
	assert.Equal(t, []string{"java/lang/Comparable"}, cd.Interfaces)
	require.Len(t, cd.Members, 3)

	assert.Equal(t, hierarchy.FieldMember, cd.Members[0].Kind)
	assert.Equal(t, "Ljava/util/List<Ljava/lang/Integer;>;", cd.Members[0].Signature)
	assert.Nil(t, cd.Members[1].BridgeTarget)
	assert.Equal(t, &hierarchy.NameAndType{Name: "compareTo", Descriptor: "(La/Version;)I"}, cd.Members[2].BridgeTarget)
}

func TestHierarchyCycleTerminates(t *testing.T) {
	idx := build(t,
		class("a/X", "a/Y", nil),
		class("a/Y", "a/X", nil),
	)
	_, err := idx.DeclaringClassOf("a/X", "m", "()V", hierarchy.MethodMember)
	assert.ErrorIs(t, err, hierarchy.ErrUnresolvedMember)
}
