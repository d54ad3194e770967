package remap

import (
	"fmt"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dhamidi/sabre/classfile"
	"github.com/dhamidi/sabre/hierarchy"
)

const lambdaMetafactory = "java/lang/invoke/LambdaMetafactory"

// Visitor rewrites classes one at a time. It owns scratch state and a
// descriptor cache, so each worker needs its own.
type Visitor struct {
	r     *Remapper
	pool  *pool
	descs *lru.Cache[string, string]

	// per class
	src        classfile.ConstantPool
	class      string
	bootstraps *classfile.BootstrapMethodsAttribute
	diags      []Diagnostic
}

func (r *Remapper) NewVisitor() *Visitor {
	cache, err := lru.New[string, string](r.cacheSize)
	if err != nil {
		panic(err)
	}
	return &Visitor{r: r, pool: newPool(), descs: cache}
}

// Remap returns a rewritten copy of cf and the problems found on the way.
// cf itself is not modified. Unresolved references keep their names and are
// reported; the returned class is nil only when the rewritten constant pool
// does not fit a class file.
func (v *Visitor) Remap(cf *classfile.ClassFile) (*classfile.ClassFile, []Diagnostic) {
	v.src = cf.ConstantPool
	v.class = cf.ClassName()
	v.bootstraps = classfile.As[classfile.BootstrapMethodsAttribute](cf.GetAttribute(classfile.AttrBootstrapMethods))
	v.diags = nil

	out := cf.Clone()
	v.pool.reset(&out.ConstantPool)

	// entries appended while rewriting are already in the target namespace
	n := len(out.ConstantPool)
	for i := 0; i < n; i++ {
		v.entry(uint16(i+1), out.ConstantPool[i])
	}

	for i := range out.Fields {
		f := &out.Fields[i]
		name, desc := v.src.GetUtf8(f.NameIndex), v.src.GetUtf8(f.DescriptorIndex)
		f.NameIndex = v.pool.str(v.declaredName(name, desc, hierarchy.FieldMember), f.NameIndex)
		f.DescriptorIndex = v.pool.str(v.descriptor(desc), f.DescriptorIndex)
		v.attributes(f.Attributes, fieldScope)
	}
	for i := range out.Methods {
		m := &out.Methods[i]
		name, desc := v.src.GetUtf8(m.NameIndex), v.src.GetUtf8(m.DescriptorIndex)
		m.NameIndex = v.pool.str(v.declaredName(name, desc, hierarchy.MethodMember), m.NameIndex)
		m.DescriptorIndex = v.pool.str(v.descriptor(desc), m.DescriptorIndex)
		v.attributes(m.Attributes, methodScope)
	}
	v.attributes(out.Attributes, classScope)

	diags := v.diags
	v.diags = nil
	if out.ConstantPool.Count() > math.MaxUint16 {
		diags = append(diags, Diagnostic{
			Class:    v.class,
			Kind:     KindPoolOverflow,
			Severity: SeverityError,
			Detail:   fmt.Sprintf("constant pool needs %d entries", out.ConstantPool.Count()),
		})
		return nil, diags
	}
	return out, diags
}

func (v *Visitor) report(kind Kind, severity Severity, format string, args ...any) {
	v.diags = append(v.diags, Diagnostic{
		Class:    v.class,
		Kind:     kind,
		Severity: severity,
		Detail:   fmt.Sprintf(format, args...),
	})
}

// entry rewrites one constant pool entry in place. Names are always read
// from the source pool, which still holds the original values.
func (v *Visitor) entry(index uint16, e classfile.ConstantPoolEntry) {
	switch e := e.(type) {
	case *classfile.ConstantClassInfo:
		e.NameIndex = v.pool.str(v.className(v.src.GetUtf8(e.NameIndex)), e.NameIndex)
	case *classfile.ConstantRefInfo:
		_, owner, name, desc := v.src.GetRef(index)
		kind := hierarchy.MethodMember
		if e.RefTag == classfile.ConstantFieldref {
			kind = hierarchy.FieldMember
		}
		e.NameAndTypeIndex = v.pool.nameAndType(v.reference(owner, name, desc, kind), v.descriptor(desc), e.NameAndTypeIndex)
	case *classfile.ConstantMethodTypeInfo:
		e.DescriptorIndex = v.pool.str(v.descriptor(v.src.GetUtf8(e.DescriptorIndex)), e.DescriptorIndex)
	case *classfile.ConstantDynamicInfo:
		name, desc := v.src.GetNameAndType(e.NameAndTypeIndex)
		if e.DynTag == classfile.ConstantInvokeDynamic {
			name = v.lambdaName(e, name, desc)
		}
		e.NameAndTypeIndex = v.pool.nameAndType(name, v.descriptor(desc), e.NameAndTypeIndex)
	case *classfile.ConstantPackageInfo:
		e.NameIndex = v.pool.str(v.r.table.Package(v.src.GetUtf8(e.NameIndex)), e.NameIndex)
	case *classfile.ConstantModuleInfo:
		e.NameIndex = v.pool.str(v.r.table.Module(v.src.GetUtf8(e.NameIndex)), e.NameIndex)
	}
}

// className maps a Class entry value, which is a descriptor for arrays.
func (v *Visitor) className(name string) string {
	if strings.HasPrefix(name, "[") {
		return v.descriptor(name)
	}
	return v.r.table.Class(name)
}

// descriptor maps a field or method descriptor. Malformed descriptors are
// reported and kept.
func (v *Visitor) descriptor(desc string) string {
	if mapped, ok := v.descs.Get(desc); ok {
		return mapped
	}
	var err error
	if strings.HasPrefix(desc, "(") {
		_, err = classfile.ParseMethodDescriptor(desc)
	} else {
		_, err = classfile.ParseFieldDescriptor(desc)
	}
	if err != nil {
		v.report(KindMalformedDescriptor, SeverityWarning, "%v", err)
		return desc
	}
	mapped := desc
	if strings.IndexByte(desc, 'L') >= 0 {
		mapped = v.r.table.Descriptor(desc)
	}
	v.descs.Add(desc, mapped)
	return mapped
}

// reference returns the new name of a member reference, resolved to its
// declaration first.
func (v *Visitor) reference(owner, name, desc string, kind hierarchy.MemberKind) string {
	res, err := v.r.idx.DeclaringClassOf(owner, name, desc, kind)
	if err != nil {
		v.unresolved(err)
		return name
	}
	if res.External {
		return name
	}
	return v.r.MemberName(res.Ref)
}

func (v *Visitor) unresolved(err error) {
	ue, ok := err.(*hierarchy.UnresolvedError)
	switch {
	case ok && ue.Partial:
		v.report(KindPartialHierarchy, SeverityWarning, "%v", err)
	case v.r.strict:
		v.report(KindUnresolvedMember, SeverityError, "%v", err)
	default:
		v.report(KindUnresolvedMember, SeverityWarning, "%v", err)
	}
}

// declaredName returns the new name of a member declared by the class
// being rewritten.
func (v *Visitor) declaredName(name, desc string, kind hierarchy.MemberKind) string {
	if name == "<init>" || name == "<clinit>" {
		return name
	}
	id, ok := v.r.idx.Lookup(v.class)
	if !ok {
		v.report(KindUnresolvedMember, SeverityError, "class %s is not in the hierarchy", v.class)
		return name
	}
	res, err := v.r.idx.DeclaringClassOf(v.class, name, desc, kind)
	if err != nil || res.External || res.Ref.Class != id {
		return name
	}
	return v.r.MemberName(res.Ref)
}

// lambdaName renames the interface method implemented by a lambda
// metafactory call site. The call site names the method and returns the
// functional interface; the first bootstrap argument is the erased method
// type.
func (v *Visitor) lambdaName(e *classfile.ConstantDynamicInfo, name, desc string) string {
	if v.bootstraps == nil || int(e.BootstrapMethodAttrIndex) >= len(v.bootstraps.BootstrapMethods) {
		return name
	}
	bsm := v.bootstraps.BootstrapMethods[e.BootstrapMethodAttrIndex]
	mh := v.src.GetMethodHandle(bsm.BootstrapMethodRef)
	if mh == nil || len(bsm.BootstrapArguments) == 0 {
		return name
	}
	_, owner, factory, _ := v.src.GetRef(mh.ReferenceIndex)
	if owner != lambdaMetafactory || (factory != "metafactory" && factory != "altMetafactory") {
		return name
	}
	md, err := classfile.ParseMethodDescriptor(desc)
	if err != nil || md.ReturnType == nil || md.ReturnType.ClassName == "" || md.ReturnType.ArrayDepth > 0 {
		return name
	}
	samDesc := v.src.GetMethodType(bsm.BootstrapArguments[0])
	if samDesc == "" {
		return name
	}
	return v.reference(md.ReturnType.ClassName, name, samDesc, hierarchy.MethodMember)
}
