package hierarchy

import "github.com/dhamidi/sabre/classfile"

// Describe extracts the structural view of a decoded class. For bridge
// methods the forwarding target is read from the first invoke instruction
// of the body.
func Describe(cf *classfile.ClassFile) ClassDescriptor {
	cp := cf.ConstantPool
	cd := ClassDescriptor{
		Name:       cf.ClassName(),
		Super:      cf.SuperClassName(),
		Interfaces: cf.InterfaceNames(),
		Flags:      cf.AccessFlags,
		Members:    make([]Member, 0, len(cf.Fields)+len(cf.Methods)),
	}
	for i := range cf.Fields {
		f := &cf.Fields[i]
		cd.Members = append(cd.Members, Member{
			Kind:       FieldMember,
			Name:       f.Name(cp),
			Descriptor: f.Descriptor(cp),
			Flags:      f.AccessFlags,
			Signature:  signatureOf(cp, f.GetAttribute(cp, classfile.AttrSignature)),
		})
	}
	for i := range cf.Methods {
		m := &cf.Methods[i]
		member := Member{
			Kind:       MethodMember,
			Name:       m.Name(cp),
			Descriptor: m.Descriptor(cp),
			Flags:      m.AccessFlags,
			Signature:  signatureOf(cp, m.GetAttribute(cp, classfile.AttrSignature)),
		}
		if m.IsBridge() {
			member.BridgeTarget = bridgeTarget(cp, m)
		}
		cd.Members = append(cd.Members, member)
	}
	return cd
}

func signatureOf(cp classfile.ConstantPool, attr *classfile.AttributeInfo) string {
	if sig := attr.AsSignature(); sig != nil {
		return cp.GetUtf8(sig.SignatureIndex)
	}
	return ""
}

func bridgeTarget(cp classfile.ConstantPool, m *classfile.MethodInfo) *NameAndType {
	code := m.GetCodeAttribute(cp)
	if code == nil {
		return nil
	}
	index, ok := classfile.FirstInvoke(code.Code)
	if !ok {
		return nil
	}
	ref, _, name, desc := cp.GetRef(index)
	if ref == nil {
		return nil
	}
	return &NameAndType{Name: name, Descriptor: desc}
}
