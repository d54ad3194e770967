package main

import (
	"testing"

	"github.com/dhamidi/sabre/hierarchy"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		in                string
		owner, name, desc string
		kind              hierarchy.MemberKind
		wantErr           bool
	}{
		{in: "a/B.foo:()V", owner: "a/B", name: "foo", desc: "()V", kind: hierarchy.MethodMember},
		{in: "a/B$Inner.count:I", owner: "a/B$Inner", name: "count", desc: "I", kind: hierarchy.FieldMember},
		{in: "a/B.foo", wantErr: true},
		{in: ".foo:()V", wantErr: true},
		{in: "a/B.:()V", wantErr: true},
		{in: "a/B.foo:", wantErr: true},
	}
	for _, tt := range tests {
		owner, name, desc, kind, err := parseReference(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseReference(%q) succeeded", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseReference(%q): %v", tt.in, err)
			continue
		}
		if owner != tt.owner || name != tt.name || desc != tt.desc || kind != tt.kind {
			t.Errorf("parseReference(%q) = %s %s %s %s", tt.in, owner, name, desc, kind)
		}
	}
}
