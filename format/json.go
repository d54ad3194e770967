package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/sabre/hierarchy"
)

type JSONEncoder struct {
	w     io.Writer
	class *Class
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(class *Class) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.buildClassData(), "", "  ")
}

type jsonClass struct {
	Name       string       `json:"name"`
	Kind       string       `json:"kind"`
	Visibility string       `json:"visibility"`
	Modifiers  []string     `json:"modifiers,omitempty"`
	SuperClass string       `json:"superClass,omitempty"`
	Interfaces []string     `json:"interfaces,omitempty"`
	Fields     []jsonMember `json:"fields,omitempty"`
	Methods    []jsonMember `json:"methods,omitempty"`
}

type jsonMember struct {
	Name         string   `json:"name"`
	Descriptor   string   `json:"descriptor"`
	Signature    string   `json:"signature,omitempty"`
	Visibility   string   `json:"visibility"`
	Modifiers    []string `json:"modifiers,omitempty"`
	BridgeTarget string   `json:"bridgeTarget,omitempty"`
	RenamedTo    string   `json:"renamedTo,omitempty"`
}

func (e *JSONEncoder) buildClassData() jsonClass {
	c := e.class
	data := jsonClass{
		Name:       c.Name,
		Kind:       classKind(c),
		Visibility: visibility(c.Flags),
		Modifiers:  classModifiers(c),
		SuperClass: c.Super,
		Interfaces: c.Interfaces,
	}
	for i := range c.Members {
		m := &c.Members[i]
		jm := jsonMember{
			Name:       m.Name,
			Descriptor: m.Descriptor,
			Signature:  m.Signature,
			Visibility: visibility(m.Flags),
			Modifiers:  memberModifiers(m),
			RenamedTo:  c.Renamed[i],
		}
		if m.BridgeTarget != nil {
			jm.BridgeTarget = m.BridgeTarget.Name + m.BridgeTarget.Descriptor
		}
		if m.Kind == hierarchy.FieldMember {
			data.Fields = append(data.Fields, jm)
		} else {
			data.Methods = append(data.Methods, jm)
		}
	}
	return data
}
