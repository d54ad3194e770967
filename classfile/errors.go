package classfile

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDescriptor is returned for type or method descriptors that do
	// not match the descriptor grammar.
	ErrMalformedDescriptor = errors.New("malformed descriptor")

	// ErrMalformedSignature is returned for generic signatures that do not match
	// the signature grammar. It also matches ErrMalformedDescriptor.
	ErrMalformedSignature = errors.New("malformed signature")

	ErrPoolOverflow = errors.New("constant pool overflow")
)

// DescriptorError describes where a descriptor or signature failed to parse.
type DescriptorError struct {
	Input     string
	Offset    int
	Reason    string
	Signature bool
}

func (e *DescriptorError) Error() string {
	kind := "descriptor"
	if e.Signature {
		kind = "signature"
	}
	return fmt.Sprintf("malformed %s %q at offset %d: %s", kind, e.Input, e.Offset, e.Reason)
}

func (e *DescriptorError) Is(target error) bool {
	if target == ErrMalformedDescriptor {
		return true
	}
	return e.Signature && target == ErrMalformedSignature
}
