package classfile

import (
	"encoding/binary"
	"fmt"
)

const (
	OpTableSwitch     = 0xaa
	OpLookupSwitch    = 0xab
	OpGetStatic       = 0xb2
	OpPutStatic       = 0xb3
	OpGetField        = 0xb4
	OpPutField        = 0xb5
	OpInvokeVirtual   = 0xb6
	OpInvokeSpecial   = 0xb7
	OpInvokeStatic    = 0xb8
	OpInvokeInterface = 0xb9
	OpInvokeDynamic   = 0xba
	OpWide            = 0xc4
)

// opLengths holds the fixed length of every instruction including its
// opcode. Zero marks opcodes that are variable length or undefined.
var opLengths = func() [256]uint8 {
	var t [256]uint8
	set := func(from, to int, n uint8) {
		for op := from; op <= to; op++ {
			t[op] = n
		}
	}
	set(0x00, 0x0f, 1)
	t[0x10] = 2
	t[0x11] = 3
	t[0x12] = 2
	set(0x13, 0x14, 3)
	set(0x15, 0x19, 2)
	set(0x1a, 0x35, 1)
	set(0x36, 0x3a, 2)
	set(0x3b, 0x83, 1)
	t[0x84] = 3
	set(0x85, 0x98, 1)
	set(0x99, 0xa8, 3)
	t[0xa9] = 2
	set(0xac, 0xb1, 1)
	set(0xb2, 0xb8, 3)
	set(0xb9, 0xba, 5)
	t[0xbb] = 3
	t[0xbc] = 2
	t[0xbd] = 3
	set(0xbe, 0xbf, 1)
	set(0xc0, 0xc1, 3)
	set(0xc2, 0xc3, 1)
	t[0xc5] = 4
	set(0xc6, 0xc7, 3)
	set(0xc8, 0xc9, 5)
	t[0xca] = 1
	set(0xfe, 0xff, 1)
	return t
}()

// WalkCode calls fn with the offset and opcode of each instruction until fn
// returns false. It fails on an undefined opcode or a truncated instruction.
func WalkCode(code []byte, fn func(pc int, op byte) bool) error {
	for pc := 0; pc < len(code); {
		op := code[pc]
		n, err := instructionLength(code, pc)
		if err != nil {
			return err
		}
		if pc+n > len(code) {
			return fmt.Errorf("instruction 0x%02x at %d is truncated", op, pc)
		}
		if !fn(pc, op) {
			return nil
		}
		pc += n
	}
	return nil
}

func instructionLength(code []byte, pc int) (int, error) {
	op := code[pc]
	if n := opLengths[op]; n != 0 {
		return int(n), nil
	}
	switch op {
	case OpWide:
		if pc+1 >= len(code) {
			return 0, fmt.Errorf("wide at %d is truncated", pc)
		}
		if code[pc+1] == 0x84 {
			return 6, nil
		}
		return 4, nil
	case OpTableSwitch, OpLookupSwitch:
		// operands start at the next 4-byte boundary
		base := (pc + 4) &^ 3
		if base+12 > len(code) {
			return 0, fmt.Errorf("switch at %d is truncated", pc)
		}
		if op == OpTableSwitch {
			low := int32(binary.BigEndian.Uint32(code[base+4:]))
			high := int32(binary.BigEndian.Uint32(code[base+8:]))
			if high < low {
				return 0, fmt.Errorf("tableswitch at %d has high < low", pc)
			}
			return base - pc + 12 + int(int64(high)-int64(low)+1)*4, nil
		}
		pairs := int32(binary.BigEndian.Uint32(code[base+4:]))
		if pairs < 0 {
			return 0, fmt.Errorf("lookupswitch at %d has negative pair count", pc)
		}
		return base - pc + 8 + int(pairs)*8, nil
	}
	return 0, fmt.Errorf("undefined opcode 0x%02x at %d", op, pc)
}

// FirstInvoke returns the constant pool operand of the first invoke
// instruction in code, not counting invokedynamic.
func FirstInvoke(code []byte) (uint16, bool) {
	var index uint16
	var found bool
	_ = WalkCode(code, func(pc int, op byte) bool {
		switch op {
		case OpInvokeVirtual, OpInvokeSpecial, OpInvokeStatic, OpInvokeInterface:
			index = binary.BigEndian.Uint16(code[pc+1:])
			found = true
			return false
		}
		return true
	})
	return index, found
}
