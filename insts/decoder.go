// Package insts provides 8086 instruction definitions and decoding.
package insts

import (
	"errors"
	"fmt"
)

// ErrInvalidEncoding reports bytes that match no recognized instruction
// encoding. Decoding never resynchronizes past such bytes.
var ErrInvalidEncoding = errors.New("invalid encoding")

// Result represents the outcome of a single decode attempt.
type Result struct {
	// Inst is the decoded instruction when Size is nonzero.
	Inst Instruction

	// Size is the exact number of bytes the instruction occupies in the
	// stream. It is zero unless an instruction was decoded.
	Size int

	// NeedMore is true when the window ends inside the attempted
	// encoding. Nothing was consumed; the caller must retry at the same
	// position with more bytes.
	NeedMore bool

	// Err is set when the window starts with bytes that match no
	// recognized encoding.
	Err error
}

// Decoder decodes 8086 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new 8086 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode attempts to decode one instruction from the start of window.
// Decoding is atomic: a Result with NeedMore or Err set consumed
// nothing, and Size is the exact encoding length otherwise.
func (d *Decoder) Decode(window []byte) Result {
	if len(window) == 0 {
		return Result{NeedMore: true}
	}

	b := window[0]
	for _, t := range templates {
		if b&t.mask == t.value {
			return t.decode(d, t.op, window)
		}
	}

	return Result{Err: fmt.Errorf("%w: opcode 0x%02X matches no instruction template", ErrInvalidEncoding, b)}
}

// template pairs an opcode bit pattern with its decode handler. A byte b
// matches when b&mask == value. The dispatcher walks the table in order,
// so exact full-byte matches come before masked high-bit matches.
type template struct {
	mask   byte
	value  byte
	op     Op // fixed mnemonic; OpUnknown when the handler resolves it
	decode func(d *Decoder, op Op, window []byte) Result
}

var templates = []template{
	// Conditional jumps: exact opcodes 0x70..0x7F.
	{0xFF, 0x70, OpJO, (*Decoder).decodeJump},
	{0xFF, 0x71, OpJNO, (*Decoder).decodeJump},
	{0xFF, 0x72, OpJB, (*Decoder).decodeJump},
	{0xFF, 0x73, OpJNB, (*Decoder).decodeJump},
	{0xFF, 0x74, OpJE, (*Decoder).decodeJump},
	{0xFF, 0x75, OpJNE, (*Decoder).decodeJump},
	{0xFF, 0x76, OpJBE, (*Decoder).decodeJump},
	{0xFF, 0x77, OpJA, (*Decoder).decodeJump},
	{0xFF, 0x78, OpJS, (*Decoder).decodeJump},
	{0xFF, 0x79, OpJNS, (*Decoder).decodeJump},
	{0xFF, 0x7A, OpJP, (*Decoder).decodeJump},
	{0xFF, 0x7B, OpJNP, (*Decoder).decodeJump},
	{0xFF, 0x7C, OpJL, (*Decoder).decodeJump},
	{0xFF, 0x7D, OpJNL, (*Decoder).decodeJump},
	{0xFF, 0x7E, OpJLE, (*Decoder).decodeJump},
	{0xFF, 0x7F, OpJG, (*Decoder).decodeJump},

	// Loop family: exact opcodes 0xE0..0xE3.
	{0xFF, 0xE0, OpLOOPNZ, (*Decoder).decodeJump},
	{0xFF, 0xE1, OpLOOPZ, (*Decoder).decodeJump},
	{0xFF, 0xE2, OpLOOP, (*Decoder).decodeJump},
	{0xFF, 0xE3, OpJCXZ, (*Decoder).decodeJump},

	// Masked high-bit matches.
	{0xFE, 0xC6, OpMOV, (*Decoder).decodeImmRM},        // 1100011w: immediate to register/memory
	{0xFE, 0xA0, OpMOV, (*Decoder).decodeMemToAcc},     // 1010000w: memory to accumulator
	{0xFE, 0xA2, OpMOV, (*Decoder).decodeAccToMem},     // 1010001w: accumulator to memory
	{0xFC, 0x88, OpMOV, (*Decoder).decodeRegRM},        // 100010dw: register/memory to/from register
	{0xFC, 0x00, OpADD, (*Decoder).decodeRegRM},        // 000000dw
	{0xFC, 0x28, OpSUB, (*Decoder).decodeRegRM},        // 001010dw
	{0xFC, 0x38, OpCMP, (*Decoder).decodeRegRM},        // 001110dw
	{0xFC, 0x80, OpUnknown, (*Decoder).decodeArithImm}, // 100000sw: reg field selects add/sub/cmp
	{0xF0, 0xB0, OpMOV, (*Decoder).decodeImmReg},       // 1011wreg: immediate to register
}

// parseModRM splits a ModRM byte into the mode, reg and r/m fields.
func parseModRM(b byte, inst *Instruction) {
	inst.Mode = Mode(b >> 6)    // bits [7:6]
	inst.Reg = (b >> 3) & 0b111 // bits [5:3]
	inst.RM = b & 0b111         // bits [2:0]
}

// dispLen returns the number of displacement bytes implied by the ModRM
// mode and r/m fields.
func dispLen(mode Mode, rm uint8) int {
	switch mode {
	case ModeMemNoDisp:
		if rm == rmDirect {
			return 2
		}
		return 0
	case ModeMemDisp8:
		return 1
	case ModeMemDisp16:
		return 2
	default: // ModeReg
		return 0
	}
}

// readDisp fills the displacement or direct address from the bytes that
// follow the ModRM byte. The tail must already hold dispLen bytes.
func readDisp(tail []byte, inst *Instruction) {
	switch inst.Mode {
	case ModeMemNoDisp:
		if inst.RM == rmDirect {
			inst.Addr = uint16(tail[0]) | uint16(tail[1])<<8
		}
	case ModeMemDisp8:
		inst.Disp = int16(int8(tail[0])) // sign-extend
	case ModeMemDisp16:
		inst.Disp = int16(uint16(tail[0]) | uint16(tail[1])<<8)
	}
}

// readImm reads a little-endian unsigned immediate of 1 or 2 bytes.
func readImm(tail []byte, n int) uint16 {
	if n == 2 {
		return uint16(tail[0]) | uint16(tail[1])<<8
	}
	return uint16(tail[0])
}

// decodeRegRM decodes register/memory to/from register forms.
// Layout: [opcode|d|w] [mod|reg|r/m] [disp-lo] [disp-hi]
func (d *Decoder) decodeRegRM(op Op, window []byte) Result {
	if len(window) < 2 {
		return Result{NeedMore: true}
	}

	b := window[0]
	inst := Instruction{Op: op, Format: FormatRegRM}
	inst.RegDst = b&0b10 != 0 // bit 1: d, direction
	inst.Wide = b&0b01 != 0   // bit 0: w, operand width
	parseModRM(window[1], &inst)

	size := 2 + dispLen(inst.Mode, inst.RM)
	if len(window) < size {
		return Result{NeedMore: true}
	}
	readDisp(window[2:], &inst)

	return Result{Inst: inst, Size: size}
}

// decodeImmRM decodes the explicit immediate to register/memory form.
// Layout: [1100011|w] [mod|000|r/m] [disp-lo] [disp-hi] [data] [data if w=1]
func (d *Decoder) decodeImmRM(op Op, window []byte) Result {
	if len(window) < 2 {
		return Result{NeedMore: true}
	}

	b := window[0]
	inst := Instruction{Op: op, Format: FormatImmRM}
	inst.Wide = b&0b01 != 0 // bit 0: w, operand width
	parseModRM(window[1], &inst)

	if inst.Reg != 0 {
		return Result{Err: fmt.Errorf("%w: reg field %03b is reserved in immediate form 0x%02X",
			ErrInvalidEncoding, inst.Reg, b)}
	}

	immLen := 1
	if inst.Wide {
		immLen = 2
	}
	dl := dispLen(inst.Mode, inst.RM)
	size := 2 + dl + immLen
	if len(window) < size {
		return Result{NeedMore: true}
	}
	readDisp(window[2:], &inst)
	inst.Imm = int32(readImm(window[2+dl:], immLen))

	return Result{Inst: inst, Size: size}
}

// decodeArithImm decodes the shared add/sub/cmp immediate group. The reg
// field names the operation. The s bit selects an 8-bit immediate that
// sign-extends to word width when w is set.
// Layout: [100000|s|w] [mod|op|r/m] [disp-lo] [disp-hi] [data] [data if s=0,w=1]
func (d *Decoder) decodeArithImm(_ Op, window []byte) Result {
	if len(window) < 2 {
		return Result{NeedMore: true}
	}

	b := window[0]
	signExtend := b&0b10 != 0 // bit 1: s
	inst := Instruction{Format: FormatImmRM}
	inst.Wide = b&0b01 != 0 // bit 0: w, operand width
	parseModRM(window[1], &inst)

	switch inst.Reg {
	case 0b000:
		inst.Op = OpADD
	case 0b101:
		inst.Op = OpSUB
	case 0b111:
		inst.Op = OpCMP
	default:
		return Result{Err: fmt.Errorf("%w: reg field %03b selects no operation in immediate group 0x%02X",
			ErrInvalidEncoding, inst.Reg, b)}
	}

	immLen := 1
	if inst.Wide && !signExtend {
		immLen = 2
	}
	dl := dispLen(inst.Mode, inst.RM)
	size := 2 + dl + immLen
	if len(window) < size {
		return Result{NeedMore: true}
	}
	readDisp(window[2:], &inst)

	raw := readImm(window[2+dl:], immLen)
	if signExtend && inst.Wide {
		inst.Imm = int32(int8(raw)) // sign-extend the 8-bit field to word width
	} else {
		inst.Imm = int32(raw)
	}

	return Result{Inst: inst, Size: size}
}

// decodeImmReg decodes the immediate to register form. The opcode byte
// folds in the width bit and the register code.
// Layout: [1011|w|reg] [data] [data if w=1]
func (d *Decoder) decodeImmReg(op Op, window []byte) Result {
	b := window[0]
	inst := Instruction{Op: op, Format: FormatImmReg}
	inst.Wide = b&0b1000 != 0 // bit 3: w, operand width
	inst.Reg = b & 0b111      // bits [2:0]

	size := 2
	if inst.Wide {
		size = 3
	}
	if len(window) < size {
		return Result{NeedMore: true}
	}
	inst.Imm = int32(readImm(window[1:], size-1))

	return Result{Inst: inst, Size: size}
}

// decodeMemToAcc decodes loads of the accumulator from a direct address.
// Layout: [1010000|w] [addr-lo] [addr-hi]
func (d *Decoder) decodeMemToAcc(op Op, window []byte) Result {
	return d.decodeAccMem(op, window, true)
}

// decodeAccToMem decodes stores of the accumulator to a direct address.
// Layout: [1010001|w] [addr-lo] [addr-hi]
func (d *Decoder) decodeAccToMem(op Op, window []byte) Result {
	return d.decodeAccMem(op, window, false)
}

func (d *Decoder) decodeAccMem(op Op, window []byte, toAcc bool) Result {
	if len(window) < 3 {
		return Result{NeedMore: true}
	}

	inst := Instruction{Op: op, Format: FormatAccMem, ToAcc: toAcc}
	inst.Wide = window[0]&0b01 != 0 // bit 0: w, operand width
	inst.Addr = uint16(window[1]) | uint16(window[2])<<8

	return Result{Inst: inst, Size: 3}
}

// decodeJump decodes conditional jump and loop instructions.
// Layout: [opcode] [disp8]
func (d *Decoder) decodeJump(op Op, window []byte) Result {
	if len(window) < 2 {
		return Result{NeedMore: true}
	}

	inst := Instruction{Op: op, Format: FormatJump}
	inst.JumpDisp = int8(window[1])

	return Result{Inst: inst, Size: 2}
}
