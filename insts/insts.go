// Package insts provides 8086 instruction definitions and decoding.
//
// This package implements decoding of 8086 machine code into structured
// instruction representations. It supports:
//   - MOV in all five encodings (register/memory, immediate, accumulator)
//   - ADD, SUB, CMP in register/memory and immediate forms
//   - Conditional jumps and the LOOP family with 8-bit displacements
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	res := decoder.Decode([]byte{0x89, 0xD9})
//	fmt.Println(res.Inst.String()) // mov cx,bx
package insts

// Op represents an 8086 opcode.
type Op uint16

// 8086 opcodes.
const (
	OpUnknown Op = iota
	OpMOV
	OpADD
	OpSUB
	OpCMP
	OpJO
	OpJNO
	OpJB
	OpJNB
	OpJE
	OpJNE
	OpJBE
	OpJA
	OpJS
	OpJNS
	OpJP
	OpJNP
	OpJL
	OpJNL
	OpJLE
	OpJG
	OpLOOPNZ
	OpLOOPZ
	OpLOOP
	OpJCXZ
)

// opNames maps each Op to its canonical lowercase mnemonic.
var opNames = [...]string{
	OpUnknown: "unknown",
	OpMOV:     "mov",
	OpADD:     "add",
	OpSUB:     "sub",
	OpCMP:     "cmp",
	OpJO:      "jo",
	OpJNO:     "jno",
	OpJB:      "jb",
	OpJNB:     "jnb",
	OpJE:      "je",
	OpJNE:     "jne",
	OpJBE:     "jbe",
	OpJA:      "ja",
	OpJS:      "js",
	OpJNS:     "jns",
	OpJP:      "jp",
	OpJNP:     "jnp",
	OpJL:      "jl",
	OpJNL:     "jnl",
	OpJLE:     "jle",
	OpJG:      "jg",
	OpLOOPNZ:  "loopnz",
	OpLOOPZ:   "loopz",
	OpLOOP:    "loop",
	OpJCXZ:    "jcxz",
}

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatRegRM        // register/memory to/from register (ModRM follows)
	FormatImmRM        // immediate to register/memory (ModRM follows)
	FormatImmReg       // immediate to register (register in the opcode byte)
	FormatAccMem       // accumulator to/from a direct memory address
	FormatJump         // conditional jump or loop, signed 8-bit displacement
)

// Mode represents the 2-bit ModRM mode field.
type Mode uint8

// ModRM modes.
const (
	ModeMemNoDisp Mode = 0b00 // memory operand, no displacement (r/m 110: direct address)
	ModeMemDisp8  Mode = 0b01 // memory operand, signed 8-bit displacement
	ModeMemDisp16 Mode = 0b10 // memory operand, signed 16-bit displacement
	ModeReg       Mode = 0b11 // register operand, no memory access
)

// rmDirect is the r/m value that selects a direct 16-bit address in mode 00.
const rmDirect = 0b110

// Register names indexed by the 3-bit register code.
var (
	regNames8  = [8]string{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"}
	regNames16 = [8]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}
)

// effectiveAddrBases maps the 3-bit r/m field to its base register
// expression for the memory modes. r/m 110 in mode 00 means a direct
// address instead and bypasses this table.
var effectiveAddrBases = [8]string{
	"bx+si", "bx+di", "bp+si", "bp+di", "si", "di", "bp", "bx",
}

// Instruction represents a decoded 8086 instruction.
type Instruction struct {
	Op     Op     // Operation code
	Format Format // Encoding format

	// Common fields
	Wide   bool  // W bit: true selects word (16-bit) operands
	RegDst bool  // D bit: true when the reg field is the destination
	Mode   Mode  // ModRM mode field
	Reg    uint8 // ModRM reg field, or the register from the opcode byte
	RM     uint8 // ModRM r/m field

	// Displacement and direct address
	Disp int16  // sign-extended displacement for modes 01 and 10
	Addr uint16 // direct 16-bit address (mode 00 with r/m 110, accumulator forms)

	// Immediate operand, stored as rendered: sign-extended immediates
	// are negative, all others zero-extended
	Imm int32

	// Jump fields
	JumpDisp int8 // raw signed 8-bit displacement for jump and loop forms

	// Accumulator direction
	ToAcc bool // true when a direct-address form loads into the accumulator
}
