package insts

import (
	"fmt"
	"strconv"
)

// String returns the canonical lowercase mnemonic.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return opNames[OpUnknown]
}

// RegName returns the register name for a 3-bit code under the given
// width bit.
func RegName(code uint8, wide bool) string {
	if wide {
		return regNames16[code&0b111]
	}
	return regNames8[code&0b111]
}

// EffectiveAddress renders a memory operand from its ModRM fields. A
// zero displacement is omitted and the sign of a negative one folds into
// the expression, so [bp-5] never renders as [bp+-5].
func EffectiveAddress(mode Mode, rm uint8, disp int16, addr uint16) string {
	if mode == ModeMemNoDisp && rm == rmDirect {
		return "[" + strconv.Itoa(int(addr)) + "]"
	}

	base := effectiveAddrBases[rm&0b111]
	d := int32(disp) // widen so -disp cannot overflow at -32768
	switch {
	case d > 0:
		return fmt.Sprintf("[%s+%d]", base, d)
	case d < 0:
		return fmt.Sprintf("[%s-%d]", base, -d)
	default:
		return "[" + base + "]"
	}
}

// String returns the instruction as one line of assembly text in the
// form "<mnemonic> <destination>,<source>".
func (i Instruction) String() string {
	switch i.Format {
	case FormatRegRM:
		reg := RegName(i.Reg, i.Wide)
		rm := i.regOrMem()
		if i.RegDst {
			return fmt.Sprintf("%s %s,%s", i.Op, reg, rm)
		}
		return fmt.Sprintf("%s %s,%s", i.Op, rm, reg)

	case FormatImmRM:
		if i.Mode == ModeReg {
			return fmt.Sprintf("%s %s,%d", i.Op, RegName(i.RM, i.Wide), i.Imm)
		}
		// A memory destination reveals nothing about operand width, so
		// the immediate carries an explicit size tag.
		return fmt.Sprintf("%s %s,%s %d", i.Op, i.regOrMem(), i.sizeTag(), i.Imm)

	case FormatImmReg:
		return fmt.Sprintf("%s %s,%d", i.Op, RegName(i.Reg, i.Wide), i.Imm)

	case FormatAccMem:
		acc := RegName(0b000, i.Wide) // the accumulator: al or ax
		mem := "[" + strconv.Itoa(int(i.Addr)) + "]"
		if i.ToAcc {
			return fmt.Sprintf("%s %s,%s", i.Op, acc, mem)
		}
		return fmt.Sprintf("%s %s,%s", i.Op, mem, acc)

	case FormatJump:
		return fmt.Sprintf("%s %d", i.Op, i.JumpDisp)
	}

	return opNames[OpUnknown]
}

// regOrMem renders the operand selected by the ModRM mode and r/m
// fields.
func (i Instruction) regOrMem() string {
	if i.Mode == ModeReg {
		return RegName(i.RM, i.Wide)
	}
	return EffectiveAddress(i.Mode, i.RM, i.Disp, i.Addr)
}

// sizeTag names the destination width for immediates aimed at memory.
func (i Instruction) sizeTag() string {
	if i.Wide {
		return "word"
	}
	return "byte"
}
