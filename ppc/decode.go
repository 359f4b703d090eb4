package ppc

import (
	"github.com/halcyon-emu/ppc32/mem"
	"github.com/halcyon-emu/ppc32/state"
)

// ExecFn is the interpreter fallback signature stored on a decoded
// instruction: execute opcode against regs/memory directly, without
// translation.
type ExecFn func(regs *state.Regs, m mem.GuestMem, opcode uint32) error

// Instruction is the decoder's output: a descriptor naming the
// mnemonic, its control-flow class, and the interpreter handler to
// fall back on if the translator does not inline it.
type Instruction struct {
	Mnemo Mnemo
	CFlow CFlow
	Exec  ExecFn
}

// fallbackHandler is the interpreter's universal per-opcode entry
// point: it redecodes the raw opcode itself, so every descriptor can
// share the same function value as its Exec pointer. interp registers
// it via SetIllegalHandler, avoiding an import cycle (ppc must not
// import interp, which imports ppc for mnemonic dispatch).
var fallbackHandler ExecFn

var illegalInstruction = &Instruction{Mnemo: MIllegal, CFlow: CFlowNone}

// SetIllegalHandler lets the interp package register the
// interpreter's Execute method as the fallback target for both the
// illegal-instruction descriptor and, via inst(), every other decoded
// instruction's Exec pointer.
func SetIllegalHandler(fn ExecFn) {
	fallbackHandler = fn
	illegalInstruction.Exec = fn
}

func inst(mnemo Mnemo, cflow CFlow) *Instruction {
	return &Instruction{Mnemo: mnemo, CFlow: cflow, Exec: fallbackHandler}
}

// Decode maps a 32-bit opcode to its descriptor. It is total: an
// unrecognized opcode resolves to the illegal-instruction descriptor,
// never nil (§6.3).
func Decode(opcode uint32) *Instruction {
	switch Opcd(opcode) {
	case 7:
		return inst(MMULLI, CFlowNone)
	case 8:
		return inst(MSUBFIC, CFlowNone)
	case 10:
		return inst(MCMPLI, CFlowNone)
	case 11:
		return inst(MCMPI, CFlowNone)
	case 12:
		return inst(MADDIC, CFlowNone)
	case 13:
		return inst(MADDICdot, CFlowNone)
	case 14:
		return inst(MADDI, CFlowNone)
	case 15:
		return inst(MADDIS, CFlowNone)
	case 16:
		return inst(MBC, CFlowEndBlock)
	case 18:
		return inst(MB, CFlowEndBlock)
	case 19:
		return decode19(opcode)
	case 20:
		return inst(MRLWIMI, CFlowNone)
	case 21:
		return inst(MRLWINM, CFlowNone)
	case 23:
		return inst(MRLWNM, CFlowNone)
	case 24:
		return inst(MORI, CFlowNone)
	case 25:
		return inst(MORIS, CFlowNone)
	case 26:
		return inst(MXORI, CFlowNone)
	case 27:
		return inst(MXORIS, CFlowNone)
	case 28:
		return inst(MANDI, CFlowNone)
	case 29:
		return inst(MANDIS, CFlowNone)
	case 31:
		return decode31(opcode)
	case 32:
		return inst(MLWZ, CFlowNone)
	case 33:
		return inst(MLWZU, CFlowNone)
	case 34:
		return inst(MLBZ, CFlowNone)
	case 35:
		return inst(MLBZU, CFlowNone)
	case 36:
		return inst(MSTW, CFlowNone)
	case 37:
		return inst(MSTWU, CFlowNone)
	case 38:
		return inst(MSTB, CFlowNone)
	case 39:
		return inst(MSTBU, CFlowNone)
	case 40:
		return inst(MLHZ, CFlowNone)
	case 41:
		return inst(MLHZU, CFlowNone)
	case 42:
		return inst(MLHA, CFlowNone)
	case 43:
		return inst(MLHAU, CFlowNone)
	case 44:
		return inst(MSTH, CFlowNone)
	case 45:
		return inst(MSTHU, CFlowNone)
	default:
		return illegalInstruction
	}
}

// decode19 handles the opcode-19 extended group: CR-logical ops and
// branches through CTR/LR.
func decode19(opcode uint32) *Instruction {
	switch XO(opcode) {
	case 0:
		return illegalInstruction // mcrf, not part of this core
	case 16:
		return inst(MBCLR, CFlowEndBlock)
	case 33:
		return inst(MCRNOR, CFlowNone)
	case 129:
		return inst(MCRANDC, CFlowNone)
	case 193:
		return inst(MCRXOR, CFlowNone)
	case 225:
		return inst(MCRNAND, CFlowNone)
	case 257:
		return inst(MCRAND, CFlowNone)
	case 289:
		return inst(MCREQV, CFlowNone)
	case 417:
		return inst(MCRORC, CFlowNone)
	case 449:
		return inst(MCROR, CFlowNone)
	case 528:
		return inst(MBCCTR, CFlowEndBlock)
	default:
		return illegalInstruction
	}
}

// decode31 handles the opcode-31 extended group: arithmetic, logical,
// compare, rotate/shift, CR/SPR moves, and indexed memory forms.
func decode31(opcode uint32) *Instruction {
	switch XO9(opcode) {
	case 0:
		return inst(MCMP, CFlowNone)
	case 8:
		return inst(MSUBFC, CFlowNone)
	case 10:
		return inst(MADDC, CFlowNone)
	case 11:
		return inst(MMULHWU, CFlowNone)
	case 19:
		return inst(MMFCR, CFlowNone)
	case 23:
		return inst(MLWZX, CFlowNone)
	case 24:
		return inst(MSLW, CFlowNone)
	case 26:
		return inst(MCNTLZW, CFlowNone)
	case 28:
		return inst(MAND, CFlowNone)
	case 32:
		return inst(MCMPL, CFlowNone)
	case 40:
		return inst(MSUBF, CFlowNone)
	case 55:
		return inst(MLWZUX, CFlowNone)
	case 60:
		return inst(MANDC, CFlowNone)
	case 75:
		return inst(MMULHW, CFlowNone)
	case 87:
		return inst(MLBZX, CFlowNone)
	case 104:
		return inst(MNEG, CFlowNone)
	case 119:
		return inst(MLBZUX, CFlowNone)
	case 124:
		return inst(MNOR, CFlowNone)
	case 136:
		return inst(MSUBFE, CFlowNone)
	case 138:
		return inst(MADDE, CFlowNone)
	case 151:
		return inst(MSTWX, CFlowNone)
	case 183:
		return inst(MSTWUX, CFlowNone)
	case 200:
		return inst(MSUBFZE, CFlowNone)
	case 202:
		return inst(MADDZE, CFlowNone)
	case 215:
		return inst(MSTBX, CFlowNone)
	case 232:
		return inst(MSUBFME, CFlowNone)
	case 234:
		return inst(MADDME, CFlowNone)
	case 235:
		return inst(MMULLW, CFlowNone)
	case 247:
		return inst(MSTBUX, CFlowNone)
	case 266:
		return inst(MADD, CFlowNone)
	case 279:
		return inst(MLHZX, CFlowNone)
	case 284:
		return inst(MEQV, CFlowNone)
	case 311:
		return inst(MLHZUX, CFlowNone)
	case 316:
		return inst(MXOR, CFlowNone)
	case 339:
		return inst(MMFSPR, CFlowNone)
	case 343:
		return inst(MLHAX, CFlowNone)
	case 375:
		return inst(MLHAUX, CFlowNone)
	case 407:
		return inst(MSTHX, CFlowNone)
	case 412:
		return inst(MORC, CFlowNone)
	case 439:
		return inst(MSTHUX, CFlowNone)
	case 444:
		return inst(MOR, CFlowNone)
	case 459:
		return inst(MDIVWU, CFlowNone)
	case 467:
		return inst(MMTSPR, CFlowNone)
	case 476:
		return inst(MNAND, CFlowNone)
	case 491:
		return inst(MDIVW, CFlowNone)
	}
	// X-form extended opcodes of 512 and above use bit 21, which XO9
	// masks off, so they are matched on the full 10-bit XO.
	switch XO(opcode) {
	case 536:
		return inst(MSRW, CFlowNone)
	case 792:
		return inst(MSRAW, CFlowNone)
	case 824:
		return inst(MSRAWI, CFlowNone)
	case 922:
		return inst(MEXTSH, CFlowNone)
	case 954:
		return inst(MEXTSB, CFlowNone)
	default:
		return illegalInstruction
	}
}
