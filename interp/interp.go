// Package interp implements the per-opcode interpreter fallback: the
// handler the translator invokes for any instruction it does not
// inline (illegal opcodes, CTR-dependent conditional branches,
// unmapped SPRs in the standalone configuration), and the oracle a
// compiled-and-executed block is checked against in round-trip tests.
package interp

import (
	"fmt"
	"math/bits"

	"github.com/halcyon-emu/ppc32/mem"
	"github.com/halcyon-emu/ppc32/ppc"
	"github.com/halcyon-emu/ppc32/state"
)

// Interp is the fallback contract translate.Compiler calls through
// for anything it does not inline.
type Interp interface {
	Execute(regs *state.Regs, m mem.GuestMem, opcode uint32) error
}

// SPRPolicy selects how MFSPR/MTSPR behave for SPR numbers other than
// XER/LR/CTR. It is injected at construction, never a package global
// (SheepShaver's PVR is a build-time #define; here it's a value).
type SPRPolicy struct {
	// Standalone selects the plain configuration: any SPR other than
	// XER/LR/CTR, SDR1 and PVR included, is an illegal instruction. When false, the
	// supervisor-extended configuration applies (SDR1/PVR/other-SPR
	// rules below).
	Standalone bool
	PVR        uint32
}

const sdr1Value = 0xdead001f

// Reference is a complete interpreter for every instruction class
// spec.md names, used both as the wired ppc fallback handler and as
// the round-trip oracle in tests.
type Reference struct {
	SPR SPRPolicy
}

// NewReference wires r as the ppc package's illegal-instruction
// handler and returns r, so one call sets up both uses.
func NewReference(policy SPRPolicy) *Reference {
	r := &Reference{SPR: policy}
	ppc.SetIllegalHandler(r.Execute)
	return r
}

// Execute runs one instruction. The caller must have regs.PC pointing
// at opcode's address before the call; branch mnemonics set regs.PC
// to their target/fall-through themselves, everything else gets the
// standard +4 advance applied here, matching how the compiled path's
// pc_offset accounting expects the fallback to behave.
func (r *Reference) Execute(regs *state.Regs, m mem.GuestMem, opcode uint32) error {
	ii := ppc.Decode(opcode)
	if err := r.dispatch(regs, m, opcode, ii); err != nil {
		return err
	}
	if ii.CFlow&ppc.CFlowEndBlock == 0 {
		regs.PC += 4
	}
	return nil
}

func (r *Reference) dispatch(regs *state.Regs, m mem.GuestMem, opcode uint32, ii *ppc.Instruction) error {
	ra, rb, rd := ppc.RA(opcode), ppc.RB(opcode), ppc.RD(opcode)
	switch ii.Mnemo {
	case ppc.MIllegal:
		return fmt.Errorf("interp: illegal instruction %#08x at pc %#08x", opcode, regs.PC)

	// Loads
	case ppc.MLWZ, ppc.MLWZU:
		return r.load32(regs, m, ra, rd, ppc.D(opcode), ii.Mnemo == ppc.MLWZU)
	case ppc.MLBZ, ppc.MLBZU:
		return r.load8(regs, m, ra, rd, ppc.D(opcode), ii.Mnemo == ppc.MLBZU)
	case ppc.MLHZ, ppc.MLHZU:
		return r.load16(regs, m, ra, rd, ppc.D(opcode), ii.Mnemo == ppc.MLHZU, false)
	case ppc.MLHA, ppc.MLHAU:
		return r.load16(regs, m, ra, rd, ppc.D(opcode), ii.Mnemo == ppc.MLHAU, true)
	case ppc.MLWZX, ppc.MLWZUX:
		return r.load32x(regs, m, ra, rb, rd, ii.Mnemo == ppc.MLWZUX)
	case ppc.MLBZX, ppc.MLBZUX:
		return r.load8x(regs, m, ra, rb, rd, ii.Mnemo == ppc.MLBZUX)
	case ppc.MLHZX, ppc.MLHZUX:
		return r.load16x(regs, m, ra, rb, rd, ii.Mnemo == ppc.MLHZUX, false)
	case ppc.MLHAX, ppc.MLHAUX:
		return r.load16x(regs, m, ra, rb, rd, ii.Mnemo == ppc.MLHAUX, true)

	// Stores
	case ppc.MSTW, ppc.MSTWU:
		return r.store32(regs, m, ra, rd, ppc.D(opcode), ii.Mnemo == ppc.MSTWU)
	case ppc.MSTB, ppc.MSTBU:
		return r.store8(regs, m, ra, rd, ppc.D(opcode), ii.Mnemo == ppc.MSTBU)
	case ppc.MSTH, ppc.MSTHU:
		return r.store16(regs, m, ra, rd, ppc.D(opcode), ii.Mnemo == ppc.MSTHU)
	case ppc.MSTWX, ppc.MSTWUX:
		return r.store32x(regs, m, ra, rb, rd, ii.Mnemo == ppc.MSTWUX)
	case ppc.MSTBX, ppc.MSTBUX:
		return r.store8x(regs, m, ra, rb, rd, ii.Mnemo == ppc.MSTBUX)
	case ppc.MSTHX, ppc.MSTHUX:
		return r.store16x(regs, m, ra, rb, rd, ii.Mnemo == ppc.MSTHUX)

	// Branches
	case ppc.MB:
		return r.branchAbs(regs, opcode)
	case ppc.MBC:
		return r.branchCond(regs, opcode)
	case ppc.MBCLR:
		return r.branchToReg(regs, opcode, regs.LR)
	case ppc.MBCCTR:
		return r.branchToReg(regs, opcode, regs.CTR)

	// Compares
	case ppc.MCMP, ppc.MCMPI:
		return r.compare(regs, opcode, ii.Mnemo == ppc.MCMPI, true)
	case ppc.MCMPL, ppc.MCMPLI:
		return r.compare(regs, opcode, ii.Mnemo == ppc.MCMPLI, false)

	// CR-logical
	case ppc.MCRAND, ppc.MCRANDC, ppc.MCROR, ppc.MCRORC, ppc.MCRXOR, ppc.MCRNAND, ppc.MCRNOR, ppc.MCREQV:
		return r.crLogical(regs, ii.Mnemo, opcode)

	// Bitwise register-register
	case ppc.MAND:
		return r.binRR(regs, opcode, func(a, b uint32) uint32 { return a & b })
	case ppc.MANDC:
		return r.binRR(regs, opcode, func(a, b uint32) uint32 { return a &^ b })
	case ppc.MOR:
		return r.binRR(regs, opcode, func(a, b uint32) uint32 { return a | b })
	case ppc.MORC:
		return r.binRR(regs, opcode, func(a, b uint32) uint32 { return a | ^b })
	case ppc.MXOR:
		return r.binRR(regs, opcode, func(a, b uint32) uint32 { return a ^ b })
	case ppc.MNAND:
		return r.binRR(regs, opcode, func(a, b uint32) uint32 { return ^(a & b) })
	case ppc.MNOR:
		return r.binRR(regs, opcode, func(a, b uint32) uint32 { return ^(a | b) })
	case ppc.MEQV:
		return r.binRR(regs, opcode, func(a, b uint32) uint32 { return ^(a ^ b) })

	// Immediate bitwise
	case ppc.MORI:
		return r.immLogical(regs, opcode, ppc.UIMM, func(a, v uint32) uint32 { return a | v }, false)
	case ppc.MORIS:
		return r.immLogical(regs, opcode, func(op uint32) uint32 { return ppc.UIMM(op) << 16 }, func(a, v uint32) uint32 { return a | v }, false)
	case ppc.MXORI:
		return r.immLogical(regs, opcode, ppc.UIMM, func(a, v uint32) uint32 { return a ^ v }, false)
	case ppc.MXORIS:
		return r.immLogical(regs, opcode, func(op uint32) uint32 { return ppc.UIMM(op) << 16 }, func(a, v uint32) uint32 { return a ^ v }, false)
	case ppc.MANDI:
		return r.immLogical(regs, opcode, ppc.UIMM, func(a, v uint32) uint32 { return a & v }, true)
	case ppc.MANDIS:
		return r.immLogical(regs, opcode, func(op uint32) uint32 { return ppc.UIMM(op) << 16 }, func(a, v uint32) uint32 { return a & v }, true)

	// Sign-extend / negate
	case ppc.MEXTSB:
		regs.GPR[ra] = uint32(int32(int8(regs.GPR[rd])))
		recordRc(regs, opcode, regs.GPR[ra])
		return nil
	case ppc.MEXTSH:
		regs.GPR[ra] = uint32(int32(int16(regs.GPR[rd])))
		recordRc(regs, opcode, regs.GPR[ra])
		return nil
	case ppc.MNEG:
		v := -regs.GPR[ra]
		regs.GPR[rd] = v
		if ppc.OE(opcode) {
			setOV(regs, regs.GPR[ra] == 0x80000000)
		}
		recordRc(regs, opcode, v)
		return nil

	// CR/SPR moves
	case ppc.MMFCR:
		regs.GPR[rd] = regs.CR
		return nil
	case ppc.MMFSPR:
		return r.mfspr(regs, opcode)
	case ppc.MMTSPR:
		return r.mtspr(regs, opcode)

	// Arithmetic register-register
	case ppc.MADD:
		return r.addRR(regs, opcode, 0, false)
	case ppc.MADDC:
		return r.addRR(regs, opcode, 0, true)
	case ppc.MADDE:
		return r.addRR(regs, opcode, xerCA(regs), true)
	case ppc.MSUBF:
		return r.subfRR(regs, opcode, 1, false)
	case ppc.MSUBFC:
		return r.subfRR(regs, opcode, 1, true)
	case ppc.MSUBFE:
		return r.subfRR(regs, opcode, xerCA(regs), true)
	case ppc.MADDME:
		return r.addRR1(regs, opcode, ra, 0xFFFFFFFF, xerCA(regs))
	case ppc.MADDZE:
		return r.addRR1(regs, opcode, ra, 0, xerCA(regs))
	case ppc.MSUBFME:
		return r.subfRR1(regs, opcode, ra, 0xFFFFFFFF, xerCA(regs))
	case ppc.MSUBFZE:
		return r.subfRR1(regs, opcode, ra, 0, xerCA(regs))
	case ppc.MMULLW:
		return r.mullw(regs, opcode)
	case ppc.MMULHW:
		p := int64(int32(regs.GPR[ra])) * int64(int32(regs.GPR[rb]))
		v := uint32(p >> 32)
		regs.GPR[rd] = v
		recordRc(regs, opcode, v)
		return nil
	case ppc.MMULHWU:
		p := uint64(regs.GPR[ra]) * uint64(regs.GPR[rb])
		v := uint32(p >> 32)
		regs.GPR[rd] = v
		recordRc(regs, opcode, v)
		return nil
	case ppc.MDIVW:
		return r.divw(regs, opcode, true)
	case ppc.MDIVWU:
		return r.divw(regs, opcode, false)

	// Immediate carrying
	case ppc.MADDIC:
		return r.addic(regs, opcode, false)
	case ppc.MADDICdot:
		return r.addic(regs, opcode, true)
	case ppc.MSUBFIC:
		sum, carry := bits.Add32(uint32(ppc.SIMM(opcode)), ^regs.GPR[ra], 1)
		regs.GPR[rd] = sum
		setCA(regs, carry != 0)
		return nil

	// Add immediate
	case ppc.MADDI:
		v := uint32(ppc.SIMM(opcode))
		if ra != 0 {
			v += regs.GPR[ra]
		}
		regs.GPR[rd] = v
		return nil
	case ppc.MADDIS:
		v := uint32(ppc.SIMM(opcode)) << 16
		if ra != 0 {
			v += regs.GPR[ra]
		}
		regs.GPR[rd] = v
		return nil
	case ppc.MMULLI:
		regs.GPR[rd] = uint32(int32(regs.GPR[ra]) * ppc.SIMM(opcode))
		return nil

	// Rotate and mask
	case ppc.MRLWIMI:
		sh := ppc.SH(opcode)
		m := ppc.Mask(ppc.MB(opcode), ppc.ME(opcode))
		rot := bits.RotateLeft32(regs.GPR[rd], int(sh))
		regs.GPR[ra] = (rot & m) | (regs.GPR[ra] &^ m)
		recordRc(regs, opcode, regs.GPR[ra])
		return nil
	case ppc.MRLWINM:
		sh := ppc.SH(opcode)
		m := ppc.Mask(ppc.MB(opcode), ppc.ME(opcode))
		v := bits.RotateLeft32(regs.GPR[rd], int(sh)) & m
		regs.GPR[ra] = v
		recordRc(regs, opcode, v)
		return nil
	case ppc.MRLWNM:
		m := ppc.Mask(ppc.MB(opcode), ppc.ME(opcode))
		v := bits.RotateLeft32(regs.GPR[rd], int(regs.GPR[rb]&0x1F)) & m
		regs.GPR[ra] = v
		recordRc(regs, opcode, v)
		return nil

	// Count / shift
	case ppc.MCNTLZW:
		v := uint32(bits.LeadingZeros32(regs.GPR[rd]))
		regs.GPR[ra] = v
		recordRc(regs, opcode, v)
		return nil
	case ppc.MSLW:
		sh := regs.GPR[rb] & 0x3F
		var v uint32
		if sh < 32 {
			v = regs.GPR[rd] << sh
		}
		regs.GPR[ra] = v
		recordRc(regs, opcode, v)
		return nil
	case ppc.MSRW:
		sh := regs.GPR[rb] & 0x3F
		var v uint32
		if sh < 32 {
			v = regs.GPR[rd] >> sh
		}
		regs.GPR[ra] = v
		recordRc(regs, opcode, v)
		return nil
	case ppc.MSRAW:
		v, ca := sraw(regs.GPR[rd], regs.GPR[rb]&0x3F)
		regs.GPR[ra] = v
		setCA(regs, ca)
		recordRc(regs, opcode, v)
		return nil
	case ppc.MSRAWI:
		v, ca := sraw(regs.GPR[rd], ppc.SH(opcode))
		regs.GPR[ra] = v
		setCA(regs, ca)
		recordRc(regs, opcode, v)
		return nil

	default:
		return fmt.Errorf("interp: unimplemented mnemonic %s for opcode %#08x", ii.Mnemo, opcode)
	}
}

func sraw(v, sh uint32) (uint32, bool) {
	if sh >= 32 {
		if int32(v) < 0 {
			return 0xFFFFFFFF, true
		}
		return 0, false
	}
	r := uint32(int32(v) >> sh)
	ca := int32(v) < 0 && (v<<(32-sh)) != 0
	return r, ca
}

func xerCA(regs *state.Regs) uint32 {
	if regs.XER&state.XERCA != 0 {
		return 1
	}
	return 0
}

func setCA(regs *state.Regs, v bool) {
	if v {
		regs.XER |= state.XERCA
	} else {
		regs.XER &^= state.XERCA
	}
}

func setOV(regs *state.Regs, v bool) {
	if v {
		regs.XER |= state.XERSO | state.XEROV
	} else {
		regs.XER &^= state.XEROV
	}
}

func recordRc(regs *state.Regs, opcode uint32, result uint32) {
	if ppc.Rc(opcode) {
		regs.RecordCR0(result)
	}
}
