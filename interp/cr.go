package interp

import (
	"github.com/halcyon-emu/ppc32/ppc"
	"github.com/halcyon-emu/ppc32/state"
)

func (r *Reference) compare(regs *state.Regs, opcode uint32, immediate, signed bool) error {
	crf := ppc.CrfD(opcode)
	a := regs.GPR[ppc.RA(opcode)]
	var v uint32
	if signed {
		var b int32
		if immediate {
			b = ppc.SIMM(opcode)
		} else {
			b = int32(regs.GPR[ppc.RB(opcode)])
		}
		switch {
		case int32(a) < b:
			v = state.CR0LT
		case int32(a) > b:
			v = state.CR0GT
		default:
			v = state.CR0EQ
		}
	} else {
		var b uint32
		if immediate {
			b = ppc.UIMM(opcode)
		} else {
			b = regs.GPR[ppc.RB(opcode)]
		}
		switch {
		case a < b:
			v = state.CR0LT
		case a > b:
			v = state.CR0GT
		default:
			v = state.CR0EQ
		}
	}
	if regs.XER&state.XERSO != 0 {
		v |= state.CR0SO
	}
	regs.SetCRField(crf, v)
	return nil
}

func (r *Reference) crLogical(regs *state.Regs, mnemo ppc.Mnemo, opcode uint32) error {
	d, a, b := ppc.CrbD(opcode), ppc.CrbA(opcode), ppc.CrbB(opcode)
	av, bv := regs.CRBitSet(a), regs.CRBitSet(b)
	var v bool
	switch mnemo {
	case ppc.MCRAND:
		v = av && bv
	case ppc.MCRANDC:
		v = av && !bv
	case ppc.MCROR:
		v = av || bv
	case ppc.MCRORC:
		v = av || !bv
	case ppc.MCRXOR:
		v = av != bv
	case ppc.MCRNAND:
		v = !(av && bv)
	case ppc.MCRNOR:
		v = !(av || bv)
	case ppc.MCREQV:
		v = av == bv
	}
	regs.SetCRBit(d, v)
	return nil
}

func (r *Reference) mfspr(regs *state.Regs, opcode uint32) error {
	rd := ppc.RD(opcode)
	switch n := ppc.SPR(opcode); n {
	case sprXER:
		regs.GPR[rd] = regs.XER
	case sprLR:
		regs.GPR[rd] = regs.LR
	case sprCTR:
		regs.GPR[rd] = regs.CTR
	case sprSDR1:
		if r.SPR.Standalone {
			return errIllegalSPR(n)
		}
		regs.GPR[rd] = sdr1Value
	case sprPVR:
		if r.SPR.Standalone {
			return errIllegalSPR(n)
		}
		regs.GPR[rd] = r.SPR.PVR
	default:
		if r.SPR.Standalone {
			return errIllegalSPR(n)
		}
		regs.GPR[rd] = 0
	}
	return nil
}

func (r *Reference) mtspr(regs *state.Regs, opcode uint32) error {
	rd := ppc.RD(opcode)
	switch n := ppc.SPR(opcode); n {
	case sprXER:
		regs.XER = regs.GPR[rd]
	case sprLR:
		regs.LR = regs.GPR[rd]
	case sprCTR:
		regs.CTR = regs.GPR[rd]
	case sprSDR1, sprPVR:
		if r.SPR.Standalone {
			return errIllegalSPR(n)
		}
		// writes to SDR1/PVR are silent in the supervisor-extended config
	default:
		if r.SPR.Standalone {
			return errIllegalSPR(n)
		}
		// other SPR writes are silent
	}
	return nil
}

const (
	sprXER  = 1
	sprLR   = 8
	sprCTR  = 9
	sprSDR1 = 25
	sprPVR  = 287
)
