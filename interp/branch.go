package interp

import (
	"github.com/halcyon-emu/ppc32/ppc"
	"github.com/halcyon-emu/ppc32/state"
)

func (r *Reference) branchAbs(regs *state.Regs, opcode uint32) error {
	target := branchTarget(regs, opcode)
	if ppc.LK(opcode) {
		regs.LR = regs.PC + 4
	}
	regs.PC = target
	return nil
}

func (r *Reference) branchCond(regs *state.Regs, opcode uint32) error {
	bo, bi := ppc.BO(opcode), ppc.BI(opcode)
	next := regs.PC + 4
	taken := evalCond(regs, bo, bi)
	if ppc.LK(opcode) {
		regs.LR = next
	}
	if taken {
		regs.PC = branchTargetBD(regs, opcode)
	} else {
		regs.PC = next
	}
	return nil
}

func (r *Reference) branchToReg(regs *state.Regs, opcode uint32, target uint32) error {
	bo, bi := ppc.BO(opcode), ppc.BI(opcode)
	next := regs.PC + 4
	taken := evalCond(regs, bo, bi)
	if ppc.LK(opcode) {
		regs.LR = next
	}
	if taken {
		regs.PC = target &^ 3
	} else {
		regs.PC = next
	}
	return nil
}

func branchTarget(regs *state.Regs, opcode uint32) uint32 {
	li := ppc.LI(opcode)
	if ppc.AA(opcode) {
		return uint32(li)
	}
	return regs.PC + uint32(li)
}

func branchTargetBD(regs *state.Regs, opcode uint32) uint32 {
	bd := ppc.BD(opcode)
	if ppc.AA(opcode) {
		return uint32(bd)
	}
	return regs.PC + uint32(bd)
}

func evalCond(regs *state.Regs, bo, bi uint32) bool {
	ctrOK := true
	if ppc.BOIsCounterDependent(bo) {
		regs.CTR--
		nz := regs.CTR != 0
		if bo&0b00010 != 0 {
			ctrOK = nz
		} else {
			ctrOK = !nz
		}
	}
	condOK := true
	if bo&0b10000 == 0 {
		set := regs.CRBitSet(bi)
		if bo&0b01000 != 0 {
			condOK = set
		} else {
			condOK = !set
		}
	}
	return ctrOK && condOK
}
