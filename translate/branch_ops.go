package translate

import "github.com/halcyon-emu/ppc32/ppc"

// compileBranchAlways handles unconditional B[L][A]. It shares BcA0
// with the conditional forms by feeding it ppc.BOAlways, so the
// tape's branch op never needs to special-case the unconditional
// encoding.
func (c *Compiler) compileBranchAlways(ctx *Context) {
	npc := ctx.DPC + 4
	if ppc.LK(ctx.Opcode) {
		ctx.Emit.StoreImLR(npc)
	}

	var tpc uint32
	if ppc.AA(ctx.Opcode) {
		tpc = uint32(ppc.LI(ctx.Opcode)) &^ 3
	} else {
		tpc = (ctx.DPC + uint32(ppc.LI(ctx.Opcode))) &^ 3
	}
	ctx.Emit.MovA0Im(int32(tpc))
	ctx.Emit.BcA0(ppc.BOAlways, 0, npc)
}

// compileBranchCond handles BC/BCCTR/BCLR. It returns false to fall
// back to the interpreter for the CTR-decrement-dependent BO forms —
// a deliberate pessimization, never translated inline.
func (c *Compiler) compileBranchCond(ctx *Context) bool {
	bo := ppc.BO(ctx.Opcode)
	if ppc.BOIsCounterDependent(bo) {
		return false
	}

	switch ctx.II.Mnemo {
	case ppc.MBC:
		var tpc uint32
		if ppc.AA(ctx.Opcode) {
			tpc = uint32(ppc.BD(ctx.Opcode)) &^ 3
		} else {
			tpc = (ctx.DPC + uint32(ppc.BD(ctx.Opcode))) &^ 3
		}
		ctx.Emit.MovA0Im(int32(tpc))
	case ppc.MBCCTR:
		ctx.Emit.LoadT0CTR()
		ctx.Emit.MovA0T0()
	case ppc.MBCLR:
		ctx.Emit.LoadT0LR()
		ctx.Emit.MovA0T0()
	}

	npc := ctx.DPC + 4
	if ppc.LK(ctx.Opcode) {
		ctx.Emit.StoreImLR(npc)
	}
	bi := ppc.BI(ctx.Opcode)
	ctx.Emit.BcA0(bo, bi, npc)
	return true
}
