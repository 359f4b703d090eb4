package translate

import "github.com/halcyon-emu/ppc32/ppc"

// compileCompare handles CMP/CMPI/CMPL/CMPLI. The crfD field picks
// which of the eight CR fields receives the result; CR0 is only
// special in that most other instructions implicitly target it.
func (c *Compiler) compileCompare(ctx *Context) {
	crfd := ppc.CrfD(ctx.Opcode)
	ra := ppc.RA(ctx.Opcode)

	switch ctx.II.Mnemo {
	case ppc.MCMP:
		ctx.Emit.LoadT0GPR(ra)
		ctx.Emit.LoadT1GPR(ppc.RB(ctx.Opcode))
		ctx.Emit.CompareT0T1(crfd)
	case ppc.MCMPI:
		ctx.Emit.LoadT0GPR(ra)
		ctx.Emit.CompareT0Im(crfd, ppc.SIMM(ctx.Opcode))
	case ppc.MCMPL:
		ctx.Emit.LoadT0GPR(ra)
		ctx.Emit.LoadT1GPR(ppc.RB(ctx.Opcode))
		ctx.Emit.CompareLogicalT0T1(crfd)
	case ppc.MCMPLI:
		ctx.Emit.LoadT0GPR(ra)
		ctx.Emit.CompareLogicalT0Im(crfd, ppc.UIMM(ctx.Opcode))
	}

	ctx.MarkCRDirty()
}

// compileCRLogical handles the eight CR-bit logical ops. They read
// and write condition bits directly, so any CR state the block has
// deferred must be committed first — FlushCR is a no-op if nothing is
// dirty. Each op loads its two source bits as 0/1 values into T0/T1
// and reuses the ordinary bitwise emit calls, since boolean logic on
// single bits is just the 32-bit op restricted to bit 0.
func (c *Compiler) compileCRLogical(ctx *Context) {
	ctx.FlushCR()

	crbd := ppc.CrbD(ctx.Opcode)
	crba := ppc.CrbA(ctx.Opcode)
	crbb := ppc.CrbB(ctx.Opcode)

	ctx.Emit.LoadT0Crb(crba)
	ctx.Emit.LoadT1Crb(crbb)

	switch ctx.II.Mnemo {
	case ppc.MCRAND:
		ctx.Emit.AndT0T1()
	case ppc.MCRANDC:
		ctx.Emit.AndcT0T1()
	case ppc.MCREQV:
		ctx.Emit.EqvT0T1()
	case ppc.MCRNAND:
		ctx.Emit.NandT0T1()
	case ppc.MCRNOR:
		ctx.Emit.NorT0T1()
	case ppc.MCROR:
		ctx.Emit.OrT0T1()
	case ppc.MCRORC:
		ctx.Emit.OrcT0T1()
	case ppc.MCRXOR:
		ctx.Emit.XorT0T1()
	}

	// Only bit 0 of the 32-bit result is meaningful; the logic ops
	// above compute it correctly regardless of garbage in the upper
	// bits (e.g. NandT0T1 on 0/1 inputs yields all-ones-but-bit0 for a
	// false result), so mask before the bit store looks for non-zero.
	ctx.Emit.AndT0Im(1)
	ctx.Emit.StoreT0Crb(crbd)
}
