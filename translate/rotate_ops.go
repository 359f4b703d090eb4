package translate

import "github.com/halcyon-emu/ppc32/ppc"

// compileRotate handles RLWIMI/RLWINM/RLWNM. RLWINM recognizes the
// rotlwi/slwi/andi idioms the same way the reference translator does,
// falling through to the general rlwinm emission only when none
// apply.
func (c *Compiler) compileRotate(ctx *Context) {
	rs := ppc.RD(ctx.Opcode)
	ra := ppc.RA(ctx.Opcode)

	switch ctx.II.Mnemo {
	case ppc.MRLWIMI:
		sh := ppc.SH(ctx.Opcode)
		m := ppc.Mask(ppc.MB(ctx.Opcode), ppc.ME(ctx.Opcode))
		ctx.Emit.LoadT0GPR(ra)
		ctx.Emit.LoadT1GPR(rs)
		ctx.Emit.RlwimiT0T1(sh, m)

	case ppc.MRLWINM:
		sh := ppc.SH(ctx.Opcode)
		mb := ppc.MB(ctx.Opcode)
		me := ppc.ME(ctx.Opcode)
		ctx.Emit.LoadT0GPR(rs)
		switch {
		case mb == 0 && me == 31:
			if sh > 0 {
				ctx.Emit.RolT0Im(sh)
			}
		case mb == 0 && me == 31-sh:
			ctx.Emit.LslT0Im(sh)
		case sh == 0:
			ctx.Emit.AndT0Im(int32(ppc.Mask(mb, me)))
		default:
			ctx.Emit.RlwinmT0T1(sh, ppc.Mask(mb, me))
		}

	case ppc.MRLWNM:
		m := ppc.Mask(ppc.MB(ctx.Opcode), ppc.ME(ctx.Opcode))
		ctx.Emit.LoadT0GPR(rs)
		ctx.Emit.LoadT1GPR(ppc.RB(ctx.Opcode))
		ctx.Emit.RlwnmT0T1(m)
	}

	ctx.Emit.StoreT0GPR(ra)
	if ppc.Rc(ctx.Opcode) {
		ctx.MarkCRDirty()
		ctx.Emit.RecordCR0T0()
	}
}

// compileCountShift handles CNTLZW/SLW/SRW/SRAW/SRAWI.
func (c *Compiler) compileCountShift(ctx *Context) {
	rs := ppc.RD(ctx.Opcode)
	ra := ppc.RA(ctx.Opcode)

	ctx.Emit.LoadT0GPR(rs)
	switch ctx.II.Mnemo {
	case ppc.MCNTLZW:
		ctx.Emit.CntlzwT0()
	case ppc.MSLW:
		ctx.Emit.LoadT1GPR(ppc.RB(ctx.Opcode))
		ctx.Emit.SlwT0T1()
	case ppc.MSRW:
		ctx.Emit.LoadT1GPR(ppc.RB(ctx.Opcode))
		ctx.Emit.SrwT0T1()
	case ppc.MSRAW:
		ctx.Emit.LoadT1GPR(ppc.RB(ctx.Opcode))
		ctx.Emit.SrawT0T1()
	case ppc.MSRAWI:
		ctx.Emit.SrawT0Im(ppc.SH(ctx.Opcode))
	}
	ctx.Emit.StoreT0GPR(ra)
	if ppc.Rc(ctx.Opcode) {
		ctx.MarkCRDirty()
		ctx.Emit.RecordCR0T0()
	}
}
