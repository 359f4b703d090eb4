package translate

import "github.com/halcyon-emu/ppc32/ppc"

// loadAddress emits the effective-address computation into A0,
// shared by both direct and indexed, update and non-update forms.
// rA==0 means "base is zero" only in a non-update form; the decoder
// does not reject rA==0 on an update-form encoding, so update forms
// must always use GPR[rA] as the base, even when ra==0.
func loadAddress(ctx *Context, ra, rb uint32, d int32, indexed, update bool) {
	if ra == 0 && !update {
		ctx.Emit.MovA0Im(0)
	} else {
		ctx.Emit.LoadA0GPR(ra)
	}
	if indexed {
		ctx.Emit.LoadT1GPR(rb)
	}
}

func finishUpdate(ctx *Context, ra uint32, rb uint32, d int32, indexed bool) {
	if indexed {
		ctx.Emit.AddA0T1()
	} else {
		ctx.Emit.AddA0Im(d)
	}
	ctx.Emit.StoreA0GPR(ra)
}

// compileLoad emits every load mnemonic: direct/indexed, sign/size
// variants, and update forms that write back the effective address.
func (c *Compiler) compileLoad(ctx *Context) {
	ra := ppc.RA(ctx.Opcode)
	rb := ppc.RB(ctx.Opcode)
	rd := ppc.RD(ctx.Opcode)
	d := ppc.D(ctx.Opcode)

	indexed, update := loadFormOf(ctx.II.Mnemo)
	loadAddress(ctx, ra, rb, d, indexed, update)

	switch ctx.II.Mnemo {
	case ppc.MLBZ, ppc.MLBZU, ppc.MLBZX, ppc.MLBZUX:
		if indexed {
			ctx.Emit.LoadU8T0A0T1()
		} else {
			ctx.Emit.LoadU8T0A0Im(d)
		}
	case ppc.MLHZ, ppc.MLHZU, ppc.MLHZX, ppc.MLHZUX:
		if indexed {
			ctx.Emit.LoadU16T0A0T1()
		} else {
			ctx.Emit.LoadU16T0A0Im(d)
		}
	case ppc.MLHA, ppc.MLHAU, ppc.MLHAX, ppc.MLHAUX:
		if indexed {
			ctx.Emit.LoadS16T0A0T1()
		} else {
			ctx.Emit.LoadS16T0A0Im(d)
		}
	case ppc.MLWZ, ppc.MLWZU, ppc.MLWZX, ppc.MLWZUX:
		if indexed {
			ctx.Emit.LoadU32T0A0T1()
		} else {
			ctx.Emit.LoadU32T0A0Im(d)
		}
	}

	ctx.Emit.StoreT0GPR(rd)
	if update {
		finishUpdate(ctx, ra, rb, d, indexed)
	}
}

// compileStore emits every store mnemonic, mirroring compileLoad.
func (c *Compiler) compileStore(ctx *Context) {
	ra := ppc.RA(ctx.Opcode)
	rb := ppc.RB(ctx.Opcode)
	rs := ppc.RD(ctx.Opcode) // RS shares the RD field position
	d := ppc.D(ctx.Opcode)

	indexed, update := storeFormOf(ctx.II.Mnemo)
	loadAddress(ctx, ra, rb, d, indexed, update)
	ctx.Emit.LoadT0GPR(rs)

	switch ctx.II.Mnemo {
	case ppc.MSTB, ppc.MSTBU, ppc.MSTBX, ppc.MSTBUX:
		if indexed {
			ctx.Emit.Store8T0A0T1()
		} else {
			ctx.Emit.Store8T0A0Im(d)
		}
	case ppc.MSTH, ppc.MSTHU, ppc.MSTHX, ppc.MSTHUX:
		if indexed {
			ctx.Emit.Store16T0A0T1()
		} else {
			ctx.Emit.Store16T0A0Im(d)
		}
	case ppc.MSTW, ppc.MSTWU, ppc.MSTWX, ppc.MSTWUX:
		if indexed {
			ctx.Emit.Store32T0A0T1()
		} else {
			ctx.Emit.Store32T0A0Im(d)
		}
	}

	if update {
		finishUpdate(ctx, ra, rb, d, indexed)
	}
}

func loadFormOf(m ppc.Mnemo) (indexed, update bool) {
	switch m {
	case ppc.MLBZX, ppc.MLHZX, ppc.MLHAX, ppc.MLWZX:
		return true, false
	case ppc.MLBZUX, ppc.MLHZUX, ppc.MLHAUX, ppc.MLWZUX:
		return true, true
	case ppc.MLBZU, ppc.MLHZU, ppc.MLHAU, ppc.MLWZU:
		return false, true
	default:
		return false, false
	}
}

func storeFormOf(m ppc.Mnemo) (indexed, update bool) {
	switch m {
	case ppc.MSTBX, ppc.MSTHX, ppc.MSTWX:
		return true, false
	case ppc.MSTBUX, ppc.MSTHUX, ppc.MSTWUX:
		return true, true
	case ppc.MSTBU, ppc.MSTHU, ppc.MSTWU:
		return false, true
	default:
		return false, false
	}
}
