package translate

import "github.com/halcyon-emu/ppc32/ppc"

// compileBitwiseRR handles the reg-reg logical family: AND/ANDC/EQV/
// NAND/NOR/ORC/XOR. rS rides the RD field position, as it does for
// every X-form logical instruction.
func (c *Compiler) compileBitwiseRR(ctx *Context) {
	rs := ppc.RD(ctx.Opcode)
	ra := ppc.RA(ctx.Opcode)
	rb := ppc.RB(ctx.Opcode)

	ctx.Emit.LoadT0GPR(rs)
	ctx.Emit.LoadT1GPR(rb)
	switch ctx.II.Mnemo {
	case ppc.MAND:
		ctx.Emit.AndT0T1()
	case ppc.MANDC:
		ctx.Emit.AndcT0T1()
	case ppc.MEQV:
		ctx.Emit.EqvT0T1()
	case ppc.MNAND:
		ctx.Emit.NandT0T1()
	case ppc.MNOR:
		ctx.Emit.NorT0T1()
	case ppc.MORC:
		ctx.Emit.OrcT0T1()
	case ppc.MXOR:
		ctx.Emit.XorT0T1()
	}
	ctx.Emit.StoreT0GPR(ra)
	if ppc.Rc(ctx.Opcode) {
		ctx.MarkCRDirty()
		ctx.Emit.RecordCR0T0()
	}
}

// compileOR handles OR specially: rS==rB is the mr idiom, and the
// original skips loading T1 and emitting the OR entirely in that
// case rather than computing a no-op T0|T0.
func (c *Compiler) compileOR(ctx *Context) {
	rs := ppc.RD(ctx.Opcode)
	rb := ppc.RB(ctx.Opcode)
	ra := ppc.RA(ctx.Opcode)

	ctx.Emit.LoadT0GPR(rs)
	if rs != rb {
		ctx.Emit.LoadT1GPR(rb)
		ctx.Emit.OrT0T1()
	}
	ctx.Emit.StoreT0GPR(ra)
	if ppc.Rc(ctx.Opcode) {
		ctx.MarkCRDirty()
		ctx.Emit.RecordCR0T0()
	}
}

// compileImmLogical handles ORI/ORIS/XORI/XORIS/ANDI/ANDIS. ORI with
// a zero immediate is either a NOP (rA==rS) or the mr idiom (rA!=rS);
// both skip the OR entirely, same as the reg-reg OR case.
func (c *Compiler) compileImmLogical(ctx *Context) {
	rs := ppc.RD(ctx.Opcode)
	ra := ppc.RA(ctx.Opcode)

	if ctx.II.Mnemo == ppc.MORI {
		val := ppc.UIMM(ctx.Opcode)
		if val == 0 {
			if ra != rs {
				ctx.Emit.LoadT0GPR(rs)
				ctx.Emit.StoreT0GPR(ra)
			}
			return
		}
		ctx.Emit.LoadT0GPR(rs)
		ctx.Emit.OrT0Im(int32(val))
		ctx.Emit.StoreT0GPR(ra)
		return
	}

	ctx.Emit.LoadT0GPR(rs)
	switch ctx.II.Mnemo {
	case ppc.MXORI:
		ctx.Emit.XorT0Im(int32(ppc.UIMM(ctx.Opcode)))
	case ppc.MORIS:
		ctx.Emit.OrT0Im(int32(ppc.UIMM(ctx.Opcode) << 16))
	case ppc.MXORIS:
		ctx.Emit.XorT0Im(int32(ppc.UIMM(ctx.Opcode) << 16))
	case ppc.MANDI:
		ctx.Emit.AndT0Im(int32(ppc.UIMM(ctx.Opcode)))
	case ppc.MANDIS:
		ctx.Emit.AndT0Im(int32(ppc.UIMM(ctx.Opcode) << 16))
	}
	ctx.Emit.StoreT0GPR(ra)
	if ctx.II.Mnemo == ppc.MANDI || ctx.II.Mnemo == ppc.MANDIS {
		ctx.MarkCRDirty()
		ctx.Emit.RecordCR0T0()
	}
}

// compileExtendSign handles EXTSB/EXTSH.
func (c *Compiler) compileExtendSign(ctx *Context) {
	rs := ppc.RD(ctx.Opcode)
	ra := ppc.RA(ctx.Opcode)

	ctx.Emit.LoadT0GPR(rs)
	if ctx.II.Mnemo == ppc.MEXTSB {
		ctx.Emit.Se8T0()
	} else {
		ctx.Emit.Se16T0()
	}
	ctx.Emit.StoreT0GPR(ra)
	if ppc.Rc(ctx.Opcode) {
		ctx.MarkCRDirty()
		ctx.Emit.RecordCR0T0()
	}
}

// compileNeg handles NEG. With OE set, RecordNegoT0 both records the
// overflow, testing the pre-negation value for the one case
// (0x80000000) that overflows on negate, and performs the negate, so
// NegT0 is emitted only when OE is clear.
func (c *Compiler) compileNeg(ctx *Context) {
	ra := ppc.RA(ctx.Opcode)
	rd := ppc.RD(ctx.Opcode)

	ctx.Emit.LoadT0GPR(ra)
	if ppc.OE(ctx.Opcode) {
		ctx.Emit.RecordNegoT0()
	} else {
		ctx.Emit.NegT0()
	}
	if ppc.Rc(ctx.Opcode) {
		ctx.MarkCRDirty()
		ctx.Emit.RecordCR0T0()
	}
	ctx.Emit.StoreT0GPR(rd)
}

// compileMFCR always commits CR first since it reads the whole field.
func (c *Compiler) compileMFCR(ctx *Context) {
	ctx.FlushCR()
	ctx.Emit.LoadT0CR()
	ctx.Emit.StoreT0GPR(ppc.RD(ctx.Opcode))
}

// compileMFSPR returns false (fall back) for any SPR number the
// active SPRPolicy does not map, mirroring interp.Reference.mfspr.
func (c *Compiler) compileMFSPR(ctx *Context) bool {
	rd := ppc.RD(ctx.Opcode)
	switch ppc.SPR(ctx.Opcode) {
	case sprXER:
		ctx.Emit.LoadT0XER()
	case sprLR:
		ctx.Emit.LoadT0LR()
	case sprCTR:
		ctx.Emit.LoadT0CTR()
	case sprSDR1:
		if c.SPR.Standalone {
			return false
		}
		ctx.Emit.MovT0Im(int32(sdr1Value))
	case sprPVR:
		if c.SPR.Standalone {
			return false
		}
		ctx.Emit.MovT0Im(int32(c.SPR.PVR))
	default:
		if c.SPR.Standalone {
			return false
		}
		ctx.Emit.MovT0Im(0)
	}
	ctx.Emit.StoreT0GPR(rd)
	return true
}

// compileMTSPR mirrors compileMFSPR for writes; SDR1/PVR/other writes
// are silently dropped in the supervisor-extended policy.
func (c *Compiler) compileMTSPR(ctx *Context) bool {
	rs := ppc.RD(ctx.Opcode)
	switch n := ppc.SPR(ctx.Opcode); n {
	case sprXER:
		ctx.Emit.LoadT0GPR(rs)
		ctx.Emit.StoreT0XER()
	case sprLR:
		ctx.Emit.LoadT0GPR(rs)
		ctx.Emit.StoreT0LR()
	case sprCTR:
		ctx.Emit.LoadT0GPR(rs)
		ctx.Emit.StoreT0CTR()
	case sprSDR1, sprPVR:
		if c.SPR.Standalone {
			return false
		}
	default:
		if c.SPR.Standalone {
			return false
		}
	}
	return true
}

// compileArithRR handles the T0=rA/T1=rB reg-reg arithmetic family,
// dispatching to the overflow-recording emit variant when OE is set.
func (c *Compiler) compileArithRR(ctx *Context) {
	ra := ppc.RA(ctx.Opcode)
	rb := ppc.RB(ctx.Opcode)
	rd := ppc.RD(ctx.Opcode)

	ctx.Emit.LoadT0GPR(ra)
	ctx.Emit.LoadT1GPR(rb)
	oe := ppc.OE(ctx.Opcode)
	switch ctx.II.Mnemo {
	case ppc.MADD:
		if oe {
			ctx.Emit.AddoT0T1()
		} else {
			ctx.Emit.AddT0T1()
		}
	case ppc.MADDC:
		if oe {
			ctx.Emit.AddcoT0T1()
		} else {
			ctx.Emit.AddcT0T1()
		}
	case ppc.MADDE:
		if oe {
			ctx.Emit.AddeoT0T1()
		} else {
			ctx.Emit.AddeT0T1()
		}
	case ppc.MSUBF:
		if oe {
			ctx.Emit.SubfoT0T1()
		} else {
			ctx.Emit.SubfT0T1()
		}
	case ppc.MSUBFC:
		if oe {
			ctx.Emit.SubfcoT0T1()
		} else {
			ctx.Emit.SubfcT0T1()
		}
	case ppc.MSUBFE:
		if oe {
			ctx.Emit.SubfeoT0T1()
		} else {
			ctx.Emit.SubfeT0T1()
		}
	case ppc.MMULLW:
		if oe {
			ctx.Emit.MullwoT0T1()
		} else {
			ctx.Emit.UmulT0T1()
		}
	case ppc.MDIVW:
		if oe {
			ctx.Emit.DivwoT0T1()
		} else {
			ctx.Emit.DivwT0T1()
		}
	case ppc.MDIVWU:
		if oe {
			ctx.Emit.DivwuoT0T1()
		} else {
			ctx.Emit.DivwuT0T1()
		}
	}
	if ppc.Rc(ctx.Opcode) {
		ctx.MarkCRDirty()
		ctx.Emit.RecordCR0T0()
	}
	ctx.Emit.StoreT0GPR(rd)
}

// compileImmCarry handles ADDIC/ADDIC./SUBFIC. Unlike ADDI/ADDIS
// these always affect XER CA, so they share a carry-recording emit
// path rather than the plain add/sub one.
func (c *Compiler) compileImmCarry(ctx *Context) {
	ra := ppc.RA(ctx.Opcode)
	rd := ppc.RD(ctx.Opcode)
	simm := ppc.SIMM(ctx.Opcode)

	ctx.Emit.LoadT0GPR(ra)
	switch ctx.II.Mnemo {
	case ppc.MADDIC:
		ctx.Emit.AddcT0Im(simm)
	case ppc.MADDICdot:
		ctx.Emit.AddcT0Im(simm)
		ctx.MarkCRDirty()
		ctx.Emit.RecordCR0T0()
	case ppc.MSUBFIC:
		ctx.Emit.SubfcT0Im(simm)
	}
	ctx.Emit.StoreT0GPR(rd)
}

// compileExtended handles the single-operand extended-carry family:
// ADDME/ADDZE/SUBFME/SUBFZE.
func (c *Compiler) compileExtended(ctx *Context) {
	ra := ppc.RA(ctx.Opcode)
	rd := ppc.RD(ctx.Opcode)

	ctx.Emit.LoadT0GPR(ra)
	oe := ppc.OE(ctx.Opcode)
	switch ctx.II.Mnemo {
	case ppc.MADDME:
		if oe {
			ctx.Emit.AddmeoT0()
		} else {
			ctx.Emit.AddmeT0()
		}
	case ppc.MADDZE:
		if oe {
			ctx.Emit.AddzeoT0()
		} else {
			ctx.Emit.AddzeT0()
		}
	case ppc.MSUBFME:
		if oe {
			ctx.Emit.SubfmeoT0()
		} else {
			ctx.Emit.SubfmeT0()
		}
	case ppc.MSUBFZE:
		if oe {
			ctx.Emit.SubfzeoT0()
		} else {
			ctx.Emit.SubfzeT0()
		}
	}
	if ppc.Rc(ctx.Opcode) {
		ctx.MarkCRDirty()
		ctx.Emit.RecordCR0T0()
	}
	ctx.Emit.StoreT0GPR(rd)
}

// compileAddImmediate handles ADDI/ADDIS, including their li/lis
// idiom when rA==0.
func (c *Compiler) compileAddImmediate(ctx *Context) {
	ra := ppc.RA(ctx.Opcode)
	rd := ppc.RD(ctx.Opcode)

	var simm int32
	if ctx.II.Mnemo == ppc.MADDI {
		simm = ppc.SIMM(ctx.Opcode)
	} else {
		simm = ppc.SIMM(ctx.Opcode) << 16
	}

	if ra == 0 {
		ctx.Emit.MovT0Im(simm)
	} else {
		ctx.Emit.LoadT0GPR(ra)
		ctx.Emit.AddT0Im(simm)
	}
	ctx.Emit.StoreT0GPR(rd)
}

// compileMulhw handles MULHW/MULHWU.
func (c *Compiler) compileMulhw(ctx *Context) {
	ra := ppc.RA(ctx.Opcode)
	rb := ppc.RB(ctx.Opcode)
	rd := ppc.RD(ctx.Opcode)

	ctx.Emit.LoadT0GPR(ra)
	ctx.Emit.LoadT1GPR(rb)
	if ctx.II.Mnemo == ppc.MMULHW {
		ctx.Emit.MulhwT0T1()
	} else {
		ctx.Emit.MulhwuT0T1()
	}
	ctx.Emit.StoreT0GPR(rd)
	if ppc.Rc(ctx.Opcode) {
		ctx.MarkCRDirty()
		ctx.Emit.RecordCR0T0()
	}
}

// compileMulli handles MULLI; it has no Rc field to check.
func (c *Compiler) compileMulli(ctx *Context) {
	ra := ppc.RA(ctx.Opcode)
	rd := ppc.RD(ctx.Opcode)

	ctx.Emit.LoadT0GPR(ra)
	ctx.Emit.MulliT0Im(ppc.SIMM(ctx.Opcode))
	ctx.Emit.StoreT0GPR(rd)
}
