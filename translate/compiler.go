package translate

import (
	"github.com/halcyon-emu/ppc32/blockcache"
	"github.com/halcyon-emu/ppc32/disasm"
	"github.com/halcyon-emu/ppc32/emitter"
	"github.com/halcyon-emu/ppc32/interp"
	"github.com/halcyon-emu/ppc32/mem"
	"github.com/halcyon-emu/ppc32/ppc"
)

// Compiler compiles guest basic blocks into host-op tapes. Every
// block it compiles is appended to the same Emit buffer: BlockInfo's
// HostEntry is an offset into that one shared tape, valid until the
// next overflow-triggered reset invalidates the whole cache.
type Compiler struct {
	Mem      mem.GuestMem
	Emit     emitter.Emitter
	Cache    *blockcache.Cache
	Fallback interp.Interp
	SPR      SPRPolicy
	Trace    bool
}

// NewCompiler builds a Compiler backed by em, which lives for the
// Compiler's whole lifetime — CompileBlock never swaps it out, only
// resets it on overflow.
func NewCompiler(m mem.GuestMem, em emitter.Emitter, cache *blockcache.Cache, fb interp.Interp, policy SPRPolicy) *Compiler {
	return &Compiler{Mem: m, Emit: em, Cache: cache, Fallback: fb, SPR: policy}
}

// CompileBlock is the sole public translation entry point: decode and
// emit from entryPC until a control-flow-terminating instruction,
// retrying with a fully invalidated cache and a reset buffer if the
// code buffer fills mid-block.
func (c *Compiler) CompileBlock(entryPC uint32) *blockcache.BlockInfo {
	for {
		bi, overflowed := c.compileOnce(entryPC)
		if overflowed {
			c.Cache.InvalidateAll()
			c.Emit.ResetAll()
			continue
		}
		c.Cache.Insert(bi)
		return bi
	}
}

func (c *Compiler) compileOnce(entryPC uint32) (*blockcache.BlockInfo, bool) {
	em := c.Emit
	hostEntry := em.Start()

	ctx := &Context{EntryPC: entryPC, Emit: em}
	ctx.DPC = entryPC - 4

	for {
		ctx.DPC += 4
		opcode, err := c.Mem.Read32(ctx.DPC)
		if err != nil {
			panic("translate: guest memory fault fetching opcode: " + err.Error())
		}
		ctx.Opcode = opcode
		ctx.II = ppc.Decode(opcode)
		ctx.PCOffset += 4

		if c.Trace {
			disasm.Hook(ctx.DPC, opcode, ctx.II.Mnemo)
		}

		if !c.translateOne(ctx) {
			c.compileFallback(ctx)
		}

		if em.Full() {
			return nil, true
		}
		if ctx.II.CFlow&ppc.CFlowEndBlock != 0 {
			break
		}
	}

	ctx.FlushCR()
	em.ExecReturn()
	em.End()

	return &blockcache.BlockInfo{
		EntryPC:   entryPC,
		EndPC:     ctx.DPC,
		HostEntry: hostEntry,
		HostSize:  em.CodePtr() - hostEntry,
	}, false
}

// translateOne dispatches on mnemonic and emits the inline
// translation for every family the compiler knows. It returns false
// for anything that must fall back to the interpreter: unrecognized
// mnemonics, CTR-dependent conditional branches, and SPR numbers the
// active SPRPolicy does not map.
func (c *Compiler) translateOne(ctx *Context) bool {
	switch ctx.II.Mnemo {
	case ppc.MLBZ, ppc.MLBZU, ppc.MLBZUX, ppc.MLBZX,
		ppc.MLHA, ppc.MLHAU, ppc.MLHAUX, ppc.MLHAX,
		ppc.MLHZ, ppc.MLHZU, ppc.MLHZUX, ppc.MLHZX,
		ppc.MLWZ, ppc.MLWZU, ppc.MLWZUX, ppc.MLWZX:
		c.compileLoad(ctx)
		return true
	case ppc.MSTB, ppc.MSTBU, ppc.MSTBUX, ppc.MSTBX,
		ppc.MSTH, ppc.MSTHU, ppc.MSTHUX, ppc.MSTHX,
		ppc.MSTW, ppc.MSTWU, ppc.MSTWUX, ppc.MSTWX:
		c.compileStore(ctx)
		return true

	case ppc.MB:
		c.compileBranchAlways(ctx)
		return true
	case ppc.MBC, ppc.MBCCTR, ppc.MBCLR:
		return c.compileBranchCond(ctx)

	case ppc.MCMP, ppc.MCMPI, ppc.MCMPL, ppc.MCMPLI:
		c.compileCompare(ctx)
		return true
	case ppc.MCRAND, ppc.MCRANDC, ppc.MCREQV, ppc.MCRNAND, ppc.MCRNOR, ppc.MCROR, ppc.MCRORC, ppc.MCRXOR:
		c.compileCRLogical(ctx)
		return true

	case ppc.MAND, ppc.MANDC, ppc.MEQV, ppc.MNAND, ppc.MNOR, ppc.MORC, ppc.MXOR:
		c.compileBitwiseRR(ctx)
		return true
	case ppc.MOR:
		c.compileOR(ctx)
		return true
	case ppc.MORI, ppc.MORIS, ppc.MXORI, ppc.MXORIS, ppc.MANDI, ppc.MANDIS:
		c.compileImmLogical(ctx)
		return true

	case ppc.MEXTSB, ppc.MEXTSH:
		c.compileExtendSign(ctx)
		return true
	case ppc.MNEG:
		c.compileNeg(ctx)
		return true

	case ppc.MMFCR:
		c.compileMFCR(ctx)
		return true
	case ppc.MMFSPR:
		return c.compileMFSPR(ctx)
	case ppc.MMTSPR:
		return c.compileMTSPR(ctx)

	case ppc.MADD, ppc.MADDC, ppc.MADDE, ppc.MSUBF, ppc.MSUBFC, ppc.MSUBFE, ppc.MMULLW, ppc.MDIVW, ppc.MDIVWU:
		c.compileArithRR(ctx)
		return true
	case ppc.MADDIC, ppc.MADDICdot, ppc.MSUBFIC:
		c.compileImmCarry(ctx)
		return true
	case ppc.MADDME, ppc.MADDZE, ppc.MSUBFME, ppc.MSUBFZE:
		c.compileExtended(ctx)
		return true
	case ppc.MADDI, ppc.MADDIS:
		c.compileAddImmediate(ctx)
		return true
	case ppc.MMULHW, ppc.MMULHWU:
		c.compileMulhw(ctx)
		return true
	case ppc.MMULLI:
		c.compileMulli(ctx)
		return true

	case ppc.MRLWIMI, ppc.MRLWINM, ppc.MRLWNM:
		c.compileRotate(ctx)
		return true
	case ppc.MCNTLZW, ppc.MSLW, ppc.MSRW, ppc.MSRAW, ppc.MSRAWI:
		c.compileCountShift(ctx)
		return true

	default:
		return false
	}
}
