package translate_test

import (
	"math/bits"
	"testing"

	"github.com/halcyon-emu/ppc32/blockcache"
	"github.com/halcyon-emu/ppc32/emitter"
	"github.com/halcyon-emu/ppc32/hostexec"
	"github.com/halcyon-emu/ppc32/hostop"
	"github.com/halcyon-emu/ppc32/interp"
	"github.com/halcyon-emu/ppc32/mem"
	"github.com/halcyon-emu/ppc32/state"
	"github.com/halcyon-emu/ppc32/translate"
)

// mkX encodes an XO-form opcode-31 instruction.
func mkX(rd, ra, rb, xo9 uint32, oe, rc bool) uint32 {
	op := uint32(31)<<26 | rd<<21 | ra<<16 | rb<<11 | xo9<<1
	if oe {
		op |= 0x400
	}
	if rc {
		op |= 1
	}
	return op
}

// mkD encodes a D-form instruction (immediate arithmetic, compares,
// loads/stores).
func mkD(opcd, rd, ra uint32, imm uint32) uint32 {
	return opcd<<26 | rd<<21 | ra<<16 | (imm & 0xFFFF)
}

// mkM encodes an M-form rotate instruction (RLWINM/RLWIMI/RLWNM).
func mkM(opcd, rs, ra, sh, mb, me uint32, rc bool) uint32 {
	op := opcd<<26 | rs<<21 | ra<<16 | sh<<11 | mb<<6 | me<<1
	if rc {
		op |= 1
	}
	return op
}

// mkB encodes an unconditional branch (opcode 18).
func mkB(li int32, aa, lk bool) uint32 {
	op := uint32(18)<<26 | (uint32(li) & 0x03FFFFFC)
	if aa {
		op |= 2
	}
	if lk {
		op |= 1
	}
	return op
}

// mkBC encodes a conditional branch (opcode 16).
func mkBC(bo, bi uint32, bd int32, aa, lk bool) uint32 {
	op := uint32(16)<<26 | bo<<21 | bi<<16 | (uint32(bd) & 0xFFFC)
	if aa {
		op |= 2
	}
	if lk {
		op |= 1
	}
	return op
}

type harness struct {
	compiler *translate.Compiler
	em       *emitter.BufferEmitter
	mem      *mem.FlatMemory
	cache    *blockcache.Cache
}

func newHarness(t *testing.T) *harness {
	return newHarnessSized(t, 1024*1024)
}

func newHarnessSized(t *testing.T, bufSize int) *harness {
	t.Helper()
	em, err := emitter.NewBufferEmitter(bufSize)
	if err != nil {
		t.Fatalf("NewBufferEmitter: %v", err)
	}
	t.Cleanup(func() { em.Close() })

	m := mem.NewFlatMemory(1 << 20)
	ref := interp.NewReference(interp.SPRPolicy{Standalone: true})
	cache := blockcache.New()
	compiler := translate.NewCompiler(m, em, cache, ref, translate.SPRPolicy{Standalone: true})
	return &harness{compiler: compiler, em: em, mem: m, cache: cache}
}

func (h *harness) writeWord(addr uint32, op uint32) {
	if err := h.mem.Write32(addr, op); err != nil {
		panic(err)
	}
}

func (h *harness) run(t *testing.T, entryPC uint32, regs *state.Regs) {
	t.Helper()
	bi := h.compiler.CompileBlock(entryPC)
	code := hostexec.Code{Tape: h.em.Tape(), Handlers: h.em.Handlers()}
	if err := hostexec.Run(code, regs, h.mem, bi.HostEntry); err != nil {
		t.Fatalf("hostexec.Run: %v", err)
	}
}

// TestAddRoundTrip compiles ADD followed by an unconditional
// branch back to the block entry and checks the executed result against plain
// addition, exercising compileArithRR end to end.
func TestAddRoundTrip(t *testing.T) {
	h := newHarness(t)
	const entry = 0x1000
	h.writeWord(entry, mkX(3, 1, 2, 266, false, false)) // ADD r3,r1,r2
	h.writeWord(entry+4, mkB(-4, false, false))         // B back to entry

	var regs state.Regs
	regs.PC = entry
	regs.GPR[1] = 17
	regs.GPR[2] = 25
	h.run(t, entry, &regs)

	if regs.GPR[3] != 42 {
		t.Errorf("GPR[3] = %d, want 42", regs.GPR[3])
	}
	if regs.PC != entry {
		t.Errorf("PC = %#x, want branch target %#x", regs.PC, uint32(entry))
	}
}

// TestOrMrIdiom exercises the OR mr-idiom skip-emission path
// (compileOR) purely through final register state, not tape
// inspection: mr r4,r3 must still copy r3 into r4.
func TestOrMrIdiom(t *testing.T) {
	h := newHarness(t)
	const entry = 0x2000
	h.writeWord(entry, mkX(3, 4, 3, 444, false, false)) // mr r4,r3 == or r4,r3,r3
	h.writeWord(entry+4, mkB(-4, false, false))

	var regs state.Regs
	regs.PC = entry
	regs.GPR[3] = 0xABCD1234
	regs.GPR[4] = 0
	h.run(t, entry, &regs)

	if regs.GPR[4] != 0xABCD1234 {
		t.Errorf("GPR[4] = %#x, want 0xabcd1234 (copied from r3)", regs.GPR[4])
	}
}

// TestRlwinmRotlwiIdiom exercises the mb==0&&me==31 rotate-only idiom
// branch of compileRotate.
func TestRlwinmRotlwiIdiom(t *testing.T) {
	h := newHarness(t)
	const entry = 0x3000
	h.writeWord(entry, mkM(21, 6, 5, 8, 0, 31, false)) // rlwinm r5,r6,8,0,31
	h.writeWord(entry+4, mkB(-4, false, false))

	var regs state.Regs
	regs.PC = entry
	regs.GPR[6] = 0x12345678
	h.run(t, entry, &regs)

	want := bits.RotateLeft32(0x12345678, 8)
	if regs.GPR[5] != want {
		t.Errorf("GPR[5] = %#08x, want %#08x", regs.GPR[5], want)
	}
}

// TestRlwinmGeneralForm exercises the fallthrough general rlwinm
// emission (rotate-and-mask, neither idiom applies).
func TestRlwinmGeneralForm(t *testing.T) {
	h := newHarness(t)
	const entry = 0x3100
	h.writeWord(entry, mkM(21, 6, 5, 4, 8, 16, false)) // rlwinm r5,r6,4,8,16
	h.writeWord(entry+4, mkB(-4, false, false))

	var regs state.Regs
	regs.PC = entry
	regs.GPR[6] = 0x12345678
	h.run(t, entry, &regs)

	want := bits.RotateLeft32(0x12345678, 4) & maskFor(8, 16)
	if regs.GPR[5] != want {
		t.Errorf("GPR[5] = %#08x, want %#08x", regs.GPR[5], want)
	}
}

func maskFor(mb, me uint32) uint32 {
	var hi uint32 = 0xFFFFFFFF >> mb
	var lo uint32
	if me < 31 {
		lo = 0xFFFFFFFF >> (me + 1)
	}
	m := hi ^ lo
	if mb > me {
		m = ^m
	}
	return m
}

// TestCounterDependentBranchFallsBack verifies that a CTR-decrement
// conditional branch routes through compileFallback/InvokeCPUIm and
// that the interpreter's CTR/branch semantics land exactly where
// hostexec's own evalBranch would.
func TestCounterDependentBranchFallsBack(t *testing.T) {
	const entry = 0x4000
	const bo = 0b10010 // ignore condition, counter-dependent, branch-if-nonzero
	const bd = 0x10

	t.Run("taken", func(t *testing.T) {
		h := newHarness(t)
		h.writeWord(entry, mkBC(bo, 0, bd, false, false))

		var regs state.Regs
		regs.PC = entry
		regs.CTR = 2
		h.run(t, entry, &regs)

		if regs.CTR != 1 {
			t.Errorf("CTR = %d, want 1", regs.CTR)
		}
		if regs.PC != entry+bd {
			t.Errorf("PC = %#x, want %#x", regs.PC, uint32(entry+bd))
		}
	})

	t.Run("not-taken", func(t *testing.T) {
		h := newHarness(t)
		h.writeWord(entry, mkBC(bo, 0, bd, false, false))

		var regs state.Regs
		regs.PC = entry
		regs.CTR = 1
		h.run(t, entry, &regs)

		if regs.CTR != 0 {
			t.Errorf("CTR = %d, want 0", regs.CTR)
		}
		if regs.PC != entry+4 {
			t.Errorf("PC = %#x, want fall-through %#x", regs.PC, uint32(entry+4))
		}
	})
}

// TestCompareRoundTrip exercises compileCompare end to end as a
// regression check alongside interp's own compare fix.
func TestCompareRoundTrip(t *testing.T) {
	h := newHarness(t)
	const entry = 0x5000
	h.writeWord(entry, mkX(0, 1, 2, 0, false, false)) // cmp crf0,r1,r2
	h.writeWord(entry+4, mkB(-4, false, false))

	var regs state.Regs
	regs.PC = entry
	regs.GPR[1] = 10
	regs.GPR[2] = 20
	h.run(t, entry, &regs)

	if got := regs.CRField(0); got != state.CR0LT {
		t.Errorf("CR0 = %#x, want LT (r1=10 < r2=20)", got)
	}
}

// TestUpdateFormLoadUsesRAZeroAsRealBase is a regression test for
// loadAddress treating rA==0 as a literal-zero base even on an
// update-form load, instead of using GPR[0] as the base the way
// every other update form must.
func TestUpdateFormLoadUsesRAZeroAsRealBase(t *testing.T) {
	h := newHarness(t)
	const entry = 0x7000
	h.writeWord(entry, mkD(33, 5, 0, 8)) // lwzu r5,8(r0)
	h.writeWord(entry+4, mkB(-4, false, false))
	h.writeWord(0x1008, 0xCAFEF00D)

	var regs state.Regs
	regs.PC = entry
	regs.GPR[0] = 0x1000
	h.run(t, entry, &regs)

	if regs.GPR[5] != 0xCAFEF00D {
		t.Errorf("GPR[5] = %#x, want 0xcafef00d (loaded from GPR[0]+8)", regs.GPR[5])
	}
	if regs.GPR[0] != 0x1008 {
		t.Errorf("GPR[0] = %#x, want 0x1008 (written back by the update form)", regs.GPR[0])
	}
}

// TestCompareMarksCRDirty is a regression test for compileCompare
// never calling ctx.MarkCRDirty: a cmp immediately followed by mfcr,
// with no intervening Rc=1 instruction, must still see a CommitCR
// record emitted between the compare and the CR read.
func TestCompareMarksCRDirty(t *testing.T) {
	h := newHarness(t)
	const entry = 0x8000
	h.writeWord(entry, mkX(0, 1, 2, 0, false, false)) // cmp crf0,r1,r2
	h.writeWord(entry+4, mkX(3, 0, 0, 19, false, false)) // mfcr r3
	h.writeWord(entry+8, mkB(-8, false, false))

	bi := h.compiler.CompileBlock(entry)

	var ops []hostop.Op
	for off := bi.HostEntry; ; off += hostop.RecordSize {
		rec := hostop.Decode(h.em.Tape(), off)
		ops = append(ops, rec.Op)
		if rec.Op == hostop.OpExecReturn {
			break
		}
	}

	commitIdx, loadCRIdx := -1, -1
	for i, op := range ops {
		if op == hostop.OpCommitCR && commitIdx == -1 {
			commitIdx = i
		}
		if op == hostop.OpLoadT0CR && loadCRIdx == -1 {
			loadCRIdx = i
		}
	}
	if commitIdx == -1 {
		t.Fatal("no CommitCR record emitted between cmp and mfcr")
	}
	if loadCRIdx == -1 {
		t.Fatal("no LoadT0CR record emitted for mfcr")
	}
	if commitIdx >= loadCRIdx {
		t.Errorf("CommitCR at %d, want it before LoadT0CR at %d", commitIdx, loadCRIdx)
	}
}

// TestTakenConditionalBranchChain exercises a full cmp-then-bc chain
// through the fully compiled (non-fallback) conditional branch path:
// a BO encoding that is not counter-dependent still needs its CR bit
// evaluated correctly end to end.
func TestTakenConditionalBranchChain(t *testing.T) {
	h := newHarness(t)
	const entry = 0x9000
	const bo = 0b01100 // check condition, branch-if-true, not counter-dependent
	const bd = 0x10
	h.writeWord(entry, mkX(0, 1, 2, 0, false, false)) // cmp crf0,r1,r2
	h.writeWord(entry+4, mkBC(bo, 0, bd, false, false))

	var regs state.Regs
	regs.PC = entry
	regs.GPR[1] = 10 // r1 < r2 sets CR0 LT, bit index 0
	regs.GPR[2] = 20
	h.run(t, entry, &regs)

	want := uint32(entry+4) + bd
	if regs.PC != want {
		t.Errorf("PC = %#x, want taken branch target %#x", regs.PC, want)
	}
}

// TestOverflowRestartsAndInvalidatesCache forces a buffer overflow
// mid-block compile and checks CompileBlock's retry loop: the cache
// is fully invalidated and the buffer reset, then the same block
// compiles cleanly and executes correctly on the retry.
func TestOverflowRestartsAndInvalidatesCache(t *testing.T) {
	// Sized so the first block leaves just enough room to pass Full()
	// once, but the second block's first instruction pushes remaining
	// space under the emitter's reserve, forcing an overflow restart.
	h := newHarnessSized(t, 650)

	const firstEntry = 0x7000
	h.writeWord(firstEntry, mkX(3, 1, 2, 266, false, false)) // ADD r3,r1,r2
	h.writeWord(firstEntry+4, mkB(-4, false, false))
	h.compiler.CompileBlock(firstEntry)

	const secondEntry = 0x7100
	h.writeWord(secondEntry, mkX(3, 1, 2, 266, false, false)) // ADD r3,r1,r2
	h.writeWord(secondEntry+4, mkB(-4, false, false))
	bi := h.compiler.CompileBlock(secondEntry)

	if _, ok := h.cache.Lookup(firstEntry); ok {
		t.Error("Lookup(firstEntry): expected miss, overflow should have invalidated the whole cache")
	}
	if got, ok := h.cache.Lookup(secondEntry); !ok || got != bi {
		t.Error("Lookup(secondEntry): expected a hit on the block compiled after the overflow restart")
	}

	var regs state.Regs
	regs.PC = secondEntry
	regs.GPR[1] = 3
	regs.GPR[2] = 4
	if err := hostexec.Run(hostexec.Code{Tape: h.em.Tape(), Handlers: h.em.Handlers()}, &regs, h.mem, bi.HostEntry); err != nil {
		t.Fatalf("hostexec.Run: %v", err)
	}
	if regs.GPR[3] != 7 {
		t.Errorf("GPR[3] = %d, want 7 (block compiled after overflow restart ran incorrectly)", regs.GPR[3])
	}
}
