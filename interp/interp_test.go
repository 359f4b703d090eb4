package interp

import (
	"testing"

	"github.com/halcyon-emu/ppc32/mem"
	"github.com/halcyon-emu/ppc32/ppc"
	"github.com/halcyon-emu/ppc32/state"
)

// mkX encodes an XO-form opcode-31 instruction: opcode(0-5) RD(6-10)
// RA(11-15) RB(16-20) XO9(22-30) OE(21 when set) Rc(31).
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

// mkD encodes a D-form instruction (immediate arithmetic, compares).
func mkD(opcd, rd, ra uint32, imm uint32) uint32 {
	return opcd<<26 | rd<<21 | ra<<16 | (imm & 0xFFFF)
}

func newRef() *Reference {
	return &Reference{SPR: SPRPolicy{Standalone: true}}
}

// TestAddRegisterRoles is a regression test for a swap where ADD once
// read its sources from the RD-field register and wrote the result to
// the RA-field register (the X-form logical convention), the opposite
// of the XO-form arithmetic convention ADD actually uses.
func TestAddRegisterRoles(t *testing.T) {
	r := newRef()
	var regs state.Regs
	regs.GPR[1] = 100 // RA
	regs.GPR[2] = 7   // RB
	regs.GPR[3] = 999 // RD, must be overwritten, never read as a source

	op := mkX(3, 1, 2, 266, false, false) // ADD r3,r1,r2
	if err := r.Execute(&regs, nil, op); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if regs.GPR[3] != 107 {
		t.Errorf("GPR[3] = %d, want 107 (r1+r2)", regs.GPR[3])
	}
	if regs.GPR[1] != 100 || regs.GPR[2] != 7 {
		t.Errorf("sources mutated: r1=%d r2=%d", regs.GPR[1], regs.GPR[2])
	}
}

func TestSubfRegisterRoles(t *testing.T) {
	r := newRef()
	var regs state.Regs
	regs.GPR[1] = 10 // RA
	regs.GPR[2] = 30 // RB

	op := mkX(3, 1, 2, 40, false, false) // SUBF r3,r1,r2 -> r3 = r2-r1
	if err := r.Execute(&regs, nil, op); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if regs.GPR[3] != 20 {
		t.Errorf("GPR[3] = %d, want 20 (r2-r1)", regs.GPR[3])
	}
}

func TestMullwRegisterRoles(t *testing.T) {
	r := newRef()
	var regs state.Regs
	regs.GPR[1] = 6
	regs.GPR[2] = 7

	op := mkX(3, 1, 2, 235, false, false) // MULLW r3,r1,r2
	if err := r.Execute(&regs, nil, op); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if regs.GPR[3] != 42 {
		t.Errorf("GPR[3] = %d, want 42", regs.GPR[3])
	}
}

func TestDivwSignedEdgeCases(t *testing.T) {
	r := newRef()

	t.Run("by-zero", func(t *testing.T) {
		var regs state.Regs
		regs.GPR[1] = 42
		regs.GPR[2] = 0
		op := mkX(3, 1, 2, 491, true, false) // DIVWO r3,r1,r2
		if err := r.Execute(&regs, nil, op); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if regs.XER&state.XEROV == 0 {
			t.Error("XER OV not set on divide by zero")
		}
	})

	t.Run("int-min-over-neg-one", func(t *testing.T) {
		var regs state.Regs
		regs.GPR[1] = 0x80000000
		regs.GPR[2] = 0xFFFFFFFF
		op := mkX(3, 1, 2, 491, true, false)
		if err := r.Execute(&regs, nil, op); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if regs.XER&state.XEROV == 0 {
			t.Error("XER OV not set on INT_MIN / -1")
		}
	})

	t.Run("ordinary", func(t *testing.T) {
		var regs state.Regs
		regs.GPR[1] = 100
		regs.GPR[2] = 9
		op := mkX(3, 1, 2, 491, false, false)
		if err := r.Execute(&regs, nil, op); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if regs.GPR[3] != 11 {
			t.Errorf("GPR[3] = %d, want 11", regs.GPR[3])
		}
	})
}

func TestNegUsesRAOnly(t *testing.T) {
	r := newRef()
	var regs state.Regs
	regs.GPR[1] = 5  // RA, the actual source
	regs.GPR[2] = 99 // RB, must be ignored entirely — NEG has no RB operand

	op := mkX(3, 1, 2, 104, false, false) // NEG r3,r1
	if err := r.Execute(&regs, nil, op); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if regs.GPR[3] != 0xFFFFFFFB { // -5 in two's complement
		t.Errorf("GPR[3] = %d, want -5", int32(regs.GPR[3]))
	}
}

func TestNegOverflow(t *testing.T) {
	r := newRef()
	var regs state.Regs
	regs.GPR[1] = 0x80000000

	op := mkX(3, 1, 0, 104, true, false)
	if err := r.Execute(&regs, nil, op); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if regs.XER&state.XEROV == 0 {
		t.Error("XER OV not set negating INT_MIN")
	}
}

func TestAddicCarry(t *testing.T) {
	r := newRef()
	var regs state.Regs
	regs.GPR[1] = 0xFFFFFFFF

	op := mkD(12, 3, 1, 1) // ADDIC r3,r1,1
	if err := r.Execute(&regs, nil, op); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if regs.GPR[3] != 0 {
		t.Errorf("GPR[3] = %#x, want 0", regs.GPR[3])
	}
	if regs.XER&state.XERCA == 0 {
		t.Error("XER CA not set on ADDIC overflow")
	}
}

func TestSubfic(t *testing.T) {
	r := newRef()
	var regs state.Regs
	regs.GPR[1] = 5

	op := mkD(8, 3, 1, 20) // SUBFIC r3,r1,20 -> r3 = 20-r1
	if err := r.Execute(&regs, nil, op); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if regs.GPR[3] != 15 {
		t.Errorf("GPR[3] = %d, want 15", regs.GPR[3])
	}
}

// TestCompareUsesRA is a regression test for compare() once reading
// its first operand from the RD bit position (which for CMP holds
// crfD, not a register) instead of RA.
func TestCompareUsesRA(t *testing.T) {
	r := newRef()
	var regs state.Regs
	regs.GPR[1] = 10 // RA
	regs.GPR[2] = 20 // RB

	op := mkX(0, 1, 2, 0, false, false) // CMP crf0,r1,r2
	if err := r.Execute(&regs, nil, op); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := regs.CRField(0); got != state.CR0LT {
		t.Errorf("CR0 = %#x, want LT (r1=10 < r2=20)", got)
	}
}

func TestCRLogicalAnd(t *testing.T) {
	r := newRef()
	var regs state.Regs
	regs.SetCRBit(0, true)
	regs.SetCRBit(1, true)

	// CRAND crbD=2,crbA=0,crbB=1
	op := uint32(19)<<26 | 2<<21 | 0<<16 | 1<<11 | 257<<1
	if err := r.crLogical(&regs, ppc.MCRAND, op); err != nil {
		t.Fatalf("crLogical: %v", err)
	}
	if !regs.CRBitSet(2) {
		t.Error("CR bit 2 = false, want true (1 AND 1)")
	}
}

func TestCRLogicalNand(t *testing.T) {
	r := newRef()
	var regs state.Regs
	regs.SetCRBit(0, true)
	regs.SetCRBit(1, false)

	op := uint32(19)<<26 | 2<<21 | 0<<16 | 1<<11 | 476<<1
	if err := r.crLogical(&regs, ppc.MCRNAND, op); err != nil {
		t.Fatalf("crLogical: %v", err)
	}
	if !regs.CRBitSet(2) {
		t.Error("CR bit 2 = false, want true (NAND(1,0)=1)")
	}
}

func TestMfsprStandaloneRejectsUnmapped(t *testing.T) {
	r := newRef()
	var regs state.Regs
	op := mkX(3, 31, 8, 339, false, false) // MFSPR r3, SPR=287 (PVR): low5=31(RA),high5=8(RB)
	if err := r.Execute(&regs, nil, op); err == nil {
		t.Error("Execute: expected error for unmapped SPR in standalone mode")
	}
}

func TestMfsprStandaloneAllowsXER(t *testing.T) {
	r := newRef()
	var regs state.Regs
	regs.XER = 0xABCD0000
	op := mkX(3, 1, 0, 339, false, false) // MFSPR r3, SPR=1 (XER): low5=1(RA),high5=0(RB)
	if err := r.Execute(&regs, nil, op); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if regs.GPR[3] != 0xABCD0000 {
		t.Errorf("GPR[3] = %#x, want XER value", regs.GPR[3])
	}
}

func TestMfsprSupervisorExtendedReportsPVR(t *testing.T) {
	r := &Reference{SPR: SPRPolicy{Standalone: false, PVR: 0x00070101}}
	var regs state.Regs
	op := mkX(3, 31, 8, 339, false, false) // SPR=287 (PVR)
	if err := r.Execute(&regs, nil, op); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if regs.GPR[3] != 0x00070101 {
		t.Errorf("GPR[3] = %#x, want configured PVR", regs.GPR[3])
	}
}

func TestLoadStoreRoundTrip(t *testing.T) {
	r := newRef()
	var regs state.Regs
	m := mem.NewFlatMemory(4096)
	regs.GPR[1] = 0x100 // base
	regs.GPR[2] = 0xDEADBEEF

	storeOp := mkD(36, 2, 1, 0) // STW r2,0(r1)
	if err := r.Execute(&regs, m, storeOp); err != nil {
		t.Fatalf("store Execute: %v", err)
	}

	loadOp := mkD(32, 3, 1, 0) // LWZ r3,0(r1)
	if err := r.Execute(&regs, m, loadOp); err != nil {
		t.Fatalf("load Execute: %v", err)
	}
	if regs.GPR[3] != 0xDEADBEEF {
		t.Errorf("GPR[3] = %#x, want 0xdeadbeef", regs.GPR[3])
	}
}

func TestExecuteAdvancesPC(t *testing.T) {
	r := newRef()
	var regs state.Regs
	regs.PC = 0x1000
	regs.GPR[1] = 1
	regs.GPR[2] = 2
	op := mkX(3, 1, 2, 266, false, false) // ADD
	if err := r.Execute(&regs, nil, op); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if regs.PC != 0x1004 {
		t.Errorf("PC = %#x, want 0x1004", regs.PC)
	}
}
