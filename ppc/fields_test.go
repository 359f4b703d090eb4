package ppc

import "testing"

func TestRegisterFields(t *testing.T) {
	// ADD r3,r1,r2 style field layout: opcode(0-5) RD(6-10) RA(11-15) RB(16-20).
	op := uint32(31)<<26 | 3<<21 | 1<<16 | 2<<11 | 266<<1

	if got := Opcd(op); got != 31 {
		t.Errorf("Opcd: got %d, want 31", got)
	}
	if got := RD(op); got != 3 {
		t.Errorf("RD: got %d, want 3", got)
	}
	if got := RA(op); got != 1 {
		t.Errorf("RA: got %d, want 1", got)
	}
	if got := RB(op); got != 2 {
		t.Errorf("RB: got %d, want 2", got)
	}
	if got := XO9(op); got != 266 {
		t.Errorf("XO9: got %d, want 266", got)
	}
}

func TestImmediateFields(t *testing.T) {
	op := uint32(14)<<26 | 3<<21 | 1<<16 | 0xFFF0 // ADDI r3,r1,-16

	if got := D(op); got != -16 {
		t.Errorf("D: got %d, want -16", got)
	}
	if got := SIMM(op); got != -16 {
		t.Errorf("SIMM: got %d, want -16", got)
	}
	if got := UIMM(op); got != 0xFFF0 {
		t.Errorf("UIMM: got %#x, want %#x", got, uint32(0xFFF0))
	}
}

func TestLI(t *testing.T) {
	cases := []struct {
		name string
		raw  uint32
		want int32
	}{
		{"positive", 0x00002000, 0x2000},
		{"negative", 0xFE000000, -0x2000000},
		{"zero", 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			op := uint32(18)<<26 | (c.raw & 0x03FFFFFC)
			if got := LI(op); got != c.want {
				t.Errorf("LI(%#08x): got %d, want %d", op, got, c.want)
			}
		})
	}
}

func TestBD(t *testing.T) {
	cases := []struct {
		name string
		raw  uint32
		want int32
	}{
		{"positive", 0x10, 0x10},
		{"negative", 0xFFFFFFF0, -0x10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			op := uint32(16)<<26 | (c.raw & 0xFFFC)
			if got := BD(op); got != c.want {
				t.Errorf("BD(%#08x): got %d, want %d", op, got, c.want)
			}
		})
	}
}

func TestFlagBits(t *testing.T) {
	var op uint32 = 1 // LK/Rc bit
	if !LK(op) {
		t.Error("LK: want true")
	}
	if !Rc(op) {
		t.Error("Rc: want true")
	}
	if AA(0x2) != true {
		t.Error("AA: want true for bit 30 set")
	}
	if OE(0x400) != true {
		t.Error("OE: want true for bit 21 set")
	}
	if LK(0) || Rc(0) || AA(0) || OE(0) {
		t.Error("flag bits: want false when clear")
	}
}

func TestBranchControlFields(t *testing.T) {
	op := uint32(16)<<26 | 9<<21 | 5<<16 // BO=9 (RD position), BI=5 (RA position)
	if got := BO(op); got != 9 {
		t.Errorf("BO: got %d, want 9", got)
	}
	if got := BI(op); got != 5 {
		t.Errorf("BI: got %d, want 5", got)
	}
}

func TestRotateFields(t *testing.T) {
	// RLWINM rA,rS,SH,MB,ME
	op := uint32(21)<<26 | 4<<21 | 3<<16 | 7<<11 | 2<<6 | 18<<1
	if got := SH(op); got != 7 {
		t.Errorf("SH: got %d, want 7", got)
	}
	if got := MB(op); got != 2 {
		t.Errorf("MB: got %d, want 2", got)
	}
	if got := ME(op); got != 18 {
		t.Errorf("ME: got %d, want 18", got)
	}
}

func TestCrFields(t *testing.T) {
	op := uint32(19)<<26 | 6<<21 | 3<<16 | 2<<11 | 257<<1 // CRAND crbD=6,crbA=3,crbB=2
	if got := CrfD(op); got != 1 {
		t.Errorf("CrfD: got %d, want 1", got)
	}
	if got := CrbD(op); got != 6 {
		t.Errorf("CrbD: got %d, want 6", got)
	}
	if got := CrbA(op); got != 3 {
		t.Errorf("CrbA: got %d, want 3", got)
	}
	if got := CrbB(op); got != 2 {
		t.Errorf("CrbB: got %d, want 2", got)
	}
}

func TestSPR(t *testing.T) {
	// MFSPR rD,SPR: SPR is split across RB (high 5 bits) and RA (low 5 bits).
	op := uint32(31)<<26 | 0<<21 | (8&0x1F)<<16 | (0&0x1F)<<11 | 339<<1 // SPR=8 (LR)
	if got := SPR(op); got != 8 {
		t.Errorf("SPR: got %d, want 8", got)
	}

	// SPR 287 (PVR) = 0b0100011111 -> low5=0b11111=31 (RA), high5=0b01000=8 (RB)
	op2 := uint32(31)<<26 | 0<<21 | 31<<16 | 8<<11 | 339<<1
	if got := SPR(op2); got != 287 {
		t.Errorf("SPR: got %d, want 287", got)
	}
}

func TestMask(t *testing.T) {
	cases := []struct {
		name   string
		mb, me uint32
		want   uint32
	}{
		{"full", 0, 31, 0xFFFFFFFF},
		{"single-bit-msb", 0, 0, 0x80000000},
		{"single-bit-lsb", 31, 31, 0x00000001},
		{"low-byte", 24, 31, 0x000000FF},
		{"high-byte", 0, 7, 0xFF000000},
		{"middle", 8, 15, 0x00FF0000},
		{"wrap", 28, 3, 0xF000000F},
		{"wrap-adjacent", 31, 0, 0x80000001},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Mask(c.mb, c.me); got != c.want {
				t.Errorf("Mask(%d,%d): got %#08x, want %#08x", c.mb, c.me, got, c.want)
			}
		})
	}
}
