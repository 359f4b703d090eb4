// Package hostexec executes a host-op tape produced by emitter.BufferEmitter.
// It stands in for the real host CPU §6.2 leaves unspecified: given a
// tape and the handler table InvokeCPUIm recorded, it runs the tape
// end-to-end against a register file and guest memory, so the
// translator's output is checkable without targeting a concrete ISA.
package hostexec

import (
	"fmt"
	"math/bits"

	"github.com/halcyon-emu/ppc32/hostop"
	"github.com/halcyon-emu/ppc32/mem"
	"github.com/halcyon-emu/ppc32/ppc"
	"github.com/halcyon-emu/ppc32/state"
)

// Code bundles a compiled tape with the InvokeCPUIm handler table it
// references, since a host-op record can only carry a table index,
// never a Go function value.
type Code struct {
	Tape     []byte
	Handlers []ppc.ExecFn
}

// machine holds the abstract temporaries T0, T1 and A0, mirroring the
// emitter's temporary-register vocabulary. CR writes go straight to
// regs.CR; no pending CR state is kept here.
type machine struct {
	t0, t1, a0 uint32
}

// Run executes code starting at hostOff against regs/m until an
// OpExecReturn record, then returns nil; the guest PC the block ended
// at is left in regs.PC. Tape, guest-memory and handler faults are
// returned as errors.
func Run(code Code, regs *state.Regs, m mem.GuestMem, hostOff int) error {
	var mc machine
	off := hostOff
	for {
		if off < 0 || off+hostop.RecordSize > len(code.Tape) {
			return fmt.Errorf("hostexec: tape read past end at offset %d", off)
		}
		rec := hostop.Decode(code.Tape, off)
		off += hostop.RecordSize

		switch rec.Op {
		case hostop.OpExecReturn:
			return nil
		case hostop.OpIncPC:
			regs.PC += uint32(rec.A)

		case hostop.OpLoadT0GPR:
			mc.t0 = regs.GPR[rec.A]
		case hostop.OpLoadT1GPR:
			mc.t1 = regs.GPR[rec.A]
		case hostop.OpStoreT0GPR:
			regs.GPR[rec.A] = mc.t0
		case hostop.OpLoadA0GPR:
			mc.a0 = regs.GPR[rec.A]
		case hostop.OpStoreA0GPR:
			regs.GPR[rec.A] = mc.a0
		case hostop.OpMovT0Im:
			mc.t0 = uint32(rec.A)
		case hostop.OpMovA0Im:
			mc.a0 = uint32(rec.A)
		case hostop.OpMovA0T0:
			mc.a0 = mc.t0

		case hostop.OpAddT0T1:
			mc.t0 = mc.t0 + mc.t1
		case hostop.OpAddT0Im:
			mc.t0 = mc.t0 + uint32(rec.A)
		case hostop.OpAddA0T1:
			mc.a0 = mc.a0 + mc.t1
		case hostop.OpAddA0Im:
			mc.a0 = mc.a0 + uint32(rec.A)
		case hostop.OpAddcT0T1:
			sum, carry := bits.Add32(mc.t0, mc.t1, 0)
			mc.t0 = sum
			setXERCA(regs, carry != 0)
		case hostop.OpAddcT0Im:
			sum, carry := bits.Add32(mc.t0, uint32(rec.A), 0)
			mc.t0 = sum
			setXERCA(regs, carry != 0)
		case hostop.OpAddeT0T1:
			sum, carry := bits.Add32(mc.t0, mc.t1, xerCAbit(regs))
			mc.t0 = sum
			setXERCA(regs, carry != 0)
		case hostop.OpAddmeT0:
			sum, carry := bits.Add32(mc.t0, 0xFFFFFFFF, xerCAbit(regs))
			mc.t0 = sum
			setXERCA(regs, carry != 0)
		case hostop.OpAddzeT0:
			sum, carry := bits.Add32(mc.t0, 0, xerCAbit(regs))
			mc.t0 = sum
			setXERCA(regs, carry != 0)
		case hostop.OpSubfT0T1:
			mc.t0 = mc.t1 - mc.t0
		case hostop.OpSubfT0Im:
			mc.t0 = uint32(rec.A) - mc.t0
		case hostop.OpSubfcT0T1:
			sum, carry := bits.Add32(mc.t1, ^mc.t0, 1)
			mc.t0 = sum
			setXERCA(regs, carry != 0)
		case hostop.OpSubfcT0Im:
			sum, carry := bits.Add32(uint32(rec.A), ^mc.t0, 1)
			mc.t0 = sum
			setXERCA(regs, carry != 0)
		case hostop.OpSubfeT0T1:
			sum, carry := bits.Add32(mc.t1, ^mc.t0, xerCAbit(regs))
			mc.t0 = sum
			setXERCA(regs, carry != 0)
		case hostop.OpSubfmeT0:
			sum, carry := bits.Add32(0xFFFFFFFF, ^mc.t0, xerCAbit(regs))
			mc.t0 = sum
			setXERCA(regs, carry != 0)
		case hostop.OpSubfzeT0:
			sum, carry := bits.Add32(0, ^mc.t0, xerCAbit(regs))
			mc.t0 = sum
			setXERCA(regs, carry != 0)

		case hostop.OpAddoT0T1:
			r, ov := addOverflow(mc.t0, mc.t1)
			mc.t0 = r
			setXERSO(regs, ov)
		case hostop.OpAddcoT0T1:
			sum, carry := bits.Add32(mc.t0, mc.t1, 0)
			_, ov := addOverflow(mc.t0, mc.t1)
			mc.t0 = sum
			setXERCA(regs, carry != 0)
			setXERSO(regs, ov)
		case hostop.OpAddeoT0T1:
			sum, carry := bits.Add32(mc.t0, mc.t1, xerCAbit(regs))
			_, ov := addOverflow(mc.t0, mc.t1)
			mc.t0 = sum
			setXERCA(regs, carry != 0)
			setXERSO(regs, ov)
		case hostop.OpSubfoT0T1:
			r, ov := subOverflow(mc.t1, mc.t0)
			mc.t0 = r
			setXERSO(regs, ov)
		case hostop.OpSubfcoT0T1:
			sum, carry := bits.Add32(mc.t1, ^mc.t0, 1)
			_, ov := subOverflow(mc.t1, mc.t0)
			mc.t0 = sum
			setXERCA(regs, carry != 0)
			setXERSO(regs, ov)
		case hostop.OpSubfeoT0T1:
			sum, carry := bits.Add32(mc.t1, ^mc.t0, xerCAbit(regs))
			_, ov := subOverflow(mc.t1, mc.t0)
			mc.t0 = sum
			setXERCA(regs, carry != 0)
			setXERSO(regs, ov)
		case hostop.OpAddmeoT0:
			sum, carry := bits.Add32(mc.t0, 0xFFFFFFFF, xerCAbit(regs))
			_, ov := addOverflow(mc.t0, 0xFFFFFFFF)
			mc.t0 = sum
			setXERCA(regs, carry != 0)
			setXERSO(regs, ov)
		case hostop.OpAddzeoT0:
			sum, carry := bits.Add32(mc.t0, 0, xerCAbit(regs))
			_, ov := addOverflow(mc.t0, 0)
			mc.t0 = sum
			setXERCA(regs, carry != 0)
			setXERSO(regs, ov)
		case hostop.OpSubfmeoT0:
			sum, carry := bits.Add32(0xFFFFFFFF, ^mc.t0, xerCAbit(regs))
			_, ov := subOverflow(0xFFFFFFFF, mc.t0)
			mc.t0 = sum
			setXERCA(regs, carry != 0)
			setXERSO(regs, ov)
		case hostop.OpSubfzeoT0:
			sum, carry := bits.Add32(0, ^mc.t0, xerCAbit(regs))
			_, ov := subOverflow(0, mc.t0)
			mc.t0 = sum
			setXERCA(regs, carry != 0)
			setXERSO(regs, ov)

		case hostop.OpUmulT0T1:
			mc.t0 = mc.t0 * mc.t1
		case hostop.OpMulhwT0T1:
			p := int64(int32(mc.t0)) * int64(int32(mc.t1))
			mc.t0 = uint32(p >> 32)
		case hostop.OpMulhwuT0T1:
			p := uint64(mc.t0) * uint64(mc.t1)
			mc.t0 = uint32(p >> 32)
		case hostop.OpMullwoT0T1:
			p := int64(int32(mc.t0)) * int64(int32(mc.t1))
			r := uint32(p)
			setXERSO(regs, p != int64(int32(r)))
			mc.t0 = r
		case hostop.OpMulliT0Im:
			mc.t0 = uint32(int32(mc.t0) * rec.A)
		case hostop.OpDivwT0T1:
			if mc.t1 == 0 {
				mc.t0 = 0
			} else {
				mc.t0 = uint32(int32(mc.t0) / int32(mc.t1))
			}
		case hostop.OpDivwuT0T1:
			if mc.t1 == 0 {
				mc.t0 = 0
			} else {
				mc.t0 = mc.t0 / mc.t1
			}
		case hostop.OpDivwoT0T1:
			if mc.t1 == 0 || (mc.t0 == 0x80000000 && mc.t1 == 0xffffffff) {
				mc.t0 = 0
				setXERSO(regs, true)
			} else {
				mc.t0 = uint32(int32(mc.t0) / int32(mc.t1))
			}
		case hostop.OpDivwuoT0T1:
			if mc.t1 == 0 {
				mc.t0 = 0
				setXERSO(regs, true)
			} else {
				mc.t0 = mc.t0 / mc.t1
			}
		case hostop.OpNegT0:
			mc.t0 = -mc.t0
		case hostop.OpRecordNegoT0:
			setXERSO(regs, mc.t0 == 0x80000000)
			mc.t0 = -mc.t0

		case hostop.OpAndT0T1:
			mc.t0 &= mc.t1
		case hostop.OpAndT0Im:
			mc.t0 &= uint32(rec.A)
		case hostop.OpAndcT0T1:
			mc.t0 &= ^mc.t1
		case hostop.OpEqvT0T1:
			mc.t0 = ^(mc.t0 ^ mc.t1)
		case hostop.OpNandT0T1:
			mc.t0 = ^(mc.t0 & mc.t1)
		case hostop.OpNorT0T1:
			mc.t0 = ^(mc.t0 | mc.t1)
		case hostop.OpOrT0T1:
			mc.t0 |= mc.t1
		case hostop.OpOrT0Im:
			mc.t0 |= uint32(rec.A)
		case hostop.OpOrcT0T1:
			mc.t0 |= ^mc.t1
		case hostop.OpXorT0T1:
			mc.t0 ^= mc.t1
		case hostop.OpXorT0Im:
			mc.t0 ^= uint32(rec.A)

		case hostop.OpSlwT0T1:
			mc.t0 = shiftLeft(mc.t0, mc.t1)
		case hostop.OpSrwT0T1:
			mc.t0 = shiftRightLogical(mc.t0, mc.t1)
		case hostop.OpSrawT0T1:
			r, ca := shiftRightArith(mc.t0, mc.t1&0x3F)
			mc.t0 = r
			setXERCA(regs, ca)
		case hostop.OpSrawT0Im:
			r, ca := shiftRightArith(mc.t0, uint32(rec.A))
			mc.t0 = r
			setXERCA(regs, ca)
		case hostop.OpLslT0Im:
			mc.t0 = shiftLeft(mc.t0, uint32(rec.A))
		case hostop.OpRolT0Im:
			mc.t0 = bits.RotateLeft32(mc.t0, int(rec.A))
		case hostop.OpRlwimiT0T1:
			rot := bits.RotateLeft32(mc.t1, int(rec.A))
			msk := uint32(rec.B)
			mc.t0 = (rot & msk) | (mc.t0 &^ msk)
		case hostop.OpRlwinmT0T1:
			rot := bits.RotateLeft32(mc.t0, int(rec.A))
			mc.t0 = rot & uint32(rec.B)
		case hostop.OpRlwnmT0T1:
			rot := bits.RotateLeft32(mc.t0, int(mc.t1&0x1F))
			mc.t0 = rot & uint32(rec.A)
		case hostop.OpCntlzwT0:
			mc.t0 = uint32(bits.LeadingZeros32(mc.t0))
		case hostop.OpSe8T0:
			mc.t0 = uint32(int32(int8(mc.t0)))
		case hostop.OpSe16T0:
			mc.t0 = uint32(int32(int16(mc.t0)))

		case hostop.OpLoadU8T0A0Im:
			v, err := m.Read8(mc.a0 + uint32(rec.A))
			if err != nil {
				return err
			}
			mc.t0 = uint32(v)
		case hostop.OpLoadU8T0A0T1:
			v, err := m.Read8(mc.a0 + mc.t1)
			if err != nil {
				return err
			}
			mc.t0 = uint32(v)
		case hostop.OpLoadS16T0A0Im:
			v, err := m.Read16(mc.a0 + uint32(rec.A))
			if err != nil {
				return err
			}
			mc.t0 = uint32(int32(int16(v)))
		case hostop.OpLoadS16T0A0T1:
			v, err := m.Read16(mc.a0 + mc.t1)
			if err != nil {
				return err
			}
			mc.t0 = uint32(int32(int16(v)))
		case hostop.OpLoadU16T0A0Im:
			v, err := m.Read16(mc.a0 + uint32(rec.A))
			if err != nil {
				return err
			}
			mc.t0 = uint32(v)
		case hostop.OpLoadU16T0A0T1:
			v, err := m.Read16(mc.a0 + mc.t1)
			if err != nil {
				return err
			}
			mc.t0 = uint32(v)
		case hostop.OpLoadU32T0A0Im:
			v, err := m.Read32(mc.a0 + uint32(rec.A))
			if err != nil {
				return err
			}
			mc.t0 = v
		case hostop.OpLoadU32T0A0T1:
			v, err := m.Read32(mc.a0 + mc.t1)
			if err != nil {
				return err
			}
			mc.t0 = v
		case hostop.OpStore8T0A0Im:
			if err := m.Write8(mc.a0+uint32(rec.A), uint8(mc.t0)); err != nil {
				return err
			}
		case hostop.OpStore8T0A0T1:
			if err := m.Write8(mc.a0+mc.t1, uint8(mc.t0)); err != nil {
				return err
			}
		case hostop.OpStore16T0A0Im:
			if err := m.Write16(mc.a0+uint32(rec.A), uint16(mc.t0)); err != nil {
				return err
			}
		case hostop.OpStore16T0A0T1:
			if err := m.Write16(mc.a0+mc.t1, uint16(mc.t0)); err != nil {
				return err
			}
		case hostop.OpStore32T0A0Im:
			if err := m.Write32(mc.a0+uint32(rec.A), mc.t0); err != nil {
				return err
			}
		case hostop.OpStore32T0A0T1:
			if err := m.Write32(mc.a0+mc.t1, mc.t0); err != nil {
				return err
			}

		case hostop.OpCompareT0T1:
			compareSigned(regs, uint32(rec.A), int32(mc.t0), int32(mc.t1))
		case hostop.OpCompareT0Im:
			compareSigned(regs, uint32(rec.A), int32(mc.t0), rec.B)
		case hostop.OpCompareLogicalT0T1:
			compareUnsigned(regs, uint32(rec.A), mc.t0, mc.t1)
		case hostop.OpCompareLogicalT0Im:
			compareUnsigned(regs, uint32(rec.A), mc.t0, uint32(rec.B))
		case hostop.OpLoadT0Crb:
			mc.t0 = 0
			if regs.CRBitSet(uint32(rec.A)) {
				mc.t0 = 1
			}
		case hostop.OpLoadT1Crb:
			mc.t1 = 0
			if regs.CRBitSet(uint32(rec.A)) {
				mc.t1 = 1
			}
		case hostop.OpStoreT0Crb:
			regs.SetCRBit(uint32(rec.A), mc.t0 != 0)
		case hostop.OpCommitCR:
			// No staged state to flush in this reference model; CR
			// writes land directly on regs.CR as they're emitted.
		case hostop.OpRecordCR0T0:
			regs.RecordCR0(mc.t0)
		case hostop.OpLoadT0CR:
			mc.t0 = regs.CR
		case hostop.OpLoadT0XER:
			mc.t0 = regs.XER
		case hostop.OpLoadT0LR:
			mc.t0 = regs.LR
		case hostop.OpLoadT0CTR:
			mc.t0 = regs.CTR
		case hostop.OpStoreT0XER:
			regs.XER = mc.t0
		case hostop.OpStoreT0LR:
			regs.LR = mc.t0
		case hostop.OpStoreT0CTR:
			regs.CTR = mc.t0
		case hostop.OpStoreImLR:
			regs.LR = uint32(rec.A)

		case hostop.OpBcA0:
			bo, bi := uint32(rec.A), uint32(rec.B)
			fr := hostop.Decode(code.Tape, off)
			off += hostop.RecordSize
			fallthroughPC := uint32(fr.A)
			if evalBranch(regs, bo, bi) {
				regs.PC = mc.a0
			} else {
				regs.PC = fallthroughPC
			}

		case hostop.OpInvokeCPUIm:
			idx, opcode := int(rec.A), uint32(rec.B)
			if idx < 0 || idx >= len(code.Handlers) {
				return fmt.Errorf("hostexec: invalid handler index %d", idx)
			}
			if err := code.Handlers[idx](regs, m, opcode); err != nil {
				return err
			}

		default:
			return fmt.Errorf("hostexec: unknown tape op %d at offset %d", rec.Op, off-hostop.RecordSize)
		}
	}
}

func xerCAbit(regs *state.Regs) uint32 {
	if regs.XER&state.XERCA != 0 {
		return 1
	}
	return 0
}

func setXERCA(regs *state.Regs, v bool) {
	if v {
		regs.XER |= state.XERCA
	} else {
		regs.XER &^= state.XERCA
	}
}

func setXERSO(regs *state.Regs, v bool) {
	if v {
		regs.XER |= state.XERSO | state.XEROV
	} else {
		regs.XER &^= state.XEROV
	}
}

func addOverflow(a, b uint32) (uint32, bool) {
	r := a + b
	ov := (a^r)&(b^r)&0x80000000 != 0
	return r, ov
}

func subOverflow(a, b uint32) (uint32, bool) {
	r := a - b
	ov := (a^b)&(a^r)&0x80000000 != 0
	return r, ov
}

func shiftLeft(v, sh uint32) uint32 {
	if sh >= 32 {
		return 0
	}
	return v << sh
}

func shiftRightLogical(v, sh uint32) uint32 {
	if sh >= 32 {
		return 0
	}
	return v >> sh
}

func shiftRightArith(v, sh uint32) (uint32, bool) {
	if sh >= 32 {
		if int32(v) < 0 {
			return 0xFFFFFFFF, true
		}
		return 0, false
	}
	r := uint32(int32(v) >> sh)
	ca := int32(v) < 0 && (v<<(32-sh)) != 0
	return r, ca
}

func compareSigned(regs *state.Regs, crf uint32, a, b int32) {
	var v uint32
	switch {
	case a < b:
		v = state.CR0LT
	case a > b:
		v = state.CR0GT
	default:
		v = state.CR0EQ
	}
	if regs.XER&state.XERSO != 0 {
		v |= state.CR0SO
	}
	regs.SetCRField(crf, v)
}

func compareUnsigned(regs *state.Regs, crf uint32, a, b uint32) {
	var v uint32
	switch {
	case a < b:
		v = state.CR0LT
	case a > b:
		v = state.CR0GT
	default:
		v = state.CR0EQ
	}
	if regs.XER&state.XERSO != 0 {
		v |= state.CR0SO
	}
	regs.SetCRField(crf, v)
}

func evalBranch(regs *state.Regs, bo, bi uint32) bool {
	ctrOK := true
	if !ppc.BOIsCounterDependent(bo) {
		// always-true path, nothing to decrement
	} else {
		regs.CTR--
		ctrDecremented := regs.CTR != 0
		if bo&0b00010 != 0 {
			ctrOK = ctrDecremented
		} else {
			ctrOK = !ctrDecremented
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
