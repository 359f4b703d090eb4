// Package ppc decodes 32-bit PowerPC (user-mode, 32-bit) instruction words
// into the mnemonic/control-flow/fallback descriptors the translator
// dispatches on. Field extraction follows the manual's big-endian bit
// numbering (bit 0 is the MSB).
package ppc

// Primary opcode, bits 0-5.
func Opcd(op uint32) uint32 { return op >> 26 }

// RD / RS, bits 6-10.
func RD(op uint32) uint32 { return (op >> 21) & 0x1F }

// RA, bits 11-15.
func RA(op uint32) uint32 { return (op >> 16) & 0x1F }

// RB, bits 16-20.
func RB(op uint32) uint32 { return (op >> 11) & 0x1F }

// XO is the 10-bit extended opcode of X/XO-form instructions, bits 21-30.
func XO(op uint32) uint32 { return (op >> 1) & 0x3FF }

// XO9 is the 9-bit extended opcode ignoring the OE bit, used by XO-form
// arithmetic instructions where bit 21 is OE rather than part of XO.
func XO9(op uint32) uint32 { return (op >> 1) & 0x1FF }

// D is the 16-bit signed displacement of D-form memory instructions.
func D(op uint32) int32 { return int32(int16(op & 0xFFFF)) }

// SIMM is the sign-extended 16-bit immediate.
func SIMM(op uint32) int32 { return int32(int16(op & 0xFFFF)) }

// UIMM is the zero-extended 16-bit immediate.
func UIMM(op uint32) uint32 { return op & 0xFFFF }

// LI is the 24-bit signed branch target displacement of I-form branches,
// returned as a sign-extended byte offset (low two bits are zero, per
// AA/LK being separate fields).
func LI(op uint32) int32 {
	raw := op & 0x03FFFFFC
	if raw&0x02000000 != 0 {
		raw |= 0xFC000000
	}
	return int32(raw)
}

// BD is the 14-bit signed branch displacement of B-form conditional
// branches, returned as a sign-extended byte offset.
func BD(op uint32) int32 {
	raw := op & 0x0000FFFC
	if raw&0x00008000 != 0 {
		raw |= 0xFFFF0000
	}
	return int32(raw)
}

// AA is the absolute-address bit of branch instructions, bit 30.
func AA(op uint32) bool { return op&0x2 != 0 }

// LK is the link bit, bit 31: store the return address in LR.
func LK(op uint32) bool { return op&0x1 != 0 }

// Rc is the record bit, bit 31: update CR0 from the result.
func Rc(op uint32) bool { return op&0x1 != 0 }

// OE is the overflow-enable bit of XO-form arithmetic, bit 21.
func OE(op uint32) bool { return op&0x0400 != 0 }

// BO is the branch-options field, bits 6-10 (same position as RD).
func BO(op uint32) uint32 { return RD(op) }

// BI is the branch-condition-bit field, bits 11-15 (same position as RA).
func BI(op uint32) uint32 { return RA(op) }

// SH is the shift amount of rotate/shift instructions, bits 16-20 (same
// position as RB).
func SH(op uint32) uint32 { return RB(op) }

// MB is the mask-begin field of rotate-and-mask instructions, bits 21-25.
func MB(op uint32) uint32 { return (op >> 6) & 0x1F }

// ME is the mask-end field of rotate-and-mask instructions, bits 26-30.
func ME(op uint32) uint32 { return (op >> 1) & 0x1F }

// CrfD is the destination CR field of compare instructions, bits 6-8.
func CrfD(op uint32) uint32 { return (op >> 23) & 0x7 }

// CrbA is a CR-bit source operand, bits 11-15 (same position as RA).
func CrbA(op uint32) uint32 { return RA(op) }

// CrbB is a CR-bit source operand, bits 16-20 (same position as RB).
func CrbB(op uint32) uint32 { return RB(op) }

// CrbD is a CR-bit destination operand, bits 6-10 (same position as RD).
func CrbD(op uint32) uint32 { return RD(op) }

// SPR is the 10-bit special-purpose-register number. It is encoded as
// two 5-bit halves with the low half stored first (in the RA position).
func SPR(op uint32) uint32 { return (RB(op) << 5) | RA(op) }

// Mask computes the PowerPC rotate-and-mask bit pattern: bits MB..ME
// (inclusive, big-endian numbering) set to 1, wrapping when MB > ME.
func Mask(mb, me uint32) uint32 {
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
