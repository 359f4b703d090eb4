// Package translate compiles a straight-line run of guest PowerPC
// instructions into a block of emitted host-op records, the dynamic
// binary translation core the rest of this module supports.
package translate

import (
	"github.com/halcyon-emu/ppc32/emitter"
	"github.com/halcyon-emu/ppc32/ppc"
)

// Context is the per-block scratch state threaded through one
// compile attempt. It is rebuilt from scratch on every CompileBlock
// call, including an overflow restart.
type Context struct {
	EntryPC  uint32
	DPC      uint32
	Opcode   uint32
	II       *ppc.Instruction
	Emit     emitter.Emitter
	PCOffset int32
	// CRDirty tracks whether CR bits have been modified by an emitted
	// op (compare, record_cr0) without yet being
	// committed. Anything that reads CR (MFCR, the CR-logical family,
	// generic fallback, block end) must flush it first.
	CRDirty bool
}

// FlushPC emits the accumulated pc_offset via IncPC, if any, and
// resets it. The generic fallback calls this before handing an
// instruction to the interpreter; a block's terminating branch sets the
// guest PC itself, so block end does not flush.
func (c *Context) FlushPC() {
	if c.PCOffset != 0 {
		c.Emit.IncPC(c.PCOffset)
		c.PCOffset = 0
	}
}

// FlushCR emits CommitCR if a prior op left CR state uncommitted.
func (c *Context) FlushCR() {
	if c.CRDirty {
		c.Emit.CommitCR()
		c.CRDirty = false
	}
}

// MarkCRDirty records that the instruction about to be emitted writes
// CR bits without committing them.
func (c *Context) MarkCRDirty() {
	c.CRDirty = true
}

// SPRPolicy selects MFSPR/MTSPR behavior for SPR numbers other than
// XER/LR/CTR, mirrored by interp.SPRPolicy so the compiled path and
// the fallback path agree on unmapped-SPR handling.
type SPRPolicy struct {
	Standalone bool
	PVR        uint32
}

// SPR numbers and the SDR1 sentinel mirror interp's unexported
// equivalents (interp/cr.go and interp/interp.go); kept as a separate copy rather than exported from
// interp to avoid widening that package's API for two packages that
// otherwise share no types.
const (
	sprXER  = 1
	sprLR   = 8
	sprCTR  = 9
	sprSDR1 = 25
	sprPVR  = 287

	sdr1Value = 0xdead001f
)
