// Package emitter is the host code emitter the translator drives. Its
// internals are an opaque sink of typed emit calls (§6.2); the
// interface below is the contract, not a description of a particular
// host ISA.
package emitter

import "github.com/halcyon-emu/ppc32/ppc"

// Emitter is the fixed vocabulary of emit operations enumerated in
// spec §6.2. T0, T1 and A0 are abstract temporaries the emitter owns;
// the translator only names them.
type Emitter interface {
	// Lifecycle
	Start() int
	End()
	CodePtr() int
	Full() bool
	IncPC(bytes int32)
	ExecReturn()
	// ResetAll discards every emitted block, for the overflow-restart
	// path: the whole cache is invalidated, and the one shared buffer
	// backing it starts over from empty rather than being replaced.
	ResetAll()

	// Register moves
	LoadT0GPR(r uint32)
	LoadT1GPR(r uint32)
	StoreT0GPR(r uint32)
	LoadA0GPR(r uint32)
	StoreA0GPR(r uint32)
	MovT0Im(v int32)
	MovA0Im(v int32)
	MovA0T0()

	// ALU on temporaries — plain
	AddT0T1()
	AddT0Im(v int32)
	AddA0T1()
	AddA0Im(v int32)
	AddcT0T1()
	AddcT0Im(v int32)
	AddeT0T1()
	AddmeT0()
	AddzeT0()
	SubfT0T1()
	SubfT0Im(v int32)
	SubfcT0T1()
	SubfcT0Im(v int32)
	SubfeT0T1()
	SubfmeT0()
	SubfzeT0()

	// ALU on temporaries — overflow-recording variants
	AddoT0T1()
	AddcoT0T1()
	AddeoT0T1()
	SubfoT0T1()
	SubfcoT0T1()
	SubfeoT0T1()
	AddmeoT0()
	AddzeoT0()
	SubfmeoT0()
	SubfzeoT0()

	UmulT0T1()
	MulhwT0T1()
	MulhwuT0T1()
	MullwoT0T1()
	MulliT0Im(v int32)
	DivwT0T1()
	DivwuT0T1()
	DivwoT0T1()
	DivwuoT0T1()
	NegT0()
	RecordNegoT0()

	// Bitwise
	AndT0T1()
	AndT0Im(v int32)
	AndcT0T1()
	EqvT0T1()
	NandT0T1()
	NorT0T1()
	OrT0T1()
	OrT0Im(v int32)
	OrcT0T1()
	XorT0T1()
	XorT0Im(v int32)

	// Shifts / rotates
	SlwT0T1()
	SrwT0T1()
	SrawT0T1()
	SrawT0Im(sh uint32)
	LslT0Im(sh uint32)
	RolT0Im(sh uint32)
	RlwimiT0T1(sh, m uint32)
	RlwinmT0T1(sh, m uint32)
	RlwnmT0T1(m uint32)
	CntlzwT0()
	Se8T0()
	Se16T0()

	// Memory
	LoadU8T0A0Im(v int32)
	LoadU8T0A0T1()
	LoadS16T0A0Im(v int32)
	LoadS16T0A0T1()
	LoadU16T0A0Im(v int32)
	LoadU16T0A0T1()
	LoadU32T0A0Im(v int32)
	LoadU32T0A0T1()
	Store8T0A0Im(v int32)
	Store8T0A0T1()
	Store16T0A0Im(v int32)
	Store16T0A0T1()
	Store32T0A0Im(v int32)
	Store32T0A0T1()

	// CR / SPR
	CompareT0T1(crf uint32)
	CompareT0Im(crf uint32, v int32)
	CompareLogicalT0T1(crf uint32)
	CompareLogicalT0Im(crf uint32, v uint32)
	LoadT0Crb(i uint32)
	LoadT1Crb(i uint32)
	StoreT0Crb(i uint32)
	CommitCR()
	RecordCR0T0()
	LoadT0CR()
	LoadT0XER()
	LoadT0LR()
	LoadT0CTR()
	StoreT0XER()
	StoreT0LR()
	StoreT0CTR()
	StoreImLR(v uint32)

	// Branches
	BcA0(bo, bi, fallthroughPC uint32)

	// Escape hatch
	InvokeCPUIm(fn ppc.ExecFn, opcode uint32)
}
