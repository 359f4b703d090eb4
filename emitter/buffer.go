package emitter

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/halcyon-emu/ppc32/hostop"
	"github.com/halcyon-emu/ppc32/ppc"
)

// reserve is the slack kept at the top of the buffer so a single
// instruction's worst-case emission (a handful of records) never
// writes past the mapped region before Full() has a chance to trip.
const reserve = 64 * hostop.RecordSize

// BufferEmitter is the supplied reference Emitter: a single
// mmap'd, RW-mapped region shared by the whole block cache, written
// as a tape of hostop.Record entries. It plays the role of the "code
// buffer" in §3/§4.5: one BufferEmitter backs every block until a
// mid-block overflow forces the whole cache to invalidate and the
// buffer to reset.
type BufferEmitter struct {
	buf      []byte
	len      int
	blockOff int
	handlers []ppc.ExecFn
}

// NewBufferEmitter mmaps a size-byte RW anonymous region to back the
// code buffer.
func NewBufferEmitter(size int) (*BufferEmitter, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap code buffer: %w", err)
	}
	return &BufferEmitter{buf: b}, nil
}

// Close releases the mmap'd region.
func (e *BufferEmitter) Close() error {
	if e.buf == nil {
		return nil
	}
	err := unix.Munmap(e.buf)
	e.buf = nil
	return err
}

// Tape returns the bytes emitted so far, for hostexec.Run.
func (e *BufferEmitter) Tape() []byte { return e.buf[:e.len] }

// Handlers returns the InvokeCPUIm callback table, indexed by the A
// operand of an OpInvokeCPUIm record.
func (e *BufferEmitter) Handlers() []ppc.ExecFn { return e.handlers }

// ResetAll discards every emitted block and the handler table. Used
// by the overflow-restart path (§4.5): a mid-block overflow
// invalidates the entire cache, not just the block being compiled.
func (e *BufferEmitter) ResetAll() {
	e.len = 0
	e.blockOff = 0
	e.handlers = e.handlers[:0]
}

func (e *BufferEmitter) append(op hostop.Op, a, b int32) {
	if e.len+hostop.RecordSize > len(e.buf) {
		// Full() should have been checked before every instruction;
		// writing past the mapped region would be a translator bug.
		panic("emitter: tape write past mapped buffer")
	}
	hostop.Append(e.buf[:e.len], op, a, b)
	e.len += hostop.RecordSize
}

// Start records the current write cursor as the new block's entry
// point and returns it.
func (e *BufferEmitter) Start() int {
	e.blockOff = e.len
	return e.blockOff
}

// End finalizes the current block. The tape format needs no trailer;
// BlockInfo.HostSize is computed by the caller from CodePtr().
func (e *BufferEmitter) End() {}

// CodePtr returns the current write cursor.
func (e *BufferEmitter) CodePtr() int { return e.len }

// Full reports whether fewer than reserve bytes remain, so the
// translator can check it after every instruction per §4.1 step 5.
func (e *BufferEmitter) Full() bool { return len(e.buf)-e.len < reserve }

func (e *BufferEmitter) IncPC(bytes int32)  { e.append(hostop.OpIncPC, bytes, 0) }
func (e *BufferEmitter) ExecReturn()        { e.append(hostop.OpExecReturn, 0, 0) }
func (e *BufferEmitter) LoadT0GPR(r uint32) { e.append(hostop.OpLoadT0GPR, int32(r), 0) }
func (e *BufferEmitter) LoadT1GPR(r uint32) { e.append(hostop.OpLoadT1GPR, int32(r), 0) }
func (e *BufferEmitter) StoreT0GPR(r uint32) {
	e.append(hostop.OpStoreT0GPR, int32(r), 0)
}
func (e *BufferEmitter) LoadA0GPR(r uint32) { e.append(hostop.OpLoadA0GPR, int32(r), 0) }
func (e *BufferEmitter) StoreA0GPR(r uint32) {
	e.append(hostop.OpStoreA0GPR, int32(r), 0)
}
func (e *BufferEmitter) MovT0Im(v int32) { e.append(hostop.OpMovT0Im, v, 0) }
func (e *BufferEmitter) MovA0Im(v int32) { e.append(hostop.OpMovA0Im, v, 0) }
func (e *BufferEmitter) MovA0T0()        { e.append(hostop.OpMovA0T0, 0, 0) }

func (e *BufferEmitter) AddT0T1()        { e.append(hostop.OpAddT0T1, 0, 0) }
func (e *BufferEmitter) AddT0Im(v int32) { e.append(hostop.OpAddT0Im, v, 0) }
func (e *BufferEmitter) AddA0T1()        { e.append(hostop.OpAddA0T1, 0, 0) }
func (e *BufferEmitter) AddA0Im(v int32) { e.append(hostop.OpAddA0Im, v, 0) }
func (e *BufferEmitter) AddcT0T1()       { e.append(hostop.OpAddcT0T1, 0, 0) }
func (e *BufferEmitter) AddcT0Im(v int32) {
	e.append(hostop.OpAddcT0Im, v, 0)
}
func (e *BufferEmitter) AddeT0T1()  { e.append(hostop.OpAddeT0T1, 0, 0) }
func (e *BufferEmitter) AddmeT0()   { e.append(hostop.OpAddmeT0, 0, 0) }
func (e *BufferEmitter) AddzeT0()   { e.append(hostop.OpAddzeT0, 0, 0) }
func (e *BufferEmitter) SubfT0T1()  { e.append(hostop.OpSubfT0T1, 0, 0) }
func (e *BufferEmitter) SubfT0Im(v int32) {
	e.append(hostop.OpSubfT0Im, v, 0)
}
func (e *BufferEmitter) SubfcT0T1() { e.append(hostop.OpSubfcT0T1, 0, 0) }
func (e *BufferEmitter) SubfcT0Im(v int32) {
	e.append(hostop.OpSubfcT0Im, v, 0)
}
func (e *BufferEmitter) SubfeT0T1() { e.append(hostop.OpSubfeT0T1, 0, 0) }
func (e *BufferEmitter) SubfmeT0()  { e.append(hostop.OpSubfmeT0, 0, 0) }
func (e *BufferEmitter) SubfzeT0()  { e.append(hostop.OpSubfzeT0, 0, 0) }

func (e *BufferEmitter) AddoT0T1()    { e.append(hostop.OpAddoT0T1, 0, 0) }
func (e *BufferEmitter) AddcoT0T1()   { e.append(hostop.OpAddcoT0T1, 0, 0) }
func (e *BufferEmitter) AddeoT0T1()   { e.append(hostop.OpAddeoT0T1, 0, 0) }
func (e *BufferEmitter) SubfoT0T1()   { e.append(hostop.OpSubfoT0T1, 0, 0) }
func (e *BufferEmitter) SubfcoT0T1()  { e.append(hostop.OpSubfcoT0T1, 0, 0) }
func (e *BufferEmitter) SubfeoT0T1()  { e.append(hostop.OpSubfeoT0T1, 0, 0) }
func (e *BufferEmitter) AddmeoT0()    { e.append(hostop.OpAddmeoT0, 0, 0) }
func (e *BufferEmitter) AddzeoT0()    { e.append(hostop.OpAddzeoT0, 0, 0) }
func (e *BufferEmitter) SubfmeoT0()   { e.append(hostop.OpSubfmeoT0, 0, 0) }
func (e *BufferEmitter) SubfzeoT0()   { e.append(hostop.OpSubfzeoT0, 0, 0) }

func (e *BufferEmitter) UmulT0T1()   { e.append(hostop.OpUmulT0T1, 0, 0) }
func (e *BufferEmitter) MulhwT0T1()  { e.append(hostop.OpMulhwT0T1, 0, 0) }
func (e *BufferEmitter) MulhwuT0T1() { e.append(hostop.OpMulhwuT0T1, 0, 0) }
func (e *BufferEmitter) MullwoT0T1() { e.append(hostop.OpMullwoT0T1, 0, 0) }
func (e *BufferEmitter) MulliT0Im(v int32) {
	e.append(hostop.OpMulliT0Im, v, 0)
}
func (e *BufferEmitter) DivwT0T1()    { e.append(hostop.OpDivwT0T1, 0, 0) }
func (e *BufferEmitter) DivwuT0T1()   { e.append(hostop.OpDivwuT0T1, 0, 0) }
func (e *BufferEmitter) DivwoT0T1()   { e.append(hostop.OpDivwoT0T1, 0, 0) }
func (e *BufferEmitter) DivwuoT0T1()  { e.append(hostop.OpDivwuoT0T1, 0, 0) }
func (e *BufferEmitter) NegT0()       { e.append(hostop.OpNegT0, 0, 0) }
func (e *BufferEmitter) RecordNegoT0() {
	e.append(hostop.OpRecordNegoT0, 0, 0)
}

func (e *BufferEmitter) AndT0T1()        { e.append(hostop.OpAndT0T1, 0, 0) }
func (e *BufferEmitter) AndT0Im(v int32) { e.append(hostop.OpAndT0Im, v, 0) }
func (e *BufferEmitter) AndcT0T1()       { e.append(hostop.OpAndcT0T1, 0, 0) }
func (e *BufferEmitter) EqvT0T1()        { e.append(hostop.OpEqvT0T1, 0, 0) }
func (e *BufferEmitter) NandT0T1()       { e.append(hostop.OpNandT0T1, 0, 0) }
func (e *BufferEmitter) NorT0T1()        { e.append(hostop.OpNorT0T1, 0, 0) }
func (e *BufferEmitter) OrT0T1()         { e.append(hostop.OpOrT0T1, 0, 0) }
func (e *BufferEmitter) OrT0Im(v int32)  { e.append(hostop.OpOrT0Im, v, 0) }
func (e *BufferEmitter) OrcT0T1()        { e.append(hostop.OpOrcT0T1, 0, 0) }
func (e *BufferEmitter) XorT0T1()        { e.append(hostop.OpXorT0T1, 0, 0) }
func (e *BufferEmitter) XorT0Im(v int32) { e.append(hostop.OpXorT0Im, v, 0) }

func (e *BufferEmitter) SlwT0T1()  { e.append(hostop.OpSlwT0T1, 0, 0) }
func (e *BufferEmitter) SrwT0T1()  { e.append(hostop.OpSrwT0T1, 0, 0) }
func (e *BufferEmitter) SrawT0T1() { e.append(hostop.OpSrawT0T1, 0, 0) }
func (e *BufferEmitter) SrawT0Im(sh uint32) {
	e.append(hostop.OpSrawT0Im, int32(sh), 0)
}
func (e *BufferEmitter) LslT0Im(sh uint32) { e.append(hostop.OpLslT0Im, int32(sh), 0) }
func (e *BufferEmitter) RolT0Im(sh uint32) { e.append(hostop.OpRolT0Im, int32(sh), 0) }
func (e *BufferEmitter) RlwimiT0T1(sh, m uint32) {
	e.append(hostop.OpRlwimiT0T1, int32(sh), int32(m))
}
func (e *BufferEmitter) RlwinmT0T1(sh, m uint32) {
	e.append(hostop.OpRlwinmT0T1, int32(sh), int32(m))
}
func (e *BufferEmitter) RlwnmT0T1(m uint32) { e.append(hostop.OpRlwnmT0T1, int32(m), 0) }
func (e *BufferEmitter) CntlzwT0()          { e.append(hostop.OpCntlzwT0, 0, 0) }
func (e *BufferEmitter) Se8T0()             { e.append(hostop.OpSe8T0, 0, 0) }
func (e *BufferEmitter) Se16T0()            { e.append(hostop.OpSe16T0, 0, 0) }

func (e *BufferEmitter) LoadU8T0A0Im(v int32)  { e.append(hostop.OpLoadU8T0A0Im, v, 0) }
func (e *BufferEmitter) LoadU8T0A0T1()         { e.append(hostop.OpLoadU8T0A0T1, 0, 0) }
func (e *BufferEmitter) LoadS16T0A0Im(v int32) { e.append(hostop.OpLoadS16T0A0Im, v, 0) }
func (e *BufferEmitter) LoadS16T0A0T1()        { e.append(hostop.OpLoadS16T0A0T1, 0, 0) }
func (e *BufferEmitter) LoadU16T0A0Im(v int32) { e.append(hostop.OpLoadU16T0A0Im, v, 0) }
func (e *BufferEmitter) LoadU16T0A0T1()        { e.append(hostop.OpLoadU16T0A0T1, 0, 0) }
func (e *BufferEmitter) LoadU32T0A0Im(v int32) { e.append(hostop.OpLoadU32T0A0Im, v, 0) }
func (e *BufferEmitter) LoadU32T0A0T1()        { e.append(hostop.OpLoadU32T0A0T1, 0, 0) }
func (e *BufferEmitter) Store8T0A0Im(v int32)  { e.append(hostop.OpStore8T0A0Im, v, 0) }
func (e *BufferEmitter) Store8T0A0T1()         { e.append(hostop.OpStore8T0A0T1, 0, 0) }
func (e *BufferEmitter) Store16T0A0Im(v int32) { e.append(hostop.OpStore16T0A0Im, v, 0) }
func (e *BufferEmitter) Store16T0A0T1()        { e.append(hostop.OpStore16T0A0T1, 0, 0) }
func (e *BufferEmitter) Store32T0A0Im(v int32) { e.append(hostop.OpStore32T0A0Im, v, 0) }
func (e *BufferEmitter) Store32T0A0T1()        { e.append(hostop.OpStore32T0A0T1, 0, 0) }

func (e *BufferEmitter) CompareT0T1(crf uint32) {
	e.append(hostop.OpCompareT0T1, int32(crf), 0)
}
func (e *BufferEmitter) CompareT0Im(crf uint32, v int32) {
	e.append(hostop.OpCompareT0Im, int32(crf), v)
}
func (e *BufferEmitter) CompareLogicalT0T1(crf uint32) {
	e.append(hostop.OpCompareLogicalT0T1, int32(crf), 0)
}
func (e *BufferEmitter) CompareLogicalT0Im(crf uint32, v uint32) {
	e.append(hostop.OpCompareLogicalT0Im, int32(crf), int32(v))
}
func (e *BufferEmitter) LoadT0Crb(i uint32)  { e.append(hostop.OpLoadT0Crb, int32(i), 0) }
func (e *BufferEmitter) LoadT1Crb(i uint32)  { e.append(hostop.OpLoadT1Crb, int32(i), 0) }
func (e *BufferEmitter) StoreT0Crb(i uint32) { e.append(hostop.OpStoreT0Crb, int32(i), 0) }
func (e *BufferEmitter) CommitCR()           { e.append(hostop.OpCommitCR, 0, 0) }
func (e *BufferEmitter) RecordCR0T0()        { e.append(hostop.OpRecordCR0T0, 0, 0) }
func (e *BufferEmitter) LoadT0CR()           { e.append(hostop.OpLoadT0CR, 0, 0) }
func (e *BufferEmitter) LoadT0XER()          { e.append(hostop.OpLoadT0XER, 0, 0) }
func (e *BufferEmitter) LoadT0LR()           { e.append(hostop.OpLoadT0LR, 0, 0) }
func (e *BufferEmitter) LoadT0CTR()          { e.append(hostop.OpLoadT0CTR, 0, 0) }
func (e *BufferEmitter) StoreT0XER()         { e.append(hostop.OpStoreT0XER, 0, 0) }
func (e *BufferEmitter) StoreT0LR()          { e.append(hostop.OpStoreT0LR, 0, 0) }
func (e *BufferEmitter) StoreT0CTR()         { e.append(hostop.OpStoreT0CTR, 0, 0) }
func (e *BufferEmitter) StoreImLR(v uint32)  { e.append(hostop.OpStoreImLR, int32(v), 0) }

func (e *BufferEmitter) BcA0(bo, bi, fallthroughPC uint32) {
	e.append(hostop.OpBcA0, int32(bo), int32(bi))
	// The fall-through PC rides as a third value; since our record is
	// two operands wide, pack it as its own record immediately after.
	e.append(hostop.OpMovT0Im, int32(fallthroughPC), 0)
}

func (e *BufferEmitter) InvokeCPUIm(fn ppc.ExecFn, opcode uint32) {
	idx := len(e.handlers)
	e.handlers = append(e.handlers, fn)
	e.append(hostop.OpInvokeCPUIm, int32(idx), int32(opcode))
}
