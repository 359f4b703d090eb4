// Package hostop defines the wire format of the "host op" tape that
// emitter.BufferEmitter writes into a block's code buffer and
// hostexec.Run interprets. It exists because §6.2 leaves the real
// host ISA implementation-defined; a tape of fixed-width records is
// the encoding this module picks, per SPEC_FULL.md §3.
package hostop

import "encoding/binary"

// Op is one host-op tape opcode. The translator never names these
// directly — it calls Emitter methods, which encode them.
type Op uint8

const (
	OpInvalid Op = iota

	// Lifecycle
	OpIncPC
	OpExecReturn

	// Register moves
	OpLoadT0GPR
	OpLoadT1GPR
	OpStoreT0GPR
	OpLoadA0GPR
	OpStoreA0GPR
	OpMovT0Im
	OpMovA0Im
	OpMovA0T0

	// ALU on temporaries
	OpAddT0T1
	OpAddT0Im
	OpAddA0T1
	OpAddA0Im
	OpAddcT0T1
	OpAddcT0Im
	OpAddeT0T1
	OpAddmeT0
	OpAddzeT0
	OpSubfT0T1
	OpSubfT0Im
	OpSubfcT0T1
	OpSubfcT0Im
	OpSubfeT0T1
	OpSubfmeT0
	OpSubfzeT0
	OpAddoT0T1
	OpAddcoT0T1
	OpAddeoT0T1
	OpSubfoT0T1
	OpSubfcoT0T1
	OpSubfeoT0T1
	OpAddmeoT0
	OpAddzeoT0
	OpSubfmeoT0
	OpSubfzeoT0
	OpUmulT0T1
	OpMulhwT0T1
	OpMulhwuT0T1
	OpMullwoT0T1
	OpMulliT0Im
	OpDivwT0T1
	OpDivwuT0T1
	OpDivwoT0T1
	OpDivwuoT0T1
	OpNegT0
	OpRecordNegoT0

	// Bitwise
	OpAndT0T1
	OpAndT0Im
	OpAndcT0T1
	OpEqvT0T1
	OpNandT0T1
	OpNorT0T1
	OpOrT0T1
	OpOrT0Im
	OpOrcT0T1
	OpXorT0T1
	OpXorT0Im

	// Shifts / rotates
	OpSlwT0T1
	OpSrwT0T1
	OpSrawT0T1
	OpSrawT0Im
	OpLslT0Im
	OpRolT0Im
	OpRlwimiT0T1
	OpRlwinmT0T1
	OpRlwnmT0T1
	OpCntlzwT0
	OpSe8T0
	OpSe16T0

	// Memory
	OpLoadU8T0A0Im
	OpLoadU8T0A0T1
	OpLoadS16T0A0Im
	OpLoadS16T0A0T1
	OpLoadU16T0A0Im
	OpLoadU16T0A0T1
	OpLoadU32T0A0Im
	OpLoadU32T0A0T1
	OpStore8T0A0Im
	OpStore8T0A0T1
	OpStore16T0A0Im
	OpStore16T0A0T1
	OpStore32T0A0Im
	OpStore32T0A0T1

	// CR / SPR
	OpCompareT0T1
	OpCompareT0Im
	OpCompareLogicalT0T1
	OpCompareLogicalT0Im
	OpLoadT0Crb
	OpLoadT1Crb
	OpStoreT0Crb
	OpCommitCR
	OpRecordCR0T0
	OpLoadT0CR
	OpLoadT0XER
	OpLoadT0LR
	OpLoadT0CTR
	OpStoreT0XER
	OpStoreT0LR
	OpStoreT0CTR
	OpStoreImLR

	// Branches
	OpBcA0

	// Escape hatch
	OpInvokeCPUIm
)

// Record is one decoded tape entry: an opcode plus up to two operands.
// Which operands are meaningful depends on Op; see hostexec.Run.
type Record struct {
	Op   Op
	A, B int32
}

// Append encodes op with operands a, b (unused operands pass 0) onto
// buf and returns the extended slice. Each record is a fixed 9 bytes:
// 1 opcode byte + two little-endian int32 operands.
func Append(buf []byte, op Op, a, b int32) []byte {
	var rec [9]byte
	rec[0] = byte(op)
	binary.LittleEndian.PutUint32(rec[1:5], uint32(a))
	binary.LittleEndian.PutUint32(rec[5:9], uint32(b))
	return append(buf, rec[:]...)
}

// RecordSize is the fixed width of one tape record.
const RecordSize = 9

// Decode reads the record at offset off in tape.
func Decode(tape []byte, off int) Record {
	op := Op(tape[off])
	a := int32(binary.LittleEndian.Uint32(tape[off+1 : off+5]))
	b := int32(binary.LittleEndian.Uint32(tape[off+5 : off+9]))
	return Record{Op: op, A: a, B: b}
}
