// Package disasm prints a trace of the translator's guest-instruction
// stream as it compiles, the Go-native stand-in for the reference
// disassembler's disasm_translation/disasm_block output. It carries
// no host-ISA awareness since the host op tape has no fixed mnemonic
// set of its own — the trace names only the guest instruction being
// compiled: its address, opcode word and mnemonic.
package disasm

import (
	"log"

	"github.com/halcyon-emu/ppc32/ppc"
)

// Hook logs one guest instruction as translate.Compiler compiles it.
// Callers gate calls on their own trace flag; Hook itself does not.
func Hook(pc, opcode uint32, mnemo ppc.Mnemo) {
	log.Printf("translate: %08x: %08x  %s", pc, opcode, mnemo)
}
