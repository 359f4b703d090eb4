// Command ppcjit-run loads a flat PowerPC binary, compiles it block
// by block through the translator, and executes the result, falling
// back to the reference interpreter wherever the translator declines.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/halcyon-emu/ppc32/blockcache"
	"github.com/halcyon-emu/ppc32/emitter"
	"github.com/halcyon-emu/ppc32/hostexec"
	"github.com/halcyon-emu/ppc32/interp"
	"github.com/halcyon-emu/ppc32/mem"
	"github.com/halcyon-emu/ppc32/state"
	"github.com/halcyon-emu/ppc32/translate"
)

var (
	loadAddress = flag.Uint64("load", 0x0000, "Load address for the binary image (decimal, or hex with 0x prefix).")
	pcAddress   = flag.Uint64("pc", 0, "Initial program counter (decimal, or hex with 0x prefix), defaults to load address.")
	memSize     = flag.Int("mem", 16*1024*1024, "Guest address space size in bytes.")
	codeSize    = flag.Int("codesize", 4*1024*1024, "Host code buffer size in bytes.")
	maxBlocks   = flag.Int("blocks", 1000000, "Maximum number of compiled blocks to execute.")
	trace       = flag.Bool("trace", false, "Log every guest instruction as it is translated.")
	standalone  = flag.Bool("standalone", true, "Treat unmapped SPRs as illegal instructions rather than silently mapping them.")
	pvr         = flag.Uint64("pvr", 0, "PVR value reported by MFSPR when -standalone=false (decimal, or hex with 0x prefix).")

	gpr [32]string
)

func init() {
	for i := 0; i < 32; i++ {
		flag.StringVar(&gpr[i], fmt.Sprintf("r%d", i), "", "Set initial value for GPR r<N> (hex).")
	}
}

func main() {
	log.SetFlags(0)
	flag.Parse()

	if flag.NArg() != 1 {
		log.Println("Usage: ppcjit-run [options] <flat-binary>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	filename := flag.Arg(0)

	code, err := os.ReadFile(filename)
	if err != nil {
		log.Fatalf("Couldn't read binary file: %v", err)
	}

	guestMem := mem.NewFlatMemory(*memSize)
	start := uint32(*loadAddress)
	if int(start)+len(code) > len(guestMem.Bytes) {
		log.Fatalf("Binary of %d bytes at load address %#x exceeds %d-byte guest memory", len(code), start, *memSize)
	}
	copy(guestMem.Bytes[start:], code)

	var regs state.Regs
	if err := setRegisters(&regs); err != nil {
		log.Fatalf("Error setting registers: %v", err)
	}
	if *pcAddress != 0 {
		regs.PC = uint32(*pcAddress)
	} else {
		regs.PC = start
	}

	em, err := emitter.NewBufferEmitter(*codeSize)
	if err != nil {
		log.Fatalf("Couldn't allocate code buffer: %v", err)
	}
	defer em.Close()

	ref := interp.NewReference(interp.SPRPolicy{Standalone: *standalone, PVR: uint32(*pvr)})
	cache := blockcache.New()
	compiler := translate.NewCompiler(guestMem, em, cache, ref, translate.SPRPolicy{
		Standalone: *standalone,
		PVR:        uint32(*pvr),
	})
	compiler.Trace = *trace

	log.Printf("Loaded %d bytes at %#08x. Execution starts at %#08x", len(code), start, regs.PC)
	log.Println("--- Register state before execution ---")
	dumpRegisters(&regs)

	executed := 0
	for ; executed < *maxBlocks; executed++ {
		bi, ok := cache.Lookup(regs.PC)
		if !ok {
			bi = compiler.CompileBlock(regs.PC)
		}
		if err := hostexec.Run(hostexec.Code{Tape: em.Tape(), Handlers: em.Handlers()}, &regs, guestMem, bi.HostEntry); err != nil {
			log.Println("--- Register state at failure ---")
			dumpRegisters(&regs)
			log.Fatalf("Execution failed after %d blocks: %v", executed+1, err)
		}
	}

	log.Println("--- Register state after execution ---")
	dumpRegisters(&regs)

	if executed >= *maxBlocks {
		log.Printf("Execution stopped: maximum block count (%d) reached.", *maxBlocks)
	} else {
		log.Printf("Execution finished after %d blocks.", executed)
	}
}

func setRegisters(regs *state.Regs) error {
	for i := 0; i < 32; i++ {
		if gpr[i] == "" {
			continue
		}
		v, err := strconv.ParseUint(gpr[i], 16, 32)
		if err != nil {
			return fmt.Errorf("invalid value for r%d: %w", i, err)
		}
		regs.GPR[i] = uint32(v)
	}
	return nil
}

func dumpRegisters(regs *state.Regs) {
	for i := 0; i < 32; i += 4 {
		log.Printf("r%-2d=%08x  r%-2d=%08x  r%-2d=%08x  r%-2d=%08x",
			i, regs.GPR[i], i+1, regs.GPR[i+1], i+2, regs.GPR[i+2], i+3, regs.GPR[i+3])
	}
	log.Printf("pc=%08x  lr=%08x  ctr=%08x  cr=%08x  xer=%08x",
		regs.PC, regs.LR, regs.CTR, regs.CR, regs.XER)
}
