// Package mem defines the guest-memory contract the translator and
// interpreter read PowerPC code and data through, plus a flat
// byte-slice reference implementation for tests and the CLI harness.
package mem

import (
	"encoding/binary"
	"fmt"
)

// GuestMem is the view of guest memory the translator and interpreter
// consume; the translator only reads through it, while the interpreter
// and hostexec also write. Read32 faults are propagated, not caught, per
// the spec's error-handling design: a guest memory fault while
// fetching opcodes is not the translator's concern to recover from.
type GuestMem interface {
	Read32(addr uint32) (uint32, error)
	Read16(addr uint32) (uint16, error)
	Read8(addr uint32) (uint8, error)
	Write32(addr uint32, v uint32) error
	Write16(addr uint32, v uint16) error
	Write8(addr uint32, v uint8) error
	// Translate resolves a guest address to a stable offset into the
	// backing store, standing in for a host pointer (§2 data flow).
	Translate(addr uint32) (int, error)
}

// FlatMemory is a flat, big-endian, byte-slice-backed GuestMem.
type FlatMemory struct {
	Bytes []byte
}

// NewFlatMemory allocates a zeroed guest address space of size bytes.
func NewFlatMemory(size int) *FlatMemory {
	return &FlatMemory{Bytes: make([]byte, size)}
}

func (m *FlatMemory) bounds(addr uint32, width int) error {
	if int(addr)+width > len(m.Bytes) {
		return fmt.Errorf("guest memory fault: address %#x (width %d) exceeds %d-byte space", addr, width, len(m.Bytes))
	}
	return nil
}

func (m *FlatMemory) Read32(addr uint32) (uint32, error) {
	if err := m.bounds(addr, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(m.Bytes[addr:]), nil
}

func (m *FlatMemory) Read16(addr uint32) (uint16, error) {
	if err := m.bounds(addr, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(m.Bytes[addr:]), nil
}

func (m *FlatMemory) Read8(addr uint32) (uint8, error) {
	if err := m.bounds(addr, 1); err != nil {
		return 0, err
	}
	return m.Bytes[addr], nil
}

func (m *FlatMemory) Write32(addr uint32, v uint32) error {
	if err := m.bounds(addr, 4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(m.Bytes[addr:], v)
	return nil
}

func (m *FlatMemory) Write16(addr uint32, v uint16) error {
	if err := m.bounds(addr, 2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(m.Bytes[addr:], v)
	return nil
}

func (m *FlatMemory) Write8(addr uint32, v uint8) error {
	if err := m.bounds(addr, 1); err != nil {
		return err
	}
	m.Bytes[addr] = v
	return nil
}

func (m *FlatMemory) Translate(addr uint32) (int, error) {
	if err := m.bounds(addr, 1); err != nil {
		return 0, err
	}
	return int(addr), nil
}
