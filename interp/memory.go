package interp

import (
	"github.com/halcyon-emu/ppc32/mem"
	"github.com/halcyon-emu/ppc32/state"
)

func ea(regs *state.Regs, ra uint32, d int32, update bool) uint32 {
	var base uint32
	if ra != 0 || update {
		base = regs.GPR[ra]
	}
	return base + uint32(d)
}

func eax(regs *state.Regs, ra, rb uint32, update bool) uint32 {
	var base uint32
	if ra != 0 || update {
		base = regs.GPR[ra]
	}
	return base + regs.GPR[rb]
}

func (r *Reference) load32(regs *state.Regs, m mem.GuestMem, ra, rd uint32, d int32, update bool) error {
	addr := ea(regs, ra, d, update)
	v, err := m.Read32(addr)
	if err != nil {
		return err
	}
	regs.GPR[rd] = v
	if update {
		regs.GPR[ra] = addr
	}
	return nil
}

func (r *Reference) load8(regs *state.Regs, m mem.GuestMem, ra, rd uint32, d int32, update bool) error {
	addr := ea(regs, ra, d, update)
	v, err := m.Read8(addr)
	if err != nil {
		return err
	}
	regs.GPR[rd] = uint32(v)
	if update {
		regs.GPR[ra] = addr
	}
	return nil
}

func (r *Reference) load16(regs *state.Regs, m mem.GuestMem, ra, rd uint32, d int32, update, signed bool) error {
	addr := ea(regs, ra, d, update)
	v, err := m.Read16(addr)
	if err != nil {
		return err
	}
	if signed {
		regs.GPR[rd] = uint32(int32(int16(v)))
	} else {
		regs.GPR[rd] = uint32(v)
	}
	if update {
		regs.GPR[ra] = addr
	}
	return nil
}

func (r *Reference) load32x(regs *state.Regs, m mem.GuestMem, ra, rb, rd uint32, update bool) error {
	addr := eax(regs, ra, rb, update)
	v, err := m.Read32(addr)
	if err != nil {
		return err
	}
	regs.GPR[rd] = v
	if update {
		regs.GPR[ra] = addr
	}
	return nil
}

func (r *Reference) load8x(regs *state.Regs, m mem.GuestMem, ra, rb, rd uint32, update bool) error {
	addr := eax(regs, ra, rb, update)
	v, err := m.Read8(addr)
	if err != nil {
		return err
	}
	regs.GPR[rd] = uint32(v)
	if update {
		regs.GPR[ra] = addr
	}
	return nil
}

func (r *Reference) load16x(regs *state.Regs, m mem.GuestMem, ra, rb, rd uint32, update, signed bool) error {
	addr := eax(regs, ra, rb, update)
	v, err := m.Read16(addr)
	if err != nil {
		return err
	}
	if signed {
		regs.GPR[rd] = uint32(int32(int16(v)))
	} else {
		regs.GPR[rd] = uint32(v)
	}
	if update {
		regs.GPR[ra] = addr
	}
	return nil
}

func (r *Reference) store32(regs *state.Regs, m mem.GuestMem, ra, rd uint32, d int32, update bool) error {
	addr := ea(regs, ra, d, update)
	if err := m.Write32(addr, regs.GPR[rd]); err != nil {
		return err
	}
	if update {
		regs.GPR[ra] = addr
	}
	return nil
}

func (r *Reference) store8(regs *state.Regs, m mem.GuestMem, ra, rd uint32, d int32, update bool) error {
	addr := ea(regs, ra, d, update)
	if err := m.Write8(addr, uint8(regs.GPR[rd])); err != nil {
		return err
	}
	if update {
		regs.GPR[ra] = addr
	}
	return nil
}

func (r *Reference) store16(regs *state.Regs, m mem.GuestMem, ra, rd uint32, d int32, update bool) error {
	addr := ea(regs, ra, d, update)
	if err := m.Write16(addr, uint16(regs.GPR[rd])); err != nil {
		return err
	}
	if update {
		regs.GPR[ra] = addr
	}
	return nil
}

func (r *Reference) store32x(regs *state.Regs, m mem.GuestMem, ra, rb, rd uint32, update bool) error {
	addr := eax(regs, ra, rb, update)
	if err := m.Write32(addr, regs.GPR[rd]); err != nil {
		return err
	}
	if update {
		regs.GPR[ra] = addr
	}
	return nil
}

func (r *Reference) store8x(regs *state.Regs, m mem.GuestMem, ra, rb, rd uint32, update bool) error {
	addr := eax(regs, ra, rb, update)
	if err := m.Write8(addr, uint8(regs.GPR[rd])); err != nil {
		return err
	}
	if update {
		regs.GPR[ra] = addr
	}
	return nil
}

func (r *Reference) store16x(regs *state.Regs, m mem.GuestMem, ra, rb, rd uint32, update bool) error {
	addr := eax(regs, ra, rb, update)
	if err := m.Write16(addr, uint16(regs.GPR[rd])); err != nil {
		return err
	}
	if update {
		regs.GPR[ra] = addr
	}
	return nil
}
