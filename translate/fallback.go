package translate

// compileFallback handles any instruction translateOne declined.
// ctx.PCOffset already counts this instruction; back it out so the
// flush below catches the host PC up to (not past) ctx.DPC, the
// address Execute needs to see before it runs — Execute applies its
// own +4 for non-branch mnemonics once it returns.
func (c *Compiler) compileFallback(ctx *Context) {
	ctx.PCOffset -= 4
	ctx.FlushPC()
	ctx.FlushCR()
	ctx.Emit.InvokeCPUIm(c.Fallback.Execute, ctx.Opcode)
}
