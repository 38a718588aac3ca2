package bytecode

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable listing of the program, one
// instruction per line with its index. String pushes echo the pooled
// string for readability.
func (p *Program) Disassemble(w io.Writer) {
	for i, in := range p.Code {
		switch {
		case in.Op == OpPushString:
			idx := int(in.Operand)
			if idx >= 0 && idx < len(p.Strings) {
				fmt.Fprintf(w, "%04d %-14s %d (%q)\n", i, in.Op, idx, p.Strings[idx])
			} else {
				fmt.Fprintf(w, "%04d %-14s %d (?)\n", i, in.Op, idx)
			}
		case in.Op == OpPushFloat:
			fmt.Fprintf(w, "%04d %-14s %g\n", i, in.Op, in.Operand)
		case in.Op.HasOperand():
			fmt.Fprintf(w, "%04d %-14s %d\n", i, in.Op, int(in.Operand))
		default:
			fmt.Fprintf(w, "%04d %s\n", i, in.Op)
		}
	}
}
