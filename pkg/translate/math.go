package translate

import "gohack/pkg/vm"

// emitArithmetic rewrites the top of the stack in place. Unary operations
// leave the stack pointer alone; binary operations pop the top operand
// into D and combine it with the new top cell, for a net change of one
// cell. Sub computes next-to-top minus top.
func (t *Translator) emitArithmetic(op vm.ArithOp) {
	t.comment("Stack %s", op)
	t.line("@SP")

	if op == vm.Neg || op == vm.Not {
		t.line("A=M-1")
		if op == vm.Neg {
			t.line("M=-M")
		} else {
			t.line("M=!M")
		}
		return
	}

	t.line("M=M-1")
	t.line("A=M")
	t.line("D=M")
	t.line("A=A-1")

	switch op {
	case vm.Add:
		t.line("M=D+M")
	case vm.Sub:
		t.line("M=M-D")
	case vm.And:
		t.line("M=D&M")
	case vm.Or:
		t.line("M=D|M")
	}
}

// emitComparison computes next-to-top minus top into D, optimistically
// writes true (all bits set) to the result cell, then branches over the
// false overwrite when the relation holds. Every comparison gets a fresh
// label from the allocator.
func (t *Translator) emitComparison(op vm.CompareOp) {
	t.comment("Stack Compare %s", op)

	t.line("@SP")
	t.line("M=M-1")
	t.line("A=M")
	t.line("D=M")
	t.line("A=A-1")
	t.line("D=M-D")

	t.line("M=-1")

	label := t.labels.compareLabel()
	t.line("@" + label)
	switch op {
	case vm.EQ:
		t.line("D;JEQ")
	case vm.GT:
		t.line("D;JGT")
	case vm.LT:
		t.line("D;JLT")
	}

	t.line("@SP")
	t.line("A=M-1")
	t.line("M=0")

	t.line("(" + label + ")")
}
