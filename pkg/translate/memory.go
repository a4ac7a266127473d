package translate

import (
	"fmt"

	"gohack/pkg/vm"
)

// recipeKind selects how a segment access reaches its cell.
type recipeKind int

const (
	// recipeIndirect adds the index to a movable base register.
	recipeIndirect recipeKind = iota
	// recipeFixed names one of the fixed machine registers directly.
	recipeFixed
	// recipeSymbolic names a per-file static symbol.
	recipeSymbolic
	// recipeLiteral is the constant segment: the index is the operand.
	recipeLiteral
)

// recipe is the addressing plan for one segment access.
type recipe struct {
	kind   recipeKind
	base   string // dedicated base register, recipeIndirect
	symbol string // register or static symbol, recipeFixed/recipeSymbolic
	index  int
}

// Fixed register files for the pointer and temp segments. Pointer 0 and 1
// alias the THIS and THAT base registers at R3 and R4; temp occupies
// R5..R12.
const (
	pointerBase = 3
	tempBase    = 5
)

// resolve maps a segment and index to an addressing recipe. Inputs are
// pre-validated, so every segment resolves; there is no error path.
func resolve(seg vm.Segment, index int, file string) recipe {
	switch seg {
	case vm.SegLocal:
		return recipe{kind: recipeIndirect, base: "LCL", index: index}
	case vm.SegArgument:
		return recipe{kind: recipeIndirect, base: "ARG", index: index}
	case vm.SegThis:
		return recipe{kind: recipeIndirect, base: "THIS", index: index}
	case vm.SegThat:
		return recipe{kind: recipeIndirect, base: "THAT", index: index}
	case vm.SegPointer:
		return recipe{kind: recipeFixed, symbol: fmt.Sprintf("R%d", pointerBase+index)}
	case vm.SegTemp:
		return recipe{kind: recipeFixed, symbol: fmt.Sprintf("R%d", tempBase+index)}
	case vm.SegStatic:
		return recipe{kind: recipeSymbolic, symbol: fmt.Sprintf("%s.%d", file, index)}
	case vm.SegConstant:
		return recipe{kind: recipeLiteral, index: index}
	}
	panic(fmt.Sprintf("unresolvable segment %d", seg))
}

// loadAddress emits instructions leaving A pointing at the resolved cell.
// Not valid for the constant segment.
func (t *Translator) loadAddress(r recipe) {
	switch r.kind {
	case recipeIndirect:
		t.line(fmt.Sprintf("@%d", r.index))
		t.line("D=A")
		t.line("@" + r.base)
		t.line("A=D+M")
	case recipeFixed, recipeSymbolic:
		t.line("@" + r.symbol)
	}
}

// emitPush loads the operand into D, stores it at the top of the stack and
// advances the stack pointer by one cell.
func (t *Translator) emitPush(c vm.Command) {
	t.comment("Push %s %d", c.Segment, c.Index)

	r := resolve(c.Segment, c.Index, c.File)
	if r.kind == recipeLiteral {
		t.line(fmt.Sprintf("@%d", r.index))
		t.line("D=A")
	} else {
		t.loadAddress(r)
		t.line("D=M")
	}

	t.line("@SP")
	t.line("M=M+1")
	t.line("A=M-1")
	t.line("M=D")
}

// emitPop stashes the destination address in R13 first, because retrieving
// the stack value needs both A and D. The stack pointer retreats by one
// cell and only the addressed destination cell changes.
func (t *Translator) emitPop(c vm.Command) {
	t.comment("Pop %s %d", c.Segment, c.Index)

	t.loadAddress(resolve(c.Segment, c.Index, c.File))
	t.line("D=A")
	t.line("@R13")
	t.line("M=D")

	t.line("@SP")
	t.line("M=M-1")
	t.line("A=M")
	t.line("D=M")

	t.line("@R13")
	t.line("A=M")
	t.line("M=D")
}
