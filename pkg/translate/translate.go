// Package translate turns a validated stream of VM commands into Hack
// assembly. It never inspects raw source text and has no error path: the
// vm package guarantees every command it hands over is well formed.
package translate

import (
	"fmt"

	"gohack/pkg/vm"
)

// labelAllocator issues globally unique symbolic names for comparison
// branches and call-site return targets. Both counters are monotonic and
// never reset, so no label repeats anywhere in a program, across functions
// or source units.
type labelAllocator struct {
	compares int
	calls    int
}

func (la *labelAllocator) compareLabel() string {
	la.compares++
	return fmt.Sprintf("COMPARE:%d", la.compares)
}

func (la *labelAllocator) returnLabel(callee string) string {
	la.calls++
	return fmt.Sprintf("%s.RETURN:%d", callee, la.calls)
}

// Translator accumulates output lines for one program. The only state
// threaded between commands is the label allocator and the name of the
// enclosing function, which scopes label, goto and if-goto targets.
type Translator struct {
	out    []string
	labels labelAllocator

	// currentFunction is updated by function definitions only; until the
	// first one it carries a placeholder so flow labels stay well formed.
	currentFunction string
}

func New() *Translator {
	return &Translator{currentFunction: "NONE"}
}

// Lines returns everything emitted so far, one output line per element.
func (t *Translator) Lines() []string {
	return t.out
}

func (t *Translator) line(s string) {
	t.out = append(t.out, s)
}

func (t *Translator) comment(format string, args ...any) {
	t.line("\t\t//" + fmt.Sprintf(format, args...))
}

// Program emits the bootstrap sequence followed by the translation of
// every command in order, and returns the complete output.
func Program(cmds []vm.Command) []string {
	t := New()
	t.Bootstrap()
	for _, c := range cmds {
		t.Command(c)
	}
	return t.Lines()
}

// Bootstrap sets the stack pointer to 256 and calls the program entry
// function with zero arguments. The entry function never returns, so the
// return label definition of that call is dropped; the pushed return
// address remains on the stack but is never used.
func (t *Translator) Bootstrap() {
	t.line("@256")
	t.line("D=A")
	t.line("@SP")
	t.line("M=D")

	t.emitCall(vm.EntryFunction, 0)
	t.out = t.out[:len(t.out)-1]
}

// Command appends the translation of a single command to the output.
func (t *Translator) Command(c vm.Command) {
	switch c.Kind {
	case vm.KindArithmetic:
		t.emitArithmetic(c.Arith)
	case vm.KindComparison:
		t.emitComparison(c.Compare)
	case vm.KindPush:
		t.emitPush(c)
	case vm.KindPop:
		t.emitPop(c)
	case vm.KindLabel:
		t.line("")
		t.line("(" + t.scoped(c.Name) + ")")
		t.line("")
	case vm.KindGoto:
		target := t.scoped(c.Name)
		t.line("@" + target + "\t\t//Goto label " + target)
		t.line("0;JMP")
	case vm.KindIfGoto:
		t.emitIfGoto(c.Name)
	case vm.KindFunction:
		t.currentFunction = c.Name
		t.emitFunction(c.Name, c.Count)
	case vm.KindCall:
		t.emitCall(c.Name, c.Count)
	case vm.KindReturn:
		t.emitReturn()
	}
}

// scoped namespaces a flow-control label by the enclosing function, so the
// same label text in two functions never collides.
func (t *Translator) scoped(name string) string {
	return t.currentFunction + "$" + name
}

// emitIfGoto pops the top stack cell and jumps to the scoped label when the
// popped value is non-zero.
func (t *Translator) emitIfGoto(name string) {
	target := t.scoped(name)
	t.comment("If-Goto label %s", target)
	t.line("@SP")
	t.line("M=M-1")
	t.line("A=M")
	t.line("D=M")
	t.line("@" + target)
	t.line("D;JNE")
}

// emitFunction defines the entry label and zeroes the callee's local
// cells, walking the stack pointer past them.
func (t *Translator) emitFunction(name string, localCount int) {
	t.line("")
	t.line(fmt.Sprintf("(%s)\t\t//Function definition, %d local variables", name, localCount))

	t.line("@SP")
	t.line("A=M")
	for i := 0; i < localCount; i++ {
		t.line("M=0")
		t.line("A=A+1")
	}
	t.line("D=A")
	t.line("@SP")
	t.line("M=D")
}

// emitCall pushes the caller frame (return address, then LCL, ARG, THIS,
// THAT), repositions ARG and LCL for the callee, jumps to the callee's
// entry label and finally defines the return label as the last line.
func (t *Translator) emitCall(callee string, argCount int) {
	returnLabel := t.labels.returnLabel(callee)
	header := fmt.Sprintf("\t\t//Call function %s with %d arguments", callee, argCount)
	t.line(header)

	// Push the return address.
	t.line("@" + returnLabel)
	t.line("D=A")
	t.line("@SP")
	t.line("M=M+1")
	t.line("A=M-1")
	t.line("M=D")

	t.pushRegister("LCL")
	t.pushRegister("ARG")
	t.pushRegister("THIS")
	t.pushRegister("THAT")

	// ARG = SP - 5 - argCount: the first argument sits below the five
	// frame cells just pushed.
	t.line("@SP")
	t.line("D=M")
	t.line("@5")
	t.line("D=D-A")
	t.line(fmt.Sprintf("@%d", argCount))
	t.line("D=D-A")
	t.line("@ARG")
	t.line("M=D")

	// LCL = SP: the callee's locals grow from here.
	t.line("@SP")
	t.line("D=M")
	t.line("@LCL")
	t.line("M=D")

	t.line("@" + callee)
	t.line("0;JMP")

	t.line("(" + returnLabel + ")" + header)
}

// pushRegister pushes the value held in a dedicated base register.
func (t *Translator) pushRegister(register string) {
	t.line("@" + register)
	t.line("D=M")
	t.line("@SP")
	t.line("M=M+1")
	t.line("A=M-1")
	t.line("M=D")
}

// emitReturn unwinds one frame. Everything is recovered from fixed offsets
// below LCL, reading each saved value before any register it depends on is
// overwritten. The return address goes through R13 because LCL itself is
// restored before the final jump.
func (t *Translator) emitReturn() {
	t.comment("Return control to calling function")

	// Cache the return address, 5 cells below LCL, in R13.
	t.line("@5")
	t.line("D=A")
	t.line("@LCL")
	t.line("A=M-D")
	t.line("D=M")
	t.line("@R13")
	t.line("M=D")

	// Relocate the return value to ARG, the caller's next top of stack.
	t.line("@SP")
	t.line("A=M-1")
	t.line("D=M")
	t.line("@ARG")
	t.line("A=M")
	t.line("M=D")

	// SP = ARG + 1.
	t.line("@ARG")
	t.line("D=M+1")
	t.line("@SP")
	t.line("M=D")

	// Restore THAT, THIS, ARG, LCL from 1..4 cells below LCL.
	t.line("@LCL")
	t.line("A=M-1")
	t.line("D=M")
	t.line("@THAT")
	t.line("M=D")

	t.line("@2")
	t.line("D=A")
	t.line("@LCL")
	t.line("A=M-D")
	t.line("D=M")
	t.line("@THIS")
	t.line("M=D")

	t.line("@3")
	t.line("D=A")
	t.line("@LCL")
	t.line("A=M-D")
	t.line("D=M")
	t.line("@ARG")
	t.line("M=D")

	t.line("@4")
	t.line("D=A")
	t.line("@LCL")
	t.line("A=M-D")
	t.line("D=M")
	t.line("@LCL")
	t.line("M=D")

	t.line("@R13")
	t.line("A=M")
	t.line("0;JMP")
}
