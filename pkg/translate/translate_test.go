package translate

import (
	"reflect"
	"strings"
	"testing"

	"gohack/pkg/vm"
)

func TestPushConstantSequence(t *testing.T) {
	tr := New()
	tr.Command(vm.Command{Kind: vm.KindPush, Segment: vm.SegConstant, Index: 7})

	want := []string{
		"\t\t//Push constant 7",
		"@7",
		"D=A",
		"@SP",
		"M=M+1",
		"A=M-1",
		"M=D",
	}
	if !reflect.DeepEqual(tr.Lines(), want) {
		t.Errorf("got %q; want %q", tr.Lines(), want)
	}
}

func TestPushIndirectSequence(t *testing.T) {
	tr := New()
	tr.Command(vm.Command{Kind: vm.KindPush, Segment: vm.SegLocal, Index: 3})

	want := []string{
		"\t\t//Push local 3",
		"@3",
		"D=A",
		"@LCL",
		"A=D+M",
		"D=M",
		"@SP",
		"M=M+1",
		"A=M-1",
		"M=D",
	}
	if !reflect.DeepEqual(tr.Lines(), want) {
		t.Errorf("got %q; want %q", tr.Lines(), want)
	}
}

func TestPopSequence(t *testing.T) {
	tr := New()
	tr.Command(vm.Command{Kind: vm.KindPop, Segment: vm.SegArgument, Index: 2})

	want := []string{
		"\t\t//Pop argument 2",
		"@2",
		"D=A",
		"@ARG",
		"A=D+M",
		"D=A",
		"@R13",
		"M=D",
		"@SP",
		"M=M-1",
		"A=M",
		"D=M",
		"@R13",
		"A=M",
		"M=D",
	}
	if !reflect.DeepEqual(tr.Lines(), want) {
		t.Errorf("got %q; want %q", tr.Lines(), want)
	}
}

func TestResolveRecipes(t *testing.T) {
	tests := []struct {
		seg   vm.Segment
		index int
		file  string
		want  recipe
	}{
		{vm.SegLocal, 4, "Main", recipe{kind: recipeIndirect, base: "LCL", index: 4}},
		{vm.SegArgument, 0, "Main", recipe{kind: recipeIndirect, base: "ARG", index: 0}},
		{vm.SegThis, 1, "Main", recipe{kind: recipeIndirect, base: "THIS", index: 1}},
		{vm.SegThat, 2, "Main", recipe{kind: recipeIndirect, base: "THAT", index: 2}},
		{vm.SegPointer, 0, "Main", recipe{kind: recipeFixed, symbol: "R3"}},
		{vm.SegPointer, 1, "Main", recipe{kind: recipeFixed, symbol: "R4"}},
		{vm.SegTemp, 0, "Main", recipe{kind: recipeFixed, symbol: "R5"}},
		{vm.SegTemp, 7, "Main", recipe{kind: recipeFixed, symbol: "R12"}},
		{vm.SegStatic, 3, "Main", recipe{kind: recipeSymbolic, symbol: "Main.3"}},
		{vm.SegStatic, 3, "Other", recipe{kind: recipeSymbolic, symbol: "Other.3"}},
		{vm.SegConstant, 42, "Main", recipe{kind: recipeLiteral, index: 42}},
	}

	for _, tc := range tests {
		got := resolve(tc.seg, tc.index, tc.file)
		if got != tc.want {
			t.Errorf("resolve(%v, %d, %q) = %+v; want %+v", tc.seg, tc.index, tc.file, got, tc.want)
		}
	}
}

func TestArithmeticSequences(t *testing.T) {
	binary := map[vm.ArithOp]string{
		vm.Add: "M=D+M",
		vm.Sub: "M=M-D",
		vm.And: "M=D&M",
		vm.Or:  "M=D|M",
	}
	for op, final := range binary {
		tr := New()
		tr.Command(vm.Command{Kind: vm.KindArithmetic, Arith: op})
		lines := tr.Lines()
		want := []string{"@SP", "M=M-1", "A=M", "D=M", "A=A-1", final}
		if !reflect.DeepEqual(lines[1:], want) {
			t.Errorf("%v: got %q; want %q", op, lines[1:], want)
		}
	}

	unary := map[vm.ArithOp]string{
		vm.Neg: "M=-M",
		vm.Not: "M=!M",
	}
	for op, final := range unary {
		tr := New()
		tr.Command(vm.Command{Kind: vm.KindArithmetic, Arith: op})
		lines := tr.Lines()
		want := []string{"@SP", "A=M-1", final}
		if !reflect.DeepEqual(lines[1:], want) {
			t.Errorf("%v: got %q; want %q", op, lines[1:], want)
		}
	}
}

func TestComparisonSequence(t *testing.T) {
	tr := New()
	tr.Command(vm.Command{Kind: vm.KindComparison, Compare: vm.GT})

	want := []string{
		"\t\t//Stack Compare gt",
		"@SP",
		"M=M-1",
		"A=M",
		"D=M",
		"A=A-1",
		"D=M-D",
		"M=-1",
		"@COMPARE:1",
		"D;JGT",
		"@SP",
		"A=M-1",
		"M=0",
		"(COMPARE:1)",
	}
	if !reflect.DeepEqual(tr.Lines(), want) {
		t.Errorf("got %q; want %q", tr.Lines(), want)
	}
}

func TestComparisonLabelsNeverRepeat(t *testing.T) {
	tr := New()
	// Comparisons spread over different functions still draw from one
	// counter.
	tr.Command(vm.Command{Kind: vm.KindFunction, Name: "A.f"})
	tr.Command(vm.Command{Kind: vm.KindComparison, Compare: vm.EQ})
	tr.Command(vm.Command{Kind: vm.KindComparison, Compare: vm.LT})
	tr.Command(vm.Command{Kind: vm.KindFunction, Name: "B.g"})
	tr.Command(vm.Command{Kind: vm.KindComparison, Compare: vm.GT})

	seen := map[string]bool{}
	for _, line := range tr.Lines() {
		if strings.HasPrefix(line, "(COMPARE:") {
			if seen[line] {
				t.Fatalf("label %q emitted twice", line)
			}
			seen[line] = true
		}
	}
	if len(seen) != 3 {
		t.Errorf("got %d distinct comparison labels; want 3", len(seen))
	}
}

func TestReturnLabelsNeverRepeat(t *testing.T) {
	tr := New()
	tr.Command(vm.Command{Kind: vm.KindCall, Name: "Math.max", Count: 2})
	tr.Command(vm.Command{Kind: vm.KindCall, Name: "Math.max", Count: 2})
	tr.Command(vm.Command{Kind: vm.KindCall, Name: "Other.f", Count: 0})

	var labels []string
	for _, line := range tr.Lines() {
		if strings.HasPrefix(line, "(") && strings.Contains(line, ".RETURN:") {
			labels = append(labels, line[:strings.Index(line, ")")+1])
		}
	}
	want := []string{"(Math.max.RETURN:1)", "(Math.max.RETURN:2)", "(Other.f.RETURN:3)"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("return labels = %q; want %q", labels, want)
	}
}

func TestLabelScoping(t *testing.T) {
	tr := New()
	tr.Command(vm.Command{Kind: vm.KindFunction, Name: "Foo.bar"})
	tr.Command(vm.Command{Kind: vm.KindLabel, Name: "WHILE"})
	tr.Command(vm.Command{Kind: vm.KindGoto, Name: "WHILE"})
	tr.Command(vm.Command{Kind: vm.KindIfGoto, Name: "WHILE"})

	joined := strings.Join(tr.Lines(), "\n")
	if !strings.Contains(joined, "(Foo.bar$WHILE)") {
		t.Error("label definition not scoped by enclosing function")
	}
	if !strings.Contains(joined, "@Foo.bar$WHILE") {
		t.Error("jump target not scoped by enclosing function")
	}
}

func TestCallDoesNotChangeLabelScope(t *testing.T) {
	tr := New()
	tr.Command(vm.Command{Kind: vm.KindFunction, Name: "Foo.bar"})
	tr.Command(vm.Command{Kind: vm.KindCall, Name: "Other.f", Count: 0})
	tr.Command(vm.Command{Kind: vm.KindLabel, Name: "AFTER"})

	joined := strings.Join(tr.Lines(), "\n")
	if !strings.Contains(joined, "(Foo.bar$AFTER)") {
		t.Error("a call site must not change the scope of later labels")
	}
}

func TestFunctionLocals(t *testing.T) {
	tr := New()
	tr.Command(vm.Command{Kind: vm.KindFunction, Name: "Foo.bar", Count: 3})

	zeroes := 0
	for _, line := range tr.Lines() {
		if line == "M=0" {
			zeroes++
		}
	}
	if zeroes != 3 {
		t.Errorf("emitted %d local initializers; want 3", zeroes)
	}
}

func TestCallFrameSequence(t *testing.T) {
	tr := New()
	tr.Command(vm.Command{Kind: vm.KindCall, Name: "Math.max", Count: 2})
	joined := strings.Join(tr.Lines(), "\n")

	// The four caller registers are saved in order after the return
	// address push.
	order := []string{"@Math.max.RETURN:1", "@LCL", "@ARG", "@THIS", "@THAT", "@5", "@2", "@Math.max\n0;JMP"}
	pos := -1
	for _, want := range order {
		next := strings.Index(joined, want)
		if next < 0 || next < pos {
			t.Fatalf("call sequence out of order: %q missing or misplaced\n%s", want, joined)
		}
		pos = next
	}
}

func TestBootstrap(t *testing.T) {
	tr := New()
	tr.Bootstrap()
	lines := tr.Lines()

	want := []string{"@256", "D=A", "@SP", "M=D"}
	if !reflect.DeepEqual(lines[:4], want) {
		t.Errorf("bootstrap prologue = %q; want %q", lines[:4], want)
	}

	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "@Sys.init\n0;JMP") {
		t.Error("bootstrap does not jump to Sys.init")
	}
	// The entry function never returns; its return label definition is
	// dropped.
	if last := lines[len(lines)-1]; last != "0;JMP" {
		t.Errorf("last bootstrap line = %q; want the jump, with the return label dropped", last)
	}
}

func TestProgramBootstrapsFirst(t *testing.T) {
	cmds := []vm.Command{
		{Kind: vm.KindFunction, Name: "Sys.init", Count: 0},
	}
	lines := Program(cmds)
	if lines[0] != "@256" {
		t.Errorf("program does not start with the bootstrap, got %q", lines[0])
	}
}
