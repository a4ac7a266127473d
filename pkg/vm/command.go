package vm

// Kind tags the variant of a VM command.
type Kind int

const (
	KindArithmetic Kind = iota
	KindComparison
	KindPush
	KindPop
	KindLabel
	KindGoto
	KindIfGoto
	KindFunction
	KindCall
	KindReturn
)

// ArithOp enumerates the arithmetic and logic operations.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Neg
	And
	Or
	Not
)

// CompareOp enumerates the relational operations.
type CompareOp int

const (
	EQ CompareOp = iota
	GT
	LT
)

// Segment enumerates the memory segments reachable by push and pop.
type Segment int

const (
	SegLocal Segment = iota
	SegArgument
	SegThis
	SegThat
	SegStatic
	SegConstant
	SegPointer
	SegTemp
)

// Command is one validated VM command. Kind selects which of the other
// fields are meaningful.
type Command struct {
	Kind    Kind
	Arith   ArithOp   // KindArithmetic
	Compare CompareOp // KindComparison
	Segment Segment   // KindPush, KindPop
	Index   int       // KindPush, KindPop
	Name    string    // KindLabel, KindGoto, KindIfGoto, KindFunction, KindCall
	Count   int       // locals for KindFunction, arguments for KindCall
	File    string    // owning source unit, scopes the static segment
}

// EntryFunction is the function every complete program must define. The
// bootstrap sequence calls it with zero arguments.
const EntryFunction = "Sys.init"

// HasEntry reports whether the command stream defines the program entry
// function.
func HasEntry(cmds []Command) bool {
	for _, c := range cmds {
		if c.Kind == KindFunction && c.Name == EntryFunction {
			return true
		}
	}
	return false
}

func (s Segment) String() string {
	switch s {
	case SegLocal:
		return "local"
	case SegArgument:
		return "argument"
	case SegThis:
		return "this"
	case SegThat:
		return "that"
	case SegStatic:
		return "static"
	case SegConstant:
		return "constant"
	case SegPointer:
		return "pointer"
	case SegTemp:
		return "temp"
	}
	return "invalid"
}

func (op ArithOp) String() string {
	switch op {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Neg:
		return "neg"
	case And:
		return "and"
	case Or:
		return "or"
	case Not:
		return "not"
	}
	return "invalid"
}

func (op CompareOp) String() string {
	switch op {
	case EQ:
		return "eq"
	case GT:
		return "gt"
	case LT:
		return "lt"
	}
	return "invalid"
}
