package vm

import (
	"fmt"
	"strconv"
	"strings"
)

var commandKinds = map[string]Kind{
	"add":      KindArithmetic,
	"sub":      KindArithmetic,
	"neg":      KindArithmetic,
	"and":      KindArithmetic,
	"or":       KindArithmetic,
	"not":      KindArithmetic,
	"eq":       KindComparison,
	"gt":       KindComparison,
	"lt":       KindComparison,
	"push":     KindPush,
	"pop":      KindPop,
	"label":    KindLabel,
	"goto":     KindGoto,
	"if-goto":  KindIfGoto,
	"function": KindFunction,
	"call":     KindCall,
	"return":   KindReturn,
}

var arithOps = map[string]ArithOp{
	"add": Add,
	"sub": Sub,
	"neg": Neg,
	"and": And,
	"or":  Or,
	"not": Not,
}

var compareOps = map[string]CompareOp{
	"eq": EQ,
	"gt": GT,
	"lt": LT,
}

var segments = map[string]Segment{
	"local":    SegLocal,
	"argument": SegArgument,
	"this":     SegThis,
	"that":     SegThat,
	"static":   SegStatic,
	"constant": SegConstant,
	"pointer":  SegPointer,
	"temp":     SegTemp,
}

// LineError describes one rejected source line.
type LineError struct {
	File string
	Line int
	Text string
	Msg  string
}

func (e LineError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// Parse tokenizes and validates one source unit. fileName is the base name
// of the unit without extension; it scopes the static segment. Every line
// that is not a valid command is reported as a LineError, and parsing
// continues so all problems in the unit surface in one run.
func Parse(fileName, source string) ([]Command, []LineError) {
	var cmds []Command
	var errs []LineError

	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1

		line := raw
		if comment := strings.Index(line, "//"); comment >= 0 {
			line = line[:comment]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd, err := parseCommand(fileName, line)
		if err != nil {
			errs = append(errs, LineError{
				File: fileName,
				Line: lineNo,
				Text: strings.TrimSpace(raw),
				Msg:  err.Error(),
			})
			continue
		}
		cmds = append(cmds, cmd)
	}

	return cmds, errs
}

func parseCommand(fileName, line string) (Command, error) {
	words := strings.Fields(line)

	kind, ok := commandKinds[words[0]]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q", words[0])
	}

	switch kind {
	case KindArithmetic:
		if len(words) != 1 {
			return Command{}, fmt.Errorf("%s takes no arguments", words[0])
		}
		return Command{Kind: kind, Arith: arithOps[words[0]], File: fileName}, nil

	case KindComparison:
		if len(words) != 1 {
			return Command{}, fmt.Errorf("%s takes no arguments", words[0])
		}
		return Command{Kind: kind, Compare: compareOps[words[0]], File: fileName}, nil

	case KindPush, KindPop:
		if len(words) != 3 {
			return Command{}, fmt.Errorf("%s expects a segment and an index", words[0])
		}
		seg, ok := segments[words[1]]
		if !ok {
			return Command{}, fmt.Errorf("unknown segment %q", words[1])
		}
		index, err := strconv.Atoi(words[2])
		if err != nil || index < 0 {
			return Command{}, fmt.Errorf("index must be a non-negative integer, got %q", words[2])
		}
		if err := checkSegmentRange(kind, seg, index); err != nil {
			return Command{}, err
		}
		return Command{Kind: kind, Segment: seg, Index: index, File: fileName}, nil

	case KindLabel, KindGoto, KindIfGoto:
		if len(words) != 2 {
			return Command{}, fmt.Errorf("%s expects a label name", words[0])
		}
		return Command{Kind: kind, Name: words[1], File: fileName}, nil

	case KindFunction, KindCall:
		if len(words) != 3 {
			return Command{}, fmt.Errorf("%s expects a name and a count", words[0])
		}
		count, err := strconv.Atoi(words[2])
		if err != nil || count < 0 {
			return Command{}, fmt.Errorf("count must be a non-negative integer, got %q", words[2])
		}
		return Command{Kind: kind, Name: words[1], Count: count, File: fileName}, nil

	case KindReturn:
		if len(words) != 1 {
			return Command{}, fmt.Errorf("return takes no arguments")
		}
		return Command{Kind: kind, File: fileName}, nil
	}

	return Command{}, fmt.Errorf("unknown command %q", words[0])
}

// checkSegmentRange enforces the per-segment index ranges so the code
// generator downstream never sees an out-of-range access.
func checkSegmentRange(kind Kind, seg Segment, index int) error {
	switch seg {
	case SegConstant:
		if kind == KindPop {
			return fmt.Errorf("cannot pop to the constant segment")
		}
		if index > 32767 {
			return fmt.Errorf("constant %d does not fit in 15 bits", index)
		}
	case SegPointer:
		if index > 1 {
			return fmt.Errorf("pointer index must be 0 or 1, got %d", index)
		}
	case SegTemp:
		if index > 7 {
			return fmt.Errorf("temp index must be in 0..7, got %d", index)
		}
	}
	return nil
}
