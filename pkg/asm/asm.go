// Package asm assembles Hack assembly source into 16-bit machine words.
// It is a classic two-pass assembler: pass 1 records label addresses,
// pass 2 encodes instructions and allocates variables.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// compCodes maps every comp mnemonic to its 7-bit a+cccccc field.
var compCodes = map[string]uint16{
	"0":   0x2A,
	"1":   0x3F,
	"-1":  0x3A,
	"D":   0x0C,
	"A":   0x30,
	"!D":  0x0D,
	"!A":  0x31,
	"-D":  0x0F,
	"-A":  0x33,
	"D+1": 0x1F,
	"A+1": 0x37,
	"D-1": 0x0E,
	"A-1": 0x32,
	"D+A": 0x02,
	"D-A": 0x13,
	"A-D": 0x07,
	"D&A": 0x00,
	"D|A": 0x15,
	"M":   0x70,
	"!M":  0x71,
	"-M":  0x73,
	"M+1": 0x77,
	"M-1": 0x72,
	"D+M": 0x42,
	"D-M": 0x53,
	"M-D": 0x47,
	"D&M": 0x40,
	"D|M": 0x55,
}

var destCodes = map[string]uint16{
	"":    0,
	"M":   1,
	"D":   2,
	"MD":  3,
	"A":   4,
	"AM":  5,
	"AD":  6,
	"AMD": 7,
}

var jumpCodes = map[string]uint16{
	"":    0,
	"JGT": 1,
	"JEQ": 2,
	"JGE": 3,
	"JLT": 4,
	"JNE": 5,
	"JLE": 6,
	"JMP": 7,
}

// predefinedSymbols holds the fixed register names and memory map anchors
// every program can reference without declaring.
var predefinedSymbols = map[string]uint16{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"SCREEN": 16384,
	"KBD":    24576,
	"R0":     0,
	"R1":     1,
	"R2":     2,
	"R3":     3,
	"R4":     4,
	"R5":     5,
	"R6":     6,
	"R7":     7,
	"R8":     8,
	"R9":     9,
	"R10":    10,
	"R11":    11,
	"R12":    12,
	"R13":    13,
	"R14":    14,
	"R15":    15,
}

// variableBase is the first RAM address handed to undeclared symbols.
const variableBase = 16

type Assembler struct {
	labels    map[string]uint16
	variables map[string]uint16
	nextVar   uint16
}

type parsedLine struct {
	lineNo int
	label  string // text between parentheses, "" if none
	instr  string // instruction text with comments and spaces removed
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels:    make(map[string]uint16),
		variables: make(map[string]uint16),
		nextVar:   variableBase,
	}
}

// Assemble translates source into machine words, also returning a source
// map from instruction address to 1-based source line number.
func Assemble(code string) ([]uint16, map[uint16]int, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) ([]uint16, map[uint16]int, error) {
	lines := strings.Split(code, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, nil, err
	}

	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	var address uint32

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return err
		}

		if p.label != "" {
			if address > 0x7FFF {
				return fmt.Errorf("label '%s' on line %d points past addressable ROM", p.label, lineNo)
			}
			if _, exists := a.labels[p.label]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", p.label, lineNo)
			}
			a.labels[p.label] = uint16(address)
			continue
		}

		if p.instr == "" {
			continue
		}

		if address >= 0x8000 {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
		address++
	}

	return nil
}

func (a *Assembler) pass2(lines []string) ([]uint16, map[uint16]int, error) {
	program := make([]uint16, 0)
	sourceMap := make(map[uint16]int)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		if p.instr == "" {
			continue
		}

		sourceMap[uint16(len(program))] = lineNo

		var word uint16
		if strings.HasPrefix(p.instr, "@") {
			word, err = a.encodeAddress(p.instr[1:], lineNo)
		} else {
			word, err = encodeCompute(p.instr, lineNo)
		}
		if err != nil {
			return nil, nil, err
		}
		program = append(program, word)
	}

	return program, sourceMap, nil
}

// encodeAddress resolves the operand of an A-instruction: a literal, a
// label, a predefined symbol, or a variable allocated on first use.
func (a *Assembler) encodeAddress(operand string, lineNo int) (uint16, error) {
	if operand == "" {
		return 0, fmt.Errorf("empty @ operand on line %d", lineNo)
	}

	if unicode.IsDigit(rune(operand[0])) {
		value, err := strconv.ParseUint(operand, 10, 16)
		if err != nil || value > 0x7FFF {
			return 0, fmt.Errorf("address out of range on line %d: %s", lineNo, operand)
		}
		return uint16(value), nil
	}

	if !isSymbol(operand) {
		return 0, fmt.Errorf("invalid symbol '%s' on line %d", operand, lineNo)
	}

	if addr, ok := a.labels[operand]; ok {
		return addr, nil
	}
	if addr, ok := predefinedSymbols[operand]; ok {
		return addr, nil
	}
	if addr, ok := a.variables[operand]; ok {
		return addr, nil
	}

	if a.nextVar > 0x3FFF {
		return 0, fmt.Errorf("variable '%s' on line %d exceeds data memory", operand, lineNo)
	}
	addr := a.nextVar
	a.variables[operand] = addr
	a.nextVar++
	return addr, nil
}

// encodeCompute encodes a dest=comp;jump instruction. Both the dest and
// jump parts are optional.
func encodeCompute(instr string, lineNo int) (uint16, error) {
	dest := ""
	jump := ""
	comp := instr

	if eq := strings.IndexByte(comp, '='); eq >= 0 {
		dest = comp[:eq]
		comp = comp[eq+1:]
	}
	if semi := strings.IndexByte(comp, ';'); semi >= 0 {
		jump = comp[semi+1:]
		comp = comp[:semi]
	}

	destBits, ok := destCodes[dest]
	if !ok {
		return 0, fmt.Errorf("invalid destination '%s' on line %d", dest, lineNo)
	}
	compBits, ok := compCodes[comp]
	if !ok {
		return 0, fmt.Errorf("invalid computation '%s' on line %d", comp, lineNo)
	}
	jumpBits, ok := jumpCodes[jump]
	if !ok {
		return 0, fmt.Errorf("invalid jump '%s' on line %d", jump, lineNo)
	}

	return 0xE000 | compBits<<6 | destBits<<3 | jumpBits, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := stripComments(raw)
	line = strings.TrimSpace(line)
	if line == "" {
		return p, nil
	}

	if strings.HasPrefix(line, "(") {
		closing := strings.IndexByte(line, ')')
		if closing < 0 || strings.TrimSpace(line[closing+1:]) != "" {
			return p, fmt.Errorf("malformed label on line %d", lineNo)
		}
		label := strings.TrimSpace(line[1:closing])
		if !isSymbol(label) {
			return p, fmt.Errorf("invalid label '%s' on line %d", label, lineNo)
		}
		p.label = label
		return p, nil
	}

	// Whitespace inside an instruction is insignificant.
	p.instr = strings.Join(strings.Fields(line), "")
	return p, nil
}

func stripComments(line string) string {
	if cut := strings.Index(line, "//"); cut >= 0 {
		return line[:cut]
	}
	return line
}

// isSymbol reports whether s is a valid Hack symbol: letters, digits and
// the characters _ . $ :, not starting with a digit.
func isSymbol(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLetter(r):
		case unicode.IsDigit(r):
			if i == 0 {
				return false
			}
		case r == '_' || r == '.' || r == '$' || r == ':':
		default:
			return false
		}
	}
	return true
}
