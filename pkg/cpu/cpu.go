// Package cpu emulates the Hack machine: a 16-bit Harvard architecture
// with a 32K-word instruction ROM, a flat data RAM holding the memory
// map (general RAM, screen, keyboard register), and three registers
// A, D and PC.
package cpu

import "fmt"

// Memory map addresses.
const (
	// StackBase is where the translator's bootstrap points the stack.
	StackBase = 256

	// ScreenBase is the first word of the memory-mapped display.
	// The screen is 512x256 monochrome pixels, one bit per pixel,
	// 32 words per row, 8192 words total.
	ScreenBase = 16384
	ScreenSize = 8192

	// KeyboardAddr holds the scan code of the currently pressed key.
	KeyboardAddr = 24576
)

// Dedicated RAM registers used by translated code.
const (
	RegSP   = 0
	RegLCL  = 1
	RegARG  = 2
	RegTHIS = 3
	RegTHAT = 4
	RegR13  = 13
	RegR14  = 14
	RegR15  = 15
)

// C-instruction fields.
const (
	destA = 1 << 5
	destD = 1 << 4
	destM = 1 << 3

	jumpLT = 1 << 2
	jumpEQ = 1 << 1
	jumpGT = 1 << 0
)

// CPU is one Hack machine. The zero value is a reset machine with empty
// ROM and RAM.
type CPU struct {
	A  uint16
	D  uint16
	PC uint16

	ROM [32768]uint16
	RAM [32768]uint16

	// Halted is set when the program reaches a terminal spin loop
	// (an unconditional jump back to itself).
	Halted bool

	// Cycles counts executed instructions since reset.
	Cycles uint64
}

func NewCPU() *CPU {
	return &CPU{}
}

// LoadROM copies a program into instruction memory starting at address 0
// and resets the program counter.
func (c *CPU) LoadROM(program []uint16) error {
	if len(program) > len(c.ROM) {
		return fmt.Errorf("program of %d words exceeds ROM size %d", len(program), len(c.ROM))
	}
	for i := range c.ROM {
		c.ROM[i] = 0
	}
	copy(c.ROM[:], program)
	c.PC = 0
	c.Halted = false
	return nil
}

// Step executes one instruction. It is a no-op once the machine halts.
func (c *CPU) Step() {
	if c.Halted {
		return
	}

	at := c.PC
	instr := c.ROM[at]
	c.PC++
	c.Cycles++

	if instr&0x8000 == 0 {
		// A-instruction: load the 15-bit literal.
		c.A = instr
		return
	}

	comp := c.alu(instr)

	// The M write targets the address held in A before any A update.
	addr := c.A

	if instr&destA != 0 {
		c.A = uint16(comp)
	}
	if instr&destD != 0 {
		c.D = uint16(comp)
	}
	if instr&destM != 0 {
		c.RAM[addr&0x7FFF] = uint16(comp)
	}

	jump := instr & 7
	taken := (jump&jumpLT != 0 && comp < 0) ||
		(jump&jumpEQ != 0 && comp == 0) ||
		(jump&jumpGT != 0 && comp > 0)
	if !taken {
		return
	}

	c.PC = c.A & 0x7FFF

	// A program that jumps unconditionally back to its own instruction,
	// or to the A-instruction immediately before it that produced the
	// target, can make no further progress. Translated end loops
	// ("label END / goto END") take exactly that shape.
	if jump == 7 {
		if c.PC == at {
			c.Halted = true
		}
		if c.PC == at-1 && c.ROM[c.PC] == c.PC {
			c.Halted = true
		}
	}
}

// alu evaluates the comp field of a C-instruction. Bit 12 selects A or M
// as the second operand; bits 11..6 are the zx, nx, zy, ny, f and no
// control bits of the Hack ALU.
func (c *CPU) alu(instr uint16) int16 {
	x := int16(c.D)
	var y int16
	if instr&(1<<12) != 0 {
		y = int16(c.RAM[c.A&0x7FFF])
	} else {
		y = int16(c.A)
	}

	if instr&(1<<11) != 0 {
		x = 0
	}
	if instr&(1<<10) != 0 {
		x = ^x
	}
	if instr&(1<<9) != 0 {
		y = 0
	}
	if instr&(1<<8) != 0 {
		y = ^y
	}

	var out int16
	if instr&(1<<7) != 0 {
		out = x + y
	} else {
		out = x & y
	}
	if instr&(1<<6) != 0 {
		out = ^out
	}
	return out
}

// RunFor executes at most maxCycles instructions, stopping early when the
// machine halts. It returns the number of instructions executed.
func (c *CPU) RunFor(maxCycles int) int {
	n := 0
	for ; n < maxCycles && !c.Halted; n++ {
		c.Step()
	}
	return n
}

// Run executes until the machine halts, up to a safety bound so a runaway
// program cannot spin forever in tests or tools.
func (c *CPU) Run() error {
	const bound = 50_000_000
	c.RunFor(bound)
	if !c.Halted {
		return fmt.Errorf("program still running after %d cycles", bound)
	}
	return nil
}

// SP returns the current stack pointer.
func (c *CPU) SP() uint16 {
	return c.RAM[RegSP]
}

// TopOfStack returns the value one cell below the stack pointer.
func (c *CPU) TopOfStack() uint16 {
	return c.RAM[(c.SP()-1)&0x7FFF]
}

// SetKey stores a scan code in the keyboard register; 0 means no key is
// pressed.
func (c *CPU) SetKey(code uint16) {
	c.RAM[KeyboardAddr] = code
}
