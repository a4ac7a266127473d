// desktop runs a translated program on the emulated Hack machine with
// the memory-mapped screen rendered in a window and the host keyboard
// wired to the keyboard register.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"gohack/pkg/asm"
	"gohack/pkg/cpu"
	"gohack/pkg/translate"
	"gohack/pkg/utils"
	"gohack/pkg/vm"
)

// statusHeight is the strip below the screen for the status line.
const statusHeight = 16

// Hack key codes for the non-printing keys.
var specialKeys = []struct {
	key  ebiten.Key
	code uint16
}{
	{ebiten.KeyEnter, 128},
	{ebiten.KeyBackspace, 129},
	{ebiten.KeyArrowLeft, 130},
	{ebiten.KeyArrowUp, 131},
	{ebiten.KeyArrowRight, 132},
	{ebiten.KeyArrowDown, 133},
	{ebiten.KeyHome, 134},
	{ebiten.KeyEnd, 135},
	{ebiten.KeyPageUp, 136},
	{ebiten.KeyPageDown, 137},
	{ebiten.KeyInsert, 138},
	{ebiten.KeyDelete, 139},
	{ebiten.KeyEscape, 140},
}

type Game struct {
	vm        *cpu.CPU
	screenImg *ebiten.Image // reused 512x256 canvas
	program   string

	stepsPerFrame int

	// heldChar keeps the last typed character in the keyboard register
	// while its physical key stays down.
	heldChar uint16
}

func (g *Game) Update() error {
	g.vm.SetKey(g.currentKey())

	for i := 0; i < g.stepsPerFrame; i++ {
		if g.vm.Halted {
			break
		}
		g.vm.Step()
	}

	return nil
}

// currentKey maps the host keyboard to the single scan code the machine
// exposes at the keyboard register.
func (g *Game) currentKey() uint16 {
	for _, sk := range specialKeys {
		if ebiten.IsKeyPressed(sk.key) {
			return sk.code
		}
	}

	if chars := ebiten.AppendInputChars(nil); len(chars) > 0 {
		g.heldChar = uint16(chars[len(chars)-1])
	}
	if g.heldChar != 0 && anyCharKeyPressed() {
		return g.heldChar
	}
	g.heldChar = 0
	return 0
}

func anyCharKeyPressed() bool {
	for k := ebiten.KeyA; k <= ebiten.KeyZ; k++ {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	for k := ebiten.KeyDigit0; k <= ebiten.KeyDigit9; k++ {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return ebiten.IsKeyPressed(ebiten.KeySpace)
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(cpu.ScreenWidth, cpu.ScreenHeight)
	}

	g.screenImg.WritePixels(g.vm.GetFramebufferRGBA())
	screen.DrawImage(g.screenImg, nil)

	status := fmt.Sprintf("%s  %d cycles", g.program, g.vm.Cycles)
	if g.vm.Halted {
		status += "  [halted]"
	}
	text.Draw(screen, status, basicfont.Face7x13, 4, cpu.ScreenHeight+12, color.White)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.ScreenWidth, cpu.ScreenHeight + statusHeight
}

func main() {
	stepsPerFrame := flag.Int("clock", 100000, "instructions per frame (~60 frames per second)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: desktop [-clock n] <program.vm | directory | program.asm>")
		os.Exit(2)
	}
	inPath := flag.Arg(0)

	program, err := loadProgram(inPath)
	if err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}

	machine := cpu.NewCPU()
	if err := machine.LoadROM(program); err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cpu.ScreenWidth, cpu.ScreenHeight+statusHeight)
	ebiten.SetWindowTitle("Hack Machine")

	game := &Game{
		vm:            machine,
		program:       filepath.Base(inPath),
		stepsPerFrame: *stepsPerFrame,
	}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

// loadProgram accepts either ready-made assembly or VM sources.
func loadProgram(path string) ([]uint16, error) {
	if filepath.Ext(path) == ".asm" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		program, _, err := asm.Assemble(string(data))
		return program, err
	}

	sources, _, err := utils.CollectSources(path)
	if err != nil {
		return nil, err
	}

	var commands []vm.Command
	for _, src := range sources {
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, err
		}
		cmds, errs := vm.Parse(utils.SourceName(src), string(data))
		if len(errs) > 1 {
			return nil, fmt.Errorf("%s (and %d more)", errs[0].Error(), len(errs)-1)
		}
		if len(errs) == 1 {
			return nil, errs[0]
		}
		commands = append(commands, cmds...)
	}
	if !vm.HasEntry(commands) {
		return nil, fmt.Errorf("no %s function definition found", vm.EntryFunction)
	}

	program, _, err := asm.Assemble(strings.Join(translate.Program(commands), "\n"))
	return program, err
}
