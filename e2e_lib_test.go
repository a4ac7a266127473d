package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gohack/pkg/asm"
	"gohack/pkg/cpu"
	"gohack/pkg/translate"
	"gohack/pkg/utils"
)

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}
}

func TestTranslateDirectoryAndRun(t *testing.T) {
	// 1. Lay out a two-file program
	dir := filepath.Join(t.TempDir(), "Fib")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	writeSource(t, dir, "Sys.vm", `
function Sys.init 0
push constant 6
call Math.fib 1
label END
goto END
`)
	writeSource(t, dir, "Math.vm", `
function Math.fib 0
push argument 0
push constant 2
lt
if-goto BASE
push argument 0
push constant 1
sub
call Math.fib 1
push argument 0
push constant 2
sub
call Math.fib 1
add
return
label BASE
push argument 0
return
`)

	// 2. Resolve inputs the way the CLI does
	sources, outPath, err := utils.CollectSources(dir)
	if err != nil {
		t.Fatalf("CollectSources failed: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("found %d sources; want 2", len(sources))
	}
	if filepath.Base(outPath) != "Fib.asm" {
		t.Errorf("output path = %s; want Fib.asm", outPath)
	}

	// 3. Parse and translate
	commands, ok := parseSources(sources)
	if !ok {
		t.Fatal("parseSources rejected a valid program")
	}
	text := strings.Join(translate.Program(commands), "\n")

	// 4. Assemble
	program, _, err := asm.Assemble(text)
	if err != nil {
		t.Fatalf("Assemble failed: %v\nAssembly:\n%s", err, text)
	}

	// 5. Run
	machine := cpu.NewCPU()
	if err := machine.LoadROM(program); err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}
	machine.RunFor(1_000_000)
	if !machine.Halted {
		t.Fatal("program did not halt")
	}

	// 6. fib(6) = 8
	if got := int16(machine.TopOfStack()); got != 8 {
		t.Errorf("fib(6) = %d; want 8", got)
	}
}

func TestMissingEntryPointBlocksOutput(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Main.vm", "function Main.main 0\npush constant 1\nreturn\n")

	sources, _, err := utils.CollectSources(dir)
	if err != nil {
		t.Fatalf("CollectSources failed: %v", err)
	}
	if _, ok := parseSources(sources); ok {
		t.Fatal("parseSources accepted a program without Sys.init")
	}
}

func TestInvalidLinesBlockOutput(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Sys.vm", "function Sys.init 0\npush constant oops\nreturn\n")

	sources, _, err := utils.CollectSources(dir)
	if err != nil {
		t.Fatalf("CollectSources failed: %v", err)
	}
	if _, ok := parseSources(sources); ok {
		t.Fatal("parseSources accepted a program with an invalid line")
	}
}
