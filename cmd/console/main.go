// console runs a translated program headless on the emulated Hack
// machine and dumps selected RAM cells when it stops. Useful for
// inspecting program state without the desktop frontend.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gohack/pkg/asm"
	"gohack/pkg/cpu"
	"gohack/pkg/translate"
	"gohack/pkg/utils"
	"gohack/pkg/vm"
)

func main() {
	inPath := flag.String("in", "", "program to run: a .vm file, a directory of .vm files, or a .asm file")
	cycles := flag.Int("cycles", 1_000_000, "instruction budget")
	dump := flag.String("dump", "0-4,256-271", "RAM ranges to print, e.g. 0-4,256,300-310")
	saveState := flag.String("save-state", "", "write a machine snapshot to this path when the run stops")
	loadState := flag.String("load-state", "", "resume from a machine snapshot instead of loading a program")
	screenshot := flag.String("screenshot", "", "write a PNG of the screen to this path when the run stops")
	flag.Parse()

	machine := cpu.NewCPU()

	switch {
	case *loadState != "":
		if err := machine.RestoreFromFile(*loadState); err != nil {
			log.Fatalf("Failed to restore snapshot: %v", err)
		}
	case *inPath != "":
		program, err := loadProgram(*inPath)
		if err != nil {
			log.Fatalf("Failed to load program: %v", err)
		}
		if err := machine.LoadROM(program); err != nil {
			log.Fatalf("Failed to load ROM: %v", err)
		}
	default:
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in <program> or -load-state <snapshot>")
		flag.Usage()
		os.Exit(2)
	}

	ran := machine.RunFor(*cycles)
	fmt.Printf("ran %d cycles, halted=%v, PC=%d, SP=%d\n", ran, machine.Halted, machine.PC, machine.SP())

	ranges, err := parseRanges(*dump)
	if err != nil {
		log.Fatalf("Bad -dump argument: %v", err)
	}
	for _, r := range ranges {
		for addr := r[0]; addr <= r[1]; addr++ {
			fmt.Printf("RAM[%5d] = %6d (0x%04X)\n", addr, int16(machine.RAM[addr]), machine.RAM[addr])
		}
	}

	if *saveState != "" {
		if err := machine.SnapshotToFile(*saveState); err != nil {
			log.Fatalf("Failed to save snapshot: %v", err)
		}
		fmt.Printf("snapshot -> %s\n", *saveState)
	}
	if *screenshot != "" {
		if err := machine.SaveScreenshot(*screenshot); err != nil {
			log.Fatalf("Failed to save screenshot: %v", err)
		}
		fmt.Printf("screenshot -> %s\n", *screenshot)
	}
}

// loadProgram accepts either ready-made assembly or VM sources, producing
// machine words in both cases.
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

	text := strings.Join(translate.Program(commands), "\n")
	program, _, err := asm.Assemble(text)
	return program, err
}

// parseRanges turns "0-4,256,300-310" into address pairs.
func parseRanges(spec string) ([][2]int, error) {
	var out [][2]int
	if strings.TrimSpace(spec) == "" {
		return out, nil
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		lo, hi, found := strings.Cut(part, "-")
		from, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q", lo)
		}
		to := from
		if found {
			to, err = strconv.Atoi(hi)
			if err != nil {
				return nil, fmt.Errorf("invalid address %q", hi)
			}
		}
		if from < 0 || to >= 32768 || to < from {
			return nil, fmt.Errorf("range %q out of bounds", part)
		}
		out = append(out, [2]int{from, to})
	}
	return out, nil
}
