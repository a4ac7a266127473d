// gohack translates VM programs into Hack assembly.
//
// The input is either a single .vm file or a directory of .vm files. A
// directory translates into one .asm file named after the directory. When
// any source line is invalid, or no Sys.init function is defined, every
// problem is reported and no output file is written.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gohack/pkg/asm"
	"gohack/pkg/cpu"
	"gohack/pkg/translate"
	"gohack/pkg/utils"
	"gohack/pkg/vm"
)

func main() {
	inPath := flag.String("in", "", "input .vm file or directory of .vm files")
	outPath := flag.String("out", "", "output assembly file path (default: derived from input)")
	runProgram := flag.Bool("run", false, "assemble and run the translated program on the emulated machine")
	cycles := flag.Int("cycles", 1_000_000, "instruction budget when running with -run")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "no input: provide -in <file.vm> or -in <directory>")
		flag.Usage()
		os.Exit(2)
	}

	sources, defaultOut, err := utils.CollectSources(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve input %q: %v\n", *inPath, err)
		os.Exit(1)
	}

	output := *outPath
	if output == "" {
		output = defaultOut
	}

	commands, ok := parseSources(sources)
	if !ok {
		os.Exit(1)
	}

	text := strings.Join(translate.Program(commands), "\n") + "\n"
	if err := os.WriteFile(output, []byte(text), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write output file %q: %v\n", output, err)
		os.Exit(1)
	}
	fmt.Printf("translated %d commands -> %s\n", len(commands), output)

	if *runProgram {
		if err := runAssembly(text, *cycles); err != nil {
			fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
			os.Exit(1)
		}
	}
}

// parseSources reads and validates every source file. All diagnostics are
// printed before returning; on any problem the command stream is withheld
// so no output gets written.
func parseSources(sources []string) ([]vm.Command, bool) {
	var commands []vm.Command
	failed := false

	for _, path := range sources {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read source file %q: %v\n", path, err)
			return nil, false
		}

		cmds, errs := vm.Parse(utils.SourceName(path), string(data))
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s\n    %s\n", e.Error(), e.Text)
			failed = true
		}
		commands = append(commands, cmds...)
	}

	if !vm.HasEntry(commands) {
		fmt.Fprintf(os.Stderr, "no %s function definition found\n", vm.EntryFunction)
		failed = true
	}

	if failed {
		return nil, false
	}
	return commands, true
}

func runAssembly(text string, cycles int) error {
	program, _, err := asm.Assemble(text)
	if err != nil {
		return err
	}

	machine := cpu.NewCPU()
	if err := machine.LoadROM(program); err != nil {
		return err
	}

	ran := machine.RunFor(cycles)
	fmt.Printf("ran %d cycles, halted=%v, SP=%d, top of stack=%d\n",
		ran, machine.Halted, machine.SP(), int16(machine.TopOfStack()))
	return nil
}
