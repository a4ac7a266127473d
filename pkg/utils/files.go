package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceExt is the extension of VM source files.
const SourceExt = ".vm"

// OutputExt is the extension of generated assembly files.
const OutputExt = ".asm"

// CollectSources resolves a translator input path. A .vm file yields just
// that file and a sibling .asm output. A directory yields every .vm file
// it contains, sorted by name, and an output named after the directory
// inside it.
func CollectSources(inPath string) (sources []string, outPath string, err error) {
	info, err := os.Stat(inPath)
	if err != nil {
		return nil, "", err
	}

	if !info.IsDir() {
		if filepath.Ext(inPath) != SourceExt {
			return nil, "", fmt.Errorf("%s is not a %s file", inPath, SourceExt)
		}
		return []string{inPath}, strings.TrimSuffix(inPath, SourceExt) + OutputExt, nil
	}

	entries, err := os.ReadDir(inPath)
	if err != nil {
		return nil, "", err
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == SourceExt {
			sources = append(sources, filepath.Join(inPath, e.Name()))
		}
	}
	sort.Strings(sources)

	if len(sources) == 0 {
		return nil, "", fmt.Errorf("no %s files in %s", SourceExt, inPath)
	}

	dirName := filepath.Base(filepath.Clean(inPath))
	outPath = filepath.Join(inPath, dirName+OutputExt)
	return sources, outPath, nil
}

// SourceName returns the base name of a source file without its
// extension. It scopes the static segment, so two files produce disjoint
// static symbols.
func SourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
