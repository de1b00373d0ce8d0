// Command validate checks every board file in a directory (default "boards").
// For each *.dat and *.txt file it checks:
//   - the header and row structure parse
//   - only O, X, 1 and 2 labels appear, with exactly one 1 and one 2
//   - whether the end cell is reachable from the start (reported, not fatal)
//
// It prints a report and exits with non-zero status if any board is invalid.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/circuit-tracer/circuit/board"
)

// ValidationResult captures the outcome of validating a single file.
// Notes holds informational lines; Errors is empty when Valid is true.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Notes  []string
}

// validateBoard loads a single board file and checks its connectivity.
func validateBoard(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	b, err := board.Load(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Notes = append(result.Notes,
		fmt.Sprintf("✓ %dx%d board, start %s, end %s", b.Rows(), b.Cols(), b.Start(), b.End()),
		fmt.Sprintf("✓ %d open, %d blocked cells", b.Count(board.Open), b.Count(board.Blocked)))

	if dist, ok := b.ShortestDistance(); ok {
		result.Notes = append(result.Notes, fmt.Sprintf("✓ End reachable, shortest trace length %d", dist))
	} else {
		result.Notes = append(result.Notes,
			fmt.Sprintf("⚠ End %s is not reachable from start %s; tracing yields no solutions", b.End(), b.Start()))
	}

	return result
}

// boardFiles lists board files in dir, sorted by name
func boardFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.dat", "*.txt"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// run validates every board in dir, writes the report to out and reports
// whether all boards are valid
func run(dir string, out io.Writer) (bool, error) {
	files, err := boardFiles(dir)
	if err != nil {
		return false, fmt.Errorf("error finding board files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no board files found in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateBoard(file)

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, note := range result.Notes {
				fmt.Fprintln(out, "  "+note)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(out, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(out, "✅ All boards are valid!")
	} else {
		fmt.Fprintln(out, "❌ Some boards have errors")
	}
	return allValid, nil
}

func main() {
	dir := "boards"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	ok, err := run(dir, os.Stdout)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}
