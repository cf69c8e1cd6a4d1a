package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"minic/internal/driver"
	"minic/internal/errors"
)

func main() {
	verbose := flag.Bool("v", false, "verbose pipeline logging")
	optimize := flag.Bool("O", false, "run the optimizer before emitting assembly")
	stem := flag.String("o", "out", "output file stem (produces <stem>.ll, <stem>_new.ll, <stem>_new.s)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: minic [-v] [-O] [-o stem] <source>.c")
		os.Exit(1)
	}

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	path := flag.Arg(0)
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("error: failed to read %s: %s", path, err)
		os.Exit(1)
	}

	artifacts, ce := driver.Run(driver.Options{
		Filename:   path,
		Source:     string(source),
		OutputStem: *stem,
		Optimize:   *optimize,
	})
	if ce != nil {
		reportError(path, string(source), *ce)
		os.Exit(1)
	}

	color.Green("compiled %s -> %s, %s, %s", path, artifacts.IRPath, artifacts.OptimizedIRPath, artifacts.AssemblyPath)
}

// reportError renders a single pipeline failure in the caret-pointer
// style every stage shares (§7), same register the teacher's CLI uses
// for participle parse errors.
func reportError(filename, source string, ce errors.CompilerError) {
	reporter := errors.NewErrorReporter(filename, source)
	fmt.Fprint(os.Stderr, reporter.FormatError(ce))
}
