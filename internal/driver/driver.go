// Package driver orchestrates the compilation pipeline of spec.md §2:
// parse, check, build IR, optimize, emit. It is the single place that
// sequences components A through E and the two ambient collaborators
// (parser, error reporter); cmd/minic is a thin CLI shell around it.
package driver

import (
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"minic/internal/backend"
	"minic/internal/errors"
	"minic/internal/ir"
	"minic/internal/parser"
	"minic/internal/semantic"
)

var log = commonlog.GetLogger("minic.driver")

// Options configures one compilation run (§6's CLI contract, plus the
// -O/-o additions SPEC_FULL's ambient CLI section adds on top of it).
type Options struct {
	Filename   string
	Source     string
	OutputStem string // default "out", producing out.ll/out_new.ll/out_new.s
	Optimize   bool
}

// Artifacts names the three files a run writes, per §6.
type Artifacts struct {
	IRPath          string // post-IR-builder textual IR ("<stem>.ll")
	OptimizedIRPath string // post-optimizer textual IR ("<stem>_new.ll")
	AssemblyPath    string // "<stem>_new.s"
}

func stemOrDefault(stem string) string {
	if stem == "" {
		return "out"
	}
	return stem
}

// Run executes the full pipeline and writes its three output files.
// It returns the written Artifacts on success, or a CompilerError
// describing whichever stage failed first (§7): parse errors and
// semantic errors abort before any file is written; once IR
// construction begins, the only errors returned are file-write failures
// (E0101). An internal failure in a later stage panics; Run does not
// convert it into a CompilerError.
func Run(opts Options) (*Artifacts, *errors.CompilerError) {
	stem := stemOrDefault(opts.OutputStem)

	log.Infof("parsing %s", opts.Filename)
	prog, err := parser.ParseSource(opts.Filename, opts.Source)
	if err != nil {
		ce := parser.AsCompilerError(err)
		return nil, &ce
	}

	log.Infof("checking scopes")
	analyzer := semantic.NewAnalyzer()
	if semErrs := analyzer.Analyze(prog); len(semErrs) > 0 {
		log.Infof("%d semantic error(s)", len(semErrs))
		return nil, &semErrs[0]
	}

	log.Infof("building IR")
	module := ir.BuildProgram(prog)

	irPath := stem + ".ll"
	if werr := os.WriteFile(irPath, []byte(ir.PrintProgram(module)), 0o644); werr != nil {
		ce := errors.IOError(fmt.Sprintf("failed to write %s: %s", irPath, werr))
		return nil, &ce
	}

	if opts.Optimize {
		log.Infof("running optimizer")
		ir.OptimizeModule(module)
	} else {
		log.Infof("optimizer disabled (-O not set)")
	}

	optimizedPath := stem + "_new.ll"
	if werr := os.WriteFile(optimizedPath, []byte(ir.PrintProgram(module)), 0o644); werr != nil {
		ce := errors.IOError(fmt.Sprintf("failed to write %s: %s", optimizedPath, werr))
		return nil, &ce
	}

	log.Infof("emitting assembly")
	asm := backend.EmitModule(module)

	asmPath := stem + "_new.s"
	if werr := os.WriteFile(asmPath, []byte(asm), 0o644); werr != nil {
		ce := errors.IOError(fmt.Sprintf("failed to write %s: %s", asmPath, werr))
		return nil, &ce
	}

	log.Infof("done: %s, %s, %s", irPath, optimizedPath, asmPath)
	return &Artifacts{IRPath: irPath, OptimizedIRPath: optimizedPath, AssemblyPath: asmPath}, nil
}
