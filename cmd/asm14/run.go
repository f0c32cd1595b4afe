package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/k0kubun/pp/v3"
	"github.com/reusee/dscope"

	"github.com/Urethramancer/asm14/assembler"
	"github.com/Urethramancer/asm14/configs"
	"github.com/Urethramancer/asm14/diag"
	"github.com/Urethramancer/asm14/logs"
	"github.com/Urethramancer/asm14/output"
	"github.com/Urethramancer/asm14/source"
)

// Options are the per-run command line settings.
type Options struct {
	Files []string
	// OutDir overrides the configured output directory when set.
	OutDir string
	Dump   bool
}

// run assembles every file in turn and returns the exit status.
// A failed file does not stop the others.
func run(scope dscope.Scope, opts Options, stdout io.Writer) (status int) {
	var settings configs.Settings
	var loadErr error
	scope.Call(func(
		loader configs.Loader,
		logger logs.Logger,
	) {
		if settings, loadErr = configs.Load(loader); loadErr != nil {
			logger.Error("config", "error", loadErr)
		}
	})
	if loadErr != nil {
		return 1
	}

	scope.Fork(
		func() configs.Settings {
			return settings
		},
	).Call(func(
		asm *assembler.Assembler,
		settings configs.Settings,
		logger logs.Logger,
	) {
		outDir := settings.OutputDir
		if opts.OutDir != "" {
			outDir = opts.OutDir
		}
		for _, name := range opts.Files {
			if err := assembleFile(asm, settings, outDir, name, opts.Dump, stdout, logger); err != nil {
				status = 1
			}
		}
	})
	return status
}

func assembleFile(
	asm *assembler.Assembler,
	settings configs.Settings,
	outDir string,
	name string,
	dump bool,
	stdout io.Writer,
	logger logs.Logger,
) error {
	path := source.Resolve(name, settings.SourceExt)
	counter := diag.NewCounter(func(d diag.Diagnostic) {
		fmt.Fprintln(stdout, diag.Format(d))
	})

	res, err := asm.AssembleFile(path, counter.Report)
	if counter.Errors+counter.Warnings > 0 {
		fmt.Fprintf(stdout, "%s: %s\n", path, counter.Summary())
	}
	if err != nil {
		if !errors.Is(err, assembler.ErrAssemblyFailed) {
			logger.Error("assemble", "file", path, "error", err)
		}
		return err
	}

	if dump {
		pp.Fprintln(stdout, res.Symbols)
		pp.Fprintln(stdout, res.Statements)
	}

	base := source.Base(path, settings.SourceExt)
	if outDir != "" {
		base = filepath.Join(outDir, filepath.Base(base))
	}
	written, err := output.WriteFiles(base, res, settings.Glyphs)
	if err != nil {
		logger.Error("write", "file", path, "error", err)
		return err
	}
	logger.Info("assembled",
		"file", path,
		"code", res.CodeWords,
		"data", res.DataWords,
		"outputs", written,
	)
	return nil
}
