package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/grimdork/climate/arg"
	"github.com/reusee/dscope"

	"github.com/Urethramancer/asm14/configs"
	"github.com/Urethramancer/asm14/logs"
)

func main() {
	opt := arg.New("asm14")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "v", "verbose", "Log debug details.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "q", "quiet", "Log errors only.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "c", "config", "Config file read before asm14.cue.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "o", "outdir", "Directory for output files.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "d", "dump", "Dump symbols and statements of each file.", false, false, arg.VarBool, nil)
	opt.SetPositional("FILE", "Source files, with or without the extension.", []string{}, true, arg.VarStringSlice)

	err := opt.Parse(os.Args)
	if err != nil {
		if errors.Is(err, arg.ErrNoArgs) {
			opt.PrintHelp()
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(2)
	}

	switch {
	case opt.GetBool("verbose"):
		logs.SetLevel(slog.LevelDebug)
	case opt.GetBool("quiet"):
		logs.SetLevel(slog.LevelError)
	}

	scope := dscope.New(new(Module)).Fork(
		func() configs.ConfigPath {
			return configs.ConfigPath(opt.GetString("config"))
		},
	)

	opts := Options{
		Files:  opt.GetPosStringSlice("FILE"),
		OutDir: opt.GetString("outdir"),
		Dump:   opt.GetBool("dump"),
	}
	os.Exit(run(scope, opts, os.Stdout))
}
