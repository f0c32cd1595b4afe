package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/grimdork/climate/arg"
	"github.com/k0kubun/pp/v3"
	"github.com/reusee/dscope"

	"github.com/Urethramancer/asm14/configs"
	"github.com/Urethramancer/asm14/disassembler"
	"github.com/Urethramancer/asm14/output"
)

func main() {
	opt := arg.New("dis14")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "o", "out", "Write the listing to this file.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "r", "raw", "Dump the decoded instructions.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "c", "config", "Config file read before asm14.cue.", "", false, arg.VarString, nil)
	opt.SetPositional("FILE", "Object file to disassemble.", []string{}, true, arg.VarStringSlice)

	err := opt.Parse(os.Args)
	if err != nil {
		if errors.Is(err, arg.ErrNoArgs) {
			opt.PrintHelp()
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(2)
	}

	var glyphs output.Glyphs
	dscope.New(new(configs.Module)).Fork(
		func() configs.ConfigPath {
			return configs.ConfigPath(opt.GetString("config"))
		},
	).Call(func(
		loader configs.Loader,
	) {
		settings, err := configs.Load(loader)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		glyphs = settings.Glyphs
	})

	files := opt.GetPosStringSlice("FILE")
	if len(files) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <inputfile>\n", os.Args[0])
		os.Exit(2)
	}
	inputFile := files[0]
	f, err := os.Open(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
		os.Exit(1)
	}
	obj, err := output.ReadObject(f, glyphs)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", inputFile, err)
		os.Exit(1)
	}

	list, err := disassembler.Disassemble(obj)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Disassembly error: %v\n", err)
		os.Exit(1)
	}

	if opt.GetBool("raw") {
		pp.Println(list)
		return
	}

	text := disassembler.Format(list)
	outputFile := opt.GetString("out")
	if outputFile == "" {
		fmt.Print(text)
		return
	}

	if err := os.WriteFile(outputFile, []byte(text), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Disassembly written to %s\n", outputFile)
}
