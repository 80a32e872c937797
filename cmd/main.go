package main

import (
	"brew/internal/compiler"
	"brew/internal/config"
	"brew/internal/logger"
	"brew/internal/repl"
	"brew/pkg/color"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

// Main entry point for the Brew compiler.
func main() {
	options := compiler.Compiler{}
	defaults := config.Default()

	flag.BoolVar(&options.Help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", defaults.Verbose, "Verbose mode")
	flag.BoolVar(&options.ShouldInterpret, "r", false, "Run with interpreter")
	flag.BoolVar(&options.ShouldCompile, "c", false, "Compile to a native binary (needs clang)")
	flag.BoolVar(&options.AssemblyInput, "S", false, "Input file is bytecode assembly")
	flag.BoolVar(&options.Disassemble, "d", false, "Print the bytecode listing")
	flag.BoolVar(&options.Trace, "t", defaults.Trace, "Trace every executed instruction")
	flag.BoolVar(&options.NoColor, "n", defaults.NoColor, "No color")
	flag.BoolVar(&options.Interactive, "i", false, "Start an interactive session")
	flag.IntVar(&options.Fuel, "f", defaults.Fuel, "Instruction budget (0 = unlimited)")
	flag.StringVar(&options.OutputFile, "o", defaults.Output, "Output binary name")
	flag.StringVar(&options.ConfigFile, "config", "", "YAML config file")
	flag.StringVar(&options.SuiteDir, "suite", "", "Run the conformance suites in a directory")

	flag.Parse()
	args := flag.Args()

	if options.ConfigFile != "" {
		cfg, err := config.Load(options.ConfigFile)
		if err != nil {
			logger.Init(false, options.NoColor)
			log.Fatal("Invalid config", "error", err)
		}
		applyConfig(&options, cfg)
	}

	logger.Init(options.Verbose || options.Trace, options.NoColor)
	if options.Help {
		fmt.Printf("Usage: %s [options] <file>\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if options.NoColor {
		color.EnableColor(false)
	}

	if options.Interactive {
		if err := repl.Run(options.Fuel); err != nil {
			log.Fatal("Session failed", "error", err)
		}
		return
	}

	if options.SuiteDir != "" {
		if err := options.RunSuite(context.Background()); err != nil {
			log.Fatal("Conformance run failed", "error", err)
		}
		return
	}

	if len(args) == 0 {
		log.Fatal("No input file provided", "help", fmt.Sprintf("%s -h", os.Args[0]))
	}

	options.SourceFile = args[0]
	if !options.ShouldCompile && !options.Disassemble {
		options.ShouldInterpret = true
	}

	err := options.Compile()
	if err != nil {
		log.Fatal("Compilation failed", "error", err)
	}
}

// applyConfig copies config values for every flag not set on the command line
func applyConfig(options *compiler.Compiler, cfg config.Config) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["f"] {
		options.Fuel = cfg.Fuel
	}
	if !set["v"] {
		options.Verbose = cfg.Verbose
	}
	if !set["t"] {
		options.Trace = cfg.Trace
	}
	if !set["n"] {
		options.NoColor = cfg.NoColor
	}
	if !set["o"] {
		options.OutputFile = cfg.Output
	}
}
