// This is the main-driver for the anemo compiler.

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/anemo-lang/anemo/compiler"
	"github.com/anemo-lang/anemo/diag"
	"github.com/anemo-lang/anemo/internal/config"
	"github.com/anemo-lang/anemo/internal/toolchain"
)

// sourceExt is the only extension the driver accepts for an input
// file; anything else is rejected before the lexer ever sees it.
const sourceExt = ".anm"

// version is printed by the version subcommand. There is no
// self-update mechanism in this build (see the update stub below), so
// this is just a string, not a manifest to compare against.
const version = "anemo 0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: anemo <command> [arguments]

Commands:
  build    compile a source file to an executable (or assembly, with -S)
  run      compile and immediately execute a source file
  version  print the compiler version
  repl     interactive mode (not part of this build)
  update   self-update (not part of this build)
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = cmdBuild(os.Args[2:])
	case "run":
		err = cmdRun(os.Args[2:])
	case "version":
		fmt.Println(version)
		return
	case "repl":
		err = cmdStub("repl")
	case "update":
		err = cmdStub("update")
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		// A *diag.Diagnostic already begins with "<file>:<line>:<col>:
		// error:"; wrapping it in "anemo: " would bury that prefix.
		// Environment errors (missing file, failed exec, ...) get the
		// "anemo: " prefix so they read as driver errors, not source
		// diagnostics.
		if _, ok := err.(*diag.Diagnostic); ok {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "anemo: %s\n", err)
		}
		os.Exit(1)
	}
}

// cmdStub handles commands whose surface is advertised by usage but
// whose behavior isn't implemented in this build: the interactive
// line editor and the self-update mechanism.
func cmdStub(name string) error {
	fmt.Fprintf(os.Stderr, "anemo %s: not part of this build\n", name)
	os.Exit(1)
	return nil
}

// buildFlags are shared between build and run: which config file to
// read, and whether to narrate the pipeline's stages to stderr.
type buildFlags struct {
	configPath string
	verbose    bool
}

func parseBuildFlags(fs *flag.FlagSet, f *buildFlags) {
	fs.StringVar(&f.configPath, "config", "anemo.toml", "path to an optional anemo.toml")
	fs.BoolVar(&f.verbose, "verbose", false, "narrate each compiler stage to stderr")
}

func loadCompiler(file string, f buildFlags) (*compiler.Compiler, error) {
	if !strings.HasSuffix(file, sourceExt) {
		return nil, fmt.Errorf("input file must use a %s extension: %s", sourceExt, file)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	tc := toolchain.Toolchain{Assembler: cfg.Toolchain.Assembler, Linker: cfg.Toolchain.Linker}
	c := compiler.New(file, string(data), tc)
	c.SetVerbose(f.verbose)
	return c, nil
}

func cmdBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	var f buildFlags
	parseBuildFlags(fs, &f)
	assembleOnly := fs.Bool("S", false, "stop after emitting assembly, do not invoke as/cc")
	output := fs.String("o", "", "output path (default: the source file's stem)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("build: expected exactly one source file")
	}
	file := fs.Arg(0)

	c, err := loadCompiler(file, f)
	if err != nil {
		return err
	}

	out := *output
	if out == "" {
		out = filepath.Join(filepath.Dir(file), compiler.Stem(file))
		if *assembleOnly {
			out += ".s"
		}
	}

	return c.Build(compiler.BuildOptions{OutputPath: out, AssembleOnly: *assembleOnly})
}

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var f buildFlags
	parseBuildFlags(fs, &f)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("run: expected exactly one source file")
	}
	file := fs.Arg(0)

	c, err := loadCompiler(file, f)
	if err != nil {
		return err
	}

	exe, err := os.CreateTemp("", "anemo-run-*")
	if err != nil {
		return err
	}
	exePath := exe.Name()
	exe.Close()
	os.Remove(exePath)
	defer os.Remove(exePath)

	if err := c.Build(compiler.BuildOptions{OutputPath: exePath}); err != nil {
		return err
	}

	run := exec.Command(exePath)
	run.Stdout = os.Stdout
	run.Stderr = os.Stderr
	run.Stdin = os.Stdin
	return run.Run()
}
