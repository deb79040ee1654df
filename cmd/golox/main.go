// Copyright (c) 2026 Dmitry Majere.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"

	"github.com/dmajere/golox"
	"github.com/dmajere/golox/token"
)

const (
	title        = "golox"
	promptPrefix = ">>> "
)

var (
	traceCompiler bool
	traceStack    bool
)

// Sentinel errors for repl.
var (
	errExit  = errors.New("exit")
	errReset = errors.New("reset")
)

type repl struct {
	vm       *golox.VM
	out      io.Writer
	opts     golox.CompilerOptions
	commands map[string]func() error
	lastFn   *golox.Function
}

func newREPL(stdout io.Writer) *repl {
	r := &repl{
		vm:  golox.NewVM(),
		out: stdout,
	}
	r.opts = compilerOptions(stdout)
	if traceStack {
		r.vm.SetStackTrace(stdout)
	}
	r.commands = map[string]func() error{
		".commands": r.cmdCommands,
		".keywords": r.cmdKeywords,
		".bytecode": r.cmdBytecode,
		".globals":  r.cmdGlobals,
		".reset":    func() error { return errReset },
		".exit":     func() error { return errExit },
	}
	return r
}

func (r *repl) cmdCommands() error {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintln(r.out, name)
	}
	return nil
}

func (r *repl) cmdKeywords() error {
	words := token.Keywords()
	sort.Strings(words)
	_, _ = fmt.Fprintln(r.out, strings.Join(words, " "))
	return nil
}

func (r *repl) cmdBytecode() error {
	if r.lastFn == nil {
		_, _ = fmt.Fprintln(r.out, "no bytecode yet")
		return nil
	}
	r.lastFn.Fprint(r.out)
	return nil
}

func (r *repl) cmdGlobals() error {
	globals := r.vm.Globals()
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(r.out, "%-16s %s\n", name, globals[name].String())
	}
	return nil
}

func (r *repl) execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if cmd, ok := r.commands[line]; ok {
		return cmd()
	}

	fn, err := golox.Compile([]byte(line), r.opts)
	if err != nil {
		_, _ = fmt.Fprintln(r.out, err)
		return nil
	}
	r.lastFn = fn
	if err := r.vm.Run(fn); err != nil {
		_, _ = fmt.Fprintln(r.out, err)
	}
	return nil
}

func (r *repl) complete(line string) []string {
	var out []string
	for name := range r.commands {
		if strings.HasPrefix(name, line) {
			out = append(out, name)
		}
	}
	for _, word := range token.Keywords() {
		if strings.HasPrefix(word, line) {
			out = append(out, word)
		}
	}
	sort.Strings(out)
	return out
}

func (r *repl) run() error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetMultiLineMode(true)
	line.SetCompleter(r.complete)
	_, _ = fmt.Fprintf(r.out, "%s - type .commands for help\n", title)

	for {
		str, err := line.Prompt(promptPrefix)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := r.execute(str); err != nil {
			return err
		}
		if v := strings.TrimSpace(str); v != "" {
			line.AppendHistory(v)
		}
	}
}

func compilerOptions(traceOut io.Writer) golox.CompilerOptions {
	opts := golox.DefaultCompilerOptions
	if traceCompiler {
		opts.Trace = traceOut
		opts.TraceCompiler = true
	}
	return opts
}

func executeScript(script []byte) golox.InterpretResult {
	vm := golox.NewVM()
	if traceStack {
		vm.SetStackTrace(os.Stderr)
	}
	result, err := golox.Interpret(script, vm, compilerOptions(os.Stderr))
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
	}
	return result
}

func parseFlags(flagset *flag.FlagSet, args []string) (filePath string, err error) {
	var trace string
	flagset.StringVar(&trace, "trace", "",
		`Comma separated units: -trace compiler,stack`)

	flagset.Usage = func() {
		_, _ = fmt.Fprint(flagset.Output(),
			"Usage: golox [flags] [script file]\n\n",
			"If a script file is not provided, a REPL is started,\n",
			"or the script is read from stdin when stdin is not a terminal\n",
			"Use - to read from stdin\n",
			"\nFlags:\n",
		)
		flagset.PrintDefaults()
	}

	if err = flagset.Parse(args); err != nil {
		return
	}

	if trace != "" {
		trace = "," + trace + ","
		if strings.Contains(trace, ",compiler,") {
			traceCompiler = true
		}
		if strings.Contains(trace, ",stack,") {
			traceStack = true
		}
	}

	if flagset.NArg() != 1 {
		return
	}
	filePath = flagset.Arg(0)
	if filePath == "-" {
		return
	}
	_, err = os.Stat(filePath)
	return
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func main() {
	filePath, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if filePath == "" && !isTerminal(os.Stdin) {
		filePath = "-"
	}

	if filePath != "" {
		var script []byte
		if filePath == "-" {
			script, err = io.ReadAll(os.Stdin)
		} else {
			script, err = os.ReadFile(filePath)
		}
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(int(executeScript(script)))
	}

	for {
		err := newREPL(os.Stdout).run()
		switch err {
		case errReset:
			continue
		case nil, errExit:
			return
		default:
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
