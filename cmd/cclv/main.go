// Command cclv is a terminal viewer for Claude Code JSONL conversation
// logs: point it at a log file (or pipe one in on standard input) and
// it renders the session's main conversation and subagent delegations
// as a scrollable, searchable, live-tailing view.
//
// Grounded on wilbur182-forge's cmd/sidecar/main.go: flag parsing,
// --version handling, and the logger-then-program construction order
// all follow that entrypoint's shape, narrowed from a multi-mode
// sidecar process down to this program's single `prog [path]` surface.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgreenblatt/cclv-sub001/internal/config"
	"github.com/rgreenblatt/cclv-sub001/internal/logpane"
	"github.com/rgreenblatt/cclv-sub001/internal/source"
	"github.com/rgreenblatt/cclv-sub001/internal/tui"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin))
}

// run implements the CLI surface independent of process globals, so
// it can be exercised from tests: exit code 0 on normal quit, 1 on an
// unrecoverable input-source error, 2 on a usage error.
func run(args []string, stdin *os.File) int {
	fs := flag.NewFlagSet("cclv", flag.ContinueOnError)
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: cclv [path_to_log.jsonl]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Println("cclv " + version)
		return 0
	}

	rest := fs.Args()
	if len(rest) > 1 {
		fs.Usage()
		return 2
	}
	var path string
	if len(rest) == 1 {
		path = rest[0]
	}

	kind, resolvedPath, err := source.DetectInputSource(path, stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cclv:", err)
		return 2
	}

	logger, handler := logpane.NewLogger("CCLV_LOG")

	var input tui.InputSource
	var sourceName string
	switch kind {
	case source.KindFile:
		fileSrc, err := source.NewFileSource(resolvedPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cclv: opening", resolvedPath, ":", err)
			return 1
		}
		defer fileSrc.Close()
		input = fileSrc
		sourceName = resolvedPath
	case source.KindStdin:
		input = source.NewStdinSource(stdin)
		sourceName = "<stdin>"
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "cclv: invalid configuration:", err)
		return 2
	}

	root := tui.New(input, sourceName, cfg, logger, handler)
	program := tea.NewProgram(root, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "cclv:", err)
		return 1
	}

	return root.ExitCode()
}
