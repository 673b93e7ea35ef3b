package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/decodergen"
	"github.com/wippyai/decodergen/assembler"
	"github.com/wippyai/decodergen/downlevel"
	"github.com/wippyai/decodergen/manifest"
	"github.com/wippyai/decodergen/transpiler"
)

type options struct {
	manifest     string
	target       string
	out          string
	downlevelCmd string
	verbose      bool
	list         bool
	concurrency  int
}

func main() {
	var (
		opts        options
		interactive bool
	)
	flag.StringVar(&opts.manifest, "manifest", "", "Path to the YAML port manifest")
	flag.StringVar(&opts.target, "target", "", "Decoder shell: v4 (decodeUplink) or v3 (Decode); overrides the manifest")
	flag.StringVar(&opts.out, "out", "", "Write the decoder to this file instead of stdout")
	flag.StringVar(&opts.downlevelCmd, "downlevel-cmd", "", "Compile subroutine tables with this command (stdin to stdout) instead of esbuild")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging to stderr")
	flag.BoolVar(&opts.list, "list", false, "List ports and the codecs they need, then exit")
	flag.IntVar(&opts.concurrency, "j", 0, "Ports transpiled in parallel (default GOMAXPROCS)")
	flag.BoolVar(&interactive, "i", false, "Interactive mode: try ports against hex payloads")
	flag.Parse()

	if opts.manifest == "" {
		fmt.Fprintln(os.Stderr, "Usage: decodergen -manifest <ports.yaml> [-target v3|v4] [-out file] [-downlevel-cmd cmd] [-v]")
		fmt.Fprintln(os.Stderr, "       decodergen -manifest <ports.yaml> -list")
		fmt.Fprintln(os.Stderr, "       decodergen -manifest <ports.yaml> -i  (interactive mode)")
		os.Exit(1)
	}

	log, err := newLogger(opts.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(opts, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(context.Background(), opts, log, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	transpiler.SetLogger(log)
	downlevel.SetLogger(log)
	return log, nil
}

// load reads the manifest and resolves the shell: -target wins over the
// manifest's target, which wins over v4.
func load(opts options) (decodergen.Ports, assembler.Shell, error) {
	m, err := manifest.Load(opts.manifest)
	if err != nil {
		return nil, 0, err
	}
	ports, err := m.Table()
	if err != nil {
		return nil, 0, err
	}

	shell := m.Shell(assembler.ShellV4)
	if opts.target != "" {
		s, ok := assembler.ParseShell(opts.target)
		if !ok {
			return nil, 0, fmt.Errorf("unknown target %q (want v3 or v4)", opts.target)
		}
		shell = s
	}
	return ports, shell, nil
}

func generatorOptions(opts options, log *zap.Logger) ([]decodergen.Option, error) {
	genOpts := []decodergen.Option{decodergen.WithLogger(log)}
	if opts.concurrency > 0 {
		genOpts = append(genOpts, decodergen.WithConcurrency(opts.concurrency))
	}
	if opts.downlevelCmd != "" {
		cmd, err := downlevel.ParseCommand(opts.downlevelCmd)
		if err != nil {
			return nil, err
		}
		genOpts = append(genOpts, decodergen.WithDownleveler(cmd))
	}
	return genOpts, nil
}

func run(ctx context.Context, opts options, log *zap.Logger, stdout io.Writer) error {
	ports, shell, err := load(opts)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	genOpts, err := generatorOptions(opts, log)
	if err != nil {
		return err
	}
	gen := decodergen.New(genOpts...)

	if opts.list {
		transpiled, err := gen.Transpile(ctx, ports)
		if err != nil {
			return fmt.Errorf("transpile: %w", err)
		}
		fmt.Fprintf(stdout, "Manifest: %s\n", opts.manifest)
		fmt.Fprintf(stdout, "Shell: %s (%s)\n", shell, shell.EntryPoint())
		fmt.Fprintf(stdout, "\nPorts:\n")
		for _, p := range transpiled {
			fmt.Fprintf(stdout, "  %d %s %s\n", p.Number, assembler.FuncName(p.Number), p.Result.Readers)
		}
		fmt.Fprintf(stdout, "\nCodecs: %s\n", assembler.Readers(transpiled))
		return nil
	}

	src, err := gen.Generate(ctx, ports, shell)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if opts.out == "" {
		_, err = fmt.Fprintln(stdout, src)
		return err
	}
	if err := os.WriteFile(opts.out, []byte(src+"\n"), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("decoder written", zap.String("path", opts.out), zap.Int("ports", len(ports)))
	return nil
}

// parsePayload decodes hex text. Whitespace, commas, colons and 0x
// prefixes are ignored: "34 12", "0x34,0x12" and "34:12" are equal.
func parsePayload(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, "0x", "")
	s = strings.ReplaceAll(s, "0X", "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ',', ':', '\n', '\r':
			return -1
		}
		return r
	}, s)
	payload, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	return payload, nil
}
