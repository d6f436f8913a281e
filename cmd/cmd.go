package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/rubiojr/rbfront/ast"
	"github.com/rubiojr/rbfront/frontend"
	"github.com/rubiojr/rbfront/parser"
	"github.com/rubiojr/rbfront/source"
)

// Execute runs the rbfront CLI with the given version string.
func Execute(version string) {
	cmd := &cli.Command{
		Name:                   "rbfront",
		Usage:                  "Parse Ruby source into an AST",
		Version:                version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			verbosity := 0
			if cmd.Bool("verbose") {
				verbosity = 2
			}
			commonlog.Configure(verbosity, nil)
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Usage:     "Parse a file and print its AST",
				ArgsUsage: "<file.rb | ->",
				Flags:     parseFlags(),
				Action:    parseAction,
			},
			{
				Name:      "check",
				Usage:     "Parse a file and report suspicious constructs",
				ArgsUsage: "<file.rb | ->",
				Flags:     parseFlags(),
				Action:    checkAction,
			},
			{
				Name:      "stats",
				Usage:     "Parse files concurrently and print cumulative counters",
				ArgsUsage: "<file.rb>...",
				Flags:     parseFlags(),
				Action:    statsAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "eval",
			Usage: "Parse as eval'd code (no script line capture)",
		},
		&cli.IntFlag{
			Name:    "line",
			Aliases: []string{"l"},
			Usage:   "Zero-based line number of the first source line",
		},
		&cli.StringFlag{
			Name:    "encoding",
			Aliases: []string{"E"},
			Usage:   "Source encoding",
		},
		&cli.BoolFlag{
			Name:  "save-data",
			Usage: "Publish text after __END__ as DATA",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Load parser configuration from a TOML or YAML file",
		},
		&cli.BoolFlag{
			Name:    "no-color",
			Aliases: []string{"C"},
			Usage:   "Disable ANSI color output",
		},
	}
}

// configuration builds the parser configuration: the config file first,
// then any flags given explicitly on the command line.
func configuration(cmd *cli.Command) (parser.Configuration, error) {
	cfg := parser.NewConfiguration()
	if path := cmd.String("config"); path != "" {
		var err error
		if cfg, err = parser.LoadConfiguration(path); err != nil {
			return cfg, err
		}
	}
	if cmd.IsSet("line") {
		cfg = cfg.WithLineNumber(int(cmd.Int("line")))
	}
	if cmd.IsSet("encoding") {
		enc, err := source.LookupEncoding(cmd.String("encoding"))
		if err != nil {
			return cfg, err
		}
		cfg = cfg.WithEncoding(enc)
	}
	if cmd.IsSet("eval") {
		cfg = cfg.AsEval(cmd.Bool("eval"))
	}
	if cmd.IsSet("save-data") {
		cfg = cfg.WithSaveData(cmd.Bool("save-data"))
	}
	return cfg, nil
}

func useColor(cmd *cli.Command) bool {
	return !cmd.Bool("no-color") && term.IsTerminal(int(os.Stdout.Fd()))
}

// parseFile parses path through d, reading stdin for "-".
func parseFile(d *frontend.Driver, path string, cfg parser.Configuration) (*ast.RootNode, error) {
	if path == "-" {
		d.Env.Retain(os.Stdin)
		defer d.Env.Release(os.Stdin)
		return d.ParseReader("-", os.Stdin, nil, cfg)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return d.ParseReader(path, f, nil, cfg)
}

func parseAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: rbfront parse [flags] <file.rb | ->")
	}
	cfg, err := configuration(cmd)
	if err != nil {
		return err
	}
	d := frontend.NewDriver(nil, nil)
	root, err := parseFile(d, cmd.Args().First(), cfg)
	if err != nil {
		return err
	}
	if cmd.Bool("rewrite") {
		root = rewrites.Transform(root)
	}
	if err := ast.Dump(os.Stdout, root, useColor(cmd)); err != nil {
		return err
	}
	return printData(d.Env, os.Stdout)
}

// rewrites are the passes `parse --rewrite` applies.
var rewrites = ast.Chain(ast.DedupHashKeys)

// printData copies the published DATA segment, if any, to w.
func printData(env *frontend.Environment, w io.Writer) error {
	v, ok := env.Globals.Lookup(frontend.DataConstant)
	if !ok {
		return nil
	}
	seg, ok := v.(*source.Segment)
	if !ok {
		return nil
	}
	defer seg.Close()
	fmt.Fprintln(w, "__END__")
	_, err := io.Copy(w, seg)
	return err
}

// closeData closes the published DATA segment and the stream behind it.
func closeData(env *frontend.Environment) {
	v, ok := env.Globals.Lookup(frontend.DataConstant)
	if !ok {
		return
	}
	if seg, ok := v.(*source.Segment); ok {
		seg.Close()
	}
}

func checkAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: rbfront check [flags] <file.rb | ->")
	}
	cfg, err := configuration(cmd)
	if err != nil {
		return err
	}
	d := frontend.NewDriver(nil, nil)
	root, err := parseFile(d, cmd.Args().First(), cfg)
	if err != nil {
		return err
	}
	warnings := ast.DefaultChecks.Run(root)
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w)
	}
	if len(warnings) > 0 {
		return fmt.Errorf("%d warning(s)", len(warnings))
	}
	return nil
}

func statsAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: rbfront stats [flags] <file.rb>...")
	}
	cfg, err := configuration(cmd)
	if err != nil {
		return err
	}

	stats := &frontend.Stats{}
	env := frontend.NewEnvironment()
	files := cmd.Args().Slice()
	errs := make([]error, len(files))
	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := frontend.NewDriver(env, stats)
			if _, err := parseFile(d, path, cfg); err != nil {
				errs[i] = err
			}
		}()
	}
	wg.Wait()
	closeData(env)

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			fmt.Fprintln(os.Stderr, err)
		}
	}
	fmt.Printf("files:  %d\n", len(files))
	fmt.Printf("parsed: %d\n", stats.Parses())
	fmt.Printf("bytes:  %d\n", stats.TotalBytes())
	fmt.Printf("time:   %s\n", stats.TotalTime())
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to parse", failed)
	}
	return nil
}
