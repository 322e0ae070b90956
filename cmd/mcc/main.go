package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/goforj/godump"

	"github.com/mc-lang/mcc/pkg/cli"
	"github.com/mc-lang/mcc/pkg/compiler"
	"github.com/mc-lang/mcc/pkg/config"
	"github.com/mc-lang/mcc/pkg/lexer"
	"github.com/mc-lang/mcc/pkg/util"
)

func main() {
	app := cli.NewApp("mcc")
	app.Synopsis = "[options] <input.mc>"
	app.Description = "An ahead-of-time compiler for MC, emitting NASM x86-64 assembly. " +
		"Feature toggles use -f<name> / -fno-<name>, e.g. -fno-truncate-params " +
		"to error instead of silently dropping parameters beyond the register limit."
	app.Authors = []string{"mc-lang contributors"}

	var (
		outFile    string
		verbose    bool
		dumpTokens bool
		dumpAST    bool
		dumpIR     bool
		colorFlag  string
	)

	fs := app.FlagSet
	fs.String(&outFile, "output", "o", "output.asm", "Place the generated assembly into <file>.", "file")
	fs.Bool(&verbose, "verbose", "v", false, "Print function, temporary, and assembly-size counts after compiling.")
	fs.Bool(&dumpTokens, "dump-tokens", "", false, "Print the token stream and exit.")
	fs.Bool(&dumpAST, "dump-ast", "", false, "Pretty-print the AST and exit.")
	fs.Bool(&dumpIR, "dump-ir", "", false, "Pretty-print the IR and exit.")
	fs.String(&colorFlag, "color", "", "auto", "Diagnostic coloring: auto, always, or never.", "auto|always|never")

	cfg := config.New()
	passthrough, featureFlags := splitFeatureFlags(os.Args[1:])
	for _, raw := range featureFlags {
		if !cfg.ApplyFlag(raw) {
			fmt.Fprintf(os.Stderr, "mcc: unknown feature flag %s\n", raw)
			os.Exit(1)
		}
	}

	app.Action = func(inputFiles []string) error {
		if len(inputFiles) != 1 {
			fmt.Fprintln(os.Stderr, "mcc: expected exactly one input file")
			os.Exit(1)
		}

		cfg.Verbose, cfg.DumpAST, cfg.DumpIR = verbose, dumpAST, dumpIR
		switch colorFlag {
		case "always":
			cfg.ColorDiagnostics = config.ColorAlways
		case "never":
			cfg.ColorDiagnostics = config.ColorNever
		default:
			cfg.ColorDiagnostics = config.ColorAuto
		}

		src, readErr := os.ReadFile(inputFiles[0])
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "mcc: %v\n", readErr)
			os.Exit(1)
		}

		if dumpTokens {
			toks, lexErr := lexer.All(string(src), cfg.TabWidth)
			if lexErr != nil {
				util.PrintErrorConfig(os.Stderr, lexErr, string(src), cfg.ColorDiagnostics)
				os.Exit(1)
			}
			for _, t := range toks {
				fmt.Println(t.String())
			}
			return nil
		}

		res, compErr := compiler.Compile(string(src), compiler.Options{
			TabWidth:           cfg.TabWidth,
			MaxRegisterParams:  cfg.MaxRegisterParams,
			ErrorOnExtraParams: !cfg.IsFeatureEnabled(config.FeatTruncateParams),
		})

		if dumpAST && res.AST != nil {
			godump.Dump(res.AST)
		}
		if dumpIR && res.IR != nil {
			godump.Dump(res.IR)
		}
		if dumpAST || dumpIR {
			if compErr != nil {
				util.PrintErrorConfig(os.Stderr, compErr, string(src), cfg.ColorDiagnostics)
				os.Exit(1)
			}
			return nil
		}

		if compErr != nil {
			util.PrintErrorConfig(os.Stderr, compErr, string(src), cfg.ColorDiagnostics)
			os.Exit(1)
		}

		if err := os.WriteFile(outFile, []byte(res.Asm), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "mcc: %v\n", err)
			os.Exit(1)
		}

		if verbose {
			printVerboseStats(res)
		}
		return nil
	}

	if err := app.Run(passthrough); err != nil {
		os.Exit(1)
	}
}

// splitFeatureFlags pulls -f<name>/-fno-<name> arguments out of args so
// they reach config.ApplyFlag instead of the FlagSet, which has no
// shorthand registered for a bare "f".
func splitFeatureFlags(args []string) (rest, features []string) {
	for _, a := range args {
		if len(a) > 2 && strings.HasPrefix(a, "-f") {
			features = append(features, a)
			continue
		}
		rest = append(rest, a)
	}
	return rest, features
}

func printVerboseStats(res *compiler.Result) {
	if res.IR == nil {
		return
	}
	totalTemps := 0
	for _, fn := range res.IR.Functions {
		totalTemps += fn.NumTemps
	}
	fmt.Fprintf(os.Stderr, "mcc: compiled %s functions, %s temporaries, %s bytes of assembly\n",
		humanize.Comma(int64(len(res.IR.Functions))),
		humanize.Comma(int64(totalTemps)),
		humanize.Comma(int64(len(res.Asm))))
}
