package command

import (
	"fmt"
	"io"
	"os"

	"github.com/Maoyao233/ToyCC/internal/config"
	"github.com/Maoyao233/ToyCC/internal/driver"
	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v2"
)

func NewApp() *cli.App {
	return &cli.App{
		Name:      "toycc",
		Usage:     "Compiles a small subset of C to an LLVM-style IR module.",
		ArgsUsage: "<input file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file name.",
				Value:   config.DefaultOutput,
			},
			&cli.BoolFlag{
				Name:  "dump-tokens",
				Usage: "Run the tokenizer and dump the tokens.",
			},
			&cli.BoolFlag{
				Name:  "dump-ast",
				Usage: "Run the parser and dump the AST.",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Level of the diagnostics log written to stderr.",
				Value: "warn",
			},
		},
		Action: run,
	}
}

func run(cliCtx *cli.Context) error {
	cfg, err := config.Read(cliCtx, cliCtx.Args().Slice())
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = cliCtx.App.ErrWriter
	})).
		Level(cfg.LogLevel).
		With().Timestamp().Str("mode", cfg.Mode.String()).Logger()

	src, err := os.ReadFile(cfg.InputFilePath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	switch cfg.Mode {
	case config.ModeDumpTokens:
		out, err := driver.DumpTokens(string(src))
		if err != nil {
			return fmt.Errorf("dump tokens: %w", err)
		}
		return writeLine(cliCtx.App.Writer, out)

	case config.ModeDumpAST:
		out, err := driver.DumpAST(cfg.InputFilePath, string(src), driver.WithLogger(logger))
		if err != nil {
			return err
		}
		return writeLine(cliCtx.App.Writer, out)
	}

	res, err := driver.Compile(cfg.InputFilePath, string(src), driver.WithLogger(logger))
	if err != nil {
		return err
	}
	if !res.OK() {
		logger.Warn().Int("errors", len(res.Errors)).Msg("lowering failed")
	}

	if err := writeArtifact(cfg.OutputFilePath, res); err != nil {
		return err
	}

	logger.Info().Str("output", cfg.OutputFilePath).Msg("wrote artifact")

	return nil
}

func writeArtifact(path string, res *driver.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if _, err := res.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	return nil
}

func writeLine(w io.Writer, b []byte) error {
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	return nil
}
