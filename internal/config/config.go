package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

type Flagger interface {
	String(name string) string
	Bool(name string) bool
}

type Mode int

const (
	ModeCompile Mode = iota
	ModeDumpTokens
	ModeDumpAST
)

func (m Mode) String() string {
	switch m {
	case ModeDumpTokens:
		return "dump-tokens"
	case ModeDumpAST:
		return "dump-ast"
	}
	return "compile"
}

const DefaultOutput = "a.out"

type Config struct {
	InputFilePath  string
	OutputFilePath string
	Mode           Mode
	LogLevel       zerolog.Level
}

func Read(flags Flagger, args []string) (*Config, error) {
	// args - required
	if len(args) == 0 {
		return nil, fmt.Errorf("input file is required")
	}
	if len(args) > 1 {
		return nil, fmt.Errorf("expected one input file, got %d", len(args))
	}
	input := args[0]
	if input == "" {
		return nil, fmt.Errorf("input file is required")
	}

	// flags - optional
	output := flags.String("output")
	if output == "" {
		output = DefaultOutput
	}

	mode := ModeCompile
	dumpTokens, dumpAST := flags.Bool("dump-tokens"), flags.Bool("dump-ast")
	switch {
	case dumpTokens && dumpAST:
		return nil, fmt.Errorf("flags --dump-tokens and --dump-ast are mutually exclusive")
	case dumpTokens:
		mode = ModeDumpTokens
	case dumpAST:
		mode = ModeDumpAST
	}

	level := zerolog.WarnLevel
	if name := flags.String("log-level"); name != "" {
		l, err := zerolog.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("flag --log-level: %w", err)
		}
		level = l
	}

	cfg := Config{
		InputFilePath:  input,
		OutputFilePath: output,
		Mode:           mode,
		LogLevel:       level,
	}

	return &cfg, nil
}
