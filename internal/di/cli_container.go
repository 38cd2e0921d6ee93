package di

import (
	"flag"
	"fmt"
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/logging"
)

// CLI modes
const (
	ModeClassify = "classify"
	ModeBatch    = "batch"
	ModeThread   = "thread"
	ModeSummary  = "summary"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	Mode string

	// Input flags
	InputFile string
	Message   bool
	Sender    string
	Sentences int

	// Output flags
	JSONOutput bool
	Verbose    bool
	JSONLog    bool

	// Overrides
	ConfigFile string
	NoAI       bool
	NoCache    bool
	Analytics  string
}

// ParseFlags parses args (without the program name) into a CLIFlags struct.
// The first positional argument selects the mode.
func ParseFlags(args []string, usage io.Writer) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("triage-cli", flag.ContinueOnError)
	fs.SetOutput(usage)

	fs.StringVar(&flags.InputFile, "file", "", "Input file (use stdin if not specified)")
	fs.BoolVar(&flags.Message, "eml", false, "Parse the input as an RFC 5322 message (classify mode)")
	fs.StringVar(&flags.Sender, "sender", "", "Sender address recorded with plain-text input")
	fs.IntVar(&flags.Sentences, "sentences", 3, "Maximum summary sentences (summary mode, 1-5)")

	fs.BoolVar(&flags.JSONOutput, "json", false, "Print results as JSON")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")

	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file")
	fs.BoolVar(&flags.NoAI, "no-ai", false, "Disable the AI fallback")
	fs.BoolVar(&flags.NoCache, "no-cache", false, "Disable the result cache")
	fs.StringVar(&flags.Analytics, "analytics", "", "Analytics sink override (log, sqlite, mysql, none)")

	fs.Usage = func() {
		fmt.Fprintf(usage, "Usage: triage-cli [flags] <classify|batch|thread|summary>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch mode := fs.Arg(0); mode {
	case ModeClassify, ModeBatch, ModeThread, ModeSummary:
		flags.Mode = mode
	case "":
		flags.Mode = ModeClassify
	default:
		fs.Usage()
		return nil, fmt.Errorf("unknown mode: %s", mode)
	}

	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	if err := provideAll(container,
		func() *CLIFlags { return flags },
		func(flags *CLIFlags) (*zap.Logger, error) {
			return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
		},
		func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
			cfg, err := config.Load(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			if used := cfg.GetViper().ConfigFileUsed(); used != "" {
				logger.Info("Loaded configuration from file", zap.String("file", used))
			}
			applyFlags(cfg, flags)
			return cfg, nil
		},
	); err != nil {
		return nil, err
	}

	if err := provideTriage(container); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlags layers the command line overrides over the loaded configuration
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	if flags.NoAI {
		cfg.Set("fallback.enabled", false)
	}
	if flags.NoCache {
		cfg.Set("cache.enabled", false)
	}
	if flags.Analytics != "" {
		cfg.Set("analytics.type", flags.Analytics)
	}
}
