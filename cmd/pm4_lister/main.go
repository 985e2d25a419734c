package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"gputrace/internal/common"
	"gputrace/internal/lister"
)

// envConfig is read before the flags; a flag given on the command line wins.
type envConfig struct {
	Generation string `env:"PM4_LISTER_GENERATION" env-description:"hardware generation override (gfx9, gfx10, gfx11)"`
	Output     string `env:"PM4_LISTER_OUTPUT" env-description:"JSON-lines trace output path"`
	Compress   bool   `env:"PM4_LISTER_COMPRESS" env-description:"lz4-compress the trace output"`
	LogLevel   string `env:"PM4_LISTER_LOG_LEVEL" env-default:"warn" env-description:"debug, info, warn or error"`
}

func parseConfig(args []string, out io.Writer) (lister.Config, common.Severity, error) {
	var env envConfig
	if err := cleanenv.ReadEnv(&env); err != nil {
		return lister.Config{}, 0, fmt.Errorf("environment: %w", err)
	}

	fs := flag.NewFlagSet("pm4_lister", flag.ContinueOnError)
	fs.SetOutput(out)
	captureDir := fs.String("capture_dir", "", "Path to the capture directory")
	gen := fs.String("generation", env.Generation, "Hardware generation override")
	buffer := fs.String("buffer", "", "List only the named buffer")
	output := fs.String("o", env.Output, "Write a JSON-lines trace to this file")
	compress := fs.Bool("lz4", env.Compress, "lz4-compress the trace output")
	raw := fs.Bool("raw", false, "Dump the raw dwords of every packet")
	stats := fs.Bool("stats", false, "Print packet statistics")
	jobs := fs.Int("jobs", 0, "Buffers decoded in parallel (0 = unbounded)")
	logLevel := fs.String("log_level", env.LogLevel, "Log level")
	fs.Usage = cleanenv.FUsage(out, &env, nil, fs.PrintDefaults)

	if err := fs.Parse(args); err != nil {
		return lister.Config{}, 0, err
	}
	if *captureDir == "" {
		return lister.Config{}, 0, errors.New("missing directory string on -capture_dir option")
	}
	sev, err := common.ParseSeverity(*logLevel)
	if err != nil {
		return lister.Config{}, 0, fmt.Errorf("log level: %w", err)
	}

	return lister.Config{
		CaptureDir: *captureDir,
		Generation: *gen,
		Buffer:     *buffer,
		TracePath:  *output,
		Compress:   *compress,
		ShowRaw:    *raw,
		Stats:      *stats,
		Jobs:       *jobs,
	}, sev, nil
}

func main() {
	cfg, sev, err := parseConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Printf("PM4 Packet Lister : Error: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewConsoleLogger(sev)
	cfg.Logger = logger
	cfg.OutputWriter = os.Stdout

	if err := lister.Run(cfg); err != nil {
		logger.Zerolog().Error().Err(err).Str("capture", cfg.CaptureDir).Msg("listing failed")
		os.Exit(1)
	}
}
