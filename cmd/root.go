// Package cmd wires the CLI surface to the splitter core.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/xstream-util/xstream/internal/config"
	"github.com/xstream-util/xstream/internal/delim"
	"github.com/xstream-util/xstream/internal/events"
	"github.com/xstream-util/xstream/internal/logging"
	"github.com/xstream-util/xstream/internal/pool"
	"github.com/xstream-util/xstream/internal/stats"
	"github.com/xstream-util/xstream/internal/stream"
)

// Pool strategy names accepted by --pool.
const (
	strategyLimit  = "limit"
	strategyRotate = "rotate"
	strategyEager  = "eager"
)

// Options holds the root command configuration. Defaults come from the
// config file and environment with CLI flags taking precedence
// (see internal/config).
type Options struct {
	Config         string
	Delimiter      string `toml:"delimiter" env:"DELIMITER"`
	Null           bool
	WriteDelimiter string `toml:"write_delimiter" env:"WRITE_DELIMITER"`
	Parallel       int    `toml:"parallel" env:"PARALLEL"`
	Pool           string `toml:"pool" env:"POOL"`
	Stats          bool   `toml:"stats" env:"STATS"`
	LogLevel       string `toml:"logging.level" env:"LOG_LEVEL"`
	LogFormat      string `toml:"logging.format" env:"LOG_FORMAT"`
}

// NewRootCmd builds the xstream root command.
func NewRootCmd() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "xstream [flags] command [args...]",
		Short: "Split a stream among several child processes",
		Long: `xstream splits stdin on a delimiter and pipes each section into a
child process as that process's standard input. For very large streams
of data this is much more efficient than xargs.

Prefix the command with "--" so its own flags are not interpreted by
xstream, e.g.: xstream -d '\n' -p 4 -- grep pattern`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Delimiter, "delimiter", "d", `\n`, "delimiter between inputs; backslash escapes are decoded, the empty string means the null byte")
	flags.BoolVarP(&opts.Null, "null", "0", false, "input sections are delimited by null bytes (same as -d '\\0')")
	flags.StringVarP(&opts.WriteDelimiter, "write-delimiter", "w", "", "replace each matched delimiter with this string on output (may be empty)")
	flags.IntVarP(&opts.Parallel, "parallel", "p", 1, "run up to this many processes in parallel; 0 means unlimited")
	flags.StringVar(&opts.Pool, "pool", strategyLimit, "pool strategy: limit, rotate or eager")
	flags.BoolVar(&opts.Stats, "stats", false, "report segment and process totals when the run finishes")
	flags.StringVar(&opts.LogLevel, "log-level", "info", "logging level (debug, info, warn, error)")
	flags.StringVar(&opts.LogFormat, "log-format", "text", "logging format (text, json)")
	flags.StringVarP(&opts.Config, "config", "c", "", "path to a TOML configuration file")
	cmd.MarkFlagsMutuallyExclusive("delimiter", "null")

	cmd.AddCommand(newVersionCmd(), newUpdateCmd())
	return cmd
}

func run(cmd *cobra.Command, opts *Options, args []string) error {
	if err := config.LoadConfig(opts, cmd); err != nil {
		return err
	}

	logging.Initialize(logging.Config{Level: opts.LogLevel, Format: opts.LogFormat})
	logger := logging.GetLogger("xstream")

	delimiter, writeDelim := delimiters(cmd.Flags().Changed("write-delimiter"), opts)
	if opts.Parallel < 0 {
		return fmt.Errorf("parallel must be zero or positive, got %d", opts.Parallel)
	}

	bus := events.New()
	var collector *stats.Collector
	if opts.Stats {
		collector = stats.NewCollector(bus)
		defer collector.Close()
	}

	template := pool.Template{Path: args[0], Args: args[1:]}
	p, err := newPool(opts.Pool, template, opts.Parallel, &pool.Options{
		Logger: logging.GetLogger("pool"),
		Bus:    bus,
	})
	if err != nil {
		return err
	}
	defer p.Close()

	splitter := &stream.Splitter{
		Delim:      delimiter,
		WriteDelim: writeDelim,
		Bus:        bus,
		Logger:     logging.GetLogger("stream"),
	}
	src := stream.NewSource(os.Stdin, len(delimiter))

	logger.Debug("starting run", "command", args[0], "parallel", opts.Parallel, "pool", opts.Pool)
	if err := splitter.Run(p, src); err != nil {
		return err
	}

	if collector != nil {
		summary := collector.Settle(250 * time.Millisecond)
		logger.Info("run complete",
			"segments", summary.Segments,
			"bytes", summary.Bytes,
			"processes", summary.Spawned)
	}
	return nil
}

// delimiters decodes the input delimiter and the optional write
// delimiter. The write delimiter applies when the flag was given (even
// empty) or a non-empty value arrived via config or environment.
func delimiters(writeDelimSet bool, opts *Options) (delimiter, writeDelim []byte) {
	if opts.Null {
		delimiter = []byte{0}
	} else {
		decoded := delim.Unescape(opts.Delimiter)
		if decoded == "" {
			decoded = "\x00"
		}
		delimiter = []byte(decoded)
	}

	if writeDelimSet || opts.WriteDelimiter != "" {
		writeDelim = []byte(delim.Unescape(opts.WriteDelimiter))
		if writeDelim == nil {
			writeDelim = []byte{}
		}
	}
	return delimiter, writeDelim
}

// newPool selects a pool strategy by name.
func newPool(strategy string, template pool.Template, max int, opts *pool.Options) (pool.Pool, error) {
	switch strategy {
	case strategyLimit:
		return pool.NewLimiting(template, max, opts), nil
	case strategyRotate:
		return pool.NewRotating(template, max, opts), nil
	case strategyEager:
		return pool.NewEager(template, max, opts), nil
	default:
		return nil, fmt.Errorf("unknown pool strategy %q (want limit, rotate or eager)", strategy)
	}
}
