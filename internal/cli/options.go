package cli

import (
	"io"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/preston-bernstein/mister-service/internal/cpmodel"
	"github.com/preston-bernstein/mister-service/internal/cpmodel/pbsat"
	"github.com/preston-bernstein/mister-service/internal/logging"
	"github.com/preston-bernstein/mister-service/internal/random"
	"github.com/preston-bernstein/mister-service/internal/selection"
)

const defaultTimeout = 30 * time.Second

// Options are the flags shared by every subcommand.
type Options struct {
	LogLevel  string
	LogFormat string
	Timeout   time.Duration
	Optimal   bool
	Seed      int64

	newEngine func(time.Duration, *slog.Logger) cpmodel.Engine
}

// NewOptions returns options with defaults applied.
func NewOptions() *Options {
	return &Options{
		LogLevel:  "warn",
		LogFormat: "text",
		Timeout:   defaultTimeout,
		newEngine: func(limit time.Duration, logger *slog.Logger) cpmodel.Engine {
			return pbsat.New(limit, logger)
		},
	}
}

// AddGlobalFlags registers flags available to every subcommand.
func (o *Options) AddGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level: debug, info, warn or error")
	fs.StringVar(&o.LogFormat, "log-format", o.LogFormat, "Log format: text or json")
}

// AddSolveFlags registers flags for the solve subcommand.
func (o *Options) AddSolveFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Optimal, "optimal", o.Optimal, "Return the optimal assignment instead of a representative one")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Upper bound on solver search time")
	fs.Int64Var(&o.Seed, "seed", o.Seed, "Seed for the representative pick (0 picks a random seed)")
}

func (o *Options) logger(w io.Writer) *slog.Logger {
	return logging.NewLogger(logging.Config{
		Level:   o.LogLevel,
		Format:  o.LogFormat,
		Service: "mister",
		Output:  w,
	})
}

func (o *Options) rand() (selection.Rand, error) {
	if o.Seed != 0 {
		return random.NewLocked(o.Seed), nil
	}
	return random.NewLockedFromCrypto()
}
