package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/routedash/internal/cli"
	"github.com/okian/routedash/internal/config"
	"github.com/okian/routedash/internal/domain/model"
)

// Default configuration constants.
const (
	defaultInterval = 5 * time.Second
	defaultLogLevel = "warn"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args and executes one command. It returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// Defaults come from the same config layers as the server.
	base, err := config.Load(ctx)
	if err != nil {
		_, _ = io.WriteString(stderr, "failed to load config: "+err.Error()+"\n")
		return 1
	}

	global := flag.NewFlagSet("routectl", flag.ContinueOnError)
	global.SetOutput(stderr)
	var (
		baseURL  = global.String("url", base.GatewayURL, "Gateway base URL")
		timeout  = global.Duration("timeout", base.RequestTimeout(), "Per-request timeout, 0 for none")
		asJSON   = global.Bool("json", false, "Print raw JSON instead of the rendered view")
		logLevel = global.String("log-level", defaultLogLevel, "Log level for stderr")
		help     = global.Bool("help", false, "Show help")
	)
	if err := global.Parse(args); err != nil {
		return 2
	}
	if *help || global.NArg() == 0 {
		cli.ShowHelp(stdout)
		if *help {
			return 0
		}
		return 2
	}

	if err := cli.SetupLogging(*logLevel); err != nil {
		_, _ = io.WriteString(stderr, "failed to setup logging: "+err.Error()+"\n")
		return 1
	}

	cfg := &cli.Config{
		GatewayURL: *baseURL,
		Timeout:    *timeout,
		Interval:   defaultInterval,
		JSON:       *asJSON,
		Out:        stdout,
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	err = dispatch(ctx, cmd, rest, cfg, base.DefaultTopN, stderr)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	default:
		_, _ = io.WriteString(stderr, cmd+" failed: "+err.Error()+"\n")
		return 1
	}
}

func dispatch(ctx context.Context, cmd string, args []string, cfg *cli.Config, defaultTopN int, stderr io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	switch cmd {
	case "health":
		if err := fs.Parse(args); err != nil {
			return err
		}
		return cli.RunHealth(ctx, cfg)

	case "watch":
		fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "Poll cadence")
		fs.IntVar(&cfg.Count, "count", 0, "Exit after this many snapshots")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if cfg.Interval <= 0 {
			return fmt.Errorf("%w: -interval must be > 0", errUsage)
		}
		return cli.RunWatch(ctx, cfg)

	case "recommend":
		var q model.Query
		mode := fs.String("mode", string(model.ModeAuto), "auto, air or rail")
		fs.StringVar(&q.Source, "source", "", "Source code")
		fs.StringVar(&q.Destination, "destination", "", "Destination code")
		fs.StringVar(&q.UserID, "user", "", "Optional user id")
		fs.IntVar(&q.TopN, "top", defaultTopN, "Number of results, 1-50")
		if err := fs.Parse(args); err != nil {
			return err
		}
		q.Mode = model.Mode(*mode)
		return cli.RunRecommend(ctx, cfg, q)

	case "user":
		id := fs.String("id", "", "User id")
		mode := fs.String("mode", "", "air or rail")
		top := fs.Int("top", defaultTopN, "Number of results, 1-50")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return cli.RunUser(ctx, cfg, *id, model.Mode(*mode), *top)

	default:
		cli.ShowHelp(stderr)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}
