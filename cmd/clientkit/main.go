package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pitabwire/util"

	"github.com/pitabwire/clientkit/config"
)

const minArgsCommand = 2

func main() {
	if len(os.Args) < minArgsCommand {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.FromEnv[config.ConfigurationDefault]()
	if err != nil {
		exitOnErr(fmt.Errorf("load configuration: %w", err))
	}

	ctx = util.ContextWithLogger(ctx, newLogger(ctx, &cfg))
	ctx = config.ToContext(ctx, &cfg)

	a := newApp(&cfg, os.Stdout)
	defer a.Close(ctx)

	switch os.Args[1] {
	case "locale":
		err = a.cmdLocale(ctx, os.Args[2:])
	case "id":
		err = a.cmdID(os.Args[2:])
	case "plz":
		err = a.cmdPLZ(os.Args[2:])
	case "track":
		err = a.cmdTrack(ctx, os.Args[2:])
	case "version":
		err = a.cmdVersion()
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %q\n", os.Args[1])
		usage()
		a.Close(ctx)
		os.Exit(1)
	}

	if err != nil {
		a.Close(ctx)
		exitOnErr(err)
	}
}

func newLogger(ctx context.Context, cfg config.ConfigurationLogLevel) *util.LogEntry {
	var opts []util.Option

	logLevel, err := util.ParseLevel(cfg.LoggingLevel())
	if err == nil {
		opts = append(opts, util.WithLogLevel(logLevel))
	}
	opts = append(opts,
		util.WithLogTimeFormat(cfg.LoggingTimeFormat()),
		util.WithLogNoColor(!cfg.LoggingColored()))
	if cfg.LoggingShowStackTrace() {
		opts = append(opts, util.WithLogStackTrace())
	}

	return util.NewLogger(ctx, opts...)
}

func usage() {
	fmt.Fprintln(os.Stdout, "clientkit <command> [args]")
	fmt.Fprintln(os.Stdout, "")
	fmt.Fprintln(os.Stdout, "Commands:")
	fmt.Fprintln(os.Stdout, "  locale get")
	fmt.Fprintln(os.Stdout, "  locale set <code>")
	fmt.Fprintln(os.Stdout, "  locale negotiate <accept-language>")
	fmt.Fprintln(os.Stdout, "  locale translate <message-id> [key=value...]")
	fmt.Fprintln(os.Stdout, "  id [--count N] [full|short|sortable]")
	fmt.Fprintln(os.Stdout, "  plz <text>")
	fmt.Fprintln(os.Stdout, "  track <event> [key=value...]")
	fmt.Fprintln(os.Stdout, "  version")
}

func exitOnErr(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
