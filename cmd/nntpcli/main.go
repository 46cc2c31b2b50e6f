package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/app"
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/infra/config"
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/infra/logger"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, c := newRootCmd()
	err := root.ExecuteContext(ctx)
	if cerr := c.teardown(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries the flag values and the application built from them.
type cli struct {
	configPath string
	host       string
	port       int
	user       string
	pass       string
	timeout    string
	jsonOut    bool

	app *app.Context
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	root := &cobra.Command{
		Use:           "nntpcli",
		Short:         "Talk to an NNTP news server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&c.configPath, "config", "c", "", "path to config.yaml")
	f.StringVar(&c.host, "host", "", "news server host")
	f.IntVarP(&c.port, "port", "p", 0, "news server port")
	f.StringVarP(&c.user, "user", "u", "", "AUTHINFO username")
	f.StringVar(&c.pass, "pass", "", "AUTHINFO password")
	f.StringVarP(&c.timeout, "timeout", "t", "", "per-step timeout, e.g. 10s")
	f.BoolVar(&c.jsonOut, "json", false, "print the full result as JSON")

	root.AddCommand(
		c.authCmd(),
		c.groupsCmd(),
		c.listGroupCmd(),
		c.headCmd(),
		c.articleCmd(),
		c.historyCmd(),
		c.serveCmd(),
	)
	return root, c
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if err := c.applyFlags(cmd, cfg); err != nil {
		return err
	}

	// One-shot commands keep stdout for their output.
	console := cfg.Log.IncludeStdout && cmd.Name() == "serve"
	log, err := logger.New(cfg.Log.Path, logger.ParseLevel(cfg.Log.Level), console)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	appCtx, err := app.NewContext(cmd.Context(), cfg, log)
	if err != nil {
		log.Close()
		return err
	}
	c.app = appCtx
	return nil
}

func (c *cli) teardown() error {
	if c.app == nil {
		return nil
	}
	err := errors.Join(c.app.Close(), c.app.Logger.Close())
	c.app = nil
	return err
}
