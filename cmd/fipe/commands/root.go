package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"fipe/consulta/internal/config"
	"fipe/consulta/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// options is shared by every subcommand. container is set up before a
// subcommand runs and closed after it returns.
type options struct {
	configPath string
	logLevel   string

	config    *config.Config
	container *container.Container
}

func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "fipe",
		Short:         "fipe queries FIPE vehicle reference prices and keeps a list of favorites.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&o.configPath, "config", "", "path to the config file (default ./config.yaml)")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "overrides log.level from the config")

	root.AddCommand(
		newServeCmd(o),
		newBrandsCmd(o),
		newModelsCmd(o),
		newYearsCmd(o),
		newQuoteCmd(o),
		newPriceCmd(o),
		newFavoritesCmd(o),
	)
	return root
}

func (o *options) setup(ctx context.Context) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := setupLogging(cfg.Log); err != nil {
		return err
	}
	o.config = cfg

	c, err := container.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	o.container = c
	return nil
}

func (o *options) close() {
	if o.container == nil {
		return
	}
	if err := o.container.Close(); err != nil {
		log.Warnf("Failed to close container: %v", err)
	}
}

func setupLogging(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	o := &options{}
	defer o.close()

	root := newRootCmd(o)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func ExecuteContext(ctx context.Context) {
	if err := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
