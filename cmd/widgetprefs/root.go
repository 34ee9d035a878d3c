package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/widgetprefs"
	"github.com/CreativeUnicorns/widgetprefs/internal/bootstrap"
	"github.com/CreativeUnicorns/widgetprefs/internal/config"
)

// cli holds the global flags and the App opened for the running command.
type cli struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	profile    string
	verbose    bool

	app *bootstrap.App
}

// execute runs the command line in args and releases the App afterwards.
func execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	c := &cli{out: out, errOut: errOut}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		err = errors.Join(err, c.app.Close())
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "widgetprefs",
		Short: "Manage which dashboard widgets are shown",
		Long: `widgetprefs reads and edits the per-profile widget visibility used by the
AI-market dashboard. Storage, cache and encryption come from the same
config.toml the server uses.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.open,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default: search path)")
	flags.StringVarP(&c.profile, "profile", "p", widgetprefs.DefaultProfile, "profile to read and edit")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.widgetsCmd(),
		c.showCmd(),
		c.visibleCmd(),
		c.toggleCmd(),
		c.setCmd(),
		c.resetCmd(),
		c.profilesCmd(),
		c.settingsCmd(),
	)
	return root
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	cfg.Log.Format = "zap"
	if c.verbose {
		cfg.Log.Level = "debug"
	} else {
		cfg.Log.Level = "warn"
	}

	app, err := bootstrap.New(cmd.Context(), cfg, c.errOut)
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}
	c.app = app
	return nil
}

func (c *cli) manager() *widgetprefs.Manager {
	return c.app.Manager
}

// widgetArg resolves id against the registry.
func (c *cli) widgetArg(id string) (widgetprefs.Widget, error) {
	w, ok := c.manager().Registry().Lookup(id)
	if !ok {
		return widgetprefs.Widget{}, fmt.Errorf("unknown widget %q (see 'widgetprefs widgets'): %w", id, widgetprefs.ErrNotFound)
	}
	return w, nil
}
