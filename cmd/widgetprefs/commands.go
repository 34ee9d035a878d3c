package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/widgetprefs"
	"github.com/CreativeUnicorns/widgetprefs/internal/settings"
)

func (c *cli) widgetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "widgets",
		Short: "List the widget catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, w := range c.manager().Registry().All() {
				def := "hidden"
				if w.DefaultVisible {
					def = "shown"
				}
				fmt.Fprintf(c.out, "%-24s %-32s %dx%d  default %s\n", w.ID, w.Title, w.Size.W, w.Size.H, def)
			}
			return nil
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show every widget with its visibility for the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			mgr := c.manager()
			v := mgr.Load(ctx, c.profile)

			fmt.Fprintf(c.out, "Profile %s\n", c.profile)
			for _, w := range mgr.Registry().All() {
				mark := "[ ]"
				if mgr.Registry().IsVisible(v, w.ID) {
					mark = "[x]"
				}
				fmt.Fprintf(c.out, "  %s %-24s %s\n", mark, w.ID, w.Title)
			}

			saved, err := mgr.LastSaved(ctx, c.profile)
			switch {
			case err == nil:
				fmt.Fprintf(c.out, "Last saved %s\n", humanize.Time(saved))
			case errors.Is(err, widgetprefs.ErrNotFound):
				fmt.Fprintln(c.out, "Not saved yet")
			default:
				fmt.Fprintf(c.out, "Last saved unknown (%v)\n", err)
			}
			return nil
		},
	}
}

func (c *cli) visibleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visible",
		Short: "Print the ids the dashboard renders, in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, w := range c.manager().VisibleWidgets(cmd.Context(), c.profile) {
				fmt.Fprintln(c.out, w.ID)
			}
			return nil
		},
	}
}

func (c *cli) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip one widget between shown and hidden",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := c.widgetArg(args[0])
			if err != nil {
				return err
			}
			mgr := c.manager()
			v := mgr.Toggle(cmd.Context(), c.profile, w.ID)
			c.printState(w, mgr.Registry().IsVisible(v, w.ID))
			return nil
		},
	}
}

func (c *cli) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set <id> on|off",
		Short:     "Show or hide one widget",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := c.widgetArg(args[0])
			if err != nil {
				return err
			}
			visible, err := parseSwitch(args[1])
			if err != nil {
				return err
			}
			mgr := c.manager()
			v := mgr.Set(cmd.Context(), c.profile, w.ID, visible)
			c.printState(w, mgr.Registry().IsVisible(v, w.ID))
			return nil
		},
	}
}

func (c *cli) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the catalog defaults for the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr := c.manager()
			v := mgr.Reset(cmd.Context(), c.profile)
			fmt.Fprintf(c.out, "Restored defaults for %s: %d of %d widgets shown\n",
				c.profile, len(mgr.Registry().Visible(v)), mgr.Registry().Len())
			return nil
		},
	}
}

func (c *cli) profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List profiles with saved visibility",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := c.manager().Profiles(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list profiles: %w", err)
			}
			for _, p := range profiles {
				fmt.Fprintln(c.out, p)
			}
			return nil
		},
	}
}

func (c *cli) settingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Pick visible widgets interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return settings.Run(cmd.Context(), c.manager(), c.profile)
		},
	}
}

func (c *cli) printState(w widgetprefs.Widget, visible bool) {
	state := "hidden"
	if visible {
		state = "shown"
	}
	fmt.Fprintf(c.out, "%s is now %s\n", w.ID, state)
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "show", "true", "yes", "1":
		return true, nil
	case "off", "hide", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q: %w", s, widgetprefs.ErrInvalidInput)
}
