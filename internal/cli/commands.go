package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/checklist/internal/filter"
	"github.com/idilsaglam/checklist/internal/session"
	"github.com/idilsaglam/checklist/internal/tui"
	"github.com/idilsaglam/checklist/internal/ui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive checklist",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}
}

func (a *app) runTUI() error {
	if err := tui.Run(a.session); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func newListCmd(a *app) *cobra.Command {
	var all, expand bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list", "status"},
		Short:   "Show progress for the active view",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if expand {
				a.session.ExpandOrCollapseAll()
			}
			ui.Panel(cmd.OutOrStdout(), listLines(a.session, all))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "ignore filters and show every list and entry")
	cmd.Flags().BoolVarP(&expand, "expand", "e", false, "show the entries of each list")
	return cmd
}

func newViewsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the catalog's views",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			active := a.session.ActiveView()
			for _, name := range a.session.Views() {
				if err := a.session.SetView(name); err != nil {
					return err
				}
				done, total := totals(a.session.Project())
				mark := " "
				if name == active {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-16s %s\n", mark, name, ui.ProgressBar(done, total, 20))
			}
			return a.session.SetView(active)
		},
	}
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <list> <entry>",
		Short: "Toggle an entry between done and not done",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.session.ToggleEntry(args[0], args[1])
			if err != nil {
				return err
			}
			reportEntry(cmd, g, args[1])
			return nil
		},
	}
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <list> <entry> <true|false>",
		Short: "Mark an entry done or not done",
		Args:  usageArgs(cobra.ExactArgs(3)),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseBool(args[2])
			if err != nil {
				return usage("set: not a boolean: %s", args[2])
			}
			g, err := a.session.SetEntry(args[0], args[1], v)
			if err != nil {
				return err
			}
			reportEntry(cmd, g, args[1])
			return nil
		},
	}
}

func newAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "all <list> [true|false]",
		Short: "Complete every entry of a list, or reset it when it is already complete",
		Args:  usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				g   session.GroupView
				err error
			)
			if len(args) == 2 {
				v, perr := strconv.ParseBool(args[1])
				if perr != nil {
					return usage("all: not a boolean: %s", args[1])
				}
				g, err = a.session.SetGroup(args[0], v)
			} else {
				g, err = a.session.ToggleGroup(args[0])
			}
			if err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("%s %d/%d", g.Name, g.Completed, g.Total))
			return nil
		},
	}
}

func newFilterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "filter [completed|base|dlc] [on|off]",
		Short: "Show or change the visibility filters",
		Long: `Without arguments, print the filters. With a name, toggle that filter,
or set it when on/off is given.`,
		Args: usageArgs(cobra.MaximumNArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				printFlags(cmd, a.session.Flags())
				return nil
			}
			flag, err := filter.ParseFlag(args[0])
			if err != nil {
				return usageError{err}
			}
			var f filter.Flags
			if len(args) == 2 {
				v, err := parseOnOff(args[1])
				if err != nil {
					return err
				}
				f = a.session.SetFilter(flag, v)
			} else {
				f = a.session.ToggleFilter(flag)
			}
			ui.OK(out, fmt.Sprintf("%s: %s", flag, onOff(f.Get(flag))))
			return nil
		},
	}
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "show", "yes":
		return true, nil
	case "off", "hide", "no":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, usage("filter: want on or off, got %s", s)
	}
	return v, nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func printFlags(cmd *cobra.Command, f filter.Flags) {
	for _, flag := range []filter.Flag{filter.Completed, filter.BaseGame, filter.DLC} {
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", flag, onOff(f.Get(flag)))
	}
}

func reportEntry(cmd *cobra.Command, g session.GroupView, entryID string) {
	state := "not done"
	for _, e := range g.Entries {
		if e.ID == entryID && e.Completed {
			state = "done"
		}
	}
	ui.OK(cmd.OutOrStdout(), fmt.Sprintf("%s %s (%s %d/%d)", entryID, state, g.Name, g.Completed, g.Total))
}
