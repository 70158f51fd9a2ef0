package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/todoview/internal/config"
	"github.com/idilsaglam/todoview/internal/listview"
	"github.com/idilsaglam/todoview/internal/model"
	"github.com/idilsaglam/todoview/internal/pipeline"
	"github.com/idilsaglam/todoview/internal/tui"
	"github.com/idilsaglam/todoview/internal/ui"
)

const indexHint = "run `todo print` to see valid indexes"

func newRootCmd(a *app) *cobra.Command {
	var (
		flags   config.Flags
		noColor bool
	)

	root := &cobra.Command{
		Use:   "todo",
		Short: "A to-do list for a remote item service",
		Long: `todo shows the items of a to-do service in an interactive list.

Without a subcommand it opens the list (same as "todo ls").`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &usageError{msg: "unknown subcommand: " + args[0], hint: "run `todo --help`"}
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.setup(flags, cmd, noColor)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), a)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{msg: err.Error(), hint: "run `todo --help`"}
	})

	flags.Bind(root.PersistentFlags())
	root.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")

	root.AddCommand(
		newLsCmd(a),
		newPrintCmd(a),
		newAddCmd(a),
		newDoneCmd(a),
		newRmCmd(a),
		newClearCmd(a),
	)
	return root
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: todo %s", usage)
		}
		return nil
	}
}

func runTUI(ctx context.Context, a *app) error {
	a.log.Info("opening list", "source", a.source)
	if err := tui.Run(ctx, a.holder(), a.source); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// settle runs a holder command to completion and commits its result.
func settle(h *listview.Holder, cmd tea.Cmd) error {
	switch msg := cmd().(type) {
	case listview.CollectionMsg:
		return h.Apply(msg)
	case listview.DeletedMsg:
		return msg.Err
	}
	return nil
}

// loaded returns a holder with the collection fetched.
func loaded(ctx context.Context, a *app) (*listview.Holder, error) {
	h := a.holder()
	if err := settle(h, h.Refresh(ctx)); err != nil {
		return nil, err
	}
	return h, nil
}

// pick resolves a 1-based index against the rendered list.
func pick(h *listview.Holder, arg string) (model.Item, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return model.Item{}, usagef("not a number: %s", arg)
	}
	items := h.View().Items
	if n < 1 || n > len(items) {
		return model.Item{}, &usageError{
			msg:  fmt.Sprintf("index out of range: have %d, got %d", len(items), n),
			hint: indexHint,
		}
	}
	return items[n-1], nil
}

func label(it model.Item) string {
	if it.Title == "" {
		return it.ID.String()
	}
	return strconv.Quote(it.Title)
}

func newLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Open the interactive list",
		Args:    exactArgs(0, "ls"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), a)
		},
	}
}

func newPrintCmd(a *app) *cobra.Command {
	var (
		opt        ui.ListOptions
		sortFlag   string
		filterFlag string
		query      string
	)
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the list without the interactive UI",
		Args:  exactArgs(0, "print [--sort asc|desc] [--filter all|pending|done]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loaded(cmd.Context(), a)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("sort") {
				d, ok := pipeline.ParseSort(sortFlag)
				if !ok {
					return usagef("--sort: unknown value %q", sortFlag)
				}
				h.SetSort(d)
			}
			if cmd.Flags().Changed("filter") {
				f, ok := pipeline.ParseFilter(filterFlag)
				if !ok {
					return usagef("--filter: unknown value %q", filterFlag)
				}
				h.SetFilter(f)
			}
			h.SetQuery(query)

			ui.Panel(a.out, ui.ListLines(h.Collection(), h.View(), h.Params(), opt))
			return nil
		},
	}
	cmd.Flags().BoolVar(&opt.Group, "group", false, "group output by pending/done")
	cmd.Flags().BoolVar(&opt.ShowIDs, "ids", false, "show item ids")
	cmd.Flags().StringVar(&sortFlag, "sort", "asc", "sort by last update: asc or desc")
	cmd.Flags().StringVar(&filterFlag, "filter", "all", "all, pending or done")
	cmd.Flags().StringVar(&query, "query", "", "search query")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a new item (title can be multiple words)",
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return usagef("usage: todo add <title...>")
			}
			h := a.holder()
			if err := settle(h, h.Add(cmd.Context(), title)); err != nil {
				return err
			}
			ui.OK(a.out, "added")
			return nil
		},
	}
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <index>",
		Short: "Toggle done for the item at a 1-based index",
		Args:  exactArgs(1, "done <index>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loaded(cmd.Context(), a)
			if err != nil {
				return err
			}
			it, err := pick(h, args[0])
			if err != nil {
				return err
			}
			if err := settle(h, h.ToggleDone(cmd.Context(), it)); err != nil {
				return err
			}
			state := "pending"
			if !it.Done {
				state = "done"
			}
			ui.OK(a.out, fmt.Sprintf("toggled %s: %s", label(it), state))
			return nil
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index>",
		Short: "Remove the item at a 1-based index",
		Args:  exactArgs(1, "rm <index>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := loaded(ctx, a)
			if err != nil {
				return err
			}
			it, err := pick(h, args[0])
			if err != nil {
				return err
			}
			if err := settle(h, h.DeleteOne(ctx, it.ID)); err != nil {
				return err
			}
			if err := settle(h, h.Refresh(ctx)); err != nil {
				return err
			}
			ui.OK(a.out, fmt.Sprintf("removed %s (%d left)", label(it), len(h.Collection())))
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every item",
		Args:  exactArgs(0, "clear --yes"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return &usageError{msg: "clear deletes every item", hint: "pass --yes to confirm"}
			}
			h, err := loaded(cmd.Context(), a)
			if err != nil {
				return err
			}
			n := len(h.Collection())
			if err := settle(h, h.DeleteAll(cmd.Context())); err != nil {
				return err
			}
			ui.OK(a.out, fmt.Sprintf("deleted %d items", n-len(h.Collection())))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deleting everything")
	return cmd
}
