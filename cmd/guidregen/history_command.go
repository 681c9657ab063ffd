package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"guidregen/internal/journal"
)

var errJournalDisabled = errors.New("run journal is disabled (set journal.enabled = true)")

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past regeneration runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(store *journal.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				now := time.Now()
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortRunID(run.ID),
						humanize.RelTime(run.StartedAt, now, "ago", "from now"),
						phaseLabel(run),
						run.Mode,
						humanize.Comma(int64(run.FilesRewritten)),
						strconv.Itoa(run.GUIDsRegenerated),
						summarizeSelection(run.Selection, run.Recursive),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Started", "Status", "Mode", "Files", "GUIDs", "Selection"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run and the GUID mapping it applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(ctx, func(store *journal.Store) error {
				run, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				mappings, err := store.Mappings(cmd.Context(), run.ID)
				if err != nil {
					return err
				}

				finished := "-"
				if run.Finished() {
					finished = run.FinishedAt.Local().Format(time.DateTime)
				}
				pairs := [][2]string{
					{"Run", run.ID},
					{"Project", run.Project},
					{"Started", run.StartedAt.Local().Format(time.DateTime)},
					{"Finished", finished},
					{"Status", phaseLabel(run)},
					{"Mode", run.Mode},
					{"Recursive", yesNo(run.Recursive)},
					{"Dry run", yesNo(run.DryRun)},
					{"Selection", strings.Join(run.Selection, "\n")},
					{"Files scanned", humanize.Comma(int64(run.FilesScanned))},
					{"Files rewritten", humanize.Comma(int64(run.FilesRewritten))},
					{"GUIDs regenerated", strconv.Itoa(run.GUIDsRegenerated)},
				}
				if run.ErrorMessage != "" {
					pairs = append(pairs, [2]string{"Error", run.ErrorMessage})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderKeyValues(pairs))
				if len(mappings) > 0 {
					rows := make([][]string, 0, len(mappings))
					for _, m := range mappings {
						rows = append(rows, []string{m.Old.String(), m.New.String()})
					}
					fmt.Fprintln(out, renderTable([]string{"Old GUID", "New GUID"}, rows, nil))
				}
				return nil
			})
		},
	}
}

func withJournal(ctx *commandContext, fn func(*journal.Store) error) error {
	store, err := ctx.openJournal()
	if err != nil {
		return err
	}
	if store == nil {
		return errJournalDisabled
	}
	defer store.Close()
	return fn(store)
}

func phaseLabel(run *journal.Run) string {
	if !run.Finished() {
		return "incomplete"
	}
	if run.DryRun {
		return string(run.Phase) + " (dry run)"
	}
	return string(run.Phase)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func summarizeSelection(selection []string, recursive bool) string {
	var summary string
	switch len(selection) {
	case 0:
		summary = "-"
	case 1:
		summary = selection[0]
	default:
		summary = fmt.Sprintf("%s (+%d more)", selection[0], len(selection)-1)
	}
	if recursive {
		summary += " [recursive]"
	}
	return summary
}
