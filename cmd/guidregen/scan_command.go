package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"guidregen/internal/preflight"
	"guidregen/internal/regen"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var showExternal bool
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Report the GUID inventory of the project without modifying it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := preflight.Err(preflight.RunAll(cfg, preflight.ReadOnly)); err != nil {
				return fmt.Errorf("preflight failed:\n%w", err)
			}
			p, err := ctx.openProject()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			progress := newProgress(cmd.ErrOrStderr(), !noProgress && isTerminal(cmd.ErrOrStderr()))
			inv, err := regen.New(p, logger).Scan(runCtx, cfg.Project.Extensions, progress)
			progress.Done()
			if err != nil {
				if errors.Is(err, regen.ErrCanceled) {
					return context.Canceled
				}
				return fmt.Errorf("scan: %w", err)
			}

			out := cmd.OutOrStdout()
			external := externalReferences(inv)
			fmt.Fprintln(out, renderKeyValues([][2]string{
				{"Project", p.Root()},
				{"Files scanned", humanize.Comma(int64(len(inv.Files)))},
				{"Bytes scanned", humanize.Bytes(uint64(inv.Bytes))},
				{"Files with GUIDs", humanize.Comma(int64(len(inv.Indexed)))},
				{"Distinct GUIDs", humanize.Comma(int64(len(inv.Order)))},
				{"Owned GUIDs", humanize.Comma(int64(len(inv.Owned)))},
				{"External GUIDs", humanize.Comma(int64(len(external)))},
			}))

			exts := make([]string, 0, len(inv.ByExt))
			for ext := range inv.ByExt {
				exts = append(exts, ext)
			}
			sort.Strings(exts)
			rows := make([][]string, 0, len(exts))
			for _, ext := range exts {
				stats := inv.ByExt[ext]
				rows = append(rows, []string{
					ext,
					humanize.Comma(int64(stats.Files)),
					humanize.Bytes(uint64(stats.Bytes)),
					humanize.Comma(int64(stats.Occurrences)),
				})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"Extension", "Files", "Size", "GUID refs"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
				))
			}

			if showExternal && len(external) > 0 {
				extRows := make([][]string, 0, len(external))
				for _, ref := range external {
					extRows = append(extRows, []string{ref.id, strconv.Itoa(ref.files), p.Rel(ref.first)})
				}
				fmt.Fprintln(out, "GUIDs referenced but not owned by any .meta file (built-in or missing assets):")
				fmt.Fprintln(out, renderTable(
					[]string{"GUID", "Files", "First seen in"},
					extRows,
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showExternal, "external", false, "List GUIDs that no .meta file in the project declares")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

type externalRef struct {
	id    string
	files int
	first string
}

// externalReferences lists identifiers that are referenced but not owned,
// in first-seen order.
func externalReferences(inv *regen.Inventory) []externalRef {
	index := make(map[string]int)
	var refs []externalRef
	for _, path := range inv.Indexed {
		for _, id := range inv.FileIDs[path] {
			if inv.Owned.Has(id) {
				continue
			}
			key := id.String()
			if i, ok := index[key]; ok {
				refs[i].files++
				continue
			}
			index[key] = len(refs)
			refs = append(refs, externalRef{id: key, files: 1, first: path})
		}
	}
	return refs
}
