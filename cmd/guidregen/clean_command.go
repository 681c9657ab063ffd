package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"guidregen/internal/projectlock"
	"guidregen/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var listOnly bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove staging files left behind by interrupted atomic rewrites",
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
			p, err := ctx.openProject()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if listOnly {
				files, err := staging.List(p.FS(), p.AssetsPath())
				if err != nil {
					return err
				}
				if len(files) == 0 {
					fmt.Fprintln(out, "No staging files found")
					return nil
				}
				rows := make([][]string, 0, len(files))
				for _, f := range files {
					rows = append(rows, []string{p.Rel(f.Path), humanize.Bytes(uint64(f.Size)), humanize.Time(f.ModTime)})
				}
				fmt.Fprintln(out, renderTable([]string{"File", "Size", "Modified"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
				return nil
			}

			lock, err := projectlock.Acquire(cfg.Paths.StateDir, p.Root())
			if err != nil {
				return err
			}
			defer lock.Release()

			result := staging.CleanStale(cmd.Context(), p.FS(), p.AssetsPath(), olderThan, logger)
			for _, f := range result.Removed {
				fmt.Fprintf(out, "Removed %s\n", p.Rel(f.Path))
			}
			fmt.Fprintf(out, "Removed %d staging file(s)\n", len(result.Removed))
			if len(result.Errors) > 0 {
				errs := make([]error, 0, len(result.Errors))
				for _, e := range result.Errors {
					errs = append(errs, fmt.Errorf("%s: %w", p.Rel(e.Path), e.Error))
				}
				return fmt.Errorf("clean: %w", errors.Join(errs...))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", time.Hour, "Only remove staging files older than this")
	cmd.Flags().BoolVar(&listOnly, "list", false, "List staging files without removing them")
	return cmd
}
