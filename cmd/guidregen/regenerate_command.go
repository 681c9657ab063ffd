package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"guidregen/internal/guid"
	"guidregen/internal/logging"
	"guidregen/internal/preflight"
	"guidregen/internal/projectlock"
	"guidregen/internal/regen"
)

func newRegenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		recursive  bool
		assumeYes  bool
		dryRun     bool
		atomic     bool
		backupDir  string
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "regenerate <path>...",
		Short: "Give the selected assets new GUIDs and update every reference",
		Long: `Regenerate assigns fresh GUIDs to the selected assets and folders and rewrites
every reference to them under the Assets folder. References to built-in
resources and to unselected assets are left untouched.

Paths may be absolute, relative to the project root (Assets/...), or relative
to the working directory. With --recursive, every file below a selected folder
is regenerated as well.`,
		Aliases: []string{"regen"},
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			access := preflight.ReadWrite
			if dryRun {
				access = preflight.ReadOnly
			}
			if err := preflight.Err(preflight.RunAll(cfg, access)); err != nil {
				return fmt.Errorf("preflight failed:\n%w", err)
			}

			p, err := ctx.openProject()
			if err != nil {
				return err
			}
			if err := regen.CheckBackupDir(p, backupDir); err != nil {
				return err
			}

			if !dryRun {
				lock, err := projectlock.Acquire(cfg.Paths.StateDir, p.Root())
				if err != nil {
					return err
				}
				defer func() {
					if err := lock.Release(); err != nil {
						logging.Warn(logger, "failed to release project lock", "lock_release_failed",
							"the next run may need the lock file removed", logging.Error(err))
					}
				}()
			}

			if cfg.Rewrite.Confirm && !assumeYes && !dryRun {
				ok, err := confirmRegeneration(cmd.InOrStdin(), cmd.ErrOrStderr(), args, recursive)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted; no files were modified.")
					return nil
				}
			}

			var opts []regen.Option
			store, err := ctx.openJournal()
			if err != nil {
				logging.Warn(logger, "run journal unavailable", "journal_open_failed",
					"this run will not appear in history", logging.Error(err))
			} else if store != nil {
				defer store.Close()
				opts = append(opts, regen.WithRecorder(store))
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r := regen.New(p, logger, opts...)
			res, runErr := r.Run(runCtx, regen.Request{
				Selection:  args,
				Recursive:  recursive,
				Extensions: cfg.Project.Extensions,
				Atomic:     atomic || cfg.Atomic(),
				DryRun:     dryRun,
				BackupDir:  backupDir,
				Progress:   newProgress(cmd.ErrOrStderr(), !noProgress && isTerminal(cmd.ErrOrStderr())),
			})

			out := cmd.OutOrStdout()
			if errors.Is(runErr, regen.ErrCanceled) {
				fmt.Fprintln(out, "GUID regeneration canceled; no files were modified.")
				return context.Canceled
			}
			if res != nil && (runErr == nil || len(res.Changes) > 0) {
				printRegenSummary(out, res, func(path string) string { return p.Rel(path) })
			}
			if runErr != nil {
				return fmt.Errorf("regenerate: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include every file below selected folders")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&atomic, "atomic", false, "Stage every rewritten file before replacing any (overrides rewrite.mode)")
	cmd.Flags().StringVar(&backupDir, "backup", "", "Copy each file to this directory before rewriting it")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

func confirmRegeneration(in io.Reader, out io.Writer, selection []string, recursive bool) (bool, error) {
	if !canPrompt(in) {
		return false, errors.New("refusing to modify files without confirmation; rerun with --yes")
	}

	warn := color.New(color.FgYellow, color.Bold)
	fmt.Fprintln(out, "You are going to start the process of GUID regeneration. This may have unexpected results.")
	warn.Fprintln(out, "MAKE A PROJECT BACKUP BEFORE PROCEEDING!")
	mode := "selected items"
	if recursive {
		mode = "selected items and everything inside selected folders"
	}
	fmt.Fprintf(out, "Regenerating %s:\n", mode)
	for _, item := range selection {
		fmt.Fprintf(out, "  %s\n", item)
	}
	fmt.Fprint(out, "Regenerate GUIDs? [y/N]: ")

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func printRegenSummary(out io.Writer, res *regen.Result, rel func(string) string) {
	title := "GUID regeneration"
	if res.DryRun {
		title += " (dry run, nothing written)"
	}
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, renderKeyValues([][2]string{
		{"Run", res.RunID},
		{"Status", string(res.Phase)},
		{"Selected GUIDs", strconv.Itoa(res.Selected)},
		{"Files scanned", humanize.Comma(int64(res.Scanned))},
		{"Files with GUIDs", humanize.Comma(int64(res.Indexed))},
		{"Files rewritten", humanize.Comma(int64(len(res.Changes)))},
		{"GUIDs regenerated", strconv.Itoa(len(res.Applied))},
		{"Elapsed", res.EndedAt.Sub(res.StartedAt).Round(time.Millisecond).String()},
	}))

	if len(res.Applied) > 0 {
		files := make(map[string]int)
		for _, change := range res.Changes {
			for _, rep := range change.Replacements {
				files[rep.Old.String()]++
			}
		}
		olds := make([]string, 0, len(res.Applied))
		for old := range res.Applied {
			olds = append(olds, old.String())
		}
		sort.Strings(olds)
		rows := make([][]string, 0, len(olds))
		for _, old := range olds {
			rows = append(rows, []string{old, res.Applied[guid.ID(old)].String(), strconv.Itoa(files[old])})
		}
		fmt.Fprintln(out, renderTable([]string{"Old GUID", "New GUID", "Files"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	}

	if len(res.Changes) > 0 {
		rows := make([][]string, 0, len(res.Changes))
		for _, change := range res.Changes {
			count := 0
			for _, rep := range change.Replacements {
				count += rep.Count
			}
			rows = append(rows, []string{rel(change.Path), strconv.Itoa(count)})
		}
		fmt.Fprintln(out, renderTable([]string{"File", "Replacements"}, rows, []columnAlignment{alignLeft, alignRight}))
	}
}
