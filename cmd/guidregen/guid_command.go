package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"guidregen/internal/project"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

func newGUIDCommand(ctx *commandContext) *cobra.Command {
	var copyOut bool

	cmd := &cobra.Command{
		Use:   "guid <path>...",
		Short: "Print the GUIDs of assets or folders",
		Long: `Print the GUID recorded in each asset's .meta file. A single path prints the
bare GUID. Several paths print one "path : guid" line each, with folders
prefixed by [Folder].`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.openProject()
			if err != nil {
				return err
			}

			var b strings.Builder
			if len(args) == 1 {
				path, err := resolveAsset(p, args[0])
				if err != nil {
					return err
				}
				id, err := p.AssetGUID(path)
				if err != nil {
					return err
				}
				b.WriteString(id.String())
				b.WriteByte('\n')
			} else {
				for _, arg := range args {
					path, err := resolveAsset(p, arg)
					if err != nil {
						return err
					}
					id, err := p.AssetGUID(path)
					if err != nil {
						return err
					}
					if p.IsDir(path) {
						b.WriteString("[Folder] ")
					}
					fmt.Fprintf(&b, "%s : %s\n", p.ProjectRel(path), id)
				}
			}

			output := b.String()
			fmt.Fprint(cmd.OutOrStdout(), output)
			if copyOut {
				text := output
				if len(args) == 1 {
					text = strings.TrimSuffix(text, "\n")
				}
				if err := writeClipboard(text); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&copyOut, "copy", false, "Also copy the output to the system clipboard")
	return cmd
}

// resolveAsset resolves a path and maps a sidecar back to the asset it describes.
func resolveAsset(p *project.Project, arg string) (string, error) {
	path, err := p.Resolve(arg)
	if err != nil {
		return "", err
	}
	if project.IsMeta(path) {
		path = path[:len(path)-len(project.MetaExt)]
	}
	return path, nil
}
