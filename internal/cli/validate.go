package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"instaforce.app/engine/internal/deploy"
)

func newValidateCmd(_ *app) *cobra.Command {
	var filesPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate generated files without deploying",
		Long:  `Runs the staging checks on a file list and stages it in memory. Nothing is written to disk and the sf CLI is not invoked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := loadFiles(filesPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			paths, warnings, err := deploy.DryRun(files)
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			for _, p := range paths {
				fmt.Fprintf(out, "ok  %s\n", p)
			}
			fmt.Fprintf(out, "\n%d files valid\n", len(paths))
			return nil
		},
	}

	cmd.Flags().StringVar(&filesPath, "files", "", "Exported state or file list (JSON or YAML)")
	_ = cmd.MarkFlagRequired("files")
	return cmd
}
