package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"instaforce.app/engine/common/id"
)

func newDeployCmd(a *app) *cobra.Command {
	var filesPath string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy previously generated files",
		Long: `Stages the files from an exported state (or a bare list of files) under a
fresh run directory and deploys them with the sf CLI. The deploy status is
printed as JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := loadFiles(filesPath)
			if err != nil {
				return err
			}

			status, err := a.deployer().Deploy(cmd.Context(), id.NewString(), files)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(status, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding deploy status: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if !status.Success {
				return errDeployFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filesPath, "files", "", "Exported state or file list (JSON or YAML)")
	_ = cmd.MarkFlagRequired("files")
	return cmd
}
