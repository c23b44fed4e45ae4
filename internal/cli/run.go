package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"instaforce.app/engine/internal/model"
	"instaforce.app/engine/internal/pipeline"
)

var errDeployFailed = errors.New("deployment failed")

type runOptions struct {
	requirement string
	file        string
	output      string
	format      string
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [requirement]",
		Short: "Run the full pipeline for one requirement",
		Long: `Runs requirement analysis, design, code generation and deployment in order.
The requirement comes from the first of: --requirement, --file, the positional
argument, stdin. The final state is written to --output (stdout by default),
including the partial state when a stage fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPipeline(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.requirement, "requirement", "r", "", "Requirement text")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the requirement from a file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "Write the final state to this file (- for stdout)")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Export format: json or yaml")
	return cmd
}

func (a *app) runPipeline(cmd *cobra.Command, opts *runOptions, args []string) error {
	format, err := pipeline.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	requirement, err := readRequirement(opts, args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	gateway, err := a.gateway()
	if err != nil {
		return fmt.Errorf("creating model gateway: %w", err)
	}

	p := pipeline.Default(gateway, a.deployer())
	state, runErr := p.Run(cmd.Context(), pipeline.Request{Requirement: requirement})
	if state != nil {
		if err := writeState(cmd, state, opts.output, format); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	ds := state.DeployStatus
	fmt.Fprintf(cmd.ErrOrStderr(), "%s (exit code %d, %d files)\n", ds.Message, ds.ReturnCode, len(ds.WrittenFiles))
	if !ds.Success {
		return errDeployFailed
	}
	return nil
}

func readRequirement(opts *runOptions, args []string, stdin io.Reader) (string, error) {
	var text string
	switch {
	case opts.requirement != "":
		text = opts.requirement
	case opts.file != "":
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", fmt.Errorf("reading requirement file: %w", err)
		}
		text = string(data)
	case len(args) > 0:
		text = args[0]
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading requirement from stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", pipeline.ErrEmptyRequirement
	}
	return text, nil
}

func writeState(cmd *cobra.Command, state *model.State, output string, format pipeline.Format) error {
	if output == "" || output == "-" {
		return pipeline.Export(cmd.OutOrStdout(), state, format)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := pipeline.Export(f, state, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "state written to %s\n", output)
	return nil
}
