package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"instaforce.app/engine/common/llm"
	"instaforce.app/engine/common/logger"
	"instaforce.app/engine/core/config"
	"instaforce.app/engine/internal/deploy"
)

// Hooks swapped by tests.
var (
	newGateway = llm.New
	newRunner  = func() deploy.Runner { return deploy.ExecRunner{} }
)

type app struct {
	cfg config.Config
}

// NewRootCmd builds the instaforce command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "instaforce",
		Short: "Turn plain-language requirements into deployed Salesforce metadata",
		Long: `Instaforce analyses a business requirement with a hosted model, designs the
Salesforce components it needs, generates their metadata source and deploys it
to a target org with the sf CLI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.ServiceTypeCLI)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			a.cfg = cfg
			logger.SetupWriter(cfg, cmd.ErrOrStderr())
			return nil
		},
	}

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newDeployCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) deployer() *deploy.Deployer {
	return deploy.New(deploy.Config{
		Executable:  a.cfg.Deploy.Executable,
		TargetAlias: a.cfg.Deploy.TargetAlias,
		WorkDir:     a.cfg.Deploy.WorkDir,
		Wait:        a.cfg.Deploy.Wait,
	}, newRunner())
}

func (a *app) gateway() (llm.Gateway, error) {
	return newGateway(llm.Config{
		Provider:    a.cfg.LLM.Provider,
		APIKey:      a.cfg.LLM.APIKey,
		BaseURL:     a.cfg.LLM.BaseURL,
		Model:       a.cfg.LLM.Model,
		MaxTokens:   a.cfg.LLM.MaxTokens,
		Temperature: a.cfg.LLM.Temperature,
	})
}
