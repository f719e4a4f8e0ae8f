package smartupdate

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/smartupdate/internal"
	"github.com/rios0rios0/smartupdate/internal/infrastructure/controllers"
)

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "smartupdate",
		Short: "Automated dependency updates with build verification",
		Long: `Applies known dependency updates to a repository's manifests,
verifies them against the repository's own build and test commands,
rolls back packages that break the build, and publishes the result
as a pull request through the tool server.

Usage modes:
  smartupdate update owner/repo   Run one update cycle for a repository
  smartupdate cache stats         Inspect the repository artifact cache
  smartupdate server status       Inspect the tool-server session`,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Run: func(command *cobra.Command, arguments []string) {
				ctrl.Execute(command, arguments)
			},
		}

		// Add controller-specific flags
		if uc, ok := ctrl.(*controllers.UpdateController); ok {
			uc.AddFlags(subCmd)
		}

		rootCmd.AddCommand(subCmd)
	}
}

// Execute wires the application container into the cobra command tree and
// runs the command-line interface.
func Execute() error {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	cobraRoot := buildRootCommand()

	// Add all subcommands
	appContext := injectAppContext()
	addSubcommands(cobraRoot, appContext)

	return cobraRoot.Execute()
}
