package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCreateForce bool

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

If a configuration file is already in use, no new file is written unless --force is set.`,
	Example: `
  # Create default config at $HOME/.goplot.yaml
  goplot config create

  # Create a project-local config
  goplot --configFile ./.goplot.yaml config create

  # Reset an existing config to the template
  goplot config create --force
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig(configCreateForce)
	},
}

func saveDefaultConfig(force bool) error {
	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	written, err := writeConfigTemplate(configPath, force)
	if err != nil {
		return err
	}

	switch {
	case written && force:
		fmt.Printf("Config file reset to template at: %s\n", configPath)
	case written:
		fmt.Printf("New config file created at: %s\n", configPath)
	default:
		fmt.Printf("Config file already exists at: %s (use --force to overwrite)\n", configPath)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)

	configCreateCmd.Flags().BoolVar(&configCreateForce, "force", false, "Overwrite an existing config file with the template")
}
