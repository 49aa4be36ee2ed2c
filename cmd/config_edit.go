package cmd

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"goplot/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configEditInput  io.Reader = os.Stdin
	configEditOutput io.Writer = os.Stdout
)

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the active config in an editor.",
	Long: `Open the active goplot config file in your editor.

Editor selection order:
1) $VISUAL
2) $EDITOR
3) vi (notepad on Windows)

If no config file exists yet, this command creates one with the example template first.
After the editor exits, the content is validated; on errors you are asked whether
to reopen the editor.`,
	Example: `
  # Edit active config
  goplot config edit

  # Edit with a specific editor
  EDITOR="code --wait" goplot config edit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		created, err := ensureConfigFileWithTemplate(configPath)
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("No config file found. Created example config at: %s\n", configPath)
		}

		editor := resolveEditorValue(os.Getenv("VISUAL"), os.Getenv("EDITOR"), runtime.GOOS)
		for {
			editorCommand, err := buildEditorCommand(editor, configPath)
			if err != nil {
				return err
			}
			editorCommand.Stdin = os.Stdin
			editorCommand.Stdout = os.Stdout
			editorCommand.Stderr = os.Stderr
			if err := editorCommand.Run(); err != nil {
				return fmt.Errorf("opening editor failed: %w", err)
			}

			validationErr := validateConfigFile(configPath)
			if validationErr == nil {
				break
			}
			fmt.Fprintf(configEditOutput, "Invalid config: %v\n", validationErr)
			retry, err := confirmPrompt(configEditInput, configEditOutput, "Reopen the editor? Type Y to confirm: ")
			if err != nil {
				return err
			}
			if !retry {
				return fmt.Errorf("config validation failed in %s: %w", configPath, validationErr)
			}
		}

		fmt.Printf("Configuration saved and validated: %s\n", configPath)
		return nil
	},
}

func validateConfigFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading edited config failed: %w", err)
	}
	_, err = config.ValidateYAMLContent(content)
	return err
}

func resolveConfigEditPath(configFileFlag, configFileUsed string) (string, error) {
	if strings.TrimSpace(configFileFlag) != "" {
		return configFileFlag, nil
	}
	if strings.TrimSpace(configFileUsed) != "" {
		return configFileUsed, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".goplot.yaml"), nil
}

func ensureConfigFileWithTemplate(path string) (bool, error) {
	return writeConfigTemplate(path, false)
}

// writeConfigTemplate writes the example config. An existing file is kept
// unless overwrite is set.
func writeConfigTemplate(path string, overwrite bool) (bool, error) {
	_, err := os.Stat(path)
	if err == nil && !overwrite {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("checking config file failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("creating config directory failed: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleYAML()), 0o600); err != nil {
		return false, fmt.Errorf("creating example config failed: %w", err)
	}

	return true, nil
}

func resolveEditorValue(visual, editor, goos string) string {
	if strings.TrimSpace(visual) != "" {
		return visual
	}
	if strings.TrimSpace(editor) != "" {
		return editor
	}
	if goos == "windows" {
		return "notepad"
	}
	return "vi"
}

func buildEditorCommand(editorValue, configPath string) (*exec.Cmd, error) {
	fields := strings.Fields(strings.TrimSpace(editorValue))
	if len(fields) == 0 {
		return nil, fmt.Errorf("editor command is empty")
	}

	args := append(fields[1:], configPath)
	return exec.Command(fields[0], args...), nil
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
