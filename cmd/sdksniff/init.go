package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/sdksniff.yaml
var rulesTemplate embed.FS

// rulesFileName is the default rules file name.
const rulesFileName = ".sdksniff"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new sdksniff rules file",
		Long: `Initialize creates a new .sdksniff rules file in the current directory.

The generated file includes:
- Commented examples for junk words and ignored domains
- Per-domain override examples
- Documentation for all available options

Examples:
  # Create .sdksniff in current directory
  sdksniff init

  # Create rules file at a specific path
  sdksniff init -o myrules.yaml

  # Force overwrite existing file
  sdksniff init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", rulesFileName,
		"Output file path for the rules file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing rules file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("rules file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := rulesTemplate.ReadFile("templates/sdksniff.yaml")
	if err != nil {
		return fmt.Errorf("failed to read rules template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write rules file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created rules file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure analysis overrides such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Junk words discarded before classification")
	fmt.Fprintln(cmd.OutOrStdout(), "  - First-party domains to ignore")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Per-domain junk word lists")

	return nil
}
