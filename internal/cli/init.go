package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/warden/internal/config"
	"github.com/example/warden/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the warden state directory",
		Long:  `Create .warden/ in the current directory with the state database and default config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			fmt.Printf("Initializing warden state at %s\n", db.Path(cwd))

			database, err := db.Open(cwd)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer database.Close()

			fmt.Println("✓ Database initialized successfully")

			if _, err := os.Stat(config.StateDir(cwd) + "/config.json"); os.IsNotExist(err) {
				cfg, err := config.LoadConfig(cwd)
				if err != nil {
					return fmt.Errorf("failed to build default config: %w", err)
				}
				if err := config.SaveConfig(cwd, cfg); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				fmt.Println("✓ Default config written to .warden/config.json")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  warden dispatch on")
			fmt.Println("  warden dispatch step")

			return nil
		},
	}
}
