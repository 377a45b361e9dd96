package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tendant/simple-site/pkg/simplesite"
	"github.com/tendant/simple-site/pkg/simplesite/config"
)

func main() {
	// Configuration can come from a .env file; real environment wins.
	_ = godotenv.Load()

	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the siteadmin command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "siteadmin",
		Short: "Manage site content from the command line",
		Long: `Site content admin CLI

Reads the same DATABASE_URL and STORAGE_URL settings as the server and works
directly against the content database. Use a persistent database
(sqlite:// or postgres://); the in-memory default is lost on exit.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(NewSeedCommand())
	rootCmd.AddCommand(NewContentCommand())
	rootCmd.AddCommand(NewOrderCommand())
	rootCmd.AddCommand(NewProjectsCommand())
	rootCmd.AddCommand(NewImagesCommand())

	return rootCmd
}

// newService builds the service from the environment. The returned func
// closes the database.
func newService(cmd *cobra.Command) (simplesite.Service, func(), error) {
	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "database: %s, storage: %s\n", cfg.DatabaseType, cfg.StorageBackend)
	}

	return cfg.BuildService(context.Background())
}
