package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/replicactl/replicactl/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckOwner string
)

var (
	successStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	warningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	infoStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, message store, and API connectivity",
	Long: `Check the health of replicactl by verifying:
  • Configuration completeness
  • Message store connectivity and backlog counts
  • Remote API reachability

This command is useful for debugging credential and store issues before
starting a training run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("🔍 replicactl Health Check"))
		fmt.Println()

		// Step 1: Configuration
		fmt.Println(infoStyle.Render("Step 1: Loading configuration..."))
		path, err := resolveConfigPath()
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to resolve config path:"), err)
			os.Exit(1)
		}
		cfg, err := internal.LoadConfig(path)
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to load config:"), err)
			os.Exit(1)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Println(errorStyle.Render("❌ Configuration incomplete:"), err)
			fmt.Println(infoStyle.Render("   Run `replicactl configure` to fix this."))
			os.Exit(1)
		}
		fmt.Println(successStyle.Render("✅ Configuration valid"))
		if verbose {
			fmt.Printf("   Config file: %s\n", path)
			fmt.Printf("   Base URL: %s\n", cfg.BaseURL)
			fmt.Printf("   API version: %s\n", cfg.APIVersion)
			fmt.Printf("   Database: %s (table %s)\n", cfg.DatabasePath, cfg.MessagesTable)
		}
		fmt.Println()

		// Step 2: Message store
		fmt.Println(infoStyle.Render("Step 2: Checking message store..."))
		db, err := internal.OpenStore(cfg.DatabasePath)
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to open message store:"), err)
			os.Exit(1)
		}
		defer db.Close()
		store := internal.NewMessageStore(db, cfg.MessagesTable)
		if err := store.Probe(cmd.Context()); err != nil {
			fmt.Println(errorStyle.Render("❌ Messages table not queryable:"), err)
			os.Exit(1)
		}
		fmt.Println(successStyle.Render("✅ Message store reachable"))

		total, unprocessed, err := store.CountBacklog(cmd.Context(), healthcheckOwner)
		if err != nil {
			fmt.Println(warningStyle.Render("⚠️  Failed to count backlog:"), err)
		} else {
			scope := "all owners"
			if healthcheckOwner != "" {
				scope = "owner " + healthcheckOwner
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("✅ %d message(s) for %s, %d unprocessed", total, scope, unprocessed)))
		}
		fmt.Println()

		// Step 3: Remote API
		fmt.Println(infoStyle.Render("Step 3: Checking remote API..."))
		client := internal.NewClient(cfg)
		replicas, err := client.ListReplicas(cmd.Context(), healthcheckOwner)
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Remote API unreachable:"), err)
			os.Exit(1)
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✅ Remote API reachable, %d replica(s) visible", len(replicas))))
		fmt.Println()

		fmt.Println(successStyle.Render("All checks passed."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)

	healthcheckCmd.Flags().StringVar(&healthcheckOwner, "owner", "", "Restrict backlog and replica checks to this owner ID")
}
