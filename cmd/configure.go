package cmd

import (
	"fmt"

	"github.com/replicactl/replicactl/internal"
	"github.com/spf13/cobra"
)

var (
	configureOrgSecret  string
	configureAPIVersion string
	configureBaseURL    string
	configureDatabase   string
	configureTable      string
	configureTestUser   string
	configureNoProbe    bool
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Save API credentials and message-store settings",
	Long: `Write the replicactl config file and verify the message store is
reachable. Values not passed as flags keep their current setting; the
organization secret and API version can also come from the
SENSAY_ORGANIZATION_SECRET and SENSAY_API_VERSION environment variables.

Reconfiguring clears the replica cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}

		// Existing file is the base; flags override.
		cfg, err := internal.LoadConfig(path)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("organization-secret") {
			cfg.OrganizationSecret = configureOrgSecret
		}
		if cmd.Flags().Changed("api-version") {
			cfg.APIVersion = configureAPIVersion
		}
		if cmd.Flags().Changed("base-url") {
			cfg.BaseURL = configureBaseURL
		}
		if cmd.Flags().Changed("database") {
			cfg.DatabasePath = configureDatabase
		}
		if cmd.Flags().Changed("table") {
			cfg.MessagesTable = configureTable
		}
		if cmd.Flags().Changed("test-user") {
			cfg.TestUserID = configureTestUser
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		if !configureNoProbe {
			err := internal.ShowProgress(cmd.Context(), "Checking message store", func() error {
				db, err := internal.OpenStore(cfg.DatabasePath)
				if err != nil {
					return err
				}
				defer db.Close()
				store := internal.NewMessageStore(db, cfg.MessagesTable)
				return store.Probe(cmd.Context())
			})
			if err != nil {
				return fmt.Errorf("message store check failed: %w", err)
			}
		}

		if err := internal.SaveConfig(path, cfg); err != nil {
			return err
		}

		// A new configuration may point at a different organization, so the
		// cached replica list is stale by definition.
		if cache, err := openReplicaCache(); err == nil {
			if err := cache.Clear(); err != nil {
				internal.LogWarn("Failed to clear replica cache: %v", err)
			}
		}

		internal.PrintSuccess(fmt.Sprintf("Configuration saved to %s", path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)

	configureCmd.Flags().StringVar(&configureOrgSecret, "organization-secret", "", "Organization secret for the replica-management API")
	configureCmd.Flags().StringVar(&configureAPIVersion, "api-version", internal.DefaultAPIVersion, "API version date string")
	configureCmd.Flags().StringVar(&configureBaseURL, "base-url", internal.DefaultBaseURL, "API base URL")
	configureCmd.Flags().StringVar(&configureDatabase, "database", "", "Path to the SQLite message database")
	configureCmd.Flags().StringVar(&configureTable, "table", internal.DefaultMessagesTable, "Messages table name")
	configureCmd.Flags().StringVar(&configureTestUser, "test-user", "", "User ID for interactive chat testing")
	configureCmd.Flags().BoolVar(&configureNoProbe, "no-probe", false, "Skip the message-store connectivity check")
}
