package cmd

import (
	"fmt"

	"github.com/replicactl/replicactl/internal"
	"github.com/spf13/cobra"
)

var (
	createOwner       string
	createName        string
	createSlug        string
	createDescription string
	createGreeting    string
	createLLMProvider string
	createLLMModel    string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new replica",
	Long: `Create a replica on the remote service, owned by the given user ID.

The owner user is looked up first and created on the remote service when
missing, then the replica is created under it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}

		if createOwner == "" || createName == "" || createSlug == "" ||
			createDescription == "" || createGreeting == "" || createLLMModel == "" {
			return fmt.Errorf("all of --owner, --name, --slug, --description, --greeting and --llm-model are required")
		}

		client := internal.NewClient(cfg)
		ctx := cmd.Context()

		err = internal.ShowProgress(ctx, fmt.Sprintf("Verifying owner user %q", createOwner), func() error {
			_, err := client.EnsureUser(ctx, createOwner)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to verify or create user %q: %w", createOwner, err)
		}

		replica := internal.Replica{
			Name:             createName,
			Slug:             createSlug,
			ShortDescription: createDescription,
			Greeting:         createGreeting,
			OwnerID:          createOwner,
			Private:          false,
			LLM: internal.LLMConfig{
				Provider: createLLMProvider,
				Model:    createLLMModel,
			},
		}

		var uuid string
		err = internal.ShowProgress(ctx, fmt.Sprintf("Creating replica %q", createName), func() error {
			var createErr error
			uuid, createErr = client.CreateReplica(ctx, replica)
			return createErr
		})
		if err != nil {
			return fmt.Errorf("failed to create replica: %w", err)
		}

		// The cached list no longer reflects the remote state.
		if cache, err := openReplicaCache(); err == nil {
			if err := cache.Clear(); err != nil {
				internal.LogWarn("Failed to clear replica cache: %v", err)
			}
		}

		internal.PrintSuccess(fmt.Sprintf("Replica %q created with UUID %s", createName, uuid))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createOwner, "owner", "", "Owner user ID (e.g. a chat-platform user ID)")
	createCmd.Flags().StringVar(&createName, "name", "", "Replica display name")
	createCmd.Flags().StringVar(&createSlug, "slug", "", "Unique slug (lowercase, hyphens)")
	createCmd.Flags().StringVar(&createDescription, "description", "", "Short description (max 50 chars)")
	createCmd.Flags().StringVar(&createGreeting, "greeting", "", "Greeting message the replica opens with")
	createCmd.Flags().StringVar(&createLLMProvider, "llm-provider", "openai", "LLM provider")
	createCmd.Flags().StringVar(&createLLMModel, "llm-model", "gpt-4o", "LLM model")
}
