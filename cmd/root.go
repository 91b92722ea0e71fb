package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/replicactl/replicactl/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "replicactl",
	Short: "Create, train, and test AI replicas from collected chat data",
	Long: `An operator CLI for managing AI replicas on a remote replica-management
service, training them from chat-platform messages collected in a local
message store, and chatting with the result.

Features:
  • Create replicas and their owner users on the remote service
  • List replicas with owner filtering and on-disk caching
  • Train a replica from its owner's unprocessed message backlog
  • Chat interactively with a trained replica
  • Export training reports and chat transcripts (json, yaml, md, jsonl)

Quick Start:
  replicactl configure --organization-secret ... --database msgs.db
  replicactl list                          # List replicas
  replicactl train <replica-uuid>          # Train from the backlog
  replicactl chat <replica-uuid>           # Talk to the replica`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file location (default ~/.replicactl.yaml)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// resolveConfigPath returns the --config value or the default location.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return internal.DefaultConfigPath()
}

// requireConfig loads and validates the configuration, pointing the
// operator at `configure` when it is incomplete.
func requireConfig() (*internal.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w (run `replicactl configure` first)", err)
	}
	return cfg, nil
}

// openReplicaCache returns the on-disk replica cache.
func openReplicaCache() (*internal.ReplicaCache, error) {
	dir, err := internal.DefaultCacheDir()
	if err != nil {
		return nil, err
	}
	return internal.NewReplicaCache(dir), nil
}

// resolveReplica finds a replica by UUID, preferring the local cache and
// falling back to the remote list.
func resolveReplica(ctx context.Context, client *internal.Client, cache *internal.ReplicaCache, uuid string) (internal.Replica, error) {
	if cache != nil {
		if replica, ok := cache.Lookup(uuid); ok {
			return replica, nil
		}
	}

	replicas, err := client.ListReplicas(ctx, "")
	if err != nil {
		return internal.Replica{}, fmt.Errorf("failed to fetch replicas: %w", err)
	}
	for _, r := range replicas {
		if r.UUID == uuid {
			return r, nil
		}
	}
	return internal.Replica{}, fmt.Errorf("replica %q not found (try `replicactl list --refresh`)", uuid)
}
