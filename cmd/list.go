package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/replicactl/replicactl/internal"
	"github.com/spf13/cobra"
)

var (
	listOwner   string
	listRefresh bool
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	ownerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	modelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List replicas",
	Long: `List replicas from the remote service, optionally filtered by owner ID.

Results are cached on disk so train and chat can resolve replicas without
another fetch; use --refresh to bypass the cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}

		cache, err := openReplicaCache()
		if err != nil {
			return err
		}

		// Serve from cache when the owner filter matches and the operator
		// did not ask for a refresh.
		if !listRefresh {
			cached, err := cache.Load()
			if err != nil {
				internal.LogWarn("Failed to load replica cache: %v", err)
			} else if cached != nil && cached.OwnerFilter == listOwner && cached.BaseURL == cfg.BaseURL {
				internal.LogInfo("Loaded %d replica(s) from cache (fetched %s)", len(cached.Replicas), cached.FetchedAt.Format(time.RFC3339))
				displayReplicas(cached.Replicas)
				return nil
			}
		}

		client := internal.NewClient(cfg)
		var replicas []internal.Replica
		err = internal.ShowProgress(cmd.Context(), "Fetching replicas", func() error {
			var fetchErr error
			replicas, fetchErr = client.ListReplicas(cmd.Context(), listOwner)
			return fetchErr
		})
		if err != nil {
			return fmt.Errorf("failed to fetch replicas: %w", err)
		}

		cached := &internal.CachedReplicas{
			FetchedAt:   time.Now(),
			OwnerFilter: listOwner,
			BaseURL:     cfg.BaseURL,
			Replicas:    replicas,
		}
		if err := cache.Save(cached); err != nil {
			internal.LogWarn("Failed to save replica cache: %v", err)
		}

		displayReplicas(replicas)
		return nil
	},
}

func displayReplicas(replicas []internal.Replica) {
	if len(replicas) == 0 {
		fmt.Println(headerStyle.Render("🤖 No replicas found"))
		if listOwner != "" {
			fmt.Println(idStyle.Render("No replicas for owner " + listOwner + "."))
		}
		return
	}

	header := headerStyle.Render(fmt.Sprintf("🤖 Found %d replica(s)", len(replicas)))
	fmt.Println(header)
	fmt.Println()

	// Use tabwriter for aligned columns with better spacing
	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, titleStyle.Render("UUID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Slug")+"\t"+titleStyle.Render("Owner")+"\t"+titleStyle.Render("Model")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 110))

	for _, replica := range replicas {
		name := replica.Name
		if name == "" {
			name = "Untitled"
		}
		if len(name) > 40 {
			name = name[:37] + "..."
		}

		// Short UUID for readability; the tip below shows the full one.
		shortID := replica.UUID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		model := replica.LLM.Model
		if model == "" {
			model = "—"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(shortID),
			nameStyle.Render(name),
			replica.Slug,
			ownerStyle.Render(replica.OwnerID),
			modelStyle.Render(model),
		)
	}

	_ = w.Flush()
	fmt.Println()
	fmt.Println(idStyle.Render("💡 Tip: Use the full UUID (e.g., ") +
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(replicas[0].UUID) +
		idStyle.Render(") with `replicactl train <uuid>`"))
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listOwner, "owner", "", "Filter replicas by owner ID")
	listCmd.Flags().BoolVar(&listRefresh, "refresh", false, "Bypass the on-disk cache and refetch")
}
