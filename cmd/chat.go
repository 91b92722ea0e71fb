package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/replicactl/replicactl/internal"
	"github.com/replicactl/replicactl/internal/export"
	"github.com/spf13/cobra"
)

var (
	chatUser       string
	chatSaveFile   string
	chatSaveFormat string
)

var (
	replicaStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

var chatCmd = &cobra.Command{
	Use:   "chat <replica-uuid>",
	Short: "Chat interactively with a replica",
	Long: `Open an interactive chat session with a replica for manual verification.

The test user is created on the remote service when missing. Type a message
and press enter; /quit or Ctrl-D ends the session. Use --save to export the
transcript on exit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		replicaUUID := args[0]

		cfg, err := requireConfig()
		if err != nil {
			return err
		}

		client := internal.NewClient(cfg)
		cache, err := openReplicaCache()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		replica, err := resolveReplica(ctx, client, cache, replicaUUID)
		if err != nil {
			return err
		}

		userID := chatUser
		if userID == "" {
			userID = cfg.TestUserID
		}
		if userID == "" {
			userID = "cli-tester-" + uuid.NewString()
			internal.LogDebug("no test user configured, using %q", userID)
		}

		if _, err := client.EnsureUser(ctx, userID); err != nil {
			return fmt.Errorf("failed to verify or create test user %q: %w", userID, err)
		}

		name := replica.Name
		if name == "" {
			name = replicaUUID
		}

		transcript := &internal.Transcript{
			ReplicaUUID: replica.UUID,
			ReplicaName: replica.Name,
			UserID:      userID,
			StartedAt:   time.Now(),
		}

		fmt.Printf("%s as %s\n", replicaStyle.Render("💬 Chatting with "+name), userID)
		fmt.Println(hintStyle.Render("Type /quit or press Ctrl-D to end the session."))
		fmt.Println()

		if replica.Greeting != "" {
			fmt.Printf("%s %s\n\n", replicaStyle.Render(name+":"), replica.Greeting)
			transcript.Messages = append(transcript.Messages, internal.ChatMessage{
				Role:      "assistant",
				Content:   replica.Greeting,
				Timestamp: time.Now().Format(time.RFC3339),
			})
		}

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print(promptStyle.Render("you> "))
			if !scanner.Scan() {
				break
			}
			line := scanner.Text()
			if line == "" {
				continue
			}
			if line == "/quit" || line == "/exit" {
				break
			}

			transcript.Messages = append(transcript.Messages, internal.ChatMessage{
				Role:      "user",
				Content:   line,
				Timestamp: time.Now().Format(time.RFC3339),
			})

			reply, err := client.ChatCompletion(ctx, replica.UUID, userID, line)
			if err != nil {
				// One failed turn should not kill the session.
				internal.PrintError(fmt.Sprintf("Chat error: %v", err))
				continue
			}

			fmt.Printf("%s %s\n\n", replicaStyle.Render(name+":"), reply)
			transcript.Messages = append(transcript.Messages, internal.ChatMessage{
				Role:      "assistant",
				Content:   reply,
				Timestamp: time.Now().Format(time.RFC3339),
			})
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		fmt.Println()
		if chatSaveFile != "" {
			if err := writeTranscript(transcript, chatSaveFile, chatSaveFormat); err != nil {
				return fmt.Errorf("failed to save transcript: %w", err)
			}
			internal.PrintSuccess(fmt.Sprintf("Transcript saved to %s", chatSaveFile))
		}
		return nil
	},
}

func writeTranscript(transcript *internal.Transcript, path, format string) error {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return exporter.ExportTranscript(transcript, f)
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatUser, "user", "", "Test user ID (default from config, or generated)")
	chatCmd.Flags().StringVar(&chatSaveFile, "save", "", "Write the transcript to this file on exit")
	chatCmd.Flags().StringVar(&chatSaveFormat, "format", "md", "Transcript format (json, yaml, md, jsonl)")
}
