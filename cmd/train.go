package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/replicactl/replicactl/internal"
	"github.com/replicactl/replicactl/internal/export"
	"github.com/spf13/cobra"
)

var (
	trainDelay        time.Duration
	trainReportFile   string
	trainReportFormat string
)

var trainCmd = &cobra.Command{
	Use:   "train <replica-uuid>",
	Short: "Train a replica from its owner's message backlog",
	Long: `Train a replica with the unprocessed messages collected for its owner.

For every unprocessed row in the message store, a knowledge-base entry is
created on the remote service, filled with the message content, and the row
is marked processed on success. Failed rows are logged and skipped, never
retried. A fixed delay between rows bounds the outbound request rate.`,
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
		if replica.OwnerID == "" {
			return fmt.Errorf("cannot determine owner ID for replica %q, training aborted", replicaUUID)
		}

		db, err := internal.OpenStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()
		store := internal.NewMessageStore(db, cfg.MessagesTable)

		var reporter internal.Reporter
		if internal.IsTerminal(os.Stderr) {
			reporter = internal.NewTerminalReporter(os.Stderr)
		} else {
			reporter = internal.NewPlainReporter(os.Stdout)
		}

		name := replica.Name
		if name == "" {
			name = replicaUUID
		}
		internal.PrintInfo(fmt.Sprintf("Training %q with messages from owner %q", name, replica.OwnerID))

		trainer := internal.NewTrainer(client, store, reporter)
		trainer.SetDelay(trainDelay)

		run, trainErr := trainer.Train(ctx, replica)
		if trainErr != nil && run == nil {
			return trainErr
		}

		if trainReportFile != "" && run != nil {
			report := &internal.TrainingReport{
				ReplicaUUID: replica.UUID,
				ReplicaName: replica.Name,
				OwnerID:     replica.OwnerID,
				TrainingRun: *run,
			}
			if err := writeReport(report, trainReportFile, trainReportFormat); err != nil {
				internal.PrintError(fmt.Sprintf("Failed to write report: %v", err))
			} else {
				internal.PrintInfo(fmt.Sprintf("Report written to %s", trainReportFile))
			}
		}

		if trainErr != nil {
			// Interrupted mid-backlog; rows already marked stay marked.
			internal.PrintWarning(fmt.Sprintf("Training interrupted (%s)", internal.Summary(run)))
			return trainErr
		}

		if run.Errors > 0 {
			internal.PrintWarning(fmt.Sprintf("%d message(s) could not be processed; see the log above", run.Errors))
		}
		return nil
	},
}

func writeReport(report *internal.TrainingReport, path, format string) error {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return exporter.ExportReport(report, f)
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().DurationVar(&trainDelay, "delay", internal.DefaultTrainDelay, "Delay between messages to rate-limit API calls")
	trainCmd.Flags().StringVar(&trainReportFile, "report", "", "Write a training report to this file")
	trainCmd.Flags().StringVar(&trainReportFormat, "format", "json", "Report format (json, yaml, md, jsonl)")
}
