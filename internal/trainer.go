package internal

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultTrainDelay is the fixed pause between rows. The remote service
// has no batch ingestion endpoint, so the loop is sequential and the delay
// bounds the outbound request rate.
const DefaultTrainDelay = 200 * time.Millisecond

// trainingAPI is the slice of the remote client the trainer needs.
type trainingAPI interface {
	CreateKnowledgeBaseEntry(ctx context.Context, replicaUUID string) (int64, error)
	UpdateKnowledgeBaseEntry(ctx context.Context, replicaUUID string, kbID int64, rawText string) error
}

// backlogStore is the slice of the message store the trainer needs.
type backlogStore interface {
	FetchUnprocessed(ctx context.Context, ownerID string) ([]MessageRow, error)
	MarkProcessed(ctx context.Context, id int64) error
}

// Trainer drives the training pipeline for one replica: fetch the
// unprocessed backlog, create and fill one knowledge-base entry per row,
// and mark each row processed only after the remote write succeeded.
//
// Failures are per-row: a failed row is logged, counted, and skipped, never
// retried. The one deliberate gap: when the remote write succeeds but the
// local mark fails, the row stays unprocessed and a later run will train a
// duplicate remote entry. There is no rollback against the remote service,
// so the gap is surfaced as a warning instead of papered over.
type Trainer struct {
	api      trainingAPI
	store    backlogStore
	reporter Reporter
	delay    time.Duration
}

// NewTrainer creates a trainer. A nil reporter discards progress output.
func NewTrainer(api trainingAPI, store backlogStore, reporter Reporter) *Trainer {
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Trainer{
		api:      api,
		store:    store,
		reporter: reporter,
		delay:    DefaultTrainDelay,
	}
}

// SetDelay overrides the inter-row delay. Zero disables it.
func (t *Trainer) SetDelay(d time.Duration) {
	t.delay = d
}

// Train runs the pipeline for one replica. The replica's owner ID selects
// the backlog; its absence is a fatal precondition. A returned TrainingRun
// always satisfies Processed+Errors == Total, with one log line per row in
// fetch order. Only setup failures (missing owner, backlog fetch) and
// context cancellation return an error; row failures are absorbed into the
// run counts.
func (t *Trainer) Train(ctx context.Context, replica Replica) (*TrainingRun, error) {
	if replica.OwnerID == "" {
		return nil, &ValidationError{Field: "ownerID", Msg: "cannot determine replica owner, training aborted"}
	}

	run := &TrainingRun{StartedAt: time.Now()}

	rows, err := t.store.FetchUnprocessed(ctx, replica.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch backlog for owner %q: %w", replica.OwnerID, err)
	}

	run.Total = len(rows)
	if run.Total == 0 {
		run.FinishedAt = time.Now()
		t.reporter.Done(fmt.Sprintf("no new messages for owner %q, nothing to train", replica.OwnerID))
		return run, nil
	}

	LogInfo("found %d unprocessed message(s) for owner %q", run.Total, replica.OwnerID)

	for i, row := range rows {
		label := fmt.Sprintf("message %d/%d: %s", i+1, run.Total, previewContent(row.Content))
		t.reporter.Progress(float64(i+1)/float64(run.Total), label)

		line := t.trainRow(ctx, replica.UUID, row, run)
		run.Log = append(run.Log, line)
		t.reporter.Log(line)

		if err := ctx.Err(); err != nil {
			run.FinishedAt = time.Now()
			return run, err
		}

		if t.delay > 0 {
			select {
			case <-ctx.Done():
				run.FinishedAt = time.Now()
				return run, ctx.Err()
			case <-time.After(t.delay):
			}
		}
	}

	run.FinishedAt = time.Now()
	t.reporter.Done(Summary(run))
	return run, nil
}

// trainRow performs the two-phase remote write plus local bookkeeping for
// one row and returns its log line. Counters are updated on run.
func (t *Trainer) trainRow(ctx context.Context, replicaUUID string, row MessageRow, run *TrainingRun) string {
	kbID, err := t.api.CreateKnowledgeBaseEntry(ctx, replicaUUID)
	if err != nil {
		run.Errors++
		return fmt.Sprintf("✗ failed to create knowledge-base entry for message %d (ts %s): %v", row.ID, row.Timestamp, err)
	}

	if err := t.api.UpdateKnowledgeBaseEntry(ctx, replicaUUID, kbID, row.Content); err != nil {
		// The created-but-empty entry is abandoned; nothing revisits it.
		run.Errors++
		return fmt.Sprintf("✗ failed to fill knowledge-base entry %d for message %d (ts %s): %v", kbID, row.ID, row.Timestamp, err)
	}

	if err := t.store.MarkProcessed(ctx, row.ID); err != nil {
		// Remote side trained, local flag did not flip: this row will be
		// reprocessed on the next run and duplicate the remote entry.
		run.Errors++
		LogWarn("message %d trained remotely but mark processed failed: %v", row.ID, err)
		return fmt.Sprintf("⚠ trained message %d (kb entry %d) but failed to mark processed: %v", row.ID, kbID, err)
	}

	run.Processed++
	return fmt.Sprintf("✓ trained message %d (kb entry %d)", row.ID, kbID)
}

// Summary formats the final counts of a run.
func Summary(run *TrainingRun) string {
	return fmt.Sprintf("processed: %d, errors: %d, total: %d", run.Processed, run.Errors, run.Total)
}

// previewContent truncates message content for progress labels.
func previewContent(content string) string {
	content = strings.ReplaceAll(content, "\n", " ")
	runes := []rune(content)
	if len(runes) > 30 {
		return string(runes[:30]) + "..."
	}
	return content
}
