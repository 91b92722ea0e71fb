package internal

import "time"

// MessageRow is a single collected chat-platform message from the backing
// store. The store assigns IDs; this tool only ever flips Processed.
type MessageRow struct {
	ID        int64  `json:"id"`
	OwnerID   string `json:"owner_id,omitempty"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"` // origin timestamp, logging only
	Processed bool   `json:"processed"`
}

// LLMConfig selects the model backing a replica.
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model" yaml:"model"`
}

// Replica is an AI persona hosted by the remote service. Read-only here;
// the remote service owns it.
type Replica struct {
	UUID             string    `json:"uuid" yaml:"uuid"`
	Name             string    `json:"name" yaml:"name"`
	Slug             string    `json:"slug" yaml:"slug"`
	ShortDescription string    `json:"shortDescription,omitempty" yaml:"short_description,omitempty"`
	Greeting         string    `json:"greeting,omitempty" yaml:"greeting,omitempty"`
	OwnerID          string    `json:"ownerID" yaml:"owner_id"`
	Private          bool      `json:"private" yaml:"private"`
	LLM              LLMConfig `json:"llm" yaml:"llm"`
}

// TrainingRun accumulates the outcome of one training invocation. It lives
// in memory only; the backing store's processed flag is the durable record.
type TrainingRun struct {
	Total      int       `json:"total"`
	Processed  int       `json:"processed"`
	Errors     int       `json:"errors"`
	Log        []string  `json:"log"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// TrainingReport is a TrainingRun annotated with the replica it ran
// against, for export.
type TrainingReport struct {
	ReplicaUUID string `json:"replica_uuid" yaml:"replica_uuid"`
	ReplicaName string `json:"replica_name,omitempty" yaml:"replica_name,omitempty"`
	OwnerID     string `json:"owner_id" yaml:"owner_id"`
	TrainingRun `yaml:",inline"`
}

// ChatMessage is one turn of an interactive chat session.
type ChatMessage struct {
	Role      string `json:"role" yaml:"role"` // "user" or "assistant"
	Content   string `json:"content" yaml:"content"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// Transcript is a full interactive chat session against one replica.
type Transcript struct {
	ReplicaUUID string        `json:"replica_uuid" yaml:"replica_uuid"`
	ReplicaName string        `json:"replica_name,omitempty" yaml:"replica_name,omitempty"`
	UserID      string        `json:"user_id" yaml:"user_id"`
	StartedAt   time.Time     `json:"started_at" yaml:"started_at"`
	Messages    []ChatMessage `json:"messages" yaml:"messages"`
}
