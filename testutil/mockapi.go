package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// MockAPI is an httptest-backed stand-in for the remote replica-management
// service. Failure fields script per-endpoint error responses.
type MockAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    map[string]bool
	nextKBID int64

	// Scripted failures. A zero status means succeed.
	CreateEntryStatus int  // status for POST /replicas/{uuid}/training
	UpdateEntryStatus int  // status for PUT /replicas/{uuid}/training/{id}
	MissingKBID       bool // omit knowledgeBaseID from create responses
	ReplicasBody      string

	// Call bookkeeping for assertions.
	CreateEntryCalls int
	UpdateEntryCalls int
	ChatCalls        int
	LastChatUserID   string
	LastOrgSecret    string
	LastAPIVersion   string
	LastOwnerFilter  string
}

// NewMockAPI starts a mock API server; it shuts down with the test.
func NewMockAPI(t *testing.T) *MockAPI {
	t.Helper()
	m := &MockAPI{
		users:    make(map[string]bool),
		nextKBID: 100,
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the mock server's base URL.
func (m *MockAPI) URL() string {
	return m.Server.URL
}

// AddUser registers an existing remote user.
func (m *MockAPI) AddUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = true
}

// HasUser reports whether the user exists on the mock service.
func (m *MockAPI) HasUser(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

func (m *MockAPI) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastOrgSecret = r.Header.Get("X-ORGANIZATION-SECRET")
	m.LastAPIVersion = r.Header.Get("X-API-Version")

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "users":
		id := parts[1]
		if m.users[id] {
			writeJSON(w, http.StatusOK, map[string]string{"id": id})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})

	case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == "users":
		var payload struct {
			ID string `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		m.users[payload.ID] = true
		writeJSON(w, http.StatusOK, map[string]string{"id": payload.ID})

	case r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "replicas":
		m.LastOwnerFilter = r.URL.Query().Get("ownerID")
		if m.ReplicasBody != "" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(m.ReplicasBody))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "items": []interface{}{}})

	case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == "replicas":
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "uuid": "mock-replica-uuid"})

	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "replicas" && parts[2] == "training":
		m.CreateEntryCalls++
		if m.CreateEntryStatus != 0 {
			writeJSON(w, m.CreateEntryStatus, map[string]string{"error": "scripted create failure"})
			return
		}
		if m.MissingKBID {
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
			return
		}
		m.nextKBID++
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "knowledgeBaseID": m.nextKBID})

	case r.Method == http.MethodPut && len(parts) == 4 && parts[0] == "replicas" && parts[2] == "training":
		m.UpdateEntryCalls++
		if m.UpdateEntryStatus != 0 {
			writeJSON(w, m.UpdateEntryStatus, map[string]string{"error": "scripted update failure"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	case r.Method == http.MethodPost && len(parts) == 4 && parts[0] == "replicas" && parts[2] == "chat" && parts[3] == "completions":
		m.ChatCalls++
		m.LastChatUserID = r.Header.Get("X-USER-ID")
		var payload struct {
			Content string `json:"content"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"content": fmt.Sprintf("echo: %s", payload.Content),
		})

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such endpoint"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
