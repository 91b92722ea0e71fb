package internal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/replicactl/replicactl/testutil"
)

func testClient(baseURL string) *Client {
	return NewClient(&Config{
		BaseURL:            baseURL,
		OrganizationSecret: "test-secret",
		APIVersion:         "2025-03-25",
	})
}

func TestRequestSendsAuthHeaders(t *testing.T) {
	mock := testutil.NewMockAPI(t)
	client := testClient(mock.URL())

	if _, err := client.ListReplicas(context.Background(), ""); err != nil {
		t.Fatalf("ListReplicas() error = %v", err)
	}

	if mock.LastOrgSecret != "test-secret" {
		t.Errorf("organization secret header = %q, want %q", mock.LastOrgSecret, "test-secret")
	}
	if mock.LastAPIVersion != "2025-03-25" {
		t.Errorf("api version header = %q, want %q", mock.LastAPIVersion, "2025-03-25")
	}
}

func TestRequestUnsupportedMethod(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Request(context.Background(), "PATCH", "/users/x", nil, nil, "")
	if err == nil {
		t.Fatal("Request() with PATCH succeeded, want local error")
	}
	if atomic.LoadInt64(&calls) != 0 {
		t.Errorf("unsupported method still made %d network call(s)", calls)
	}
}

func TestRequestAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantDetails bool
	}{
		{
			name:        "json error body",
			status:      500,
			body:        `{"error":"internal"}`,
			wantDetails: true,
		},
		{
			name:        "plain text error body",
			status:      502,
			body:        "Bad Gateway",
			wantDetails: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := testClient(server.URL)
			_, err := client.Request(context.Background(), http.MethodGet, "/replicas", nil, nil, "")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Request() error = %v, want APIError", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Body != tt.body {
				t.Errorf("Body = %q, want %q", apiErr.Body, tt.body)
			}
			if (apiErr.Details != nil) != tt.wantDetails {
				t.Errorf("Details = %v, wantDetails %v", apiErr.Details, tt.wantDetails)
			}
		})
	}
}

func TestRequestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client := testClient(server.URL)
	_, err := client.Request(context.Background(), http.MethodGet, "/replicas", nil, nil, "")

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Request() error = %v, want NetworkError", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	mock := testutil.NewMockAPI(t)
	client := testClient(mock.URL())

	_, err := client.GetUser(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Errorf("GetUser() error = %v, want 404 APIError", err)
	}
}

func TestEnsureUserCreatesOnNotFound(t *testing.T) {
	mock := testutil.NewMockAPI(t)
	client := testClient(mock.URL())

	id, err := client.EnsureUser(context.Background(), "U123")
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}
	if id != "U123" {
		t.Errorf("EnsureUser() = %q, want %q", id, "U123")
	}
	if !mock.HasUser("U123") {
		t.Error("EnsureUser() did not create the missing user")
	}
}

func TestEnsureUserExisting(t *testing.T) {
	mock := testutil.NewMockAPI(t)
	mock.AddUser("U123")
	client := testClient(mock.URL())

	id, err := client.EnsureUser(context.Background(), "U123")
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}
	if id != "U123" {
		t.Errorf("EnsureUser() = %q, want %q", id, "U123")
	}
}

func TestListReplicas(t *testing.T) {
	mock := testutil.NewMockAPI(t)
	mock.ReplicasBody = `{"success":true,"items":[
		{"uuid":"r-1","name":"First","slug":"first","ownerID":"U001","llm":{"provider":"openai","model":"gpt-4o"}},
		{"uuid":"r-2","name":"Second","slug":"second","ownerID":"U002"}
	]}`
	client := testClient(mock.URL())

	replicas, err := client.ListReplicas(context.Background(), "U001")
	if err != nil {
		t.Fatalf("ListReplicas() error = %v", err)
	}
	if len(replicas) != 2 {
		t.Fatalf("ListReplicas() returned %d replicas, want 2", len(replicas))
	}
	if replicas[0].UUID != "r-1" || replicas[0].OwnerID != "U001" {
		t.Errorf("replicas[0] = %+v", replicas[0])
	}
	if replicas[0].LLM.Model != "gpt-4o" {
		t.Errorf("replicas[0].LLM.Model = %q, want gpt-4o", replicas[0].LLM.Model)
	}
	if mock.LastOwnerFilter != "U001" {
		t.Errorf("owner filter = %q, want U001", mock.LastOwnerFilter)
	}
}

func TestListReplicasFailureEnvelope(t *testing.T) {
	mock := testutil.NewMockAPI(t)
	mock.ReplicasBody = `{"success":false}`
	client := testClient(mock.URL())

	_, err := client.ListReplicas(context.Background(), "")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("ListReplicas() error = %v, want ValidationError", err)
	}
}

func TestCreateReplica(t *testing.T) {
	mock := testutil.NewMockAPI(t)
	client := testClient(mock.URL())

	uuid, err := client.CreateReplica(context.Background(), Replica{
		Name:    "Test",
		Slug:    "test",
		OwnerID: "U001",
		LLM:     LLMConfig{Provider: "openai", Model: "gpt-4o"},
	})
	if err != nil {
		t.Fatalf("CreateReplica() error = %v", err)
	}
	if uuid != "mock-replica-uuid" {
		t.Errorf("CreateReplica() = %q", uuid)
	}
}

func TestCreateKnowledgeBaseEntry(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(m *testutil.MockAPI)
		wantErr   bool
		wantErrAs func(error) bool
	}{
		{
			name:  "success",
			setup: func(m *testutil.MockAPI) {},
		},
		{
			name:    "http failure",
			setup:   func(m *testutil.MockAPI) { m.CreateEntryStatus = 500 },
			wantErr: true,
			wantErrAs: func(err error) bool {
				var apiErr *APIError
				return errors.As(err, &apiErr) && apiErr.StatusCode == 500
			},
		},
		{
			name:    "missing knowledgeBaseID",
			setup:   func(m *testutil.MockAPI) { m.MissingKBID = true },
			wantErr: true,
			wantErrAs: func(err error) bool {
				var validationErr *ValidationError
				return errors.As(err, &validationErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockAPI(t)
			tt.setup(mock)
			client := testClient(mock.URL())

			kbID, err := client.CreateKnowledgeBaseEntry(context.Background(), "r-1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateKnowledgeBaseEntry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !tt.wantErrAs(err) {
					t.Errorf("CreateKnowledgeBaseEntry() error = %v, wrong type", err)
				}
				return
			}
			if kbID == 0 {
				t.Error("CreateKnowledgeBaseEntry() returned zero ID")
			}
		})
	}
}

func TestUpdateKnowledgeBaseEntry(t *testing.T) {
	mock := testutil.NewMockAPI(t)
	client := testClient(mock.URL())

	if err := client.UpdateKnowledgeBaseEntry(context.Background(), "r-1", 42, "some text"); err != nil {
		t.Fatalf("UpdateKnowledgeBaseEntry() error = %v", err)
	}
	if mock.UpdateEntryCalls != 1 {
		t.Errorf("update called %d times, want 1", mock.UpdateEntryCalls)
	}

	mock.UpdateEntryStatus = 503
	err := client.UpdateKnowledgeBaseEntry(context.Background(), "r-1", 42, "some text")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 503 {
		t.Errorf("UpdateKnowledgeBaseEntry() error = %v, want 503 APIError", err)
	}
}

func TestChatCompletion(t *testing.T) {
	mock := testutil.NewMockAPI(t)
	client := testClient(mock.URL())

	reply, err := client.ChatCompletion(context.Background(), "r-1", "tester", "hello")
	if err != nil {
		t.Fatalf("ChatCompletion() error = %v", err)
	}
	if reply != "echo: hello" {
		t.Errorf("ChatCompletion() = %q", reply)
	}
	if mock.LastChatUserID != "tester" {
		t.Errorf("acting-user header = %q, want tester", mock.LastChatUserID)
	}
}
