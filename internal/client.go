package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// requestTimeout bounds every outbound call to the remote service.
const requestTimeout = 30 * time.Second

// Client issues authenticated requests to the replica-management API.
// All failure modes come back as errors; nothing panics past this boundary.
type Client struct {
	baseURL    string
	orgSecret  string
	apiVersion string
	httpClient *http.Client
}

// NewClient creates a client from the loaded configuration.
func NewClient(cfg *Config) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		orgSecret:  cfg.OrganizationSecret,
		apiVersion: cfg.APIVersion,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Request issues one call against the API. path is relative to the base
// URL. body is JSON-marshaled when non-nil. userID, when set, is sent as
// the acting-user header for user-scoped endpoints. On a 2xx response the
// raw JSON body is returned; anything else is a typed error.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}, params url.Values, userID string) (json.RawMessage, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("X-ORGANIZATION-SECRET", c.orgSecret)
	req.Header.Set("X-API-Version", c.apiVersion)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-USER-ID", userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
		var details interface{}
		if json.Unmarshal(respBody, &details) == nil {
			apiErr.Details = details
		}
		return nil, apiErr
	}

	return respBody, nil
}

// userResponse is the remote user envelope.
type userResponse struct {
	ID string `json:"id"`
}

// replicasResponse is the list envelope for GET /replicas.
type replicasResponse struct {
	Success bool      `json:"success"`
	Items   []Replica `json:"items"`
}

// createReplicaResponse is the envelope for POST /replicas.
type createReplicaResponse struct {
	Success bool   `json:"success"`
	UUID    string `json:"uuid"`
}

// kbEntryResponse is the envelope for POST /replicas/{uuid}/training.
type kbEntryResponse struct {
	Success         bool  `json:"success"`
	KnowledgeBaseID int64 `json:"knowledgeBaseID"`
}

// successResponse is the bare envelope for mutating calls.
type successResponse struct {
	Success bool `json:"success"`
}

// chatResponse is the envelope for POST /replicas/{uuid}/chat/completions.
type chatResponse struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
}

// GetUser fetches a remote user by ID. A missing user surfaces as an
// APIError with status 404; check with IsNotFound.
func (c *Client) GetUser(ctx context.Context, id string) (string, error) {
	raw, err := c.Request(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, "")
	if err != nil {
		return "", err
	}
	var user userResponse
	if err := json.Unmarshal(raw, &user); err != nil {
		return "", fmt.Errorf("parsing user response: %w", err)
	}
	return user.ID, nil
}

// CreateUser creates a remote user with the given ID.
func (c *Client) CreateUser(ctx context.Context, id string) (string, error) {
	payload := map[string]string{"id": id}
	raw, err := c.Request(ctx, http.MethodPost, "/users", payload, nil, "")
	if err != nil {
		return "", err
	}
	var user userResponse
	if err := json.Unmarshal(raw, &user); err != nil {
		return "", fmt.Errorf("parsing user response: %w", err)
	}
	return user.ID, nil
}

// EnsureUser fetches the user and creates it when the remote service
// reports 404. Any other failure is returned as-is.
func (c *Client) EnsureUser(ctx context.Context, id string) (string, error) {
	userID, err := c.GetUser(ctx, id)
	if err == nil {
		return userID, nil
	}
	if !IsNotFound(err) {
		return "", err
	}
	LogInfo("user %q not found, creating", id)
	return c.CreateUser(ctx, id)
}

// ListReplicas lists replicas, optionally filtered by owner ID.
func (c *Client) ListReplicas(ctx context.Context, ownerID string) ([]Replica, error) {
	var params url.Values
	if ownerID != "" {
		params = url.Values{"ownerID": {ownerID}}
	}
	raw, err := c.Request(ctx, http.MethodGet, "/replicas", nil, params, "")
	if err != nil {
		return nil, err
	}
	var list replicasResponse
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parsing replicas response: %w", err)
	}
	if !list.Success {
		return nil, &ValidationError{Field: "success", Msg: "replica list response indicates failure"}
	}
	return list.Items, nil
}

// CreateReplica creates a replica and returns its UUID. The owner user
// must already exist; see EnsureUser.
func (c *Client) CreateReplica(ctx context.Context, replica Replica) (string, error) {
	payload := map[string]interface{}{
		"name":             replica.Name,
		"shortDescription": replica.ShortDescription,
		"greeting":         replica.Greeting,
		"ownerID":          replica.OwnerID,
		"private":          replica.Private,
		"slug":             replica.Slug,
		"llm": map[string]string{
			"provider": replica.LLM.Provider,
			"model":    replica.LLM.Model,
		},
	}
	raw, err := c.Request(ctx, http.MethodPost, "/replicas", payload, nil, "")
	if err != nil {
		return "", err
	}
	var created createReplicaResponse
	if err := json.Unmarshal(raw, &created); err != nil {
		return "", fmt.Errorf("parsing create replica response: %w", err)
	}
	if !created.Success || created.UUID == "" {
		return "", &ValidationError{Field: "uuid", Msg: "create replica response missing uuid"}
	}
	return created.UUID, nil
}

// CreateKnowledgeBaseEntry creates a new, empty knowledge-base entry under
// the replica and returns its ID. The entry stays empty until
// UpdateKnowledgeBaseEntry fills it.
func (c *Client) CreateKnowledgeBaseEntry(ctx context.Context, replicaUUID string) (int64, error) {
	path := fmt.Sprintf("/replicas/%s/training", url.PathEscape(replicaUUID))
	raw, err := c.Request(ctx, http.MethodPost, path, map[string]interface{}{}, nil, "")
	if err != nil {
		return 0, err
	}
	var entry kbEntryResponse
	if err := json.Unmarshal(raw, &entry); err != nil {
		return 0, fmt.Errorf("parsing knowledge-base entry response: %w", err)
	}
	if !entry.Success {
		return 0, &ValidationError{Field: "success", Msg: "knowledge-base entry response indicates failure"}
	}
	if entry.KnowledgeBaseID == 0 {
		return 0, &ValidationError{Field: "knowledgeBaseID", Msg: "missing in knowledge-base entry response"}
	}
	return entry.KnowledgeBaseID, nil
}

// UpdateKnowledgeBaseEntry sets the raw text of an existing entry.
func (c *Client) UpdateKnowledgeBaseEntry(ctx context.Context, replicaUUID string, kbID int64, rawText string) error {
	path := fmt.Sprintf("/replicas/%s/training/%d", url.PathEscape(replicaUUID), kbID)
	payload := map[string]string{"rawText": rawText}
	raw, err := c.Request(ctx, http.MethodPut, path, payload, nil, "")
	if err != nil {
		return err
	}
	var result successResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("parsing knowledge-base update response: %w", err)
	}
	if !result.Success {
		return &ValidationError{Field: "success", Msg: "knowledge-base update response indicates failure"}
	}
	return nil
}

// ChatCompletion posts one chat turn to the replica on behalf of userID
// and returns the assistant's reply.
func (c *Client) ChatCompletion(ctx context.Context, replicaUUID, userID, content string) (string, error) {
	path := fmt.Sprintf("/replicas/%s/chat/completions", url.PathEscape(replicaUUID))
	payload := map[string]string{"content": content}
	raw, err := c.Request(ctx, http.MethodPost, path, payload, nil, userID)
	if err != nil {
		return "", err
	}
	var reply chatResponse
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", fmt.Errorf("parsing chat response: %w", err)
	}
	if !reply.Success {
		return "", &ValidationError{Field: "success", Msg: "chat response indicates failure"}
	}
	return reply.Content, nil
}
