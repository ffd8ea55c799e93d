// Package store is the HTTP client for the remote CV service, which owns all
// durable state and PDF generation.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-editor/internal/logger"
	"github.com/jonathan/cv-editor/internal/schemas"
	"github.com/jonathan/cv-editor/internal/types"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "cvctl/1.0"

// maxErrorBody caps how much of an error response is kept in the error message.
const maxErrorBody = 512

// Options configures the client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *logger.Logger
	// NewID generates client-side ids for new users and documents.
	NewID func() string
}

// Client talks to the CV service.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	log       *logger.Logger
	newID     func() string
}

// Artifact is a reference to a generated, downloadable file.
type Artifact struct {
	Path string `json:"path"`
}

// New creates a client for the service at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &Error{Op: "configure", URL: opts.BaseURL, Message: "invalid base URL", Cause: err}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: userAgent,
		log:       logger.OrNop(opts.Logger),
		newID:     newID,
	}, nil
}

// RegisterUser creates a user with the given display name.
func (c *Client) RegisterUser(ctx context.Context, name string) (*types.User, error) {
	req := map[string]string{"id": c.newID(), "name": name}
	var resp struct {
		User *types.User `json:"user"`
	}
	if err := c.do(ctx, "register user", http.MethodPost, "add_user", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.User.ID == "" {
		return nil, &Error{Op: "register user", URL: c.resolve("add_user", nil), Message: "invalid response from server"}
	}
	return resp.User, nil
}

// AddCV creates a new document titled title for userID and returns its default shape.
func (c *Client) AddCV(ctx context.Context, userID, title string) (*types.CV, error) {
	req := map[string]string{"id": c.newID(), "userId": userID, "name": title}
	var resp struct {
		CV json.RawMessage `json:"cv"`
	}
	if err := c.do(ctx, "create cv", http.MethodPost, "add_cv", nil, req, &resp); err != nil {
		return nil, err
	}
	if isEmptyJSON(resp.CV) {
		return nil, &Error{Op: "create cv", URL: c.resolve("add_cv", nil), Message: "invalid response from server"}
	}
	doc, err := decodeDocument(resp.CV)
	if err != nil {
		return nil, &Error{Op: "create cv", URL: c.resolve("add_cv", nil), Message: "invalid document", Cause: err}
	}
	if doc.FileName == "" {
		doc.FileName = title
	}
	return doc, nil
}

// GetCV reads one document.
func (c *Client) GetCV(ctx context.Context, id string) (*types.CV, error) {
	path, err := documentPath("read cv", "get_cv", id)
	if err != nil {
		return nil, err
	}
	var resp struct {
		CV json.RawMessage `json:"cv"`
	}
	if err := c.do(ctx, "read cv", http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	if isEmptyJSON(resp.CV) {
		return nil, &Error{Op: "read cv", URL: c.resolve(path, nil), StatusCode: http.StatusOK, Message: "no document in response", Cause: ErrNotFound}
	}
	doc, err := decodeDocument(resp.CV)
	if err != nil {
		return nil, &Error{Op: "read cv", URL: c.resolve(path, nil), Message: "invalid document", Cause: err}
	}
	return doc, nil
}

// ListCVs returns every document owned by userID in service order.
func (c *Client) ListCVs(ctx context.Context, userID string) ([]types.CV, error) {
	query := url.Values{"userId": {userID}}
	var resp struct {
		CVs []json.RawMessage `json:"cvs"`
	}
	if err := c.do(ctx, "list cvs", http.MethodGet, "get_cvs", query, nil, &resp); err != nil {
		return nil, err
	}
	docs := make([]types.CV, 0, len(resp.CVs))
	for i, raw := range resp.CVs {
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, &Error{Op: "list cvs", URL: c.resolve("get_cvs", query), Message: fmt.Sprintf("invalid document at %d", i), Cause: err}
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// UpdateCV replaces the stored document id with doc and returns the accepted document.
// When the service does not echo the document back, doc itself is returned.
func (c *Client) UpdateCV(ctx context.Context, id string, doc types.CV) (*types.CV, error) {
	req := struct {
		ID   string   `json:"id"`
		Data types.CV `json:"data"`
	}{ID: id, Data: doc}
	var resp struct {
		CV json.RawMessage `json:"cv"`
	}
	if err := c.do(ctx, "update cv", http.MethodPost, "update_cv", nil, req, &resp); err != nil {
		return nil, err
	}
	if isEmptyJSON(resp.CV) {
		accepted := doc
		return &accepted, nil
	}
	accepted, err := decodeDocument(resp.CV)
	if err != nil {
		return nil, &Error{Op: "update cv", URL: c.resolve("update_cv", nil), Message: "invalid document", Cause: err}
	}
	return accepted, nil
}

// DeleteCV removes a document. Deletion is irreversible.
func (c *Client) DeleteCV(ctx context.Context, id string) error {
	path, err := documentPath("delete cv", "delete_cv", id)
	if err != nil {
		return err
	}
	return c.do(ctx, "delete cv", http.MethodDelete, path, nil, nil, nil)
}

// ListRoles returns the role names offered by the phrase catalog.
func (c *Client) ListRoles(ctx context.Context) ([]string, error) {
	var resp struct {
		Positions []string `json:"positions"`
	}
	if err := c.do(ctx, "list roles", http.MethodGet, "positions", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Positions, nil
}

// ListPhrases returns the suggested objective phrases for role.
func (c *Client) ListPhrases(ctx context.Context, role string) ([]string, error) {
	var resp struct {
		Phrases []string `json:"phrases"`
	}
	query := url.Values{"position": {role}}
	if err := c.do(ctx, "list phrases", http.MethodGet, "position_phrases", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Phrases, nil
}

// Generate asks the service to render doc and returns a reference to the artifact.
func (c *Client) Generate(ctx context.Context, doc types.CV) (*Artifact, error) {
	req := struct {
		CVData types.CV `json:"cvData"`
	}{CVData: doc}
	var artifact Artifact
	if err := c.do(ctx, "generate cv", http.MethodPost, "generate_cv", nil, req, &artifact); err != nil {
		return nil, err
	}
	if artifact.Path == "" {
		return nil, &Error{Op: "generate cv", URL: c.resolve("generate_cv", nil), Message: "no artifact path in response"}
	}
	return &artifact, nil
}

// Download streams the artifact at ref (absolute, or relative to the base URL) into w.
func (c *Client) Download(ctx context.Context, ref string, w io.Writer) (int64, error) {
	target, err := c.baseURL.Parse(ref)
	if err != nil {
		return 0, &Error{Op: "download artifact", URL: ref, Message: "invalid artifact reference", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, &Error{Op: "download artifact", URL: target.String(), Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &Error{Op: "download artifact", URL: target.String(), Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus("download artifact", target.String(), resp); err != nil {
		return 0, err
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &Error{Op: "download artifact", URL: target.String(), Message: "failed to read response body", Cause: err}
	}
	return n, nil
}

// documentPath joins endpoint and an escaped document id. Ids that would address
// another endpoint are rejected.
func documentPath(op, endpoint, id string) (string, error) {
	if id == "" || id == "." || id == ".." {
		return "", &Error{Op: op, URL: endpoint + "/" + id, Message: fmt.Sprintf("invalid document id %q", id)}
	}
	return endpoint + "/" + url.PathEscape(id), nil
}

// resolve joins an escaped path onto the base URL.
func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	u.RawPath = strings.TrimRight(u.EscapedPath(), "/") + "/" + path
	if unescaped, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = unescaped
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	target := c.resolve(path, query)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, URL: target, Message: "failed to encode request", Cause: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &Error{Op: op, URL: target, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "op", op, "url", target, "error", err)
		return &Error{Op: op, URL: target, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()
	c.log.Debug("request completed", "op", op, "status", resp.StatusCode, "elapsed", time.Since(start))

	if err := checkStatus(op, target, resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Op: op, URL: target, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Op: op, URL: target, StatusCode: resp.StatusCode, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func checkStatus(op, target string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	e := &Error{
		Op:         op,
		URL:        target,
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
	}
	if msg := strings.TrimSpace(string(snippet)); msg != "" {
		e.Message += ": " + msg
	}
	if resp.StatusCode == http.StatusNotFound {
		e.Cause = ErrNotFound
	}
	return e
}

func decodeDocument(raw json.RawMessage) (*types.CV, error) {
	if err := schemas.ValidateDocument(raw); err != nil {
		return nil, err
	}
	var doc types.CV
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
