// Package ghrepo reads and writes the catalog document through the GitHub
// contents API. The document version last read (the blob sha) acts as a
// revision token: it is captured on fetch, required on commit, and replaced
// by the sha a successful commit returns. A stale token fails as a conflict;
// this package never tries to resolve one.
package ghrepo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const defaultAPIBase = "https://api.github.com"

var (
	ErrNotFound     = errors.New("ghrepo: repository or catalog file not found")
	ErrUnauthorized = errors.New("ghrepo: token is invalid or lacks access")
	ErrConflict     = errors.New("ghrepo: catalog changed remotely, refresh before saving")
)

// TransportError is any other failed exchange with the API.
type TransportError struct {
	Status  int
	Message string
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("ghrepo: request failed: %s", e.Message)
	}
	return fmt.Sprintf("ghrepo: request failed with status %d: %s", e.Status, e.Message)
}

// Config identifies the catalog repository. BaseURL is overridable for tests.
type Config struct {
	Owner   string
	Repo    string
	Path    string
	Branch  string
	Token   string
	BaseURL string
}

// Document is the fetched catalog plus its revision token.
type Document struct {
	Content []byte
	SHA     string
}

type Client struct {
	cfg  Config
	http *retryablehttp.Client
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAPIBase
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}

	rc := retryablehttp.NewClient()
	rc.Logger = log.New(io.Discard, "", 0)
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 30 * time.Second

	return &Client{cfg: cfg, http: rc}
}

func (c *Client) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		c.cfg.BaseURL, c.cfg.Owner, c.cfg.Repo, c.cfg.Path)
}

func (c *Client) do(req *retryablehttp.Request) (int, []byte, error) {
	req.Header.Set("Authorization", "token "+c.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &TransportError{Status: resp.StatusCode, Message: err.Error()}
	}
	return resp.StatusCode, body, nil
}

// statusError maps an API status onto the error taxonomy. Every cause gets a
// distinct user-facing message.
func statusError(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == 404:
		return ErrNotFound
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status == 409 || status == 422:
		// 409 is the sha-mismatch conflict; 422 shows up when the held sha
		// no longer matches an existing file.
		return ErrConflict
	default:
		msg := gjson.GetBytes(body, "message").Str
		if msg == "" {
			msg = "unexpected response"
		}
		return &TransportError{Status: status, Message: msg}
	}
}

// Fetch reads the catalog document and its revision token. The query carries
// a timestamp so no cache along the way serves a stale document.
func (c *Client) Fetch(ctx context.Context) (*Document, error) {
	u := c.contentsURL() + "?ref=" + url.QueryEscape(c.cfg.Branch) +
		"&t=" + strconv.FormatInt(time.Now().UnixMilli(), 10)

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, &TransportError{Message: err.Error()}
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if err := statusError(status, body); err != nil {
		return nil, err
	}

	sha := gjson.GetBytes(body, "sha").Str
	encoded := strings.ReplaceAll(gjson.GetBytes(body, "content").Str, "\n", "")

	content, decodeErr := base64.StdEncoding.DecodeString(encoded)
	if decodeErr != nil || len(content) == 0 {
		// Large documents come back without inline content; fetch the raw
		// file from its download URL instead.
		downloadURL := gjson.GetBytes(body, "download_url").Str
		if downloadURL == "" {
			return nil, &TransportError{Status: status, Message: "no decodable content or download URL"}
		}
		content, err = c.fetchRaw(ctx, downloadURL)
		if err != nil {
			return nil, err
		}
	}

	return &Document{Content: content, SHA: sha}, nil
}

func (c *Client) fetchRaw(ctx context.Context, rawURL string) ([]byte, error) {
	u := rawURL
	if strings.Contains(u, "?") {
		u += "&t=" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	} else {
		u += "?t=" + strconv.FormatInt(time.Now().UnixMilli(), 10)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, &TransportError{Message: err.Error()}
	}
	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if err := statusError(status, body); err != nil {
		return nil, err
	}
	return body, nil
}

// Commit writes the document back. sha is the revision token from the last
// Fetch (or previous Commit); the returned sha replaces it.
func (c *Client) Commit(ctx context.Context, content []byte, sha, message string) (string, error) {
	payload := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  c.cfg.Branch,
	}
	if sha != "" {
		payload["sha"] = sha
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", &TransportError{Message: err.Error()}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "PUT", c.contentsURL(), encoded)
	if err != nil {
		return "", &TransportError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return "", err
	}
	if err := statusError(status, body); err != nil {
		return "", err
	}

	newSHA := gjson.GetBytes(body, "content.sha").Str
	if newSHA == "" {
		return "", &TransportError{Status: status, Message: "commit response carried no sha"}
	}
	return newSHA, nil
}

// CommitMessage stamps the save like the original admin panel did.
func CommitMessage() string {
	return fmt.Sprintf("gameshelf admin: catalog update (%s)", time.Now().Format("2006-01-02 15:04:05"))
}
