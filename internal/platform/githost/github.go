package githost

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"repo_agent/internal/common"
)

// GitHubClient opens pull requests through the GitHub REST API.
type GitHubClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGitHubClient builds a client for the given API base, e.g.
// "https://api.github.com".
func NewGitHubClient(baseURL string) *GitHubClient {
	return &GitHubClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type pullRequestPayload struct {
	Title string `json:"title"`
	Head  string `json:"head"`
	Base  string `json:"base"`
	Body  string `json:"body"`
}

type pullRequestResponse struct {
	HTMLURL string `json:"html_url"`
}

// CreateChangeRequest opens a pull request from head onto base and returns
// its link. A non-success response becomes an ErrHostAPI with the status and
// a snippet of the body.
func (c *GitHubClient) CreateChangeRequest(ctx context.Context, ownerRepo, title, head, base, body, token string) (string, error) {
	payload, err := json.Marshal(pullRequestPayload{
		Title: title,
		Head:  head,
		Base:  base,
		Body:  body,
	})
	if err != nil {
		return "", common.Errorf("%w: encoding pull request payload: %v", common.ErrHostAPI, err)
	}

	url := c.baseURL + "/repos/" + ownerRepo + "/pulls"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return "", common.Errorf("%w: building request: %v", common.ErrHostAPI, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "token "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", common.Errorf("%w: calling %s: %v", common.ErrHostAPI, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", common.Errorf("%w: %s returned %d: %s", common.ErrHostAPI, url, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var pr pullRequestResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", common.Errorf("%w: decoding pull request response: %v", common.ErrHostAPI, err)
	}
	return pr.HTMLURL, nil
}
