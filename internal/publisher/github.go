package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/eliezerRevach/finance-data/internal/logger"
)

// GitHubPublisher pushes files to a repository branch via the contents API.
type GitHubPublisher struct {
	Repo    string // "owner/name"
	Branch  string
	Token   string
	BaseURL string
	Client  *http.Client
}

// NewGitHubPublisher creates a publisher with optional proxy support.
func NewGitHubPublisher(repo, branch, token, proxyURL string) *GitHubPublisher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &GitHubPublisher{
		Repo:    repo,
		Branch:  branch,
		Token:   token,
		BaseURL: "https://api.github.com",
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Publish creates or updates path on the configured branch. The file's current
// blob SHA is fetched first; updates carry it so a concurrent change fails the
// call instead of being overwritten.
func (p *GitHubPublisher) Publish(ctx context.Context, path string, content []byte, message string) error {
	apiURL := fmt.Sprintf("%s/repos/%s/contents/%s", p.BaseURL, p.Repo, url.PathEscape(path))

	sha, err := p.currentSHA(ctx, apiURL)
	if err != nil {
		return err
	}
	if sha != "" {
		logger.L().Debug().Str("path", path).Msg("file exists, updating")
	} else {
		logger.L().Debug().Str("path", path).Msg("file does not exist, creating")
	}

	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  p.Branch,
	}
	if sha != "" {
		payload["sha"] = sha
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	p.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("push file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// currentSHA returns the blob SHA of path, or "" when the file does not exist.
func (p *GitHubPublisher) currentSHA(ctx context.Context, apiURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"?ref="+url.QueryEscape(p.Branch), nil)
	if err != nil {
		return "", err
	}
	p.setHeaders(req)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch file info: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var info struct {
			SHA string `json:"sha"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return "", fmt.Errorf("decode file info: %w", err)
		}
		return info.SHA, nil
	case http.StatusNotFound:
		return "", nil
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("github API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
}

func (p *GitHubPublisher) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "token "+p.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
}
