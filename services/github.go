package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// SyncOutcome classifies how a repository sync ended.
type SyncOutcome string

const (
	OutcomeSuccess          SyncOutcome = "success"
	OutcomeInvalidHandle    SyncOutcome = "invalid_handle"
	OutcomeNotFound         SyncOutcome = "not_found"
	OutcomeRateLimited      SyncOutcome = "rate_limited"
	OutcomeTimeout          SyncOutcome = "timeout"
	OutcomeConnectionFailed SyncOutcome = "connection_failed"
	OutcomeUnexpectedStatus SyncOutcome = "unexpected_status"
	OutcomeDecodeFailed     SyncOutcome = "decode_failed"
	OutcomeStorageFailed    SyncOutcome = "storage_failed"
)

// RemoteRepo is the subset of the GitHub repository payload that gets mirrored.
type RemoteRepo struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	HTMLURL     string  `json:"html_url"`
	Language    *string `json:"language"`
	Stars       int     `json:"stargazers_count"`
	Forks       int     `json:"forks_count"`
	Fork        bool    `json:"fork"`
}

// FetchResult is the outcome of listing an account's repositories.
type FetchResult struct {
	Outcome SyncOutcome
	// Status is the HTTP status of the failing call, if any
	Status int
	// RetryAfter is how long GitHub asked us to wait when rate limited
	RetryAfter time.Duration
	Repos      []RemoteRepo
	Err        error
}

// RepoFetcher lists the public repositories of a code-hosting account.
type RepoFetcher interface {
	FetchRepos(ctx context.Context, handle string) FetchResult
}

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)

// NormalizeHandle accepts a bare username or a profile URL such as https://github.com/name/repo
// and returns the username.
func NormalizeHandle(input string) (string, bool) {
	handle := strings.TrimSpace(input)
	if i := strings.Index(handle, "github.com/"); i >= 0 {
		handle = strings.TrimRight(handle[i+len("github.com/"):], "/")
		handle, _, _ = strings.Cut(handle, "/")
	}
	handle = strings.TrimPrefix(handle, "@")
	if !handlePattern.MatchString(handle) {
		return "", false
	}
	return handle, true
}

type GitHubClient struct {
	baseURL string
	client  *http.Client
}

// NewGitHubClient builds a client for the REST API at baseURL. A non-empty token authenticates
// every request, which raises the rate limit.
func NewGitHubClient(baseURL, token string, timeout time.Duration) *GitHubClient {
	client := &http.Client{}
	if token != "" {
		client = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	client.Timeout = timeout
	return &GitHubClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (c *GitHubClient) FetchRepos(ctx context.Context, handle string) FetchResult {
	name := url.PathEscape(handle)

	status, header, _, err := c.get(ctx, "/users/"+name, nil)
	if res, failed := classify(status, err); failed {
		res.RetryAfter = retryAfter(header, time.Now())
		return res
	}

	query := url.Values{"per_page": {"100"}, "sort": {"updated"}}
	var repos []RemoteRepo
	status, header, body, err := c.get(ctx, "/users/"+name+"/repos", query)
	if res, failed := classify(status, err); failed {
		res.RetryAfter = retryAfter(header, time.Now())
		return res
	}
	if err := json.Unmarshal(body, &repos); err != nil {
		return FetchResult{Outcome: OutcomeDecodeFailed, Status: status, Err: err}
	}
	return FetchResult{Outcome: OutcomeSuccess, Status: status, Repos: repos}
}

func (c *GitHubClient) get(ctx context.Context, path string, query url.Values) (int, http.Header, []byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "portfolio-backend")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	var body json.RawMessage
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return resp.StatusCode, resp.Header, nil, &decodeError{err}
		}
	}
	return resp.StatusCode, resp.Header, body, nil
}

// retryAfter reads GitHub's rate limit headers. It is zero when the response gave no hint.
func retryAfter(header http.Header, now time.Time) time.Duration {
	if header == nil {
		return 0
	}
	if secs, err := strconv.Atoi(header.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if header.Get("X-RateLimit-Remaining") != "0" {
		return 0
	}
	reset, err := strconv.ParseInt(header.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return 0
	}
	if wait := time.Unix(reset, 0).Sub(now); wait > 0 {
		return wait.Round(time.Second)
	}
	return 0
}

type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

// classify maps a transport error or non-200 status onto an outcome. failed is false for a 200.
func classify(status int, err error) (res FetchResult, failed bool) {
	if err != nil {
		var decErr *decodeError
		var netErr net.Error
		switch {
		case errors.As(err, &decErr):
			return FetchResult{Outcome: OutcomeDecodeFailed, Status: status, Err: err}, true
		case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
			return FetchResult{Outcome: OutcomeTimeout, Err: err}, true
		default:
			return FetchResult{Outcome: OutcomeConnectionFailed, Err: err}, true
		}
	}
	switch status {
	case http.StatusOK:
		return FetchResult{}, false
	case http.StatusNotFound:
		return FetchResult{Outcome: OutcomeNotFound, Status: status}, true
	case http.StatusForbidden, http.StatusTooManyRequests:
		return FetchResult{Outcome: OutcomeRateLimited, Status: status}, true
	default:
		return FetchResult{Outcome: OutcomeUnexpectedStatus, Status: status, Err: fmt.Errorf("unexpected status %d", status)}, true
	}
}
