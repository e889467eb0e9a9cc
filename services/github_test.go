package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"octocat", "octocat", true},
		{"  octocat  ", "octocat", true},
		{"@octocat", "octocat", true},
		{"https://github.com/octocat", "octocat", true},
		{"https://github.com/octocat/", "octocat", true},
		{"github.com/octocat/hello-world", "octocat", true},
		{"", "", false},
		{"https://github.com/", "", false},
		{"bad name", "", false},
		{"-leading-dash", "", false},
		{"../etc/passwd", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeHandle(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func str(s string) *string { return &s }

func githubServer(t *testing.T, userStatus, reposStatus int, repos any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(userStatus)
		w.Write([]byte(`{"login":"octocat"}`))
	})
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		w.WriteHeader(reposStatus)
		switch body := repos.(type) {
		case string:
			w.Write([]byte(body))
		default:
			json.NewEncoder(w).Encode(body)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGitHubClientOutcomes(t *testing.T) {
	ctx := context.Background()
	repos := []RemoteRepo{{Name: "a", HTMLURL: "https://github.com/octocat/a"}}
	tests := []struct {
		name        string
		userStatus  int
		reposStatus int
		body        any
		want        SyncOutcome
	}{
		{"success", 200, 200, repos, OutcomeSuccess},
		{"user missing", 404, 200, repos, OutcomeNotFound},
		{"user rate limited", 403, 200, repos, OutcomeRateLimited},
		{"repos rate limited", 200, 429, repos, OutcomeRateLimited},
		{"server error", 500, 200, repos, OutcomeUnexpectedStatus},
		{"bad json", 200, 200, "{not json", OutcomeDecodeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := githubServer(t, tt.userStatus, tt.reposStatus, tt.body)
			res := NewGitHubClient(srv.URL, "", 5*time.Second).FetchRepos(ctx, "octocat")
			assert.Equal(t, tt.want, res.Outcome)
		})
	}
}

func TestGitHubClientTimeoutAndConnection(t *testing.T) {
	ctx := context.Background()
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer slow.Close()

	res := NewGitHubClient(slow.URL, "", 50*time.Millisecond).FetchRepos(ctx, "octocat")
	assert.Equal(t, OutcomeTimeout, res.Outcome)

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	res = NewGitHubClient(closed.URL, "", time.Second).FetchRepos(ctx, "octocat")
	assert.Equal(t, OutcomeConnectionFailed, res.Outcome)
}

func TestGitHubClientSendsToken(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	res := NewGitHubClient(srv.URL, "tok123", time.Second).FetchRepos(context.Background(), "octocat")
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, "Bearer tok123", auth.Load())
}

func TestSyncRepositories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	srv := githubServer(t, 200, 200, []RemoteRepo{
		{Name: "tool", Description: str("a tool"), HTMLURL: "https://github.com/octocat/tool", Language: str("Go"), Stars: 7, Forks: 2},
		{Name: "forked", HTMLURL: "https://github.com/octocat/forked", Fork: true},
		{Name: "notes", HTMLURL: "https://github.com/octocat/notes"},
	})
	sync := NewGitHubSyncService(env.db, NewGitHubClient(srv.URL, "", time.Second))

	res, err := sync.SyncRepositories(ctx, env.owner, "https://github.com/octocat")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, 2, res.Count)

	repos, err := sync.ListRepos(ctx, env.owner)
	require.NoError(t, err)
	require.Len(t, repos, 2)
	assert.Equal(t, "tool", repos[0].Name)
	assert.Equal(t, "a tool", repos[0].Description)
	assert.Equal(t, "Go", repos[0].Language)
	assert.Empty(t, repos[1].Description)

	toggled, err := sync.ToggleRepoDisplay(ctx, env.owner, repos[0].ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsDisplayed)
	shown, err := env.db.GitHubRepoRepo().ListDisplayed(ctx)
	require.NoError(t, err)
	require.Len(t, shown, 1)
	assert.Equal(t, "notes", shown[0].Name)
}

func TestSyncFailureLeavesMirror(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.db.GitHubRepoRepo().ReplaceAll(ctx, []*models.GitHubRepo{
		{Name: "kept", URL: "https://github.com/owner/kept"},
	}))
	srv := githubServer(t, 404, 200, []RemoteRepo{})
	sync := NewGitHubSyncService(env.db, NewGitHubClient(srv.URL, "", time.Second))

	res, err := sync.SyncRepositories(ctx, env.owner, "octocat")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, OutcomeNotFound, res.Outcome)
	assert.Contains(t, res.Message, "octocat")

	res, err = sync.SyncRepositories(ctx, env.owner, "not a handle")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalidHandle, res.Outcome)

	repos, err := env.db.GitHubRepoRepo().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "kept", repos[0].Name)
}

func TestSyncRepositoriesRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")
	sync := NewGitHubSyncService(env.db, NewGitHubClient("http://127.0.0.1:0", "", time.Second))

	_, err := sync.SyncRepositories(ctx, alice, "octocat")
	assert.True(t, errs.IsForbidden(err))
	_, err = sync.SyncRepositories(ctx, nil, "octocat")
	assert.True(t, errs.IsForbidden(err))
}

type fixedFetcher FetchResult

func (f fixedFetcher) FetchRepos(context.Context, string) FetchResult {
	return FetchResult(f)
}

func TestSyncResultErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cause := errors.New("dial tcp: connection refused")

	tests := []struct {
		name     string
		fetched  FetchResult
		status   int
		external bool
	}{
		{"not found", FetchResult{Outcome: OutcomeNotFound, Status: 404}, http.StatusNotFound, true},
		{"rate limited", FetchResult{Outcome: OutcomeRateLimited, Status: 403, RetryAfter: 90 * time.Second}, http.StatusTooManyRequests, true},
		{"timeout", FetchResult{Outcome: OutcomeTimeout, Err: context.DeadlineExceeded}, http.StatusGatewayTimeout, true},
		{"unreachable", FetchResult{Outcome: OutcomeConnectionFailed, Err: cause}, http.StatusBadGateway, true},
		{"unexpected status", FetchResult{Outcome: OutcomeUnexpectedStatus, Status: 500}, http.StatusBadGateway, true},
		{"decode", FetchResult{Outcome: OutcomeDecodeFailed, Status: 200}, http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sync := NewGitHubSyncService(env.db, fixedFetcher(tt.fetched))
			res, err := sync.SyncRepositories(ctx, env.owner, "octocat")
			require.NoError(t, err)
			assert.False(t, res.OK)

			var apiErr *errs.ApiErr
			require.ErrorAs(t, res.Err(), &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.external, errs.IsExternalServiceError(res.Err()))
			assert.Equal(t, tt.fetched.Outcome == OutcomeRateLimited, errs.IsRateLimitError(res.Err()))
		})
	}

	sync := NewGitHubSyncService(env.db, fixedFetcher{Outcome: OutcomeRateLimited, RetryAfter: 90 * time.Second})
	res, err := sync.SyncRepositories(ctx, env.owner, "octocat")
	require.NoError(t, err)
	assert.Equal(t, 90, res.RetryAfter)

	res, err = sync.SyncRepositories(ctx, env.owner, "bad name")
	require.NoError(t, err)
	assert.True(t, errs.IsValidationError(res.Err()))
	assert.False(t, errs.IsExternalServiceError(res.Err()))

	sync = NewGitHubSyncService(env.db, fixedFetcher{Outcome: OutcomeSuccess})
	res, err = sync.SyncRepositories(ctx, env.owner, "octocat")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.NoError(t, res.Err())
}

func TestRetryAfter(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.Zero(t, retryAfter(nil, now))
	assert.Equal(t, 30*time.Second, retryAfter(http.Header{"Retry-After": {"30"}}, now))

	exhausted := http.Header{
		"X-Ratelimit-Remaining": {"0"},
		"X-Ratelimit-Reset":     {strconv.FormatInt(now.Add(2*time.Minute).Unix(), 10)},
	}
	assert.Equal(t, 2*time.Minute, retryAfter(exhausted, now))

	exhausted.Set("X-RateLimit-Remaining", "12")
	assert.Zero(t, retryAfter(exhausted, now))
}

func TestGitHubClientReportsRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "45")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	res := NewGitHubClient(srv.URL, "", time.Second).FetchRepos(context.Background(), "octocat")
	assert.Equal(t, OutcomeRateLimited, res.Outcome)
	assert.Equal(t, 45*time.Second, res.RetryAfter)
}
