package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const githubService = "GitHub"

// SyncResult reports a repository sync. Failures are reported here, not as errors.
type SyncResult struct {
	OK      bool        `json:"ok"`
	Outcome SyncOutcome `json:"outcome"`
	Message string      `json:"message"`
	Count   int         `json:"count"`
	// RetryAfter is in seconds and only set when GitHub rate limited the sync
	RetryAfter int `json:"retry_after,omitempty"`

	err *errs.ApiErr
}

// Err describes a failed sync, or is nil on success.
func (r SyncResult) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

type GitHubSyncService struct {
	db      database.Database
	fetcher RepoFetcher
	group   singleflight.Group
	logger  zerolog.Logger
}

func NewGitHubSyncService(db database.Database, fetcher RepoFetcher) *GitHubSyncService {
	return &GitHubSyncService{
		db:      db,
		fetcher: fetcher,
		logger:  log.With().Str("serviceName", "githubSyncService").Logger(),
	}
}

// SyncRepositories replaces the mirrored repository list with the account's current non-fork
// repositories. The mirror is left untouched unless the whole fetch succeeds. Concurrent syncs of
// the same handle share one fetch. The only error returned is an authorization failure.
func (s *GitHubSyncService) SyncRepositories(ctx context.Context, identity *Identity, handle string) (SyncResult, error) {
	if err := Authorize(identity, RoleOwner); err != nil {
		return SyncResult{}, err
	}
	name, ok := NormalizeHandle(handle)
	if !ok {
		return SyncResult{
			Outcome: OutcomeInvalidHandle,
			Message: "Invalid GitHub username.",
			err:     errs.NewInvalidFieldError("username", "not a GitHub username or profile URL"),
		}, nil
	}

	v, _, _ := s.group.Do(name, func() (any, error) {
		return s.sync(ctx, name), nil
	})
	return v.(SyncResult), nil
}

func (s *GitHubSyncService) sync(ctx context.Context, name string) SyncResult {
	fetched := s.fetcher.FetchRepos(ctx, name)
	if fetched.Outcome != OutcomeSuccess {
		s.logger.Warn().
			Err(fetched.Err).
			Str("handle", name).
			Str("outcome", string(fetched.Outcome)).
			Int("status", fetched.Status).
			Msg("GitHub sync failed")
		res := SyncResult{
			Outcome: fetched.Outcome,
			Message: outcomeMessage(fetched, name),
			err:     fetchError(fetched, name),
		}
		if fetched.Outcome == OutcomeRateLimited {
			res.RetryAfter = int(fetched.RetryAfter.Seconds())
		}
		return res
	}

	mirror := make([]*models.GitHubRepo, 0, len(fetched.Repos))
	for _, r := range fetched.Repos {
		if r.Fork {
			continue
		}
		mirror = append(mirror, &models.GitHubRepo{
			Name:        r.Name,
			Description: deref(r.Description),
			URL:         r.HTMLURL,
			Language:    deref(r.Language),
			Stars:       r.Stars,
			Forks:       r.Forks,
			IsDisplayed: true,
		})
	}

	if err := s.db.GitHubRepoRepo().ReplaceAll(ctx, mirror); err != nil {
		s.logger.Error().Err(err).Str("handle", name).Msg("Failed to store GitHub repositories")
		return SyncResult{
			Outcome: OutcomeStorageFailed,
			Message: "Could not save the repositories.",
			err:     errs.NewTransactionFailedError("replace repositories", err),
		}
	}

	s.logger.Info().Str("handle", name).Int("count", len(mirror)).Msg("Synced GitHub repositories")
	return SyncResult{
		OK:      true,
		Outcome: OutcomeSuccess,
		Message: fmt.Sprintf("Synced %d repositories.", len(mirror)),
		Count:   len(mirror),
	}
}

func outcomeMessage(res FetchResult, name string) string {
	switch res.Outcome {
	case OutcomeNotFound:
		return fmt.Sprintf("GitHub user '%s' was not found.", name)
	case OutcomeRateLimited:
		return "GitHub API rate limit reached. Try again later or configure GITHUB_TOKEN."
	case OutcomeTimeout:
		return "Timed out while contacting GitHub."
	case OutcomeConnectionFailed:
		return "Could not connect to GitHub."
	case OutcomeDecodeFailed:
		return "GitHub returned a response that could not be read."
	case OutcomeUnexpectedStatus:
		return fmt.Sprintf("GitHub API error: %d", res.Status)
	default:
		return "GitHub sync failed."
	}
}

// fetchError turns a failed fetch into the matching external service error.
func fetchError(res FetchResult, name string) *errs.ApiErr {
	switch res.Outcome {
	case OutcomeNotFound:
		return errs.NewAccountNotFoundError(githubService, name)
	case OutcomeRateLimited:
		return errs.NewRateLimitError(githubService, res.RetryAfter)
	case OutcomeTimeout:
		return errs.NewServiceTimeoutError(githubService, res.Err)
	case OutcomeConnectionFailed:
		return errs.NewServiceUnreachableError(githubService, res.Err)
	default:
		return errs.NewExternalServiceError(githubService, outcomeMessage(res, name), res.Err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ListRepos returns the whole mirror, hidden repositories included.
func (s *GitHubSyncService) ListRepos(ctx context.Context, identity *Identity) ([]*models.GitHubRepo, error) {
	if err := Authorize(identity, RoleOwner); err != nil {
		return nil, err
	}
	repos, err := s.db.GitHubRepoRepo().ListAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find repositories", "github_repos", err)
	}
	return repos, nil
}

// ToggleRepoDisplay flips whether a mirrored repository is shown publicly.
func (s *GitHubSyncService) ToggleRepoDisplay(ctx context.Context, identity *Identity, id uuid.UUID) (*models.GitHubRepo, error) {
	if err := Authorize(identity, RoleOwner); err != nil {
		return nil, err
	}
	repos := s.db.GitHubRepoRepo()
	repo, err := repos.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find repository", "github_repo", err)
	}
	if repo == nil {
		return nil, errs.NewNotFound("repository")
	}
	repo.IsDisplayed = !repo.IsDisplayed
	if err := repos.SetDisplayed(ctx, repo.ID, repo.IsDisplayed); err != nil {
		return nil, errs.NewDatabaseError("update repository", "github_repo", err)
	}
	return repo, nil
}
