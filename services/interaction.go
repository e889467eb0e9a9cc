package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const MaxCommentLength = 1000

// LikeResult is the caller's like state after a toggle and the project's live count.
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// PublicAuthor is the part of a user shown next to their comments.
type PublicAuthor struct {
	Username     string  `json:"username"`
	FullName     string  `json:"full_name"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

// CommentView is a comment as shown to visitors.
type CommentView struct {
	ID        uuid.UUID    `json:"id"`
	ProjectID uuid.UUID    `json:"project_id"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
	Author    PublicAuthor `json:"author"`
}

func NewCommentView(c *models.Comment) CommentView {
	view := CommentView{
		ID:        c.ID,
		ProjectID: c.ProjectID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
	if c.User != nil {
		view.Author = PublicAuthor{
			Username:     c.User.Username,
			FullName:     c.User.FullName,
			ProfileImage: c.User.ProfileImage,
		}
	}
	return view
}

type InteractionService struct {
	db       database.Database
	notifier Notifier
	baseURL  string
	logger   zerolog.Logger
}

// NewInteractionService wires likes and comments. notifier may be nil.
func NewInteractionService(db database.Database, notifier Notifier, baseURL string) *InteractionService {
	return &InteractionService{
		db:       db,
		notifier: notifier,
		baseURL:  baseURL,
		logger:   log.With().Str("serviceName", "interactionService").Logger(),
	}
}

// requireProject loads a project the caller may see. Drafts are visible to the owner only.
func (s *InteractionService) requireProject(ctx context.Context, identity *Identity, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.db.ProjectRepo().FindByID(ctx, projectID)
	if err != nil {
		return nil, errs.NewDatabaseError("find project", "project", err)
	}
	if project == nil || (!project.IsPublished && (identity == nil || !identity.Owner)) {
		return nil, errs.NewNotFound("project")
	}
	return project, nil
}

// ToggleLike removes the caller's like if present, otherwise adds one.
// A concurrent duplicate insert is reported as liked rather than failing.
func (s *InteractionService) ToggleLike(ctx context.Context, identity *Identity, projectID uuid.UUID) (*LikeResult, error) {
	if err := Authorize(identity, RoleMember); err != nil {
		return nil, err
	}
	if _, err := s.requireProject(ctx, identity, projectID); err != nil {
		return nil, err
	}

	likes := s.db.LikeRepo()
	removed, err := likes.Delete(ctx, identity.UserID, projectID)
	if err != nil {
		return nil, errs.NewDatabaseError("delete like", "like", err)
	}

	result := &LikeResult{Liked: !removed}
	if !removed {
		err := likes.Add(ctx, &models.Like{UserID: identity.UserID, ProjectID: projectID})
		if err != nil && !database.IsUniqueViolation(err) {
			return nil, errs.NewDatabaseError("create like", "like", err)
		}
	}

	result.LikeCount, err = likes.CountByProject(ctx, projectID)
	if err != nil {
		return nil, errs.NewDatabaseError("count likes", "like", err)
	}
	return result, nil
}

// LikedProjectIDs lists the projects the caller has liked. Anonymous callers have none.
func (s *InteractionService) LikedProjectIDs(ctx context.Context, identity *Identity) ([]uuid.UUID, error) {
	if identity == nil {
		return nil, nil
	}
	ids, err := s.db.LikeRepo().ProjectIDsByUser(ctx, identity.UserID)
	if err != nil {
		return nil, errs.NewDatabaseError("find likes", "like", err)
	}
	return ids, nil
}

// AddComment posts the caller's comment on a project. The text is trimmed first.
func (s *InteractionService) AddComment(ctx context.Context, identity *Identity, projectID uuid.UUID, content string) (*CommentView, error) {
	if err := Authorize(identity, RoleMember); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n < 1 || n > MaxCommentLength {
		return nil, errs.NewValidationError("content", "comment must be between 1 and 1000 characters")
	}
	project, err := s.requireProject(ctx, identity, projectID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:   content,
		UserID:    identity.UserID,
		ProjectID: projectID,
	}
	if err := s.db.CommentRepo().Add(ctx, comment); err != nil {
		return nil, errs.NewDatabaseError("create comment", "comment", err)
	}

	saved, err := s.db.CommentRepo().FindByID(ctx, comment.ID)
	if err != nil {
		return nil, errs.NewDatabaseError("find comment", "comment", err)
	}
	if saved == nil {
		return nil, errs.NewNotFound("comment")
	}
	view := NewCommentView(saved)

	if !identity.Owner {
		s.notify(ctx, CommentNotice{
			ProjectTitle: project.Title,
			Author:       identity.Username,
			Content:      content,
			ProjectURL:   BuildProjectURL(s.baseURL, project.ID.String()),
		})
	}
	return &view, nil
}

// notify sends the notice in the background. Failures are logged and never reach the caller.
func (s *InteractionService) notify(ctx context.Context, notice CommentNotice) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		if err := s.notifier.NotifyComment(ctx, notice); err != nil {
			s.logger.Warn().Err(err).Str("project", notice.ProjectTitle).Msg("Failed to send comment notification")
		}
	}()
}

// ListComments returns a project's comments, newest first, with public author details only.
func (s *InteractionService) ListComments(ctx context.Context, identity *Identity, projectID uuid.UUID) ([]CommentView, error) {
	if _, err := s.requireProject(ctx, identity, projectID); err != nil {
		return nil, err
	}
	comments, err := s.db.CommentRepo().ListByProject(ctx, projectID)
	if err != nil {
		return nil, errs.NewDatabaseError("find comments", "comments", err)
	}
	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, NewCommentView(c))
	}
	return views, nil
}
