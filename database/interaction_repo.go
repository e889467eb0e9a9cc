package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

func (r *CommentRepo) Add(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// ListByProject returns the project's comments with their authors, newest first.
func (r *CommentRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&comments).Error
	return comments, err
}

// ListRecent returns the newest comments across all projects.
func (r *CommentRepo) ListRecent(ctx context.Context, limit int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).Preload("User").Order("created_at DESC").Limit(limit).Find(&comments).Error
	return comments, err
}

func (r *CommentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&comment).Error
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&count).Error
	return count, err
}

func (r *CommentRepo) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

type LikeRepo struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) *LikeRepo {
	return &LikeRepo{db}
}

// Add inserts a like. A second like by the same user on the same project fails the unique index.
func (r *LikeRepo) Add(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// Delete removes the user's like on a project and reports whether one existed.
func (r *LikeRepo) Delete(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.Like{})
	return result.RowsAffected > 0, result.Error
}

func (r *LikeRepo) Exists(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error
	return count > 0, err
}

func (r *LikeRepo) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

// ProjectIDsByUser lists the projects a user has liked.
func (r *LikeRepo) ProjectIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("user_id = ?", userID).Pluck("project_id", &ids).Error
	return ids, err
}
