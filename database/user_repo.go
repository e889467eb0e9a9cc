package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindByID returns the user or nil when no row matches.
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindOwner returns the first owner account, or nil if none exists yet.
func (r *UserRepo) FindOwner(ctx context.Context) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("is_owner = ?", true).Order("created_at").Limit(1).Find(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == uuid.Nil {
		return nil, nil
	}
	return &user, nil
}

func (r *UserRepo) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Add inserts a new user. A duplicate username or email fails the unique index.
func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateProfile writes the editable profile columns of an existing user.
func (r *UserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Model(user).
		Select("full_name", "bio", "linkedin_url", "github_url", "profile_image", "updated_at").
		Updates(user).Error
}

// CountMembers counts accounts that are not the owner.
func (r *UserRepo) CountMembers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("is_owner = ?", false).Count(&count).Error
	return count, err
}

type SessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db}
}

func (r *SessionRepo) Add(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// FindByID returns the session or nil when it does not exist.
func (r *SessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error
}

// DeleteExpired removes the user's sessions that expired before now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, userID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at <= ?", userID, now).
		Delete(&models.Session{}).Error
}
