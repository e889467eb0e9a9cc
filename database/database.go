package database

import (
	"context"

	"gorm.io/gorm"
)

type Database struct {
	db              *gorm.DB
	userRepo        *UserRepo
	sessionRepo     *SessionRepo
	projectRepo     *ProjectRepo
	achievementRepo *AchievementRepo
	commentRepo     *CommentRepo
	likeRepo        *LikeRepo
	aboutMeRepo     *AboutMeRepo
	githubRepoRepo  *GitHubRepoRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:              db,
		userRepo:        NewUserRepo(db),
		sessionRepo:     NewSessionRepo(db),
		projectRepo:     NewProjectRepo(db),
		achievementRepo: NewAchievementRepo(db),
		commentRepo:     NewCommentRepo(db),
		likeRepo:        NewLikeRepo(db),
		aboutMeRepo:     NewAboutMeRepo(db),
		githubRepoRepo:  NewGitHubRepoRepo(db),
	}
}

// Transaction runs fn with repositories bound to a single transaction.
// The transaction is rolled back when fn returns an error or panics.
func (d Database) Transaction(ctx context.Context, fn func(tx Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) SessionRepo() *SessionRepo {
	return d.sessionRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) AchievementRepo() *AchievementRepo {
	return d.achievementRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

func (d Database) LikeRepo() *LikeRepo {
	return d.likeRepo
}

func (d Database) AboutMeRepo() *AboutMeRepo {
	return d.aboutMeRepo
}

func (d Database) GitHubRepoRepo() *GitHubRepoRepo {
	return d.githubRepoRepo
}

// Ping checks that the primary connection answers.
func (d Database) Ping(ctx context.Context) error {
	var result int
	return d.db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error
}
