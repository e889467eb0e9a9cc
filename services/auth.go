package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Username        string `json:"username" validate:"required,min=4,max=25"`
	Email           string `json:"email" validate:"required,email,max=120"`
	FullName        string `json:"full_name" validate:"required,min=2,max=100"`
	Password        string `json:"password" validate:"required,min=6,passwordbytes"`
	ConfirmPassword string `json:"confirm_password" validate:"omitempty,eqfield=Password"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Next     string `json:"next"`
}

type ProfileInput struct {
	FullName    string  `json:"full_name" validate:"required,min=2,max=100"`
	Bio         string  `json:"bio" validate:"max=500"`
	LinkedinURL string  `json:"linkedin_url" validate:"omitempty,url,max=300"`
	GithubURL   string  `json:"github_url" validate:"omitempty,url,max=300"`
	Image       *Upload `json:"-"`
}

// AuthResult is returned by a successful login or registration.
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Redirect  string       `json:"redirect"`
}

// OwnerBootstrap describes the owner account created on first start.
type OwnerBootstrap struct {
	Username string
	Email    string
	FullName string
	// Password may be empty, in which case a random one is generated and logged once.
	Password string
}

type AuthService struct {
	db       database.Database
	tokens   *SessionTokens
	storage  Storage
	logger   zerolog.Logger
	hashCost int
	now      func() time.Time

	dummyOnce sync.Once
	dummy     []byte
}

func NewAuthService(db database.Database, tokens *SessionTokens, storage Storage) *AuthService {
	return &AuthService{
		db:       db,
		tokens:   tokens,
		storage:  storage,
		logger:   log.With().Str("serviceName", "authService").Logger(),
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Register creates a member account and logs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	users := s.db.UserRepo()
	existing, err := users.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, errs.NewDatabaseError("find user", "user", err)
	}
	if existing != nil {
		return nil, errs.NewUniqueConstraintViolationError("user", "username", nil)
	}
	existing, err = users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, errs.NewDatabaseError("find user", "user", err)
	}
	if existing != nil {
		return nil, errs.NewUniqueConstraintViolationError("user", "email", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("hash password", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: string(hash),
	}
	if err := users.Add(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if database.IsUniqueViolation(err) {
			return nil, errs.NewUniqueConstraintViolationError("user", "username or email", err)
		}
		return nil, errs.NewDatabaseError("create user", "user", err)
	}

	s.logger.Info().Str("username", user.Username).Msg("Registered new user")
	return s.startSession(ctx, user, "")
}

// Authenticate checks a username and password. Unknown users and wrong passwords fail the same way.
func (s *AuthService) Authenticate(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.db.UserRepo().FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, errs.NewDatabaseError("find user", "user", err)
	}
	if user == nil {
		// keep the timing of unknown users close to a real comparison
		bcrypt.CompareHashAndPassword(s.dummyHash(), []byte(in.Password))
		return nil, errs.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, errs.NewInvalidCredentialsError()
	}

	if err := s.db.SessionRepo().DeleteExpired(ctx, user.ID, s.now()); err != nil {
		s.logger.Warn().Err(err).Str("userId", user.ID.String()).Msg("Could not purge expired sessions")
	}
	return s.startSession(ctx, user, in.Next)
}

// dummyHash is compared against for unknown users. It uses the same cost as real hashes.
func (s *AuthService) dummyHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummy, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.hashCost)
	})
	return s.dummy
}

func (s *AuthService) startSession(ctx context.Context, user *models.User, next string) (*AuthResult, error) {
	session := &models.Session{
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.tokens.TTL()),
	}
	if err := s.db.SessionRepo().Add(ctx, session); err != nil {
		return nil, errs.NewDatabaseError("create session", "session", err)
	}
	token, err := s.tokens.Sign(session)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("sign session token", err)
	}
	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Redirect:  landingPage(user, next),
	}, nil
}

// landingPage honours a local next path, otherwise sends the owner to the admin area.
func landingPage(user *models.User, next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.Contains(next, "\\") {
		return next
	}
	if user.IsOwner {
		return "/admin"
	}
	return "/"
}

// Logout ends the caller's session. It succeeds for anonymous callers too.
func (s *AuthService) Logout(ctx context.Context, identity *Identity) error {
	if identity == nil || identity.SessionID == uuid.Nil {
		return nil
	}
	if err := s.db.SessionRepo().Delete(ctx, identity.SessionID); err != nil {
		return errs.NewDatabaseError("delete session", "session", err)
	}
	return nil
}

// ResolveSession turns a session token into the caller's identity.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*Identity, *models.User, error) {
	sessionID, userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.db.SessionRepo().FindByID(ctx, sessionID)
	if err != nil {
		return nil, nil, errs.NewDatabaseError("find session", "session", err)
	}
	if session == nil || session.UserID != userID {
		return nil, nil, errs.NewInvalidTokenError()
	}
	if session.Expired(s.now()) {
		if err := s.db.SessionRepo().Delete(ctx, session.ID); err != nil {
			s.logger.Warn().Err(err).Msg("Could not delete expired session")
		}
		return nil, nil, errs.NewTokenExpiredError()
	}

	user, err := s.db.UserRepo().FindByID(ctx, userID)
	if err != nil {
		return nil, nil, errs.NewDatabaseError("find user", "user", err)
	}
	if user == nil {
		return nil, nil, errs.NewInvalidTokenError()
	}
	return IdentityOf(user, session.ID), user, nil
}

// CurrentUser returns the caller's own account.
func (s *AuthService) CurrentUser(ctx context.Context, identity *Identity) (*models.User, error) {
	if err := Authorize(identity, RoleMember); err != nil {
		return nil, err
	}
	user, err := s.db.UserRepo().FindByID(ctx, identity.UserID)
	if err != nil {
		return nil, errs.NewDatabaseError("find user", "user", err)
	}
	if user == nil {
		return nil, errs.NewNotFound("user")
	}
	return user, nil
}

// UpdateProfile edits the caller's own profile. Other accounts cannot be targeted.
func (s *AuthService) UpdateProfile(ctx context.Context, identity *Identity, in ProfileInput) (*models.User, error) {
	if err := Authorize(identity, RoleMember); err != nil {
		return nil, err
	}
	in.FullName = strings.TrimSpace(in.FullName)
	in.LinkedinURL = strings.TrimSpace(in.LinkedinURL)
	in.GithubURL = strings.TrimSpace(in.GithubURL)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.CurrentUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	if in.Image != nil {
		ref, err := s.storage.Store(ctx, in.Image.Data, in.Image.Filename)
		if err != nil {
			return nil, err
		}
		user.ProfileImage = &ref
	}
	user.FullName = in.FullName
	user.Bio = in.Bio
	user.LinkedinURL = in.LinkedinURL
	user.GithubURL = in.GithubURL

	if err := s.db.UserRepo().UpdateProfile(ctx, user); err != nil {
		return nil, errs.NewDatabaseError("update profile", "user", err)
	}
	return user, nil
}

// UpdateProfileImage replaces only the caller's profile image.
func (s *AuthService) UpdateProfileImage(ctx context.Context, identity *Identity, image Upload) (*models.User, error) {
	user, err := s.CurrentUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	ref, err := s.storage.Store(ctx, image.Data, image.Filename)
	if err != nil {
		return nil, err
	}
	user.ProfileImage = &ref
	if err := s.db.UserRepo().UpdateProfile(ctx, user); err != nil {
		return nil, errs.NewDatabaseError("update profile", "user", err)
	}
	return user, nil
}

// EnsureOwner creates the owner account when none exists. It reports whether one was created.
func (s *AuthService) EnsureOwner(ctx context.Context, boot OwnerBootstrap) (bool, error) {
	owner, err := s.db.UserRepo().FindOwner(ctx)
	if err != nil {
		return false, errs.NewDatabaseError("find owner", "user", err)
	}
	if owner != nil {
		return false, nil
	}

	password := boot.Password
	if len(password) > maxPasswordBytes {
		return false, errs.NewValidationError("password", passwordTooLong)
	}
	generated := password == ""
	if generated {
		password, err = generatePassword(20)
		if err != nil {
			return false, errs.NewInternalErrorWithCause("generate owner password", err)
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return false, errs.NewInternalErrorWithCause("hash password", err)
	}

	fullName := boot.FullName
	if fullName == "" {
		fullName = "Portfolio Owner"
	}
	owner = &models.User{
		Username:     boot.Username,
		Email:        boot.Email,
		FullName:     fullName,
		PasswordHash: string(hash),
		IsOwner:      true,
	}
	if err := s.db.UserRepo().Add(ctx, owner); err != nil {
		if database.IsUniqueViolation(err) {
			return false, errs.NewUniqueConstraintViolationError("user", "username or email", err)
		}
		return false, errs.NewDatabaseError("create owner", "user", err)
	}

	if generated {
		s.logger.Warn().
			Str("username", owner.Username).
			Str("password", password).
			Msg("Created owner account with a generated password")
	} else {
		s.logger.Info().Str("username", owner.Username).Msg("Created owner account")
	}
	return true, nil
}

// generatePassword returns a random URL-safe password of length characters.
func generatePassword(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}
