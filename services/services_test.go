package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestDatabase(t *testing.T) database.Database {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_") + "_" + uuid.NewString()
	gdb, err := database.Open(map[string]string{
		"DB_TYPE":     "sqlite",
		"SQLITE_PATH": "file:" + name + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	clock := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	gdb.Config.NowFunc = clock.Now
	require.NoError(t, database.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return database.New(gdb)
}

// memoryStorage keeps uploads in a map and hands out sequential references.
type memoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memoryStorage) Store(_ context.Context, data []byte, originalName string) (string, error) {
	if _, _, err := checkImage(data, originalName); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	ref := "/uploads/" + uuid.NewString() + "_" + originalName
	m.files[ref] = data
	return ref, nil
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

type testEnv struct {
	db          database.Database
	auth        *AuthService
	content     *ContentService
	interaction *InteractionService
	about       *AboutService
	dashboard   *DashboardService
	storage     *memoryStorage
	owner       *Identity
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDatabase(t)
	storage := &memoryStorage{}
	auth := NewAuthService(db, NewSessionTokens("test-secret", time.Hour), storage)
	auth.hashCost = bcrypt.MinCost

	env := &testEnv{
		db:          db,
		auth:        auth,
		content:     NewContentService(db, storage, "https://example.com"),
		interaction: NewInteractionService(db, nil, "https://example.com"),
		about:       NewAboutService(db),
		dashboard:   NewDashboardService(db),
		storage:     storage,
	}

	created, err := auth.EnsureOwner(context.Background(), OwnerBootstrap{
		Username: "owner",
		Email:    "owner@example.com",
		Password: "owner-password",
	})
	require.NoError(t, err)
	require.True(t, created)
	owner, err := db.UserRepo().FindOwner(context.Background())
	require.NoError(t, err)
	env.owner = IdentityOf(owner, uuid.Nil)
	return env
}

// member registers a visitor account and returns its identity.
func (e *testEnv) member(t *testing.T, username string) *Identity {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		FullName: strings.ToUpper(username[:1]) + username[1:],
		Password: "secret123",
	})
	require.NoError(t, err)
	identity, _, err := e.auth.ResolveSession(context.Background(), res.Token)
	require.NoError(t, err)
	return identity
}

func (e *testEnv) project(t *testing.T, in ProjectInput) *models.Project {
	t.Helper()
	if in.Description == "" {
		in.Description = "description"
	}
	if in.Category == "" {
		in.Category = "web"
	}
	p, err := e.content.CreateProject(context.Background(), e.owner, in)
	require.NoError(t, err)
	return p
}
