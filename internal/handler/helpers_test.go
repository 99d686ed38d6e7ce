package handler_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/tazwar/feedpost/internal/apperror"
	"github.com/tazwar/feedpost/internal/auth"
	"github.com/tazwar/feedpost/internal/model"
	"github.com/tazwar/feedpost/internal/repository"
	"github.com/tazwar/feedpost/internal/repository/sqlite"
	"github.com/tazwar/feedpost/internal/service"
)

// testEnv wires real services over an in-memory sqlite database, with
// in-memory stand-ins for the blob store and the topic cache.
type testEnv struct {
	db       *sqlite.DB
	posts    *MockPostStore
	cache    *MockTopicCache
	auth     *service.AuthService
	postSvc  *service.PostService
	subSvc   *service.SubscriptionService
	sessions *service.SessionService
	logger   *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	posts := NewMockPostStore()
	cache := NewMockTopicCache()

	sessions := service.NewSessionService(db, logger)
	return &testEnv{
		db:       db,
		posts:    posts,
		cache:    cache,
		auth:     service.NewAuthService(db, sessions, auth.NewPasswordServiceForTest(4), logger),
		postSvc:  service.NewPostService(posts, logger),
		subSvc:   service.NewSubscriptionService(db, cache, sessions, logger),
		sessions: sessions,
		logger:   logger,
	}
}

// register creates an account through the service layer.
func (e *testEnv) register(t *testing.T, username, password string) *model.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), username, username+"@example.com", password)
	if err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}
	return user
}

// login issues a session through the service layer.
func (e *testEnv) login(t *testing.T, username, password string) *model.Session {
	t.Helper()
	session, err := e.auth.Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("failed to log in test user: %v", err)
	}
	return session
}

// MockPostStore is an in-memory PostStore for handler tests — no S3.
type MockPostStore struct {
	posts map[string]*model.Post
}

var _ repository.PostStore = (*MockPostStore)(nil)

func NewMockPostStore() *MockPostStore {
	return &MockPostStore{posts: make(map[string]*model.Post)}
}

func (m *MockPostStore) Put(_ context.Context, post *model.Post) error {
	copied := *post
	copied.Comments = append([]model.Comment(nil), post.Comments...)
	m.posts[post.ID] = &copied
	return nil
}

func (m *MockPostStore) Get(_ context.Context, id string) (*model.Post, error) {
	post, ok := m.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	copied := *post
	copied.Comments = append([]model.Comment{}, post.Comments...)
	return &copied, nil
}

func (m *MockPostStore) List(_ context.Context) ([]model.Post, error) {
	out := make([]model.Post, 0, len(m.posts))
	for _, post := range m.posts {
		out = append(out, *post)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockPostStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := m.posts[id]; !ok {
		return false, nil
	}
	delete(m.posts, id)
	return true, nil
}

// MockTopicCache is an in-memory TopicCache for handler tests — no redis.
type MockTopicCache struct {
	entries map[int64][]string
}

var _ repository.TopicCache = (*MockTopicCache)(nil)

func NewMockTopicCache() *MockTopicCache {
	return &MockTopicCache{entries: make(map[int64][]string)}
}

func (m *MockTopicCache) GetTopics(_ context.Context, userID int64) ([]string, bool, error) {
	topics, ok := m.entries[userID]
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), topics...), true, nil
}

func (m *MockTopicCache) SetTopics(_ context.Context, userID int64, topics []string) error {
	m.entries[userID] = append([]string(nil), topics...)
	return nil
}

func (m *MockTopicCache) Invalidate(_ context.Context, userID int64) error {
	delete(m.entries, userID)
	return nil
}
