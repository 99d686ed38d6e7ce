package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/tazwar/feedpost/internal/apperror"
	"github.com/tazwar/feedpost/internal/model"
	"github.com/tazwar/feedpost/internal/repository"
)

// Hand-rolled in-memory fakes for the repository interfaces. Each fake
// carries injectable error fields so tests can force store failures.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------
// fakeSessionRepo
// ---------------------------------------------------------------------

type fakeSessionRepo struct {
	sessions map[string]*model.Session

	createErr error
	getErr    error
	deleteErr error
}

var _ repository.SessionRepository = (*fakeSessionRepo)(nil)

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionRepo) CreateSession(_ context.Context, session *model.Session) error {
	if f.createErr != nil {
		return f.createErr
	}
	session.CreatedAt = time.Now().UTC()
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) GetSession(_ context.Context, id string) (*model.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	session, ok := f.sessions[id]
	if !ok {
		return nil, apperror.NotFound("session", id)
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepo) DeleteSession(_ context.Context, id string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	if _, ok := f.sessions[id]; !ok {
		return false, nil
	}
	delete(f.sessions, id)
	return true, nil
}

func (f *fakeSessionRepo) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for id, session := range f.sessions {
		if session.Expired(now) {
			delete(f.sessions, id)
			count++
		}
	}
	return count, nil
}

// ---------------------------------------------------------------------
// fakeUserRepo
// ---------------------------------------------------------------------

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User), nextID: 1}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return apperror.Conflict("user", user.Username)
		}
		if existing.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	user, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", "id")
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return apperror.NotFound("user", "id")
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) DeleteUser(_ context.Context, id int64) (bool, error) {
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

// ---------------------------------------------------------------------
// fakePostStore
// ---------------------------------------------------------------------

type fakePostStore struct {
	posts map[string]*model.Post

	putErr error
	getErr error
}

var _ repository.PostStore = (*fakePostStore)(nil)

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[string]*model.Post)}
}

func (f *fakePostStore) Put(_ context.Context, post *model.Post) error {
	if f.putErr != nil {
		return f.putErr
	}
	copied := *post
	copied.Comments = append([]model.Comment(nil), post.Comments...)
	f.posts[post.ID] = &copied
	return nil
}

func (f *fakePostStore) Get(_ context.Context, id string) (*model.Post, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	post, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	copied := *post
	copied.Comments = append([]model.Comment{}, post.Comments...)
	return &copied, nil
}

func (f *fakePostStore) List(_ context.Context) ([]model.Post, error) {
	out := make([]model.Post, 0, len(f.posts))
	for _, post := range f.posts {
		out = append(out, *post)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePostStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.posts[id]; !ok {
		return false, nil
	}
	delete(f.posts, id)
	return true, nil
}

// ---------------------------------------------------------------------
// fakeSubscriptionRepo
// ---------------------------------------------------------------------

type fakeSubscriptionRepo struct {
	topics map[int64]map[string]bool

	saveErr error
	getErr  error
}

var _ repository.SubscriptionRepository = (*fakeSubscriptionRepo)(nil)

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{topics: make(map[int64]map[string]bool)}
}

func (f *fakeSubscriptionRepo) SaveSubscriptions(_ context.Context, userID int64, topics []string) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	if f.topics[userID] == nil {
		f.topics[userID] = make(map[string]bool)
	}
	var added int64
	for _, topic := range topics {
		if !f.topics[userID][topic] {
			f.topics[userID][topic] = true
			added++
		}
	}
	return added, nil
}

func (f *fakeSubscriptionRepo) GetSubscriptions(_ context.Context, userID int64) ([]string, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := []string{}
	for topic := range f.topics[userID] {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeSubscriptionRepo) DeleteSubscriptions(_ context.Context, userID int64, topics []string) (int64, error) {
	var removed int64
	for _, topic := range topics {
		if f.topics[userID][topic] {
			delete(f.topics[userID], topic)
			removed++
		}
	}
	return removed, nil
}

// ---------------------------------------------------------------------
// fakeTopicCache
// ---------------------------------------------------------------------

type fakeTopicCache struct {
	entries map[int64][]string

	getCalls        int
	setCalls        int
	invalidateCalls int

	getErr error
	setErr error
}

var _ repository.TopicCache = (*fakeTopicCache)(nil)

func newFakeTopicCache() *fakeTopicCache {
	return &fakeTopicCache{entries: make(map[int64][]string)}
}

func (f *fakeTopicCache) GetTopics(_ context.Context, userID int64) ([]string, bool, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	topics, ok := f.entries[userID]
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), topics...), true, nil
}

func (f *fakeTopicCache) SetTopics(_ context.Context, userID int64, topics []string) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[userID] = append([]string(nil), topics...)
	return nil
}

func (f *fakeTopicCache) Invalidate(_ context.Context, userID int64) error {
	f.invalidateCalls++
	delete(f.entries, userID)
	return nil
}
