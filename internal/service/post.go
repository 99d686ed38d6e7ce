package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/tazwar/feedpost/internal/apperror"
	"github.com/tazwar/feedpost/internal/model"
	"github.com/tazwar/feedpost/internal/repository"
)

// Validation limits for post and comment fields.
const (
	MaxTitleLength   = 200
	MaxContentLength = 100000 // ~100KB
)

// PostService handles posts and their embedded comments against the
// blob store. Every operation works on whole documents — the store has
// no partial update, so AppendComment is read-modify-write.
type PostService struct {
	posts  repository.PostStore
	logger *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(posts repository.PostStore, logger *slog.Logger) *PostService {
	return &PostService{posts: posts, logger: logger}
}

// Create validates the fields, assigns an ID, and writes the document
// with an empty comment sequence. Comments supplied at creation time
// are ignored — a post starts with no comments, full stop.
func (s *PostService) Create(ctx context.Context, title, author, content string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if author == "" {
		return nil, apperror.ValidationFailed("author", "author is required")
	}
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if len(content) > MaxContentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}

	post := &model.Post{
		ID:       xid.New().String(),
		Title:    title,
		Author:   author,
		Content:  content,
		Comments: []model.Comment{},
	}

	if err := s.posts.Put(ctx, post); err != nil {
		return nil, apperror.Store(fmt.Sprintf("writing post %s", post.ID), err)
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("author", post.Author),
	)
	return post, nil
}

// Get fetches one post by ID. ErrNotFound passes through untouched;
// other store failures become ErrStore.
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "post ID is required")
	}

	post, err := s.posts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, apperror.Store(fmt.Sprintf("reading post %s", id), err)
	}
	return post, nil
}

// AppendComment reads the post, appends a server-timestamped comment,
// and rewrites the whole document.
//
// Last-writer-wins: there is no optimistic concurrency control on the
// rewrite, so two concurrent appends to the same post can silently
// lose one comment. Accepted limitation under the single-writer
// assumption for any one post.
func (s *PostService) AppendComment(ctx context.Context, postID, user, content string) (*model.Comment, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, apperror.ValidationFailed("user", "comment user is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}

	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := model.Comment{
		User:    user,
		Content: content,
		Time:    time.Now().UTC(),
	}
	post.Comments = append(post.Comments, comment)

	if err := s.posts.Put(ctx, post); err != nil {
		return nil, apperror.Store(fmt.Sprintf("rewriting post %s", postID), err)
	}

	s.logger.Info("comment appended",
		slog.String("postID", postID),
		slog.String("user", user),
		slog.Int("commentCount", len(post.Comments)),
	)
	return &comment, nil
}

// List returns every post in the container. Full scan, one download
// per object — O(n), acceptable only at small scale.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, apperror.Store("listing posts", err)
	}
	return posts, nil
}

// Delete removes a post. Idempotent: deleting a missing post returns
// (false, nil).
func (s *PostService) Delete(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, apperror.ValidationFailed("id", "post ID is required")
	}

	existed, err := s.posts.Delete(ctx, id)
	if err != nil {
		return false, apperror.Store(fmt.Sprintf("deleting post %s", id), err)
	}
	if existed {
		s.logger.Info("post deleted", slog.String("postID", id))
	}
	return existed, nil
}
