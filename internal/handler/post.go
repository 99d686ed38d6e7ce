package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tazwar/feedpost/internal/model"
	"github.com/tazwar/feedpost/internal/service"
)

// PostHandler exposes the post/comment endpoints.
//
// Route shapes (including the POST-for-read on /posts/id/{id}) follow
// the original API surface so existing clients keep working.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

type createPostRequest struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Content string `json:"content"`
	// Accepted for wire compatibility; a new post always starts with
	// an empty comment sequence regardless of what's sent here.
	Comments []model.Comment `json:"comments"`
}

// HandleCreate writes a new post document.
//
// HTTP: POST /posts/create
// Body: {"title","author","content","comments":[]}
// 201 {id,message} | 400 | 500
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "invalid JSON payload",
		})
		return
	}

	post, err := h.posts.Create(r.Context(), req.Title, req.Author, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":      post.ID,
		"message": fmt.Sprintf("post created with ID %s", post.ID),
	})
}

// HandleGet returns one post with its comments.
//
// HTTP: POST /posts/id/{id}
// 200 Post | 404
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleList returns every post.
//
// HTTP: GET /posts
// 200 [Post]
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

type commentRequest struct {
	User    string `json:"user"`
	Content string `json:"content"`
}

// HandleComment appends a comment to a post and returns it with its
// server-assigned timestamp.
//
// HTTP: POST /posts/comment/{id}
// Body: {"user","content"}
// 200 Comment | 400 | 404
func (h *PostHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "invalid comment JSON",
		})
		return
	}

	comment, err := h.posts.AppendComment(r.Context(), r.PathValue("id"), req.User, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// HandleDelete removes a post. Idempotent — deleting an absent post is
// still a 200, the body just says so.
//
// HTTP: DELETE /posts/delete/{id}
// 200 | 500
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	existed, err := h.posts.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	message := "post not found, nothing deleted"
	if existed {
		message = "post deleted"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}
