package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"postviewer/app/repositories"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// FixtureController serves the JSONPlaceholder-compatible read endpoints
// from a local repository.
type FixtureController struct {
	source repositories.Source
	logger *zap.Logger
}

// NewFixtureController creates a new FixtureController
func NewFixtureController(source repositories.Source, logger *zap.Logger) *FixtureController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FixtureController{source: source, logger: logger}
}

// Users handles GET /users
func (fc *FixtureController) Users(w http.ResponseWriter, r *http.Request) {
	users, err := fc.source.ListUsers(r.Context())
	if err != nil {
		fc.fail(w, r, "Failed to fetch users", err)
		return
	}
	sendJSON(w, http.StatusOK, users)
}

// User handles GET /users/{id}
func (fc *FixtureController) User(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		sendError(w, r, "Invalid user ID", http.StatusBadRequest, true)
		return
	}

	user, err := fc.source.GetUser(r.Context(), id)
	if err != nil {
		fc.fail(w, r, "Failed to fetch user", err)
		return
	}
	sendJSON(w, http.StatusOK, user)
}

// Posts handles GET /posts?userId={id}
func (fc *FixtureController) Posts(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryID(w, r, "userId")
	if !ok {
		return
	}

	posts, err := fc.source.ListPostsByUser(r.Context(), userID)
	if err != nil {
		fc.fail(w, r, "Failed to fetch posts", err)
		return
	}
	sendJSON(w, http.StatusOK, posts)
}

// Comments handles GET /comments?postId={id}
func (fc *FixtureController) Comments(w http.ResponseWriter, r *http.Request) {
	postID, ok := queryID(w, r, "postId")
	if !ok {
		return
	}

	comments, err := fc.source.ListCommentsByPost(r.Context(), postID)
	if err != nil {
		fc.fail(w, r, "Failed to fetch comments", err)
		return
	}
	sendJSON(w, http.StatusOK, comments)
}

func queryID(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || id < 1 {
		sendError(w, r, "Invalid or missing "+key, http.StatusBadRequest, true)
		return 0, false
	}
	return id, true
}

func (fc *FixtureController) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		sendError(w, r, "Not found", http.StatusNotFound, true)
		return
	}
	fc.logger.Error(message, zap.Error(err))
	sendError(w, r, message+": "+err.Error(), http.StatusInternalServerError, true)
}
