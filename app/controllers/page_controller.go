package controllers

import (
	"errors"
	"net/http"

	"postviewer/app/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SessionCookie names the cookie carrying the viewer session id.
const SessionCookie = "postviewer_session"

// PageController turns HTTP requests into page-ready, change and click
// events on the caller's session page.
type PageController struct {
	sessions *services.SessionStore
	logger   *zap.Logger
}

// NewPageController creates a new PageController
func NewPageController(sessions *services.SessionStore, logger *zap.Logger) *PageController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageController{sessions: sessions, logger: logger}
}

// page resolves the session page for r, creating one (and setting the
// cookie) when the request carries no live session. created reports that
// the page has just received its load event.
func (pc *PageController) page(w http.ResponseWriter, r *http.Request) (*services.Page, bool, bool) {
	var id string
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		id = cookie.Value
	}

	page, sid, created, err := pc.sessions.Get(r.Context(), id)
	if err != nil {
		pc.logger.Error("session", zap.Error(err))
		sendError(w, r, "Failed to create page", http.StatusInternalServerError, false)
		return nil, false, false
	}
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return page, created, true
}

// Index renders the session's document
func (pc *PageController) Index(w http.ResponseWriter, r *http.Request) {
	page, created, ok := pc.page(w, r)
	if !ok {
		return
	}
	if !created {
		// a reload is a fresh page-ready signal
		page.Load(r.Context())
	}

	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, page.Summary())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		pc.logger.Error("render page", zap.Error(err))
	}
}

// Select handles a change of the employee select menu
func (pc *PageController) Select(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest, false)
		return
	}
	page, _, ok := pc.page(w, r)
	if !ok {
		return
	}

	selection, err := page.Select(r.Context(), r.FormValue("userId"))
	switch {
	case errors.Is(err, services.ErrSelectionInFlight):
		sendError(w, r, err.Error(), http.StatusConflict, false)
		return
	case err != nil:
		sendError(w, r, "Failed to refresh posts: "+err.Error(), http.StatusInternalServerError, false)
		return
	}

	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, map[string]interface{}{
			"userId": selection.UserID,
			"posts":  selection.Posts,
			"page":   page.Summary(),
		})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Toggle handles a click on a post's comment toggle button
func (pc *PageController) Toggle(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["postId"]
	if postID == "" {
		if err := r.ParseForm(); err != nil {
			sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest, false)
			return
		}
		postID = r.FormValue("postId")
	}
	if postID == "" {
		sendError(w, r, "Missing post ID", http.StatusBadRequest, false)
		return
	}

	page, _, ok := pc.page(w, r)
	if !ok {
		return
	}

	result, err := page.Click(r.Context(), postID)
	if errors.Is(err, services.ErrNoListener) || (err == nil && result == nil) {
		sendError(w, r, "No toggle for post "+postID, http.StatusNotFound, false)
		return
	}
	if err != nil {
		sendError(w, r, "Failed to toggle comments: "+err.Error(), http.StatusInternalServerError, false)
		return
	}

	if wantsJSON(r) {
		sendJSON(w, http.StatusOK, map[string]interface{}{
			"postId": postID,
			"hidden": result.Hidden,
			"label":  result.Label,
		})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Health reports liveness
func (pc *PageController) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": pc.sessions.Len(),
	})
}
