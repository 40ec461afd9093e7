package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"postviewer/app/controllers"
	"postviewer/app/models"
	"postviewer/app/repositories"
	"postviewer/app/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestStore(t *testing.T) *repositories.BadgerStore {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := repositories.NewBadgerStore(db)
	users := []models.User{
		{ID: 1, Name: "Leanne Graham", Company: models.Company{Name: "Romaguera-Crona", CatchPhrase: "Multi-layered client-server neural-net"}},
		{ID: 2, Name: "Ervin Howell", Company: models.Company{Name: "Deckow-Crist", CatchPhrase: "Proactive didactic contingency"}},
		{ID: 3, Name: "Clementine Bauch", Company: models.Company{Name: "Romaguera-Jacobson", CatchPhrase: "Face to face bifurcated interface"}},
	}
	for i := range users {
		require.NoError(t, store.PutUser(&users[i]))
	}
	posts := []models.Post{
		{ID: 1, UserID: 1, Title: "sunt aut facere", Body: "quia et suscipit"},
		{ID: 21, UserID: 3, Title: "asperiores ea ipsam", Body: "dolorem dolore est"},
		{ID: 22, UserID: 3, Title: "dolor sint quo a velit", Body: "fugiat quod pariatur"},
	}
	for i := range posts {
		require.NoError(t, store.PutPost(&posts[i]))
	}
	comments := []models.Comment{
		{ID: 101, PostID: 21, Name: "quas fugiat", Email: "Kari@jerrod.biz", Body: "ut dolorum"},
		{ID: 102, PostID: 21, Name: "sit ut incidunt", Email: "Abby@mira.com", Body: "et quod"},
	}
	for i := range comments {
		require.NoError(t, store.PutComment(&comments[i]))
	}
	return store
}

// setupViewer serves the fixture API over HTTP and points a viewer at it.
func setupViewer(t *testing.T) http.Handler {
	logger := zap.NewNop()
	fixtures := httptest.NewServer(SetupFixtureRoutes(
		controllers.NewFixtureController(setupTestStore(t), logger), logger))
	t.Cleanup(fixtures.Close)

	fetcher := services.NewFetcher(repositories.NewRemoteClient(fixtures.URL, 5*time.Second), logger)
	sessions := services.NewSessionStore(8, func() (*services.Page, error) {
		return services.NewPage(fetcher, logger, services.PageOptions{FetchConcurrency: 2, FallbackUserID: 1})
	}, logger)
	return SetupViewerRoutes(controllers.NewPageController(sessions, logger), logger)
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values, cookie *http.Cookie, asJSON bool) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if asJSON {
		req.Header.Set("Accept", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == controllers.SessionCookie {
			return c
		}
	}
	t.Fatalf("response carries no %s cookie", controllers.SessionCookie)
	return nil
}

func TestViewerRoutes(t *testing.T) {
	router := setupViewer(t)

	// Page ready: menu populated, placeholder shown
	w := do(t, router, "GET", "/", nil, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, `<option value="3">Clementine Bauch</option>`)
	assert.Contains(t, body, "Select an Employee to display their posts.")
	cookie := sessionCookie(t, w)

	t.Run("select change redirects", func(t *testing.T) {
		w := do(t, router, "POST", "/select", url.Values{"userId": {"3"}}, cookie, false)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		w = do(t, router, "GET", "/", nil, cookie, true)
		require.Equal(t, http.StatusOK, w.Code)
		var summary services.Summary
		require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
		assert.Equal(t, services.Summary{SelectedUserID: 3, Users: 3, Posts: 2, Listeners: 2}, summary)
	})

	t.Run("rendered posts", func(t *testing.T) {
		w := do(t, router, "GET", "/", nil, cookie, false)
		body := w.Body.String()
		assert.Contains(t, body, "<h2>asperiores ea ipsam</h2>")
		assert.Contains(t, body, "Author: Clementine Bauch with Romaguera-Jacobson")
		assert.Contains(t, body, "From: Kari@jerrod.biz")
		assert.NotContains(t, body, "Select an Employee to display their posts.")
	})

	t.Run("toggle by path", func(t *testing.T) {
		w := do(t, router, "POST", "/toggle/21", nil, cookie, true)
		require.Equal(t, http.StatusOK, w.Code)
		var result map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.Equal(t, "21", result["postId"])
		assert.Equal(t, false, result["hidden"])
		assert.Equal(t, "Hide Comments", result["label"])
	})

	t.Run("toggle by form", func(t *testing.T) {
		w := do(t, router, "POST", "/toggle", url.Values{"postId": {"21"}}, cookie, false)
		assert.Equal(t, http.StatusSeeOther, w.Code)

		// reading the page must not toggle again
		body := do(t, router, "GET", "/", nil, cookie, false).Body.String()
		assert.Contains(t, body, `<section data-post-id="21" class="comments hide">`)
		assert.Contains(t, body, `<button data-post-id="21" name="postId" value="21">Show Comments</button>`)
	})

	t.Run("toggle unknown post", func(t *testing.T) {
		w := do(t, router, "POST", "/toggle/999", nil, cookie, false)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("toggle without post id", func(t *testing.T) {
		w := do(t, router, "POST", "/toggle", url.Values{}, cookie, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Missing post ID")
	})

	t.Run("select json", func(t *testing.T) {
		w := do(t, router, "POST", "/select", url.Values{"userId": {"1"}}, cookie, true)
		require.Equal(t, http.StatusOK, w.Code)
		var result struct {
			UserID int              `json:"userId"`
			Posts  []models.Post    `json:"posts"`
			Page   services.Summary `json:"page"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		assert.Equal(t, 1, result.UserID)
		assert.Len(t, result.Posts, 1)
		assert.Equal(t, 1, result.Page.Posts)
		assert.False(t, result.Page.Disabled)
	})

	t.Run("health", func(t *testing.T) {
		w := do(t, router, "GET", "/healthz", nil, nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		var health map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&health))
		assert.Equal(t, "ok", health["status"])
		assert.EqualValues(t, 1, health["sessions"])
	})
}

func TestViewerRoutesSeparateSessions(t *testing.T) {
	router := setupViewer(t)

	first := sessionCookie(t, do(t, router, "GET", "/", nil, nil, false))
	second := sessionCookie(t, do(t, router, "GET", "/", nil, nil, false))
	require.NotEqual(t, first.Value, second.Value)

	do(t, router, "POST", "/select", url.Values{"userId": {"3"}}, first, false)

	w := do(t, router, "GET", "/", nil, second, true)
	var summary services.Summary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
	assert.Equal(t, 0, summary.Posts)
	assert.Equal(t, 0, summary.SelectedUserID)
}

func TestViewerRoutesMethodNotAllowed(t *testing.T) {
	router := setupViewer(t)

	w := do(t, router, "GET", "/select", nil, nil, false)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestFixtureRoutes(t *testing.T) {
	router := SetupFixtureRoutes(controllers.NewFixtureController(setupTestStore(t), zap.NewNop()), zap.NewNop())

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedLen    int
	}{
		{name: "list users", path: "/users", expectedStatus: http.StatusOK, expectedLen: 3},
		{name: "posts by user", path: "/posts?userId=3", expectedStatus: http.StatusOK, expectedLen: 2},
		{name: "posts for user without posts", path: "/posts?userId=2", expectedStatus: http.StatusOK, expectedLen: 0},
		{name: "posts without user", path: "/posts", expectedStatus: http.StatusBadRequest},
		{name: "comments by post", path: "/comments?postId=21", expectedStatus: http.StatusOK, expectedLen: 2},
		{name: "comments with bad post", path: "/comments?postId=abc", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, "GET", tt.path, nil, nil, false)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var items []json.RawMessage
			require.NoError(t, json.NewDecoder(w.Body).Decode(&items))
			assert.Len(t, items, tt.expectedLen)
		})
	}

	t.Run("single user", func(t *testing.T) {
		w := do(t, router, "GET", "/users/3", nil, nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		var user models.User
		require.NoError(t, json.NewDecoder(w.Body).Decode(&user))
		assert.Equal(t, "Clementine Bauch", user.Name)
		assert.Equal(t, "Romaguera-Jacobson", user.Company.Name)
	})

	t.Run("missing user", func(t *testing.T) {
		w := do(t, router, "GET", "/users/99", nil, nil, false)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestViewerReloadRetriesFailedUsersFetch(t *testing.T) {
	logger := zap.NewNop()
	api := SetupFixtureRoutes(controllers.NewFixtureController(setupTestStore(t), logger), logger)

	var usersCalls atomic.Int32
	fixtures := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users" && usersCalls.Add(1) == 1 {
			http.Error(w, "unavailable", http.StatusInternalServerError)
			return
		}
		api.ServeHTTP(w, r)
	}))
	t.Cleanup(fixtures.Close)

	fetcher := services.NewFetcher(repositories.NewRemoteClient(fixtures.URL, 5*time.Second), logger)
	sessions := services.NewSessionStore(8, func() (*services.Page, error) {
		return services.NewPage(fetcher, logger, services.PageOptions{FetchConcurrency: 1, FallbackUserID: 1})
	}, logger)
	router := SetupViewerRoutes(controllers.NewPageController(sessions, logger), logger)

	w := do(t, router, "GET", "/", nil, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Leanne Graham")
	cookie := sessionCookie(t, w)

	w = do(t, router, "GET", "/", nil, cookie, true)
	require.Equal(t, http.StatusOK, w.Code)
	var summary services.Summary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
	assert.Equal(t, 3, summary.Users)
	assert.Equal(t, 1, sessions.Len())

	// a populated menu is not fetched again
	do(t, router, "GET", "/", nil, cookie, false)
	assert.EqualValues(t, 2, usersCalls.Load())
}
