package repositories

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"name":"Leanne Graham","company":{"name":"Romaguera-Crona","catchPhrase":"Multi-layered"}},{"id":2,"name":"Ervin Howell","company":{"name":"Deckow-Crist"}}]`))
	})
	mux.HandleFunc("/users/3", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":3,"name":"Clementine Bauch","company":{"name":"Romaguera-Jacobson","catchPhrase":"Face to face"}}`))
	})
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("userId") == "9" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"id":21,"userId":3,"title":"asperiores ea ipsam","body":"dolorem"},{"id":22,"userId":3,"title":"dolor sint","body":"quia"}]`))
	})
	mux.HandleFunc("/comments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "21", r.URL.Query().Get("postId"))
		w.Write([]byte(`[{"id":101,"postId":21,"name":"quas fugiat","email":"Kari@jerrod.biz","body":"ut"}]`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRemoteClient(t *testing.T) {
	server := newTestAPI(t)
	client := NewRemoteClient(server.URL+"/", time.Second)
	ctx := context.Background()

	t.Run("list users", func(t *testing.T) {
		users, err := client.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "Leanne Graham", users[0].Name)
		assert.Equal(t, "Romaguera-Crona", users[0].Company.Name)
	})

	t.Run("get user", func(t *testing.T) {
		user, err := client.GetUser(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Face to face", user.Company.CatchPhrase)
	})

	t.Run("posts by user", func(t *testing.T) {
		posts, err := client.ListPostsByUser(ctx, 3)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, 21, posts[0].ID)
		assert.Equal(t, 22, posts[1].ID)
	})

	t.Run("comments by post", func(t *testing.T) {
		comments, err := client.ListCommentsByPost(ctx, 21)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, "Kari@jerrod.biz", comments[0].Email)
	})

	t.Run("server error", func(t *testing.T) {
		posts, err := client.ListPostsByUser(ctx, 9)
		assert.Nil(t, posts)
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		user, err := client.GetUser(ctx, 42)
		assert.Nil(t, user)
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		var out []int
		err := client.getJSON(ctx, "/broken", nil, &out)
		assert.ErrorContains(t, err, "failed to decode")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := client.ListUsers(cancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
