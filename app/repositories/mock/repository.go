// Package mock provides an in-memory repositories.Source for tests.
package mock

import (
	"context"
	"sort"
	"sync"

	"postviewer/app/models"
	"postviewer/app/repositories"
)

// Operation names used for call counting and error injection.
const (
	OpListUsers          = "ListUsers"
	OpGetUser            = "GetUser"
	OpListPostsByUser    = "ListPostsByUser"
	OpListCommentsByPost = "ListCommentsByPost"
)

// Source is an in-memory repositories.Source.
type Source struct {
	users    map[int]models.User
	posts    map[int]models.Post
	comments map[int]models.Comment
	errs     map[string]error
	calls    map[string]int
	mutex    sync.RWMutex
}

var _ repositories.Source = (*Source)(nil)

func NewSource() *Source {
	return &Source{
		users:    make(map[int]models.User),
		posts:    make(map[int]models.Post),
		comments: make(map[int]models.Comment),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (m *Source) AddUser(users ...models.User) *Source {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *Source) AddPost(posts ...models.Post) *Source {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, p := range posts {
		m.posts[p.ID] = p
	}
	return m
}

func (m *Source) AddComment(comments ...models.Comment) *Source {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, c := range comments {
		m.comments[c.ID] = c
	}
	return m
}

// FailWith makes every later call to op return err. A nil err clears it.
func (m *Source) FailWith(op string, err error) *Source {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if err == nil {
		delete(m.errs, op)
	} else {
		m.errs[op] = err
	}
	return m
}

// Calls reports how often op was invoked.
func (m *Source) Calls(op string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.calls[op]
}

func (m *Source) begin(ctx context.Context, op string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.errs[op]
}

func (m *Source) ListUsers(ctx context.Context) ([]models.User, error) {
	if err := m.begin(ctx, OpListUsers); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	users := []models.User{}
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *Source) GetUser(ctx context.Context, id int) (*models.User, error) {
	if err := m.begin(ctx, OpGetUser); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}

func (m *Source) ListPostsByUser(ctx context.Context, userID int) ([]models.Post, error) {
	if err := m.begin(ctx, OpListPostsByUser); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := []models.Post{}
	for _, p := range m.posts {
		if p.UserID == userID {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

func (m *Source) ListCommentsByPost(ctx context.Context, postID int) ([]models.Comment, error) {
	if err := m.begin(ctx, OpListCommentsByPost); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comments := []models.Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}
