package services

import (
	"context"

	"postviewer/app/models"
	"postviewer/app/repositories"

	"go.uber.org/zap"
)

// Fetcher is the boundary where repository failures stop. Every method
// returns nil when the id is missing (silently) or the read fails (logged),
// and callers treat nil as nothing to render.
type Fetcher struct {
	source repositories.Source
	logger *zap.Logger
}

// NewFetcher creates a Fetcher reading from source
func NewFetcher(source repositories.Source, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{source: source, logger: logger}
}

// FetchAllUsers returns every user.
func (f *Fetcher) FetchAllUsers(ctx context.Context) []models.User {
	users, err := f.source.ListUsers(ctx)
	if err != nil {
		f.fail("list users", 0, err)
		return nil
	}
	return users
}

// FetchPostsByUser returns the posts written by userID.
func (f *Fetcher) FetchPostsByUser(ctx context.Context, userID int) []models.Post {
	if userID <= 0 {
		return nil
	}
	posts, err := f.source.ListPostsByUser(ctx, userID)
	if err != nil {
		f.fail("list posts by user", userID, err)
		return nil
	}
	return posts
}

// FetchUserByID returns a single user.
func (f *Fetcher) FetchUserByID(ctx context.Context, userID int) *models.User {
	if userID <= 0 {
		return nil
	}
	user, err := f.source.GetUser(ctx, userID)
	if err != nil {
		f.fail("get user", userID, err)
		return nil
	}
	return user
}

// FetchCommentsByPost returns the comments on postID.
func (f *Fetcher) FetchCommentsByPost(ctx context.Context, postID int) []models.Comment {
	if postID <= 0 {
		return nil
	}
	comments, err := f.source.ListCommentsByPost(ctx, postID)
	if err != nil {
		f.fail("list comments by post", postID, err)
		return nil
	}
	return comments
}

func (f *Fetcher) fail(op string, id int, err error) {
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if id > 0 {
		fields = append(fields, zap.Int("id", id))
	}
	f.logger.Error("fetch failed", fields...)
}
