package repositories

import (
	"context"

	"postviewer/app/models"
)

// UserRepository defines read access to users
type UserRepository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
}

// PostRepository defines read access to posts
type PostRepository interface {
	ListPostsByUser(ctx context.Context, userID int) ([]models.Post, error)
}

// CommentRepository defines read access to comments
type CommentRepository interface {
	ListCommentsByPost(ctx context.Context, postID int) ([]models.Comment, error)
}

// Source bundles the three read repositories served by one backend.
type Source interface {
	UserRepository
	PostRepository
	CommentRepository
}
