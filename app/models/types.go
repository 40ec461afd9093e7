package models

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Company is the employer embedded in a user record.
type Company struct {
	Name        string `json:"name" yaml:"name" validate:"required"`
	CatchPhrase string `json:"catchPhrase" yaml:"catchPhrase"`
	BS          string `json:"bs,omitempty" yaml:"bs,omitempty"`
}

// User is an author as served by the users endpoint.
type User struct {
	ID       int     `json:"id" yaml:"id" validate:"required,gte=1"`
	Name     string  `json:"name" yaml:"name" validate:"required,max=100"`
	Username string  `json:"username,omitempty" yaml:"username,omitempty"`
	Email    string  `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Company  Company `json:"company" yaml:"company"`
}

// Post is a blog-style item authored by a user.
type Post struct {
	ID     int    `json:"id" yaml:"id" validate:"required,gte=1"`
	UserID int    `json:"userId" yaml:"userId" validate:"required,gte=1"`
	Title  string `json:"title" yaml:"title" validate:"required,max=200"`
	Body   string `json:"body" yaml:"body"`
}

// Comment is a reader remark attached to a post.
type Comment struct {
	ID     int    `json:"id" yaml:"id" validate:"required,gte=1"`
	PostID int    `json:"postId" yaml:"postId" validate:"required,gte=1"`
	Name   string `json:"name" yaml:"name" validate:"required"`
	Email  string `json:"email" yaml:"email" validate:"required,email"`
	Body   string `json:"body" yaml:"body"`
}
