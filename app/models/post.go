package models

import (
	"errors"
	"strconv"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	return validate.Struct(p)
}

// Key returns the post id in the form used by data-post-id attributes.
func (p *Post) Key() string {
	return strconv.Itoa(p.ID)
}

// SetAuthor ties the post to the given user.
func (p *Post) SetAuthor(user *User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	p.UserID = user.ID
	return nil
}
