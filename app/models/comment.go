package models

import (
	"errors"
	"fmt"
)

// Validate checks if the comment meets all validation requirements
func (c *Comment) Validate() error {
	return validate.Struct(c)
}

// From returns the attribution line rendered below a comment.
func (c *Comment) From() string {
	return fmt.Sprintf("From: %s", c.Email)
}

// SetPost sets the parent post and updates the PostID
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}
	c.PostID = post.ID
	return nil
}
