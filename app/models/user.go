package models

import "fmt"

// Validate checks if the user meets all validation requirements
func (u *User) Validate() error {
	if err := validate.Struct(u); err != nil {
		return err
	}
	return nil
}

// Byline returns the "Author: ... with ..." line shown under a post.
func (u *User) Byline() string {
	if u == nil {
		return "Author: unknown"
	}
	return fmt.Sprintf("Author: %s with %s", u.Name, u.Company.Name)
}
