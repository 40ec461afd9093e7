package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserValidation(t *testing.T) {
	tests := []struct {
		name    string
		user    *User
		wantErr bool
	}{
		{
			name: "valid user",
			user: &User{
				ID:      1,
				Name:    "Leanne Graham",
				Email:   "Sincere@april.biz",
				Company: Company{Name: "Romaguera-Crona", CatchPhrase: "Multi-layered client-server neural-net"},
			},
			wantErr: false,
		},
		{
			name:    "zero id",
			user:    &User{Name: "Leanne Graham", Company: Company{Name: "Romaguera-Crona"}},
			wantErr: true,
		},
		{
			name:    "missing company name",
			user:    &User{ID: 1, Name: "Leanne Graham"},
			wantErr: true,
		},
		{
			name:    "bad email",
			user:    &User{ID: 1, Name: "Leanne Graham", Email: "not-an-email", Company: Company{Name: "Romaguera-Crona"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserByline(t *testing.T) {
	user := &User{ID: 1, Name: "Leanne Graham", Company: Company{Name: "Romaguera-Crona"}}
	assert.Equal(t, "Author: Leanne Graham with Romaguera-Crona", user.Byline())

	var missing *User
	assert.Equal(t, "Author: unknown", missing.Byline())
}
