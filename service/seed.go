package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"postviewer/app/models"
	"postviewer/app/repositories"

	"gopkg.in/yaml.v3"
)

// SeedData is the content of a fixture seed file.
type SeedData struct {
	Users    []models.User    `json:"users" yaml:"users"`
	Posts    []models.Post    `json:"posts" yaml:"posts"`
	Comments []models.Comment `json:"comments" yaml:"comments"`
}

// LoadSeed reads a seed file. Files ending in .json are decoded as JSON,
// everything else as YAML.
func LoadSeed(path string) (*SeedData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var seed SeedData
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &seed)
	} else {
		err = yaml.Unmarshal(data, &seed)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Apply writes every record to store, users first so that posts and
// comments never reference a record that is not yet stored.
func (d *SeedData) Apply(store *repositories.BadgerStore) error {
	for i := range d.Users {
		if err := store.PutUser(&d.Users[i]); err != nil {
			return err
		}
	}
	for i := range d.Posts {
		if err := store.PutPost(&d.Posts[i]); err != nil {
			return err
		}
	}
	for i := range d.Comments {
		if err := store.PutComment(&d.Comments[i]); err != nil {
			return err
		}
	}
	return nil
}
