package repositories

import (
	"context"
	"fmt"

	"postviewer/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore implements Source using BadgerDB. It backs the local
// fixture API so the viewer can run against known data.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a new BadgerStore
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// PutUser stores a user, assigning the next id when ID is zero
func (s *BadgerStore) PutUser(user *models.User) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := assignID(txn, UserSeqKey, &user.ID); err != nil {
			return err
		}
		if err := user.Validate(); err != nil {
			return fmt.Errorf("invalid user %d: %w", user.ID, err)
		}
		data, err := marshalEntity(user)
		if err != nil {
			return err
		}
		return txn.Set(userKey(user.ID), data)
	})
}

// PutPost stores a post under its author, assigning the next id when ID is zero
func (s *BadgerStore) PutPost(post *models.Post) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := assignID(txn, PostSeqKey, &post.ID); err != nil {
			return err
		}
		if err := post.Validate(); err != nil {
			return fmt.Errorf("invalid post %d: %w", post.ID, err)
		}
		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		err = setOwner(txn, ownerKey(PostOwnerPrefix, post.ID), post.UserID, func(userID int) []byte {
			return postKey(userID, post.ID)
		})
		if err != nil {
			return err
		}
		return txn.Set(postKey(post.UserID, post.ID), data)
	})
}

// PutComment stores a comment under its post, assigning the next id when ID is zero
func (s *BadgerStore) PutComment(comment *models.Comment) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := assignID(txn, CommentSeqKey, &comment.ID); err != nil {
			return err
		}
		if err := comment.Validate(); err != nil {
			return fmt.Errorf("invalid comment %d: %w", comment.ID, err)
		}
		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		err = setOwner(txn, ownerKey(CommentOwnerPrefix, comment.ID), comment.PostID, func(postID int) []byte {
			return commentKey(postID, comment.ID)
		})
		if err != nil {
			return err
		}
		return txn.Set(commentKey(comment.PostID, comment.ID), data)
	})
}

func assignID(txn *badger.Txn, seqKey string, id *int) error {
	if *id == 0 {
		next, err := getNextID(txn, seqKey)
		if err != nil {
			return err
		}
		*id = next
		return nil
	}
	return bumpSeq(txn, seqKey, *id)
}

// ListUsers retrieves all users in id order
func (s *BadgerStore) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.scan(ctx, []byte(UserKeyPrefix), func(val []byte) error {
		var user models.User
		if err := unmarshalEntity(val, &user); err != nil {
			return err
		}
		users = append(users, user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser retrieves a user by ID
func (s *BadgerStore) GetUser(ctx context.Context, id int) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &user)
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListPostsByUser retrieves a user's posts in id order
func (s *BadgerStore) ListPostsByUser(ctx context.Context, userID int) ([]models.Post, error) {
	posts := []models.Post{}
	err := s.scan(ctx, postPrefix(userID), func(val []byte) error {
		var post models.Post
		if err := unmarshalEntity(val, &post); err != nil {
			return err
		}
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ListCommentsByPost retrieves a post's comments in id order
func (s *BadgerStore) ListCommentsByPost(ctx context.Context, postID int) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.scan(ctx, commentPrefix(postID), func(val []byte) error {
		var comment models.Comment
		if err := unmarshalEntity(val, &comment); err != nil {
			return err
		}
		comments = append(comments, comment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Counts reports how many users, posts and comments are stored.
func (s *BadgerStore) Counts(ctx context.Context) (users, posts, comments int, err error) {
	count := func(prefix string) (int, error) {
		n := 0
		err := s.scan(ctx, []byte(prefix), func([]byte) error {
			n++
			return nil
		})
		return n, err
	}
	if users, err = count(UserKeyPrefix); err != nil {
		return
	}
	if posts, err = count(PostKeyPrefix); err != nil {
		return
	}
	comments, err = count(CommentKeyPrefix)
	return
}

// Clear drops every stored record.
func (s *BadgerStore) Clear() error {
	return s.db.DropAll()
}

func (s *BadgerStore) scan(ctx context.Context, prefix []byte, fn func(val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}
