package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound = errors.New("record not found")
)

const (
	// Key prefixes for different entity types
	UserKeyPrefix    = "user:"
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"

	// Sequence keys for records seeded without an ID
	UserSeqKey    = "seq:user"
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"

	// Owner index: record id -> parent id its key is stored under
	PostOwnerPrefix    = "owner:post:"
	CommentOwnerPrefix = "owner:comment:"
)

// userKey, postKey and commentKey zero-pad ids so badger's lexicographic
// iteration matches numeric order. Posts are keyed under their author and
// comments under their post so list-by-parent is a prefix scan.
func userKey(id int) []byte {
	return []byte(fmt.Sprintf("%s%010d", UserKeyPrefix, id))
}

func postPrefix(userID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", PostKeyPrefix, userID))
}

func postKey(userID, id int) []byte {
	return append(postPrefix(userID), []byte(fmt.Sprintf("%010d", id))...)
}

func commentPrefix(postID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", CommentKeyPrefix, postID))
}

func commentKey(postID, id int) []byte {
	return append(commentPrefix(postID), []byte(fmt.Sprintf("%010d", id))...)
}

func ownerKey(prefix string, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d", prefix, id))
}

// setOwner records parent as the owner of the record behind idxKey. When
// the record was previously stored under another parent, the stale copy
// at keyFor(previous) is deleted.
func setOwner(txn *badger.Txn, idxKey []byte, parent int, keyFor func(parent int) []byte) error {
	item, err := txn.Get(idxKey)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return err
	default:
		var previous int
		err = item.Value(func(val []byte) error {
			previous, err = strconv.Atoi(string(val))
			return err
		})
		if err != nil {
			return err
		}
		if previous != parent {
			if err := txn.Delete(keyFor(previous)); err != nil {
				return err
			}
		}
	}
	return txn.Set(idxKey, []byte(strconv.Itoa(parent)))
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id int
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		id = 1
	} else if err != nil {
		return 0, err
	} else {
		err = item.Value(func(val []byte) error {
			id = int(val[0])<<24 | int(val[1])<<16 | int(val[2])<<8 | int(val[3])
			return nil
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	if err := setSeq(txn, seqKey, id); err != nil {
		return 0, err
	}
	return id, nil
}

// bumpSeq raises a sequence so later getNextID calls never reuse id.
func bumpSeq(txn *badger.Txn, seqKey string, id int) error {
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		return setSeq(txn, seqKey, id)
	}
	if err != nil {
		return err
	}
	var current int
	err = item.Value(func(val []byte) error {
		current = int(val[0])<<24 | int(val[1])<<16 | int(val[2])<<8 | int(val[3])
		return nil
	})
	if err != nil {
		return err
	}
	if id > current {
		return setSeq(txn, seqKey, id)
	}
	return nil
}

func setSeq(txn *badger.Txn, seqKey string, id int) error {
	idBytes := []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	return txn.Set([]byte(seqKey), idBytes)
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
