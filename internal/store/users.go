package store

import (
	"encoding/json"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"call-coach-go/internal/types"
)

// userDoc is the persisted form of a user. types.User hides PasswordHash
// from client JSON with `json:"-"`, but the store document must still
// carry it, so it is serialized through a shadow field.
type userDoc struct {
	*types.User
	PasswordHash string `json:"passwordHash,omitempty"`
}

// CreateUser stores the user and the email lookup entry. Emails are unique;
// a duplicate registration fails with ErrExists.
func (s *Store) CreateUser(u *types.User) error {
	email := normalizeEmail(u.Email)
	if err := s.putNew(prefixUserEmail+email, u.ID); err != nil {
		return err
	}
	return s.put(prefixUser+u.ID, &userDoc{User: u, PasswordHash: u.PasswordHash})
}

func (s *Store) GetUser(id string) (*types.User, error) {
	var u types.User
	doc := userDoc{User: &u}
	if err := s.get(prefixUser+id, &doc); err != nil {
		return nil, err
	}
	u.PasswordHash = doc.PasswordHash
	return &u, nil
}

func (s *Store) GetUserByEmail(email string) (*types.User, error) {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixUserEmail + normalizeEmail(email)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			// putNew stored the id as a JSON document, so decode it the
			// same way rather than taking the raw bytes.
			return json.Unmarshal(val, &id)
		})
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.GetUser(id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
