package store

import (
	"encoding/json"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"call-coach-go/internal/types"
)

// callDoc is the persisted form of a call. types.Call hides FilePath from
// client JSON with `json:"-"`, but the store document must still carry it,
// so it is serialized through a shadow field.
type callDoc struct {
	*types.Call
	FilePath string `json:"filePath,omitempty"`
}

func (s *Store) SaveCall(c *types.Call) error {
	return s.put(prefixCall+c.ID, &callDoc{Call: c, FilePath: c.FilePath})
}

func (s *Store) GetCall(id string) (*types.Call, error) {
	var c types.Call
	doc := callDoc{Call: &c}
	if err := s.get(prefixCall+id, &doc); err != nil {
		return nil, err
	}
	c.FilePath = doc.FilePath
	return &c, nil
}

// UpdateCall applies fn to the current call document and writes the result
// inside one transaction. fn returning an error aborts without writing.
// This is the compare-and-set used for status transitions: two concurrent
// triggers racing to move the same call into an in-progress state cannot
// both succeed.
func (s *Store) UpdateCall(id string, fn func(*types.Call) error) (*types.Call, error) {
	var updated types.Call
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixCall + id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}
		doc := callDoc{Call: &updated}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		}); err != nil {
			return err
		}
		updated.FilePath = doc.FilePath
		if err := fn(&updated); err != nil {
			return err
		}
		doc.FilePath = updated.FilePath
		data, err := json.Marshal(&doc)
		if err != nil {
			return err
		}
		return txn.Set([]byte(prefixCall+id), data)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeleteCall(id string) error {
	return s.delete(prefixCall + id)
}

// ListCalls returns the user's calls newest-first, optionally filtered by
// status, with offset pagination. The second return is the filtered total.
func (s *Store) ListCalls(userID string, status types.CallStatus, offset, limit int) ([]types.Call, int, error) {
	var all []types.Call
	err := s.scan(prefixCall, func(val []byte) error {
		var c types.Call
		doc := callDoc{Call: &c}
		if err := json.Unmarshal(val, &doc); err != nil {
			return err
		}
		c.FilePath = doc.FilePath
		if c.UserID != userID {
			return nil
		}
		if status != "" && c.Status != status {
			return nil
		}
		all = append(all, c)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].UploadedAt.After(all[j].UploadedAt)
	})
	total := len(all)
	if offset >= total {
		return []types.Call{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}
