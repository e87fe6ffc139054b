package store

import (
	"encoding/json"

	badger "github.com/dgraph-io/badger/v4"

	"call-coach-go/internal/types"
)

// SaveCoaching creates the coaching plan for an analysis and the call-id
// lookup entry alongside it. A second save for the same analysis fails with
// ErrExists.
func (s *Store) SaveCoaching(c *types.Coaching) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixCoaching + c.AnalysisID)
		if _, err := txn.Get(key); err == nil {
			return ErrExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set([]byte(prefixCoachingCall+c.CallID), []byte(c.AnalysisID))
	})
}

// PutCoaching overwrites an existing coaching plan. Only progress and
// completion criteria legitimately change after creation.
func (s *Store) PutCoaching(c *types.Coaching) error {
	return s.put(prefixCoaching+c.AnalysisID, c)
}

func (s *Store) GetCoachingByAnalysis(analysisID string) (*types.Coaching, error) {
	var c types.Coaching
	if err := s.get(prefixCoaching+analysisID, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetCoachingByCall(callID string) (*types.Coaching, error) {
	var analysisID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixCoachingCall + callID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			analysisID = string(val)
			return nil
		})
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.GetCoachingByAnalysis(analysisID)
}

func (s *Store) DeleteCoaching(c *types.Coaching) error {
	return s.delete(prefixCoaching+c.AnalysisID, prefixCoachingCall+c.CallID)
}
