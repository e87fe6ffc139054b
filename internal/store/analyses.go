package store

import (
	"encoding/json"
	"sort"

	"call-coach-go/internal/types"
)

// SaveAnalysis creates the analysis for a call. Analyses are keyed by call
// id, so the one-per-call invariant is enforced by the key itself:
// a second save for the same call fails with ErrExists.
func (s *Store) SaveAnalysis(a *types.Analysis) error {
	return s.putNew(prefixAnalysis+a.CallID, a)
}

func (s *Store) GetAnalysisByCall(callID string) (*types.Analysis, error) {
	var a types.Analysis
	if err := s.get(prefixAnalysis+callID, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) DeleteAnalysisByCall(callID string) error {
	return s.delete(prefixAnalysis + callID)
}

// ListAnalyses returns the user's analyses newest-first.
func (s *Store) ListAnalyses(userID string, offset, limit int) ([]types.Analysis, int, error) {
	var all []types.Analysis
	err := s.scan(prefixAnalysis, func(val []byte) error {
		var a types.Analysis
		if err := json.Unmarshal(val, &a); err != nil {
			return err
		}
		if a.UserID == userID {
			all = append(all, a)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].AnalyzedAt.After(all[j].AnalyzedAt)
	})
	total := len(all)
	if offset >= total {
		return []types.Analysis{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}
