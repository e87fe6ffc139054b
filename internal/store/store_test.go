package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"call-coach-go/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testCall(id, userID string, status types.CallStatus, uploadedAt time.Time) *types.Call {
	return &types.Call{
		ID:         id,
		UserID:     userID,
		FileName:   id + ".wav",
		Status:     status,
		UploadedAt: uploadedAt,
	}
}

func TestCallRoundtrip(t *testing.T) {
	st := openTestStore(t)

	call := testCall("c1", "u1", types.StatusUploaded, time.Now().UTC())
	if err := st.SaveCall(call); err != nil {
		t.Fatalf("SaveCall: %v", err)
	}
	got, err := st.GetCall("c1")
	if err != nil {
		t.Fatalf("GetCall: %v", err)
	}
	if got.FileName != "c1.wav" || got.Status != types.StatusUploaded {
		t.Errorf("got %+v", got)
	}

	if _, err := st.GetCall("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing call err = %v, want ErrNotFound", err)
	}

	if err := st.DeleteCall("c1"); err != nil {
		t.Fatalf("DeleteCall: %v", err)
	}
	if _, err := st.GetCall("c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted call err = %v, want ErrNotFound", err)
	}
}

func TestUpdateCallAborts(t *testing.T) {
	st := openTestStore(t)
	if err := st.SaveCall(testCall("c1", "u1", types.StatusUploaded, time.Now().UTC())); err != nil {
		t.Fatalf("SaveCall: %v", err)
	}

	boom := errors.New("precondition failed")
	if _, err := st.UpdateCall("c1", func(c *types.Call) error {
		c.Status = types.StatusTranscribing
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("UpdateCall err = %v, want %v", err, boom)
	}

	// The aborted update must not be visible.
	got, err := st.GetCall("c1")
	if err != nil {
		t.Fatalf("GetCall: %v", err)
	}
	if got.Status != types.StatusUploaded {
		t.Errorf("status = %s, want uploaded after aborted update", got.Status)
	}
}

func TestUpdateCallTransition(t *testing.T) {
	st := openTestStore(t)
	if err := st.SaveCall(testCall("c1", "u1", types.StatusUploaded, time.Now().UTC())); err != nil {
		t.Fatalf("SaveCall: %v", err)
	}

	updated, err := st.UpdateCall("c1", func(c *types.Call) error {
		if !types.StageTranscription.CanStartFrom(c.Status) {
			return errors.New("bad state")
		}
		c.Status = types.StatusTranscribing
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateCall: %v", err)
	}
	if updated.Status != types.StatusTranscribing {
		t.Errorf("status = %s, want transcribing", updated.Status)
	}

	// Same precondition against the stored state now fails.
	if _, err := st.UpdateCall("c1", func(c *types.Call) error {
		if !types.StageTranscription.CanStartFrom(c.Status) {
			return errors.New("bad state")
		}
		c.Status = types.StatusTranscribing
		return nil
	}); err == nil {
		t.Error("second transition should fail against updated state")
	}
}

func TestListCalls(t *testing.T) {
	st := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		status := types.StatusUploaded
		if i%2 == 0 {
			status = types.StatusAnalyzed
		}
		call := testCall(fmt.Sprintf("c%d", i), "u1", status, base.Add(time.Duration(i)*time.Minute))
		if err := st.SaveCall(call); err != nil {
			t.Fatalf("SaveCall: %v", err)
		}
	}
	if err := st.SaveCall(testCall("other", "u2", types.StatusUploaded, base)); err != nil {
		t.Fatalf("SaveCall: %v", err)
	}

	calls, total, err := st.ListCalls("u1", "", 0, 0)
	if err != nil {
		t.Fatalf("ListCalls: %v", err)
	}
	if total != 5 || len(calls) != 5 {
		t.Fatalf("total = %d len = %d, want 5/5", total, len(calls))
	}
	if calls[0].ID != "c4" || calls[4].ID != "c0" {
		t.Errorf("order = %s..%s, want newest first", calls[0].ID, calls[4].ID)
	}

	analyzed, total, err := st.ListCalls("u1", types.StatusAnalyzed, 0, 0)
	if err != nil {
		t.Fatalf("ListCalls filtered: %v", err)
	}
	if total != 3 || len(analyzed) != 3 {
		t.Errorf("filtered total = %d len = %d, want 3/3", total, len(analyzed))
	}

	page, total, err := st.ListCalls("u1", "", 2, 2)
	if err != nil {
		t.Fatalf("ListCalls paged: %v", err)
	}
	if total != 5 || len(page) != 2 || page[0].ID != "c2" {
		t.Errorf("page = %v total = %d", page, total)
	}

	empty, total, err := st.ListCalls("u1", "", 10, 2)
	if err != nil {
		t.Fatalf("ListCalls past end: %v", err)
	}
	if total != 5 || len(empty) != 0 {
		t.Errorf("past-end page = %d items, total %d", len(empty), total)
	}
}

func TestAnalysisOnePerCall(t *testing.T) {
	st := openTestStore(t)

	a := &types.Analysis{ID: "a1", CallID: "c1", UserID: "u1", AnalyzedAt: time.Now().UTC()}
	if err := st.SaveAnalysis(a); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	dup := &types.Analysis{ID: "a2", CallID: "c1", UserID: "u1"}
	if err := st.SaveAnalysis(dup); !errors.Is(err, ErrExists) {
		t.Fatalf("second analysis err = %v, want ErrExists", err)
	}

	got, err := st.GetAnalysisByCall("c1")
	if err != nil {
		t.Fatalf("GetAnalysisByCall: %v", err)
	}
	if got.ID != "a1" {
		t.Errorf("id = %s, want the first analysis", got.ID)
	}

	if err := st.DeleteAnalysisByCall("c1"); err != nil {
		t.Fatalf("DeleteAnalysisByCall: %v", err)
	}
	if _, err := st.GetAnalysisByCall("c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestCoachingLifecycle(t *testing.T) {
	st := openTestStore(t)

	plan := &types.Coaching{ID: "co1", AnalysisID: "a1", CallID: "c1", UserID: "u1"}
	if err := st.SaveCoaching(plan); err != nil {
		t.Fatalf("SaveCoaching: %v", err)
	}
	if err := st.SaveCoaching(&types.Coaching{ID: "co2", AnalysisID: "a1", CallID: "c1"}); !errors.Is(err, ErrExists) {
		t.Fatalf("second coaching err = %v, want ErrExists", err)
	}

	byAnalysis, err := st.GetCoachingByAnalysis("a1")
	if err != nil {
		t.Fatalf("GetCoachingByAnalysis: %v", err)
	}
	byCall, err := st.GetCoachingByCall("c1")
	if err != nil {
		t.Fatalf("GetCoachingByCall: %v", err)
	}
	if byAnalysis.ID != "co1" || byCall.ID != "co1" {
		t.Errorf("lookups = %s/%s, want co1/co1", byAnalysis.ID, byCall.ID)
	}

	// Progress mutation goes through PutCoaching.
	byCall.Progress.BestQuizScore = 90
	if err := st.PutCoaching(byCall); err != nil {
		t.Fatalf("PutCoaching: %v", err)
	}
	again, err := st.GetCoachingByCall("c1")
	if err != nil {
		t.Fatalf("GetCoachingByCall: %v", err)
	}
	if again.Progress.BestQuizScore != 90 {
		t.Errorf("bestQuizScore = %d, want 90", again.Progress.BestQuizScore)
	}

	if err := st.DeleteCoaching(again); err != nil {
		t.Fatalf("DeleteCoaching: %v", err)
	}
	if _, err := st.GetCoachingByCall("c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("by-call err = %v, want ErrNotFound after delete", err)
	}
	if _, err := st.GetCoachingByAnalysis("a1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("by-analysis err = %v, want ErrNotFound after delete", err)
	}

	// Deleting the plan frees the analysis for regeneration.
	if err := st.SaveCoaching(&types.Coaching{ID: "co3", AnalysisID: "a1", CallID: "c1"}); err != nil {
		t.Fatalf("SaveCoaching after delete: %v", err)
	}
}

func TestUserEmailUniqueness(t *testing.T) {
	st := openTestStore(t)

	u := &types.User{ID: "u1", Email: "Agent@Example.com", Name: "Agent"}
	if err := st.CreateUser(u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := st.CreateUser(&types.User{ID: "u2", Email: "agent@example.com"}); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate email err = %v, want ErrExists", err)
	}

	// Email lookup is case-insensitive.
	got, err := st.GetUserByEmail("  AGENT@example.COM ")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != "u1" {
		t.Errorf("id = %s, want u1", got.ID)
	}

	if _, err := st.GetUserByEmail("nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown email err = %v, want ErrNotFound", err)
	}
}
