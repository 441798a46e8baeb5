package services

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/lectorhq/lector-backend/internal/types"
)

func TestGetOrCreateDefaults(t *testing.T) {
	t.Parallel()
	h := newHarness(t, DefaultSchedulerConfig())
	userID := uuid.New()
	conceptID := uuid.New()

	st, err := h.state.GetOrCreate(context.Background(), nil, userID, conceptID)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if st.Mastery != 0 || st.Exposures != 0 {
		t.Fatalf("fresh state not zeroed: mastery=%v exposures=%d", st.Mastery, st.Exposures)
	}
	if st.SuccessRate != types.DefaultSuccessRate ||
		st.RetentionRate != types.DefaultRetentionRate ||
		st.LearningSpeed != types.DefaultLearningSpeed ||
		st.SemanticSensitivity != types.DefaultSemanticSensitivity {
		t.Fatalf("profile not at baseline: %+v", st)
	}

	again, err := h.state.GetOrCreate(context.Background(), nil, userID, conceptID)
	if err != nil {
		t.Fatalf("second get or create: %v", err)
	}
	if again.ID != st.ID {
		t.Fatalf("second call created a new row: %s vs %s", again.ID, st.ID)
	}
}

func TestUpdateMasteryBounds(t *testing.T) {
	t.Parallel()
	h := newHarness(t, DefaultSchedulerConfig())
	userID := uuid.New()
	conceptID := uuid.New()

	var st *types.UserConceptState
	var err error
	for i := 0; i < 20; i++ {
		st, err = h.state.UpdateMastery(context.Background(), nil, userID, conceptID, true, nil)
		if err != nil {
			t.Fatalf("update mastery: %v", err)
		}
		if st.Mastery < 0 || st.Mastery > 1 {
			t.Fatalf("mastery out of bounds after correct #%d: %v", i, st.Mastery)
		}
	}
	if st.Mastery != 1 {
		t.Fatalf("repeated correct answers should saturate at 1: got=%v", st.Mastery)
	}
	if st.Exposures != 20 {
		t.Fatalf("exposures: got=%d want=20", st.Exposures)
	}

	for i := 0; i < 30; i++ {
		st, err = h.state.UpdateMastery(context.Background(), nil, userID, conceptID, false, nil)
		if err != nil {
			t.Fatalf("update mastery: %v", err)
		}
		if st.Mastery < 0 || st.Mastery > 1 {
			t.Fatalf("mastery out of bounds after incorrect #%d: %v", i, st.Mastery)
		}
	}
	if st.Mastery != 0 {
		t.Fatalf("repeated misses should floor at 0: got=%v", st.Mastery)
	}
}

func TestUpdateMasteryLatencyPenaltyCapped(t *testing.T) {
	t.Parallel()
	cfg := DefaultSchedulerConfig()
	h := newHarness(t, cfg)
	userID := uuid.New()
	conceptID := uuid.New()

	// Even a pathological latency only costs LatencyPenaltyCap.
	latency := 10 * 60 * 1000
	st, err := h.state.UpdateMastery(context.Background(), nil, userID, conceptID, true, &latency)
	if err != nil {
		t.Fatalf("update mastery: %v", err)
	}
	want := cfg.CorrectDelta - cfg.LatencyPenaltyCap
	if math.Abs(st.Mastery-want) > 1e-9 {
		t.Fatalf("capped penalty: got=%v want=%v", st.Mastery, want)
	}

	// A fast correct answer takes the full delta minus the small pro-rated
	// penalty.
	fast := 600 // 600ms / 60s divisor = 0.01 penalty
	st2, err := h.state.UpdateMastery(context.Background(), nil, uuid.New(), conceptID, true, &fast)
	if err != nil {
		t.Fatalf("update mastery: %v", err)
	}
	want = cfg.CorrectDelta - 0.01
	if math.Abs(st2.Mastery-want) > 1e-9 {
		t.Fatalf("pro-rated penalty: got=%v want=%v", st2.Mastery, want)
	}
}

func TestLogProbeEventValidation(t *testing.T) {
	t.Parallel()
	h := newHarness(t, DefaultSchedulerConfig())

	_, err := h.state.LogProbeEvent(context.Background(), nil, LogProbeEventInput{
		UserID:    uuid.New(),
		ConceptID: uuid.New(),
		Rating:    types.Rating(0),
	})
	if err == nil {
		t.Fatal("rating 0 should be rejected")
	}

	before := len(h.probeRepo.events)
	ev, err := h.state.LogProbeEvent(context.Background(), nil, LogProbeEventInput{
		UserID:    uuid.New(),
		ConceptID: uuid.New(),
		Correct:   true,
		Rating:    types.RatingGood,
	})
	if err != nil {
		t.Fatalf("log probe event: %v", err)
	}
	if ev.ID == uuid.Nil {
		t.Fatal("event id not assigned")
	}
	if len(h.probeRepo.events) != before+1 {
		t.Fatalf("event not appended: %d -> %d", before, len(h.probeRepo.events))
	}
}
