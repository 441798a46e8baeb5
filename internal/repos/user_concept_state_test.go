package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lectorhq/lector-backend/internal/repos/testutil"
	"github.com/lectorhq/lector-backend/internal/types"
)

func TestUserConceptStateRepoRoundTrip(t *testing.T) {
	tx := testutil.Tx(t)
	r := NewUserConceptStateRepo(testutil.DB(t), testLogger(t))
	ctx := context.Background()

	userID := uuid.New()
	conceptID := uuid.New()

	missing, err := r.Get(ctx, tx, userID, conceptID)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing state, got %+v", missing)
	}

	row := &types.UserConceptState{
		ID:                  uuid.New(),
		UserID:              userID,
		ConceptID:           conceptID,
		Mastery:             0.25,
		Exposures:           2,
		SuccessRate:         types.DefaultSuccessRate,
		RetentionRate:       types.DefaultRetentionRate,
		LearningSpeed:       types.DefaultLearningSpeed,
		SemanticSensitivity: types.DefaultSemanticSensitivity,
	}
	if err := r.Create(ctx, tx, row); err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := r.Get(ctx, tx, userID, conceptID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded == nil || loaded.Mastery != 0.25 || loaded.Exposures != 2 {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}

	loaded.Mastery = 0.5
	if err := r.Save(ctx, tx, loaded); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, err := r.Get(ctx, tx, userID, conceptID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Mastery != 0.5 {
		t.Fatalf("save not persisted: %v", again.Mastery)
	}
}

func TestUserConceptStateRepoGetDueForCourse(t *testing.T) {
	tx := testutil.Tx(t)
	log := testLogger(t)
	stateRepo := NewUserConceptStateRepo(testutil.DB(t), log)
	ccRepo := NewCourseConceptRepo(testutil.DB(t), log)
	ctx := context.Background()

	userID := uuid.New()
	courseID := uuid.New()
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	olderPast := now.Add(-2 * time.Hour)
	future := now.Add(time.Hour)

	mk := func(conceptID uuid.UUID, next *time.Time) {
		t.Helper()
		if err := ccRepo.Upsert(ctx, tx, courseID, conceptID); err != nil {
			t.Fatalf("assign concept: %v", err)
		}
		if err := stateRepo.Create(ctx, tx, &types.UserConceptState{
			ID:           uuid.New(),
			UserID:       userID,
			ConceptID:    conceptID,
			NextReviewAt: next,
		}); err != nil {
			t.Fatalf("create state: %v", err)
		}
	}

	dueSoonID := uuid.New()
	dueLaterID := uuid.New()
	notDueID := uuid.New()
	unscheduledID := uuid.New()
	mk(dueLaterID, &past)
	mk(dueSoonID, &olderPast)
	mk(notDueID, &future)
	mk(unscheduledID, nil)

	// A due state outside the course must not leak in.
	if err := stateRepo.Create(ctx, tx, &types.UserConceptState{
		ID: uuid.New(), UserID: userID, ConceptID: uuid.New(), NextReviewAt: &past,
	}); err != nil {
		t.Fatalf("create off-course state: %v", err)
	}

	due, err := stateRepo.GetDueForCourse(ctx, tx, userID, courseID, now)
	if err != nil {
		t.Fatalf("get due: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("due count: got=%d want=2", len(due))
	}
	if due[0].ConceptID != dueSoonID || due[1].ConceptID != dueLaterID {
		t.Fatalf("due not ordered oldest-first: [%s %s]", due[0].ConceptID, due[1].ConceptID)
	}
}
