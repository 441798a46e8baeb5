package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lectorhq/lector-backend/internal/types"
)

func TestBuildCourseFrontierPartitionsAndAverages(t *testing.T) {
	t.Parallel()
	h := newHarness(t, DefaultSchedulerConfig())

	base := h.addConcept(t, "base")
	dependent := h.addConcept(t, "dependent")
	untouched := h.addConcept(t, "untouched")
	if err := h.graph.AddPrerequisite(context.Background(), nil, dependent.ID, base.ID); err != nil {
		t.Fatalf("add prerequisite: %v", err)
	}
	courseID := h.addCourse(t)
	h.assign(t, courseID, base.ID, dependent.ID, untouched.ID)
	userID := uuid.New()

	// base is mastered and due for review; dependent stays locked until base
	// crosses the threshold, which it has.
	past := time.Now().UTC().Add(-time.Hour)
	h.setState(t, userID, base.ID, func(st *types.UserConceptState) {
		st.Mastery = 0.6
		st.NextReviewAt = &past
	})

	resp, err := h.frontier.BuildCourseFrontier(context.Background(), userID, courseID)
	if err != nil {
		t.Fatalf("build frontier: %v", err)
	}

	if len(resp.ComingSoon) != 0 {
		t.Fatalf("coming_soon should be empty once the prerequisite is mastered: %+v", resp.ComingSoon)
	}
	if len(resp.Frontier) != 3 {
		t.Fatalf("frontier: got=%d want=3", len(resp.Frontier))
	}
	if resp.DueCount != 1 || len(resp.DueForReview) != 1 {
		t.Fatalf("due: count=%d entries=%d want 1/1", resp.DueCount, len(resp.DueForReview))
	}
	if resp.DueForReview[0].ConceptID != base.ID {
		t.Fatalf("wrong due concept: %s", resp.DueForReview[0].Slug)
	}

	// Average runs over all three concepts, untouched ones count as zero.
	want := 0.6 / 3
	if math.Abs(resp.AvgMastery-want) > 1e-9 {
		t.Fatalf("avg_mastery: got=%v want=%v", resp.AvgMastery, want)
	}
}

func TestBuildCourseFrontierLockedComingSoon(t *testing.T) {
	t.Parallel()
	h := newHarness(t, DefaultSchedulerConfig())

	base := h.addConcept(t, "base")
	dependent := h.addConcept(t, "dependent")
	if err := h.graph.AddPrerequisite(context.Background(), nil, dependent.ID, base.ID); err != nil {
		t.Fatalf("add prerequisite: %v", err)
	}
	courseID := h.addCourse(t)
	h.assign(t, courseID, base.ID, dependent.ID)

	resp, err := h.frontier.BuildCourseFrontier(context.Background(), uuid.New(), courseID)
	if err != nil {
		t.Fatalf("build frontier: %v", err)
	}
	if len(resp.Frontier) != 1 || resp.Frontier[0].Slug != "base" {
		t.Fatalf("frontier: %+v", resp.Frontier)
	}
	if len(resp.ComingSoon) != 1 || resp.ComingSoon[0].Slug != "dependent" {
		t.Fatalf("coming_soon: %+v", resp.ComingSoon)
	}
	if resp.DueCount != 0 || resp.AvgMastery != 0 {
		t.Fatalf("fresh learner should have no dues and zero average: due=%d avg=%v", resp.DueCount, resp.AvgMastery)
	}
}

func TestBuildCourseFrontierEmptyCourse(t *testing.T) {
	t.Parallel()
	h := newHarness(t, DefaultSchedulerConfig())
	courseID := h.addCourse(t)

	resp, err := h.frontier.BuildCourseFrontier(context.Background(), uuid.New(), courseID)
	if err != nil {
		t.Fatalf("build frontier: %v", err)
	}
	if len(resp.Frontier) != 0 || len(resp.ComingSoon) != 0 || len(resp.DueForReview) != 0 {
		t.Fatalf("empty course should yield empty lists: %+v", resp)
	}
	if resp.AvgMastery != 0 {
		t.Fatalf("avg_mastery for empty course: got=%v want=0", resp.AvgMastery)
	}
}
