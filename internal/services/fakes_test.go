package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/types"
)

// In-memory repo fakes so the scheduling math can be tested without a
// database. They mirror the query semantics of the gorm repos (slug ordering,
// both-column similarity lookup, recency windows) but keep everything in maps.

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

type fakeConceptRepo struct {
	concepts map[uuid.UUID]*types.Concept
	byCourse map[uuid.UUID][]uuid.UUID
}

func newFakeConceptRepo() *fakeConceptRepo {
	return &fakeConceptRepo{
		concepts: map[uuid.UUID]*types.Concept{},
		byCourse: map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeConceptRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Concept) ([]*types.Concept, error) {
	for _, c := range rows {
		cp := *c
		f.concepts[c.ID] = &cp
	}
	return rows, nil
}

func (f *fakeConceptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Concept, error) {
	c := f.concepts[id]
	if c == nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConceptRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Concept, error) {
	var out []*types.Concept
	for _, id := range ids {
		if c := f.concepts[id]; c != nil {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeConceptRepo) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Concept, error) {
	var out []*types.Concept
	for _, id := range f.byCourse[courseID] {
		if c := f.concepts[id]; c != nil {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (f *fakeConceptRepo) SlugsWithPrefix(ctx context.Context, tx *gorm.DB, prefix string) ([]string, error) {
	var out []string
	for _, c := range f.concepts {
		if c.Slug == prefix || (len(c.Slug) > len(prefix) && c.Slug[:len(prefix)+1] == prefix+"-") {
			out = append(out, c.Slug)
		}
	}
	return out, nil
}

func (f *fakeConceptRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

type fakePrereqRepo struct {
	edges []*types.ConceptPrerequisite
}

func newFakePrereqRepo() *fakePrereqRepo { return &fakePrereqRepo{} }

func (f *fakePrereqRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ConceptPrerequisite) error {
	cp := *row
	f.edges = append(f.edges, &cp)
	return nil
}

func (f *fakePrereqRepo) GetPair(ctx context.Context, tx *gorm.DB, conceptID, prereqID uuid.UUID) (*types.ConceptPrerequisite, error) {
	for _, e := range f.edges {
		if e.ConceptID == conceptID && e.PrereqID == prereqID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePrereqRepo) GetByConceptIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ConceptPrerequisite, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []*types.ConceptPrerequisite
	for _, e := range f.edges {
		if want[e.ConceptID] {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeCourseRepo struct {
	courses map[uuid.UUID]*types.Course
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[uuid.UUID]*types.Course{}}
}

func (f *fakeCourseRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Course) ([]*types.Course, error) {
	for _, c := range rows {
		cp := *c
		f.courses[c.ID] = &cp
	}
	return rows, nil
}

func (f *fakeCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Course, error) {
	c := f.courses[id]
	if c == nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

type fakeCourseConceptRepo struct {
	conceptRepo *fakeConceptRepo
}

func (f *fakeCourseConceptRepo) Upsert(ctx context.Context, tx *gorm.DB, courseID, conceptID uuid.UUID) error {
	for _, id := range f.conceptRepo.byCourse[courseID] {
		if id == conceptID {
			return nil
		}
	}
	f.conceptRepo.byCourse[courseID] = append(f.conceptRepo.byCourse[courseID], conceptID)
	return nil
}

func (f *fakeCourseConceptRepo) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseConcept, error) {
	var out []*types.CourseConcept
	for _, id := range f.conceptRepo.byCourse[courseID] {
		out = append(out, &types.CourseConcept{ID: uuid.New(), CourseID: courseID, ConceptID: id})
	}
	return out, nil
}

type fakeSimilarityRepo struct {
	rows []*types.ConceptSimilarity
}

func newFakeSimilarityRepo() *fakeSimilarityRepo { return &fakeSimilarityRepo{} }

func (f *fakeSimilarityRepo) Upsert(ctx context.Context, tx *gorm.DB, a, b uuid.UUID, similarity float64) error {
	for _, r := range f.rows {
		if r.ConceptAID == a && r.ConceptBID == b {
			r.Similarity = similarity
			return nil
		}
	}
	f.rows = append(f.rows, &types.ConceptSimilarity{ID: uuid.New(), ConceptAID: a, ConceptBID: b, Similarity: similarity})
	return nil
}

func (f *fakeSimilarityRepo) GetAmong(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID, otherIDs []uuid.UUID) ([]*types.ConceptSimilarity, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range otherIDs {
		want[id] = true
	}
	var out []*types.ConceptSimilarity
	for _, r := range f.rows {
		if (r.ConceptAID == conceptID && want[r.ConceptBID]) || (r.ConceptBID == conceptID && want[r.ConceptAID]) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeStateRepo struct {
	states   map[uuid.UUID]*types.UserConceptState // keyed by row id
	byCourse map[uuid.UUID][]uuid.UUID             // course -> concept ids, for due lookups
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{
		states:   map[uuid.UUID]*types.UserConceptState{},
		byCourse: map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeStateRepo) Get(ctx context.Context, tx *gorm.DB, userID, conceptID uuid.UUID) (*types.UserConceptState, error) {
	for _, st := range f.states {
		if st.UserID == userID && st.ConceptID == conceptID {
			cp := *st
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStateRepo) GetByUserAndConcepts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptIDs []uuid.UUID) ([]*types.UserConceptState, error) {
	want := map[uuid.UUID]bool{}
	for _, id := range conceptIDs {
		want[id] = true
	}
	var out []*types.UserConceptState
	for _, st := range f.states {
		if st.UserID == userID && want[st.ConceptID] {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStateRepo) Create(ctx context.Context, tx *gorm.DB, row *types.UserConceptState) error {
	cp := *row
	f.states[row.ID] = &cp
	return nil
}

func (f *fakeStateRepo) Save(ctx context.Context, tx *gorm.DB, row *types.UserConceptState) error {
	cp := *row
	f.states[row.ID] = &cp
	return nil
}

func (f *fakeStateRepo) GetDueForCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID, now time.Time) ([]*types.UserConceptState, error) {
	inCourse := map[uuid.UUID]bool{}
	for _, id := range f.byCourse[courseID] {
		inCourse[id] = true
	}
	var out []*types.UserConceptState
	for _, st := range f.states {
		if st.UserID != userID || !inCourse[st.ConceptID] {
			continue
		}
		if st.NextReviewAt == nil || st.NextReviewAt.After(now) {
			continue
		}
		cp := *st
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextReviewAt.Before(*out[j].NextReviewAt) })
	return out, nil
}

type fakeProbeRepo struct {
	events []*types.ProbeEvent
}

func newFakeProbeRepo() *fakeProbeRepo { return &fakeProbeRepo{} }

func (f *fakeProbeRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ProbeEvent) error {
	cp := *row
	f.events = append(f.events, &cp)
	return nil
}

func (f *fakeProbeRepo) RecentDistinctConceptIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		e := f.events[i]
		if e.UserID != userID || seen[e.ConceptID] {
			continue
		}
		seen[e.ConceptID] = true
		out = append(out, e.ConceptID)
	}
	return out, nil
}

// harness bundles fakes plus fully wired services over them.
type harness struct {
	conceptRepo *fakeConceptRepo
	prereqRepo  *fakePrereqRepo
	courseRepo  *fakeCourseRepo
	ccRepo      *fakeCourseConceptRepo
	simRepo     *fakeSimilarityRepo
	stateRepo   *fakeStateRepo
	probeRepo   *fakeProbeRepo

	cfg      SchedulerConfig
	graph    ConceptGraphService
	state    ConceptStateService
	sim      SimilarityService
	lector   LectorService
	frontier FrontierService
}

func newHarness(t *testing.T, cfg SchedulerConfig) *harness {
	t.Helper()
	log := newTestLogger(t)

	conceptRepo := newFakeConceptRepo()
	h := &harness{
		conceptRepo: conceptRepo,
		prereqRepo:  newFakePrereqRepo(),
		courseRepo:  newFakeCourseRepo(),
		ccRepo:      &fakeCourseConceptRepo{conceptRepo: conceptRepo},
		simRepo:     newFakeSimilarityRepo(),
		stateRepo:   newFakeStateRepo(),
		probeRepo:   newFakeProbeRepo(),
		cfg:         cfg,
	}
	h.graph = NewConceptGraphService(nil, log, cfg, h.conceptRepo, h.prereqRepo, h.courseRepo, h.ccRepo, h.stateRepo, nil)
	h.state = NewConceptStateService(nil, log, cfg, h.stateRepo, h.probeRepo)
	h.sim = NewSimilarityService(nil, log, h.simRepo)
	h.lector = NewLectorService(nil, log, cfg, h.state, h.sim, h.stateRepo, h.probeRepo)
	h.frontier = NewFrontierService(log, h.graph, h.lector)
	return h
}

func (h *harness) addConcept(t *testing.T, slug string) *types.Concept {
	t.Helper()
	c, err := h.graph.CreateConcept(context.Background(), nil, CreateConceptInput{
		Domain: "math",
		Name:   slug,
		Slug:   slug,
	})
	if err != nil {
		t.Fatalf("create concept %q: %v", slug, err)
	}
	return c
}

func (h *harness) addCourse(t *testing.T) uuid.UUID {
	t.Helper()
	courseID := uuid.New()
	h.courseRepo.courses[courseID] = &types.Course{ID: courseID, UserID: uuid.New(), Title: "test course"}
	return courseID
}

func (h *harness) assign(t *testing.T, courseID uuid.UUID, conceptIDs ...uuid.UUID) {
	t.Helper()
	for _, id := range conceptIDs {
		if err := h.graph.AssignToCourse(context.Background(), nil, courseID, id); err != nil {
			t.Fatalf("assign concept: %v", err)
		}
	}
	h.stateRepo.byCourse[courseID] = append([]uuid.UUID{}, h.conceptRepo.byCourse[courseID]...)
}

func (h *harness) setState(t *testing.T, userID uuid.UUID, conceptID uuid.UUID, mutate func(*types.UserConceptState)) {
	t.Helper()
	st, err := h.state.GetOrCreate(context.Background(), nil, userID, conceptID)
	if err != nil {
		t.Fatalf("get or create state: %v", err)
	}
	mutate(st)
	if err := h.stateRepo.Save(context.Background(), nil, st); err != nil {
		t.Fatalf("save state: %v", err)
	}
}
