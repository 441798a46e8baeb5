package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	pkgerrors "github.com/lectorhq/lector-backend/internal/pkg/errors"
	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/platform/openai"
	"github.com/lectorhq/lector-backend/internal/repos"
	"github.com/lectorhq/lector-backend/internal/types"
)

type CreateConceptInput struct {
	Domain      string
	Name        string
	Description string
	Slug        string // optional; derived from Name when empty
	Difficulty  *int
}

// FrontierEntry is one course concept with the learner's view of it. State is
// nil when the learner has never touched the concept (mastery reads as 0).
type FrontierEntry struct {
	Concept   *types.Concept
	State     *types.UserConceptState
	PrereqIDs []uuid.UUID
	Unlocked  bool
}

func (e *FrontierEntry) Mastery() float64 {
	if e == nil || e.State == nil {
		return 0
	}
	return e.State.Mastery
}

type ConceptGraphService interface {
	CreateConcept(ctx context.Context, tx *gorm.DB, in CreateConceptInput) (*types.Concept, error)
	AddPrerequisite(ctx context.Context, tx *gorm.DB, conceptID, prereqID uuid.UUID) error
	AssignToCourse(ctx context.Context, tx *gorm.DB, courseID, conceptID uuid.UUID) error
	GetFrontier(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) ([]*FrontierEntry, error)
	GetConceptPath(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID) ([]*types.Concept, error)
}

type conceptGraphService struct {
	db                *gorm.DB
	log               *logger.Logger
	cfg               SchedulerConfig
	conceptRepo       repos.ConceptRepo
	prereqRepo        repos.ConceptPrerequisiteRepo
	courseRepo        repos.CourseRepo
	courseConceptRepo repos.CourseConceptRepo
	stateRepo         repos.UserConceptStateRepo
	embedder          openai.Client
}

func NewConceptGraphService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg SchedulerConfig,
	conceptRepo repos.ConceptRepo,
	prereqRepo repos.ConceptPrerequisiteRepo,
	courseRepo repos.CourseRepo,
	courseConceptRepo repos.CourseConceptRepo,
	stateRepo repos.UserConceptStateRepo,
	embedder openai.Client,
) ConceptGraphService {
	return &conceptGraphService{
		db:                db,
		log:               baseLog.With("service", "ConceptGraphService"),
		cfg:               cfg,
		conceptRepo:       conceptRepo,
		prereqRepo:        prereqRepo,
		courseRepo:        courseRepo,
		courseConceptRepo: courseConceptRepo,
		stateRepo:         stateRepo,
		embedder:          embedder,
	}
}

func (s *conceptGraphService) CreateConcept(ctx context.Context, tx *gorm.DB, in CreateConceptInput) (*types.Concept, error) {
	name := strings.TrimSpace(in.Name)
	domain := strings.TrimSpace(in.Domain)
	if name == "" || domain == "" {
		return nil, fmt.Errorf("%w: domain and name are required", pkgerrors.ErrInvalidArgument)
	}

	base := Slugify(in.Slug)
	if base == "" {
		base = Slugify(name)
	}
	if base == "" {
		return nil, fmt.Errorf("%w: name produced an empty slug", pkgerrors.ErrInvalidArgument)
	}
	slug, err := s.resolveSlug(ctx, tx, base)
	if err != nil {
		return nil, fmt.Errorf("resolve slug: %w", err)
	}

	concept := &types.Concept{
		ID:          uuid.New(),
		Domain:      domain,
		Slug:        slug,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Difficulty:  in.Difficulty,
	}

	// Embedding is best-effort: a failed embedding call never fails concept
	// creation, the row is persisted with a null embedding instead.
	if s.embedder != nil {
		vecs, err := s.embedder.Embed(ctx, []string{name + "\n\n" + concept.Description})
		if err != nil || len(vecs) == 0 {
			s.log.Warn("Embedding generation failed; creating concept without embedding", "slug", slug, "error", err)
		} else if raw, mErr := json.Marshal(vecs[0]); mErr == nil {
			concept.Embedding = datatypes.JSON(raw)
		}
	}

	if _, err := s.conceptRepo.Create(ctx, tx, []*types.Concept{concept}); err != nil {
		return nil, fmt.Errorf("create concept: %w", err)
	}
	return concept, nil
}

// resolveSlug returns base if free, otherwise the first free base-N (N >= 2).
func (s *conceptGraphService) resolveSlug(ctx context.Context, tx *gorm.DB, base string) (string, error) {
	existing, err := s.conceptRepo.SlugsWithPrefix(ctx, tx, base)
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(existing))
	for _, sl := range existing {
		taken[sl] = true
	}
	if !taken[base] {
		return base, nil
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if !taken[candidate] {
			return candidate, nil
		}
	}
}

// Slugify lowercases, collapses non-alphanumeric runs to single hyphens, and
// trims leading/trailing hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastHyphen := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func (s *conceptGraphService) AddPrerequisite(ctx context.Context, tx *gorm.DB, conceptID, prereqID uuid.UUID) error {
	if conceptID == uuid.Nil || prereqID == uuid.Nil {
		return fmt.Errorf("%w: concept_id and prereq_id are required", pkgerrors.ErrInvalidArgument)
	}
	if conceptID == prereqID {
		return pkgerrors.ErrSelfLoop
	}

	concepts, err := s.conceptRepo.GetByIDs(ctx, tx, []uuid.UUID{conceptID, prereqID})
	if err != nil {
		return fmt.Errorf("load concepts: %w", err)
	}
	if len(concepts) != 2 {
		return fmt.Errorf("%w: concept or prerequisite does not exist", pkgerrors.ErrNotFound)
	}

	if existing, err := s.prereqRepo.GetPair(ctx, tx, conceptID, prereqID); err != nil {
		return fmt.Errorf("check duplicate edge: %w", err)
	} else if existing != nil {
		return pkgerrors.ErrDuplicateEdge
	}

	// The edge is legal only if conceptID is not already an ancestor of
	// prereqID; otherwise prereq -> ... -> concept -> prereq would close a
	// cycle. This check runs synchronously before the write.
	ancestors, err := s.ancestorSet(ctx, tx, prereqID)
	if err != nil {
		return fmt.Errorf("walk ancestors: %w", err)
	}
	if ancestors[conceptID] {
		return pkgerrors.ErrCycle
	}

	edge := &types.ConceptPrerequisite{
		ID:        uuid.New(),
		ConceptID: conceptID,
		PrereqID:  prereqID,
	}
	if err := s.prereqRepo.Create(ctx, tx, edge); err != nil {
		return fmt.Errorf("create prerequisite edge: %w", err)
	}
	return nil
}

// ancestorSet walks prerequisite edges breadth-first from start and returns
// every concept reachable through them. Course graphs are hundreds of nodes,
// so an in-memory walk beats a recursive database query here.
func (s *conceptGraphService) ancestorSet(ctx context.Context, tx *gorm.DB, start uuid.UUID) (map[uuid.UUID]bool, error) {
	visited := map[uuid.UUID]bool{}
	frontier := []uuid.UUID{start}
	for len(frontier) > 0 {
		edges, err := s.prereqRepo.GetByConceptIDs(ctx, tx, frontier)
		if err != nil {
			return nil, err
		}
		var next []uuid.UUID
		for _, e := range edges {
			if visited[e.PrereqID] {
				continue
			}
			visited[e.PrereqID] = true
			next = append(next, e.PrereqID)
		}
		frontier = next
	}
	return visited, nil
}

func (s *conceptGraphService) AssignToCourse(ctx context.Context, tx *gorm.DB, courseID, conceptID uuid.UUID) error {
	course, err := s.courseRepo.GetByID(ctx, tx, courseID)
	if err != nil {
		return fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return fmt.Errorf("%w: course does not exist", pkgerrors.ErrNotFound)
	}
	concept, err := s.conceptRepo.GetByID(ctx, tx, conceptID)
	if err != nil {
		return fmt.Errorf("load concept: %w", err)
	}
	if concept == nil {
		return fmt.Errorf("%w: concept does not exist", pkgerrors.ErrNotFound)
	}
	if err := s.courseConceptRepo.Upsert(ctx, tx, courseID, conceptID); err != nil {
		return fmt.Errorf("assign concept to course: %w", err)
	}
	return nil
}

// GetFrontier returns the unfiltered universe of course concepts for one
// learner: every assigned concept with its state (nil when unseen), its
// in-course prerequisite ids, and the unlock flag. A concept is unlocked when
// every prerequisite's mastery meets the unlock threshold; no prerequisites
// means always unlocked. Splitting into frontier vs coming-soon happens
// downstream.
func (s *conceptGraphService) GetFrontier(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) ([]*FrontierEntry, error) {
	concepts, err := s.conceptRepo.GetByCourse(ctx, tx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course concepts: %w", err)
	}
	if len(concepts) == 0 {
		return []*FrontierEntry{}, nil
	}

	ids := make([]uuid.UUID, 0, len(concepts))
	inCourse := make(map[uuid.UUID]bool, len(concepts))
	for _, c := range concepts {
		ids = append(ids, c.ID)
		inCourse[c.ID] = true
	}

	states, err := s.stateRepo.GetByUserAndConcepts(ctx, tx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("load learner states: %w", err)
	}
	stateByConcept := make(map[uuid.UUID]*types.UserConceptState, len(states))
	for _, st := range states {
		stateByConcept[st.ConceptID] = st
	}

	edges, err := s.prereqRepo.GetByConceptIDs(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("load prerequisite edges: %w", err)
	}
	prereqsByConcept := make(map[uuid.UUID][]uuid.UUID)
	for _, e := range edges {
		if !inCourse[e.PrereqID] {
			continue
		}
		prereqsByConcept[e.ConceptID] = append(prereqsByConcept[e.ConceptID], e.PrereqID)
	}

	masteryOf := func(id uuid.UUID) float64 {
		if st := stateByConcept[id]; st != nil {
			return st.Mastery
		}
		return 0
	}

	out := make([]*FrontierEntry, 0, len(concepts))
	for _, c := range concepts {
		prereqs := prereqsByConcept[c.ID]
		unlocked := true
		for _, p := range prereqs {
			if masteryOf(p) < s.cfg.UnlockThreshold {
				unlocked = false
				break
			}
		}
		out = append(out, &FrontierEntry{
			Concept:   c,
			State:     stateByConcept[c.ID],
			PrereqIDs: prereqs,
			Unlocked:  unlocked,
		})
	}
	return out, nil
}

// GetConceptPath returns the full prerequisite chain of a concept,
// nearest-first (direct prerequisites before their prerequisites). Display
// helper, not on the scheduling hot path.
func (s *conceptGraphService) GetConceptPath(ctx context.Context, tx *gorm.DB, conceptID uuid.UUID) ([]*types.Concept, error) {
	concept, err := s.conceptRepo.GetByID(ctx, tx, conceptID)
	if err != nil {
		return nil, fmt.Errorf("load concept: %w", err)
	}
	if concept == nil {
		return nil, fmt.Errorf("%w: concept does not exist", pkgerrors.ErrNotFound)
	}

	var ordered []uuid.UUID
	visited := map[uuid.UUID]bool{conceptID: true}
	frontier := []uuid.UUID{conceptID}
	for len(frontier) > 0 {
		edges, err := s.prereqRepo.GetByConceptIDs(ctx, tx, frontier)
		if err != nil {
			return nil, fmt.Errorf("walk prerequisites: %w", err)
		}
		var next []uuid.UUID
		for _, e := range edges {
			if visited[e.PrereqID] {
				continue
			}
			visited[e.PrereqID] = true
			ordered = append(ordered, e.PrereqID)
			next = append(next, e.PrereqID)
		}
		frontier = next
	}
	if len(ordered) == 0 {
		return []*types.Concept{}, nil
	}

	rows, err := s.conceptRepo.GetByIDs(ctx, tx, ordered)
	if err != nil {
		return nil, fmt.Errorf("load prerequisite concepts: %w", err)
	}
	byID := make(map[uuid.UUID]*types.Concept, len(rows))
	for _, c := range rows {
		byID[c.ID] = c
	}
	out := make([]*types.Concept, 0, len(ordered))
	for _, id := range ordered {
		if c := byID[id]; c != nil {
			out = append(out, c)
		}
	}
	return out, nil
}
