package app

import (
	"gorm.io/gorm"

	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/repos"
)

type Repos struct {
	Course            repos.CourseRepo
	Concept           repos.ConceptRepo
	Prereq            repos.ConceptPrerequisiteRepo
	CourseConcept     repos.CourseConceptRepo
	ConceptSimilarity repos.ConceptSimilarityRepo
	UserConceptState  repos.UserConceptStateRepo
	ProbeEvent        repos.ProbeEventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Course:            repos.NewCourseRepo(db, log),
		Concept:           repos.NewConceptRepo(db, log),
		Prereq:            repos.NewConceptPrerequisiteRepo(db, log),
		CourseConcept:     repos.NewCourseConceptRepo(db, log),
		ConceptSimilarity: repos.NewConceptSimilarityRepo(db, log),
		UserConceptState:  repos.NewUserConceptStateRepo(db, log),
		ProbeEvent:        repos.NewProbeEventRepo(db, log),
	}
}
