package services

import (
	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/types"
	"github.com/lectorhq/lector-backend/internal/utils"
)

// SchedulerConfig carries every numeric constant the scheduler uses. All of
// them are env-tunable; code never hardcodes these values.
type SchedulerConfig struct {
	// Graph / frontier
	UnlockThreshold float64

	// Mastery updates
	CorrectDelta      float64
	IncorrectDelta    float64
	LatencyDivisorMS  float64
	LatencyPenaltyCap float64

	// Review scheduling
	IntervalsByRating  map[types.Rating]float64 // minutes
	ExposureMultiplier float64
	DurationBaseMS     float64
	DurationFloorMS    float64
	DurationMin        float64
	DurationMax        float64

	// Semantic interference
	Lambda        float64 // confusion-sensitivity λ
	RecentContext int     // k most recent distinct probe concepts

	// Learner profile
	ProfileAlpha     float64
	SensitivityDecay float64 // applied on ratings <= 2, < 1
	SensitivityBoost float64 // applied on ratings >= 3, > 1
	SensitivityMin   float64
	SensitivityMax   float64
	LearningSpeedMin float64
	LearningSpeedMax float64
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		UnlockThreshold: 0.5,

		CorrectDelta:      0.15,
		IncorrectDelta:    -0.10,
		LatencyDivisorMS:  60000,
		LatencyPenaltyCap: 0.05,

		IntervalsByRating: map[types.Rating]float64{
			types.RatingAgain: 10,
			types.RatingHard:  60,
			types.RatingGood:  1440,
			types.RatingEasy:  4320,
		},
		ExposureMultiplier: 0.15,
		DurationBaseMS:     30000,
		DurationFloorMS:    1000,
		DurationMin:        0.75,
		DurationMax:        1.25,

		Lambda:        0.5,
		RecentContext: 5,

		ProfileAlpha:     0.1,
		SensitivityDecay: 0.95,
		SensitivityBoost: 1.02,
		SensitivityMin:   0.4,
		SensitivityMax:   1.6,
		LearningSpeedMin: 0.3,
		LearningSpeedMax: 2.0,
	}
}

func LoadSchedulerConfig(log *logger.Logger) SchedulerConfig {
	d := DefaultSchedulerConfig()
	return SchedulerConfig{
		UnlockThreshold: utils.GetEnvAsFloat("UNLOCK_THRESHOLD", d.UnlockThreshold, log),

		CorrectDelta:      utils.GetEnvAsFloat("MASTERY_CORRECT_DELTA", d.CorrectDelta, log),
		IncorrectDelta:    utils.GetEnvAsFloat("MASTERY_INCORRECT_DELTA", d.IncorrectDelta, log),
		LatencyDivisorMS:  utils.GetEnvAsFloat("MASTERY_LATENCY_DIVISOR_MS", d.LatencyDivisorMS, log),
		LatencyPenaltyCap: utils.GetEnvAsFloat("MASTERY_LATENCY_PENALTY_CAP", d.LatencyPenaltyCap, log),

		IntervalsByRating: map[types.Rating]float64{
			types.RatingAgain: utils.GetEnvAsFloat("LECTOR_INTERVAL_AGAIN_MIN", d.IntervalsByRating[types.RatingAgain], log),
			types.RatingHard:  utils.GetEnvAsFloat("LECTOR_INTERVAL_HARD_MIN", d.IntervalsByRating[types.RatingHard], log),
			types.RatingGood:  utils.GetEnvAsFloat("LECTOR_INTERVAL_GOOD_MIN", d.IntervalsByRating[types.RatingGood], log),
			types.RatingEasy:  utils.GetEnvAsFloat("LECTOR_INTERVAL_EASY_MIN", d.IntervalsByRating[types.RatingEasy], log),
		},
		ExposureMultiplier: utils.GetEnvAsFloat("LECTOR_EXPOSURE_MULTIPLIER", d.ExposureMultiplier, log),
		DurationBaseMS:     utils.GetEnvAsFloat("LECTOR_DURATION_BASE_MS", d.DurationBaseMS, log),
		DurationFloorMS:    utils.GetEnvAsFloat("LECTOR_DURATION_FLOOR_MS", d.DurationFloorMS, log),
		DurationMin:        utils.GetEnvAsFloat("LECTOR_DURATION_MIN", d.DurationMin, log),
		DurationMax:        utils.GetEnvAsFloat("LECTOR_DURATION_MAX", d.DurationMax, log),

		Lambda:        utils.GetEnvAsFloat("LECTOR_LAMBDA", d.Lambda, log),
		RecentContext: utils.GetEnvAsInt("LECTOR_RECENT_CONTEXT", d.RecentContext, log),

		ProfileAlpha:     utils.GetEnvAsFloat("PROFILE_EMA_ALPHA", d.ProfileAlpha, log),
		SensitivityDecay: utils.GetEnvAsFloat("PROFILE_SENSITIVITY_DECAY", d.SensitivityDecay, log),
		SensitivityBoost: utils.GetEnvAsFloat("PROFILE_SENSITIVITY_BOOST", d.SensitivityBoost, log),
		SensitivityMin:   utils.GetEnvAsFloat("PROFILE_SENSITIVITY_MIN", d.SensitivityMin, log),
		SensitivityMax:   utils.GetEnvAsFloat("PROFILE_SENSITIVITY_MAX", d.SensitivityMax, log),
		LearningSpeedMin: utils.GetEnvAsFloat("PROFILE_SPEED_MIN", d.LearningSpeedMin, log),
		LearningSpeedMax: utils.GetEnvAsFloat("PROFILE_SPEED_MAX", d.LearningSpeedMax, log),
	}
}
