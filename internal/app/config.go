package app

import (
	"github.com/lectorhq/lector-backend/internal/platform/logger"
	"github.com/lectorhq/lector-backend/internal/services"
	"github.com/lectorhq/lector-backend/internal/utils"
)

type Config struct {
	Port      string
	Scheduler services.SchedulerConfig
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:      utils.GetEnv("PORT", "8080", log),
		Scheduler: services.LoadSchedulerConfig(log),
	}
}
