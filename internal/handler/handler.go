package handler

import (
	"github.com/bagdasarian/pr-insight/internal/service"
	"go.uber.org/zap"
)

type Handler struct {
	eventService    service.EventService
	analysisService service.AnalysisService
	statsService    service.StatsService
	log             *zap.SugaredLogger
}

func NewHandler(
	eventService service.EventService,
	analysisService service.AnalysisService,
	statsService service.StatsService,
	log *zap.SugaredLogger,
) *Handler {
	return &Handler{
		eventService:    eventService,
		analysisService: analysisService,
		statsService:    statsService,
		log:             log.Named("handler"),
	}
}
