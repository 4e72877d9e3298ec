package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-analytics/internal/analytics"
	"github.com/phrazzld/scry-analytics/internal/api/shared"
	"github.com/phrazzld/scry-analytics/internal/domain"
	"github.com/phrazzld/scry-analytics/internal/platform/logger"
	"github.com/phrazzld/scry-analytics/internal/service"
)

// StudyHandler handles study session and analytics HTTP requests.
type StudyHandler struct {
	studyService service.StudyService
	logger       *slog.Logger
}

// NewStudyHandler creates a new StudyHandler
func NewStudyHandler(studyService service.StudyService, logger *slog.Logger) *StudyHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}

	return &StudyHandler{
		studyService: studyService,
		logger:       logger.With(slog.String("component", "study_handler")),
	}
}

// StartSession handles POST /sessions requests.
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	session, err := h.studyService.StartSession(r.Context(), userID, req.SetID, domain.StudyMode(req.Mode))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, session)
}

// CompleteSession handles POST /sessions/{id}/complete requests.
func (h *StudyHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req CompleteSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.studyService.CompleteSession(r.Context(), userID, sessionID, req.toDomain())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete session")
		return
	}

	log.Debug("session completed",
		slog.String("session_id", sessionID.String()),
		slog.Int("score", result.Score.TotalScore))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Dashboard handles GET /analytics/dashboard requests. The optional range
// query parameter defaults to all.
func (h *StudyHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	rng, err := analytics.ParseTimeRange(r.URL.Query().Get("range"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	report, err := h.studyService.Dashboard(r.Context(), userID, rng)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build dashboard")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// LevelStatus handles GET /stats/level requests.
func (h *StudyHandler) LevelStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	status, err := h.studyService.LevelStatus(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load level status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, status)
}
