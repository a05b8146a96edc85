package diagnosis

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mediq/mediq/internal/platform/auth"
	"github.com/mediq/mediq/pkg/pagination"
)

// genericDiagnoseError is the only message unexpected failures leak to
// callers; detail stays in the server log.
const genericDiagnoseError = "unable to process diagnosis, consult a physician"

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/diagnose", h.Diagnose)
	api.GET("/history", h.History)
	api.GET("/analytics", h.Analytics)
	api.GET("/sessions/:id", h.GetSession)
}

func (h *Handler) Diagnose(c echo.Context) error {
	var req DiagnoseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	patientID := auth.UserID(c)
	if patientID == "" {
		patientID = c.QueryParam("userId")
	}

	result, err := h.svc.Diagnose(c.Request().Context(), patientID, req)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
		}
		h.logger.Error().Err(err).Str("patient_id", patientID).Msg("diagnosis failed")
		return echo.NewHTTPError(http.StatusInternalServerError, genericDiagnoseError)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   true,
		"diagnosis": result,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) History(c echo.Context) error {
	patientID := c.QueryParam("userId")
	if patientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}

	pg := pagination.FromContext(c)
	history, err := h.svc.History(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
		}
		h.logger.Error().Err(err).Str("patient_id", patientID).Msg("history lookup failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "unable to load diagnosis history")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient": map[string]interface{}{
			"id":         history.PatientID,
			"conditions": history.Conditions,
		},
		"diagnosisHistory": history.Sessions,
		"totalSessions":    history.TotalSessions,
	})
}

func (h *Handler) Analytics(c echo.Context) error {
	timeframe, err := ParseTimeframe(c.QueryParam("timeframe"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	report, err := h.svc.Analytics(c.Request().Context(), timeframe)
	if err != nil {
		h.logger.Error().Err(err).Str("timeframe", string(timeframe)).Msg("analytics failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "unable to compute analytics")
	}

	return c.JSON(http.StatusOK, report)
}

func (h *Handler) GetSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	session, err := h.svc.Session(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, session)
}
