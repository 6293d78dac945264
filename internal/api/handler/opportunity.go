package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/gigpilot/gigpilot/internal/api/middleware"
	"github.com/gigpilot/gigpilot/internal/api/models"
	"github.com/gigpilot/gigpilot/internal/api/response"
	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/scout"
)

// Predictor produces an opportunity result for a worker.
type Predictor interface {
	Predict(ctx context.Context, userID string, origin *geo.Coordinate) (*scout.Result, error)
}

// OpportunityHandler serves opportunity predictions.
type OpportunityHandler struct {
	predictor Predictor
	logger    zerolog.Logger
}

// NewOpportunityHandler creates a new OpportunityHandler.
func NewOpportunityHandler(predictor Predictor, logger zerolog.Logger) *OpportunityHandler {
	return &OpportunityHandler{predictor: predictor, logger: logger}
}

// GetOpportunity handles GET /v1/opportunities/{userId}?lat=&lon=.
// Both coordinates are optional, but only together.
func (h *OpportunityHandler) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userId"))
	if userID == "" {
		response.BadRequest(w, r, "userId is required", []models.FieldError{
			{Field: "userId", Message: "must not be blank", Code: "REQUIRED"},
		})
		return
	}

	origin, fieldErrors := parseOrigin(r)
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid coordinates", fieldErrors)
		return
	}

	result, err := h.predictor.Predict(r.Context(), userID, origin)
	switch {
	case err == nil:
	case errors.Is(err, scout.ErrMissingUserID):
		response.BadRequest(w, r, "userId is required", nil)
		return
	case errors.Is(err, geo.ErrInvalidCoordinates):
		response.BadRequest(w, r, "invalid coordinates", nil)
		return
	default:
		h.logger.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("user_id", userID).
			Msg("prediction failed")
		response.InternalError(w, r, "prediction failed")
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// parseOrigin reads the optional lat/lon pair. A nil origin means the caller
// supplied neither.
func parseOrigin(r *http.Request) (*geo.Coordinate, []models.FieldError) {
	q := r.URL.Query()
	rawLat := strings.TrimSpace(q.Get("lat"))
	rawLon := strings.TrimSpace(q.Get("lon"))

	if rawLat == "" && rawLon == "" {
		return nil, nil
	}

	var fieldErrors []models.FieldError
	if rawLat == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lat", Message: "required when lon is set", Code: "REQUIRED"})
	}
	if rawLon == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lon", Message: "required when lat is set", Code: "REQUIRED"})
	}
	if len(fieldErrors) > 0 {
		return nil, fieldErrors
	}

	lat, latErr := strconv.ParseFloat(rawLat, 64)
	lon, lonErr := strconv.ParseFloat(rawLon, 64)
	if latErr != nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lat", Message: "must be a number", Code: "INVALID"})
	}
	if lonErr != nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lon", Message: "must be a number", Code: "INVALID"})
	}
	if len(fieldErrors) > 0 {
		return nil, fieldErrors
	}

	origin := geo.Coordinate{Lat: lat, Lon: lon}
	if err := origin.Validate(); err != nil {
		if !(lat >= -90 && lat <= 90) {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "lat", Message: "must be between -90 and 90", Code: "OUT_OF_RANGE"})
		}
		if !(lon >= -180 && lon <= 180) {
			fieldErrors = append(fieldErrors, models.FieldError{Field: "lon", Message: "must be between -180 and 180", Code: "OUT_OF_RANGE"})
		}
		return nil, fieldErrors
	}
	return &origin, nil
}
