package optimization

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/findash/internal/domain"
)

// Handler handles HTTP requests for the optimization module.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new optimization handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("component", "optimizer_handler").Logger(),
	}
}

// analysisRequest is the POST /api/analysis payload. All fields are
// optional; missing values use the configured defaults.
type analysisRequest struct {
	Start        string  `json:"start,omitempty"`
	End          string  `json:"end,omitempty"`
	Budget       float64 `json:"budget,omitempty"`
	RiskFreeRate float64 `json:"risk_free_rate,omitempty"`
}

// HandleAnalyze handles POST /api/analysis - runs the full pipeline and
// returns the terminal state with its payload.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	params := RunParams{
		Budget:       req.Budget,
		RiskFreeRate: req.RiskFreeRate,
	}

	const layout = "2006-01-02"
	if req.Start != "" {
		start, err := time.Parse(layout, req.Start)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
			return
		}
		params.Start = start
	}
	if req.End != "" {
		end, err := time.Parse(layout, req.End)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
			return
		}
		params.End = end
	}

	result, err := h.service.Run(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDataUnavailable):
			h.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrEmptySeries),
			errors.Is(err, domain.ErrMisalignedSeries),
			errors.Is(err, domain.ErrInsufficientData):
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.log.Error().Err(err).Msg("Analysis run failed")
			h.writeError(w, http.StatusInternalServerError, "Analysis run failed")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
