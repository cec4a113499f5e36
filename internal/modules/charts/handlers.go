package charts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/findash/internal/domain"
)

// PriceSource supplies ordered price series for charting.
type PriceSource interface {
	GetPriceSeries(ctx context.Context, ticker string, start, end time.Time) (domain.PriceSeries, error)
}

// Handler handles HTTP requests for the charts module.
type Handler struct {
	service *Service
	prices  PriceSource
	log     zerolog.Logger
}

// NewHandler creates a new charts handler.
func NewHandler(service *Service, prices PriceSource, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		prices:  prices,
		log:     log.With().Str("component", "charts_handler").Logger(),
	}
}

// HandleGetChart handles GET /api/charts/{ticker}.
// Query params: start, end (YYYY-MM-DD), indicators (comma-separated
// overlay keys: sma20,sma50,bb,rsi).
func (h *Handler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	start, end, err := parseRange(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var overlays []string
	if raw := r.URL.Query().Get("indicators"); raw != "" {
		overlays = strings.Split(raw, ",")
	}

	series, err := h.prices.GetPriceSeries(r.Context(), ticker, start, end)
	if err != nil {
		if errors.Is(err, domain.ErrDataUnavailable) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to load price series")
		h.writeError(w, http.StatusInternalServerError, "Failed to load price series")
		return
	}

	data, err := h.service.Overlays(series, overlays, Windows{})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, data)
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	const layout = "2006-01-02"

	end := time.Now().UTC()
	start := end.AddDate(-1, 0, 0)

	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid start date, expected YYYY-MM-DD")
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid end date, expected YYYY-MM-DD")
		}
		end = parsed
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end date precedes start date")
	}

	return start, end, nil
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
