package ledger

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/findash/internal/domain"
)

// Handler handles HTTP requests for the ledger module.
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new ledger handler.
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("component", "ledger_handler").Logger(),
	}
}

// mutationRequest is the payload for add/subtract operations.
type mutationRequest struct {
	Ticker   string `json:"ticker"`
	Quantity int64  `json:"quantity"`
}

// HandleList handles GET /api/portfolio - returns all ledger rows.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list ledger")
		h.writeError(w, http.StatusInternalServerError, "Failed to list portfolio")
		return
	}

	if entries == nil {
		entries = []domain.LedgerEntry{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"positions": entries,
	})
}

// HandleAdd handles POST /api/portfolio/add.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeMutation(w, r)
	if !ok {
		return
	}

	if err := h.repo.Add(req.Ticker, req.Quantity); err != nil {
		h.writeMutationError(w, err)
		return
	}

	h.respondWithEntry(w, req.Ticker)
}

// HandleSubtract handles POST /api/portfolio/subtract.
func (h *Handler) HandleSubtract(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeMutation(w, r)
	if !ok {
		return
	}

	if err := h.repo.Subtract(req.Ticker, req.Quantity); err != nil {
		h.writeMutationError(w, err)
		return
	}

	h.respondWithEntry(w, req.Ticker)
}

func (h *Handler) decodeMutation(w http.ResponseWriter, r *http.Request) (mutationRequest, bool) {
	var req mutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if req.Ticker == "" {
		h.writeError(w, http.StatusBadRequest, "ticker is required")
		return req, false
	}
	return req, true
}

func (h *Handler) respondWithEntry(w http.ResponseWriter, ticker string) {
	entry, err := h.repo.Get(ticker)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read ledger entry")
		h.writeError(w, http.StatusInternalServerError, "Failed to read portfolio")
		return
	}
	if entry == nil {
		entry = &domain.LedgerEntry{Ticker: ticker, Quantity: 0}
	}

	h.writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) writeMutationError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidQuantity) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error().Err(err).Msg("Ledger mutation failed")
	h.writeError(w, http.StatusInternalServerError, "Ledger mutation failed")
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
