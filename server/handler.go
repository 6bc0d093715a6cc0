package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/OswaldHeaney/reviewnet/crypto"
	"github.com/OswaldHeaney/reviewnet/ledger"
	"github.com/OswaldHeaney/reviewnet/metrics"
	"github.com/OswaldHeaney/reviewnet/protocol"
)

// Handler serves the ledger's public operation surface.
type Handler struct {
	ledger  *ledger.Ledger
	log     *slog.Logger
	metrics *metrics.Collectors
}

// NewHandler creates a handler for the given ledger. The collectors may be
// nil, in which case no metrics are recorded.
func NewHandler(l *ledger.Ledger, log *slog.Logger, collectors *metrics.Collectors) *Handler {
	return &Handler{ledger: l, log: log, metrics: collectors}
}

// RegisterRoutes mounts the operation surface on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/papers", h.submitPaper)
	r.Post("/papers/toggle-active", h.toggleActive)
	r.Post("/papers/force-deactivate", h.forceDeactivate)
	r.Post("/reviews", h.submitReview)
	r.Post("/reviews/encrypted", h.getEncryptedReview)

	r.Get("/papers/reviewable", h.listReviewable)
	r.Get("/papers/own", h.listOwn)
	r.Get("/papers/{paper_id}/reviews", h.listReviews)
	r.Get("/counts", h.counts)
}

func (h *Handler) submitPaper(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	req, signer, err := recoverRequest[protocol.SubmitPaperRequest](r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	paperID, err := h.ledger.SubmitPaper(signer, req.Title, req.Abstract, req.Category)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.PapersSubmitted.Inc()
	}
	h.log.Info("Paper submitted", "paperID", paperID, "author", signer.String())
	h.writeJSON(w, http.StatusCreated, &protocol.SubmitPaperResponse{PaperID: paperID})
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	req, signer, err := recoverRequest[protocol.SubmitReviewRequest](r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	reviewID, err := h.ledger.SubmitReview(signer, req.PaperID,
		ledger.EncryptedValue{Ciphertext: req.Recommendation.Ciphertext, Proof: req.Recommendation.Proof},
		ledger.EncryptedValue{Ciphertext: req.Quality.Ciphertext, Proof: req.Quality.Proof},
		req.Comment)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ReviewsSubmitted.Inc()
	}
	h.log.Info("Review submitted", "reviewID", reviewID, "paperID", req.PaperID)
	h.writeJSON(w, http.StatusCreated, &protocol.SubmitReviewResponse{ReviewID: reviewID})
}

func (h *Handler) toggleActive(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	req, signer, err := recoverRequest[protocol.ToggleActiveRequest](r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.ledger.ToggleActive(signer, req.PaperID); err != nil {
		h.writeError(w, err)
		return
	}

	if h.metrics != nil {
		if paper, err := h.ledger.Paper(req.PaperID); err == nil && !paper.Active {
			h.metrics.PapersDeactivated.Inc()
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) forceDeactivate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	req, signer, err := recoverRequest[protocol.ForceDeactivateRequest](r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.ledger.ForceDeactivate(signer, req.PaperID); err != nil {
		h.writeError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.PapersDeactivated.Inc()
	}
	h.log.Info("Paper force-deactivated", "paperID", req.PaperID)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) getEncryptedReview(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	req, signer, err := recoverRequest[protocol.GetEncryptedReviewRequest](r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	rec, qual, paperID, err := h.ledger.GetEncryptedReview(signer, req.ReviewID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, &protocol.EncryptedReviewResponse{
		ReviewID:       req.ReviewID,
		PaperID:        paperID,
		Recommendation: rec.String(),
		Quality:        qual.String(),
	})
}

func (h *Handler) listReviewable(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, papersToInfo(h.ledger.ListReviewable(caller)))
}

func (h *Handler) listOwn(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, papersToInfo(h.ledger.ListOwn(caller)))
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	paperID, err := strconv.ParseUint(chi.URLParam(r, "paper_id"), 10, 64)
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid paper id", ledger.ErrValidation))
		return
	}

	reviews, err := h.ledger.ListReviews(paperID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result := make([]protocol.ReviewInfo, 0, len(reviews))
	for _, rv := range reviews {
		result = append(result, protocol.ReviewInfo{
			ID:             rv.ID,
			PaperID:        rv.PaperID,
			Reviewer:       rv.Reviewer,
			Recommendation: rv.Recommendation.String(),
			Quality:        rv.Quality.String(),
			Comment:        rv.Comment,
			CreatedAt:      rv.CreatedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) counts(w http.ResponseWriter, r *http.Request) {
	counts := h.ledger.Counts()
	h.writeJSON(w, http.StatusOK, &protocol.CountsResponse{
		TotalPapers:  counts.Papers,
		TotalReviews: counts.Reviews,
	})
}

// recoverRequest decodes a signed envelope and returns the request object
// together with the authenticated signer.
func recoverRequest[T any](r *http.Request) (*T, crypto.Principal, error) {
	signed, err := protocol.DecodeMessage[protocol.Signed[T]](r.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: parsing request: %v", ledger.ErrValidation, err)
	}
	obj, signer, err := signed.Recover()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ledger.ErrAuthorization, err)
	}
	return obj, signer, nil
}

func callerFromQuery(r *http.Request) (crypto.Principal, error) {
	raw := r.URL.Query().Get("principal")
	if raw == "" {
		return nil, fmt.Errorf("%w: principal query parameter required", ledger.ErrValidation)
	}
	caller, err := crypto.NewPrincipalFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid principal: %v", ledger.ErrValidation, err)
	}
	return caller, nil
}

func papersToInfo(papers []ledger.Paper) []protocol.PaperInfo {
	result := make([]protocol.PaperInfo, 0, len(papers))
	for _, p := range papers {
		result = append(result, protocol.PaperInfo{
			ID:          p.ID,
			Title:       p.Title,
			Abstract:    p.Abstract,
			Category:    p.Category,
			Author:      p.Author,
			CreatedAt:   p.CreatedAt,
			ReviewCount: p.ReviewCount,
			Active:      p.Active,
		})
	}
	return result
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if h.metrics != nil {
		h.metrics.RejectedOps.WithLabelValues(reasonFor(err)).Inc()
	}
	http.Error(w, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrValidation), errors.Is(err, ledger.ErrProof):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrConflict), errors.Is(err, ledger.ErrState):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return "validation"
	case errors.Is(err, ledger.ErrProof):
		return "proof"
	case errors.Is(err, ledger.ErrNotFound):
		return "not_found"
	case errors.Is(err, ledger.ErrAuthorization):
		return "authorization"
	case errors.Is(err, ledger.ErrConflict):
		return "conflict"
	case errors.Is(err, ledger.ErrState):
		return "state"
	case errors.Is(err, ledger.ErrBusy):
		return "busy"
	default:
		return "internal"
	}
}
