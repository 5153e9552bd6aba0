package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/example/storefront-checkout/internal/api/middleware"
	"github.com/example/storefront-checkout/internal/apperror"
	"github.com/example/storefront-checkout/internal/checkout"
	"github.com/example/storefront-checkout/internal/errhandler"
	"github.com/example/storefront-checkout/internal/events"
	"github.com/example/storefront-checkout/internal/warranty"
)

const publishTimeout = 5 * time.Second

// CheckoutService creates payment sessions for checkout requests.
type CheckoutService interface {
	Checkout(ctx context.Context, req checkout.Request) (*checkout.Result, error)
}

// EventPublisher emits checkout events for downstream workers.
type EventPublisher interface {
	SessionCreated(ctx context.Context, e events.CheckoutSessionCreated) error
}

// WarrantyCatalog serves the cached warranty policies of a product.
type WarrantyCatalog interface {
	ListPolicies(ctx context.Context, productID int64) ([]warranty.Policy, error)
	Invalidate(productID int64)
}

type Handlers struct {
	checkout   CheckoutService
	errors     *errhandler.Handler
	publisher  EventPublisher
	warranties WarrantyCatalog
	repository warranty.Repository
}

func NewHandlers(
	checkoutService CheckoutService,
	errHandler *errhandler.Handler,
	publisher EventPublisher,
	warranties WarrantyCatalog,
	repository warranty.Repository,
) *Handlers {
	return &Handlers{
		checkout:   checkoutService,
		errors:     errHandler,
		publisher:  publisher,
		warranties: warranties,
		repository: repository,
	}
}

// Checkout Handlers

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable"`
}

func (h *Handlers) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondFailure(w, r, sessionID, checkout.InvalidRequest(err.Error()))
		return
	}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		req.CustomerEmail = middleware.CustomerEmail(r.Context())
	}

	result, err := h.checkout.Checkout(r.Context(), req)
	if err != nil {
		h.respondFailure(w, r, sessionID, err)
		return
	}

	h.publishSessionCreated(r.Context(), req, result)
	respondJSON(w, http.StatusOK, result)
}

// respondFailure hands err to the error handler, which records and
// notifies, then writes the mapped status.
func (h *Handlers) respondFailure(w http.ResponseWriter, r *http.Request, sessionID string, err error) {
	appErr := h.errors.Handle(r.Context(), sessionID, err)
	respondJSON(w, checkout.HTTPStatus(err), errorResponse{
		Error:     appErr.Message,
		Code:      appErr.Code,
		Retryable: appErr.Retryable,
	})
}

func (h *Handlers) publishSessionCreated(ctx context.Context, req checkout.Request, result *checkout.Result) {
	if h.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := h.publisher.SessionCreated(ctx, events.CheckoutSessionCreated{
		OrderID:       req.OrderID,
		SessionID:     result.ID,
		URL:           result.URL,
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		LineItems:     result.LineItems,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		log.Printf("[API] Failed to publish checkout event for order %s: %v", req.OrderID, err)
	}
}

// Error History Handlers

func (h *Handlers) GetErrors(w http.ResponseWriter, r *http.Request) {
	history := h.errors.History(middleware.GetSessionID(r.Context()))
	if history == nil {
		history = []*apperror.AppError{}
	}
	respondJSON(w, http.StatusOK, history)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
