package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/example/storefront-checkout/internal/warranty"
)

// warrantyOffer is a policy with its price for the requested base price
type warrantyOffer struct {
	warranty.Policy
	Price *decimal.Decimal `json:"price,omitempty"`
}

func (h *Handlers) GetProductWarranties(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var basePrice *decimal.Decimal
	if raw := r.URL.Query().Get("basePrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil || price.IsNegative() {
			respondError(w, http.StatusBadRequest, "invalid basePrice")
			return
		}
		basePrice = &price
	}

	policies, err := h.warranties.ListPolicies(r.Context(), productID)
	if err != nil {
		log.Printf("[API] Failed to list warranties for product %d: %v", productID, err)
		respondError(w, http.StatusInternalServerError, "failed to load warranties")
		return
	}

	offers := make([]warrantyOffer, 0, len(policies))
	for _, p := range policies {
		offer := warrantyOffer{Policy: p}
		if basePrice != nil {
			price := p.PriceFor(*basePrice)
			offer.Price = &price
		}
		offers = append(offers, offer)
	}

	respondJSON(w, http.StatusOK, offers)
}

// Admin Handlers

func (h *Handlers) CreateWarrantyPolicy(w http.ResponseWriter, r *http.Request) {
	var policy warranty.Policy
	if err := json.NewDecoder(r.Body).Decode(&policy); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	policy.ID = ""

	if err := policy.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repository.SavePolicy(r.Context(), &policy); err != nil {
		log.Printf("[API] Failed to save warranty policy for product %d: %v", policy.ProductID, err)
		respondError(w, http.StatusInternalServerError, "failed to save warranty policy")
		return
	}
	h.warranties.Invalidate(policy.ProductID)

	respondJSON(w, http.StatusCreated, policy)
}
