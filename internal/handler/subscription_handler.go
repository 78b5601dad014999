package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonathanaloya/cineflix/internal/service"
)

type SubscriptionHandler struct {
	svc *service.SubscriptionService
}

func NewSubscriptionHandler(s *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{svc: s}
}

// @Summary Plan catalog
// @Tags subscriptions
// @Produce json
// @Success 200 {array} models.Plan
// @Router /subscriptions/plans [get]
func (h *SubscriptionHandler) Plans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Plans())
}

type createSubscriptionRequest struct {
	PlanID string `json:"planId"`
}

// @Summary Open a payment checkout for a plan
// @Tags subscriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body createSubscriptionRequest true "plan"
// @Success 200 {object} service.Checkout
// @Failure 503 {object} map[string]string
// @Router /subscriptions/create [post]
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	checkout, err := h.svc.CreateCheckout(r.Context(), UserIDFromContext(r.Context()), req.PlanID)
	if err != nil {
		writeSubscriptionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkout)
}

type verifyPaymentRequest struct {
	TxRef  string `json:"tx_ref"`
	PlanID string `json:"planId"`
}

// @Summary Verify a payment and activate the plan
// @Tags subscriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body verifyPaymentRequest true "transaction"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /subscriptions/verify [post]
func (h *SubscriptionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.svc.VerifyPayment(r.Context(), UserIDFromContext(r.Context()), req.TxRef, req.PlanID)
	if err != nil {
		writeSubscriptionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Subscription activated successfully",
		"subscription": sub,
	})
}

// @Summary Cancel the active subscription
// @Tags subscriptions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /subscriptions/cancel [post]
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cancel(r.Context(), UserIDFromContext(r.Context())); err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeMessage(w, http.StatusOK, "Subscription cancelled successfully")
}

func writeSubscriptionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPaymentNotConfigured):
		writeMessage(w, http.StatusServiceUnavailable, "Payment service not configured")
	case errors.Is(err, service.ErrInvalidPlan):
		writeMessage(w, http.StatusBadRequest, "Invalid plan")
	case errors.Is(err, service.ErrVerificationFailed):
		writeMessage(w, http.StatusBadRequest, "Payment verification failed")
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	default:
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}
