package handler

import (
	"context"
	"net/http"

	"vidtube/internal/domain"
	"vidtube/internal/service"
	"vidtube/pkg/api"
	"vidtube/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionHandler handles channel subscription requests
type SubscriptionHandler struct {
	subscriptions service.SubscriptionService
	logger        *logger.Logger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptions service.SubscriptionService, logger *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, logger: logger}
}

type subscriptionAction func(ctx context.Context, userID primitive.ObjectID, username string) (*domain.SubscriptionResult, error)

func (h *SubscriptionHandler) change(w http.ResponseWriter, r *http.Request, action subscriptionAction) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	var in domain.SubscriptionInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}

	res, err := action(r.Context(), userID, in.Username)
	if err != nil {
		return err
	}

	msg := "Unsubscribed from " + res.Channel
	if res.Subscribed {
		msg = "Subscribed to " + res.Channel
	}
	if !res.Changed {
		msg = "Already unsubscribed from " + res.Channel
		if res.Subscribed {
			msg = "Already subscribed to " + res.Channel
		}
	}
	return api.JSON(w, http.StatusOK, res, msg)
}

// Toggle handles POST /api/v1/subscriptions/toggle
func (h *SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) error {
	return h.change(w, r, h.subscriptions.Toggle)
}

// Subscribe handles POST /api/v1/subscriptions/subscribe
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) error {
	return h.change(w, r, h.subscriptions.Subscribe)
}

// Unsubscribe handles POST /api/v1/subscriptions/unsubscribe
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) error {
	return h.change(w, r, h.subscriptions.Unsubscribe)
}

// Channels handles GET /api/v1/subscriptions/channels
func (h *SubscriptionHandler) Channels(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	channels, err := h.subscriptions.Channels(r.Context(), userID)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, channels, "Subscribed channels fetched successfully")
}

// Videos handles GET /api/v1/subscriptions/videos
func (h *SubscriptionHandler) Videos(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	feed, err := h.subscriptions.Feed(r.Context(), userID)
	if err != nil {
		return err
	}
	return api.JSON(w, http.StatusOK, feed, "Subscription videos fetched successfully")
}
