package service

import (
	"context"
	stderrors "errors"
	"strings"

	"vidtube/internal/domain"
	"vidtube/internal/repository"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type subscriptionService struct {
	subscriptions repository.SubscriptionRepository
	users         repository.UserRepository
	logger        *logger.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(subscriptions repository.SubscriptionRepository, users repository.UserRepository, logger *logger.Logger) SubscriptionService {
	return &subscriptionService{subscriptions: subscriptions, users: users, logger: logger}
}

// resolveChannel looks up a channel by username and rejects self subscriptions
func (s *subscriptionService) resolveChannel(ctx context.Context, userID primitive.ObjectID, username string) (*domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, errors.NewValidationError("Username is required", map[string]interface{}{"field": "username"})
	}

	channel, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("Channel does not exist")
		}
		return nil, errors.NewInternalError("Failed to load channel", err)
	}
	if channel.ID == userID {
		return nil, errors.NewValidationError("You cannot subscribe to your own channel", nil)
	}
	return channel, nil
}

func (s *subscriptionService) result(ctx context.Context, channel *domain.User, subscribed, changed bool) (*domain.SubscriptionResult, error) {
	count, err := s.subscriptions.CountSubscribers(ctx, channel.ID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to count subscribers", err)
	}
	return &domain.SubscriptionResult{
		Channel:     channel.Username,
		Subscribed:  subscribed,
		Subscribers: count,
		Changed:     changed,
	}, nil
}

// Toggle removes an existing edge or creates a missing one
func (s *subscriptionService) Toggle(ctx context.Context, userID primitive.ObjectID, username string) (*domain.SubscriptionResult, error) {
	channel, err := s.resolveChannel(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	removed, err := s.subscriptions.Unsubscribe(ctx, userID, channel.ID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to unsubscribe", err)
	}
	if removed {
		return s.result(ctx, channel, false, true)
	}

	if _, err := s.subscriptions.Subscribe(ctx, userID, channel.ID); err != nil {
		return nil, errors.NewInternalError("Failed to subscribe", err)
	}
	return s.result(ctx, channel, true, true)
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID primitive.ObjectID, username string) (*domain.SubscriptionResult, error) {
	channel, err := s.resolveChannel(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	created, err := s.subscriptions.Subscribe(ctx, userID, channel.ID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to subscribe", err)
	}
	return s.result(ctx, channel, true, created)
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID primitive.ObjectID, username string) (*domain.SubscriptionResult, error) {
	channel, err := s.resolveChannel(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	removed, err := s.subscriptions.Unsubscribe(ctx, userID, channel.ID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to unsubscribe", err)
	}
	return s.result(ctx, channel, false, removed)
}

func (s *subscriptionService) Channels(ctx context.Context, userID primitive.ObjectID) ([]domain.ChannelSummary, error) {
	channels, err := s.subscriptions.ListChannels(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load subscriptions", err)
	}
	return channels, nil
}

func (s *subscriptionService) Feed(ctx context.Context, userID primitive.ObjectID) ([]domain.ChannelVideos, error) {
	feed, err := s.subscriptions.Feed(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load subscription videos", err)
	}
	return feed, nil
}
