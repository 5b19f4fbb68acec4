package service

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"

	"vidtube/internal/domain"
	"vidtube/internal/media"
	"vidtube/internal/repository"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userService struct {
	users  repository.UserRepository
	videos repository.VideoRepository
	auth   TokenService
	media  media.Store
	logger *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, videos repository.VideoRepository, auth TokenService, store media.Store, logger *logger.Logger) UserService {
	return &userService{users: users, videos: videos, auth: auth, media: store, logger: logger}
}

func (s *userService) Register(ctx context.Context, in domain.RegisterInput, avatar, cover *media.StagedFile) (*domain.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	missing := missingFields(map[string]string{
		"username": in.Username,
		"email":    in.Email,
		"fullName": in.FullName,
		"password": strings.TrimSpace(in.Password),
	})
	if len(missing) > 0 {
		return nil, errors.NewValidationError("All fields are required", map[string]interface{}{"missing": missing})
	}
	if !strings.Contains(in.Email, "@") {
		return nil, errors.NewValidationError("Invalid email address", map[string]interface{}{"field": "email"})
	}
	if avatar == nil {
		return nil, errors.NewValidationError("Avatar file is required", map[string]interface{}{"field": "avatar"})
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, errors.NewConflictError("email already exists")
	} else if !stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NewInternalError("Failed to check email", err)
	}
	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, errors.NewConflictError("username already exists")
	} else if !stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NewInternalError("Failed to check username", err)
	}

	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	avatarAsset, err := uploadStaged(ctx, s.media, avatar, media.KindImage, "avatar")
	if err != nil {
		return nil, err
	}
	var coverURL string
	if cover != nil {
		coverAsset, err := uploadStaged(ctx, s.media, cover, media.KindImage, "coverImage")
		if err != nil {
			discardAssets(s.media, s.logger, avatarAsset.URL)
			return nil, err
		}
		coverURL = coverAsset.URL
	}

	user := &domain.User{
		Username:   in.Username,
		Email:      in.Email,
		FullName:   in.FullName,
		Password:   hash,
		Avatar:     avatarAsset.URL,
		CoverImage: coverURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		discardAssets(s.media, s.logger, avatarAsset.URL, coverURL)
		switch {
		case repository.IsDuplicateIndex(err, repository.IndexUserEmail):
			return nil, errors.NewConflictError("email already exists")
		case stderrors.Is(err, repository.ErrDuplicate):
			return nil, errors.NewConflictError("username already exists")
		}
		return nil, errors.NewInternalError("Failed to register user", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  user.ID.Hex(),
		"username": user.Username,
	}).Info("User registered")
	return user, nil
}

func (s *userService) Login(ctx context.Context, in domain.LoginInput) (*domain.LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" && email == "" {
		return nil, errors.NewValidationError("Username or email is required", nil)
	}
	if in.Password == "" {
		return nil, errors.NewValidationError("Password is required", map[string]interface{}{"field": "password"})
	}

	var (
		user *domain.User
		err  error
	)
	if username != "" {
		user, err = s.users.GetByUsername(ctx, username)
	} else {
		user, err = s.users.GetByEmail(ctx, email)
	}
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("User does not exist")
		}
		return nil, errors.NewInternalError("Failed to load user", err)
	}

	if !s.auth.ComparePassword(user.Password, in.Password) {
		return nil, errors.NewAuthenticationError("Invalid user credentials")
	}

	tokens, err := s.auth.IssueTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, errors.NewInternalError("Failed to store refresh token", err)
	}
	user.RefreshToken = tokens.RefreshToken

	s.logger.WithField("user_id", user.ID.Hex()).Info("User logged in")
	return &domain.LoginResult{TokenPair: *tokens, User: user}, nil
}

func (s *userService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.users.SetRefreshToken(ctx, userID, ""); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NewNotFoundError("User does not exist")
		}
		return errors.NewInternalError("Failed to log out", err)
	}
	return nil
}

// RefreshTokens rotates both tokens when the presented refresh token is the stored one
func (s *userService) RefreshTokens(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, errors.NewAuthenticationError("Refresh token is required")
	}

	claims, err := s.auth.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, errors.NewAuthenticationError("Invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewAuthenticationError("Invalid refresh token")
		}
		return nil, errors.NewInternalError("Failed to load user", err)
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, errors.NewAuthenticationError("Refresh token is expired or used")
	}

	tokens, err := s.auth.IssueTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, errors.NewInternalError("Failed to store refresh token", err)
	}
	return tokens, nil
}

func (s *userService) GetCurrentUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("User does not exist")
		}
		return nil, errors.NewInternalError("Failed to load user", err)
	}
	return user, nil
}

// WatchHistory returns the watched videos in history order, skipping deleted ones
func (s *userService) WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.Video, error) {
	user, err := s.GetCurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	videos, err := s.videos.GetByIDs(ctx, user.WatchHistory)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load watch history", err)
	}

	byID := make(map[primitive.ObjectID]domain.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}
	ordered := make([]domain.Video, 0, len(videos))
	for _, id := range user.WatchHistory {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}
	return ordered, nil
}

func (s *userService) ChannelProfile(ctx context.Context, username string, viewer *primitive.ObjectID) (*domain.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, errors.NewValidationError("Username is required", nil)
	}

	profile, err := s.users.ChannelProfile(ctx, username, viewer)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("Channel does not exist")
		}
		return nil, errors.NewInternalError("Failed to load channel", err)
	}
	return profile, nil
}

// missingFields returns the sorted names of empty values
func missingFields(fields map[string]string) []string {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
