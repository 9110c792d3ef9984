package services

import (
	"context"
	"strings"
	"time"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
	"github.com/zatekoja/healthmarket/pkg/utils"
)

// RegisterInput is the sign-up form
type RegisterInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// ProfileUpdate holds the editable profile fields; nil fields are unchanged
type ProfileUpdate struct {
	FirstName    *string
	LastName     *string
	Email        *string
	ProfileImage *string
}

// Session is returned on login
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *entities.User `json:"user"`
}

// UserService handles registration, login and profile management
type UserService struct {
	users    repositories.UserRepository
	activity repositories.ActivityRepository
	tokens   *TokenIssuer
	now      func() time.Time
}

// NewUserService creates a new user service
func NewUserService(users repositories.UserRepository, activity repositories.ActivityRepository, tokens *TokenIssuer) *UserService {
	return &UserService{
		users:    users,
		activity: activity,
		tokens:   tokens,
		now:      time.Now,
	}
}

// SetClock overrides the time source
func (s *UserService) SetClock(now func() time.Time) {
	s.now = now
}

// Register creates a patient account. The phone number must be unused.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*entities.User, error) {
	firstName := strings.TrimSpace(input.FirstName)
	if firstName == "" {
		return nil, apperrors.NewValidationError("first name is required")
	}
	if !utils.IsValidPhone(input.Phone) {
		return nil, apperrors.NewValidationError("phone must be a valid 10 digit mobile number")
	}
	email := strings.TrimSpace(input.Email)
	if email != "" && !utils.IsValidEmail(email) {
		return nil, apperrors.NewValidationError("email is not valid")
	}

	phone := utils.NormalizePhone(input.Phone)
	if _, err := s.users.GetByPhone(ctx, phone); err == nil {
		return nil, apperrors.NewConflictError("an account with this phone number already exists")
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	now := s.now()
	user := &entities.User{
		FirstName: firstName,
		LastName:  strings.TrimSpace(input.LastName),
		Phone:     phone,
		Email:     email,
		Role:      entities.RolePatient,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login issues a session token for the account with phone and records an
// auth log entry
func (s *UserService) Login(ctx context.Context, phone, location string) (*Session, error) {
	if !utils.IsValidPhone(phone) {
		return nil, apperrors.NewValidationError("phone must be a valid 10 digit mobile number")
	}
	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError("no account is registered with this phone number")
		}
		return nil, err
	}

	now := s.now()
	token, expiresAt, err := s.tokens.Issue(user, now)
	if err != nil {
		return nil, err
	}
	s.recordAuth(ctx, user, entities.AuthActionLogin, location, now)

	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout records an auth log entry for the user
func (s *UserService) Logout(ctx context.Context, userID int64, location string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	s.recordAuth(ctx, user, entities.AuthActionLogout, location, s.now())
	return nil
}

// Authenticate verifies a session token and returns the caller identity
func (s *UserService) Authenticate(token string) (Requester, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return Requester{}, err
	}
	return claims.Requester(), nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id int64) (*entities.User, error) {
	return s.users.GetByID(ctx, id)
}

// ListUsers lists accounts, optionally by role
func (s *UserService) ListUsers(ctx context.Context, filter repositories.UserFilter) ([]*entities.User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown role " + string(filter.Role))
	}
	return s.users.List(ctx, filter)
}

// UpdateProfile applies the non-nil fields of update
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		name := strings.TrimSpace(*update.FirstName)
		if name == "" {
			return nil, apperrors.NewValidationError("first name is required")
		}
		user.FirstName = name
	}
	if update.LastName != nil {
		user.LastName = strings.TrimSpace(*update.LastName)
	}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email != "" && !utils.IsValidEmail(email) {
			return nil, apperrors.NewValidationError("email is not valid")
		}
		user.Email = email
	}
	if update.ProfileImage != nil {
		user.ProfileImage = *update.ProfileImage
	}

	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetRole changes a user's role. Only the owner may do this, and the owner
// cannot demote themselves.
func (s *UserService) SetRole(ctx context.Context, req Requester, userID int64, role entities.Role) (*entities.User, error) {
	if req.Role != entities.RoleOwner {
		return nil, apperrors.NewForbiddenError("only the owner can change roles")
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role " + string(role))
	}
	if req.UserID == userID && role != entities.RoleOwner {
		return nil, apperrors.NewConflictError("the owner cannot change their own role")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Int64("user_id", userID).Str("role", string(role)).Msg("user role changed")
	return user, nil
}

func (s *UserService) recordAuth(ctx context.Context, user *entities.User, action entities.AuthAction, location string, at time.Time) {
	if strings.TrimSpace(location) == "" {
		location = "Unknown"
	}
	entry := &entities.AuthLog{
		UserID:    user.ID,
		UserName:  user.FullName(),
		Phone:     user.Phone,
		Role:      user.Role,
		Action:    action,
		Location:  location,
		Timestamp: at,
	}
	if err := s.activity.AppendAuthLog(ctx, entry); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Int64("user_id", user.ID).
			Str("action", string(action)).Msg("failed to record auth log")
	}
}
