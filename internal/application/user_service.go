package application

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/example/campshare/internal/dispatch"
	"github.com/example/campshare/internal/model"
	"github.com/example/campshare/internal/notify"
	"github.com/example/campshare/internal/state"
)

// InviteUserInput carries the fields an admin fills in when inviting someone.
type InviteUserInput struct {
	Name        string
	PhoneNumber string
	Email       string
	Permissions []model.Permission
}

// UserService orchestrates the user directory: invitations, permission
// grants, and access code resets.
type UserService struct {
	store         *state.Store
	notifications *notify.Store
	email         dispatch.EmailSender
	sms           dispatch.SMSSender
	codeGenerator func() string
	appURL        string
	logger        *slog.Logger
}

// NewUserService wires dependencies for user directory operations. A nil
// codeGenerator falls back to random six digit codes.
func NewUserService(store *state.Store, notifications *notify.Store, email dispatch.EmailSender, sms dispatch.SMSSender, codeGenerator func() string, appURL string, logger *slog.Logger) *UserService {
	if codeGenerator == nil {
		codeGenerator = randomCode
	}
	return &UserService{
		store:         store,
		notifications: notifications,
		email:         email,
		sms:           sms,
		codeGenerator: codeGenerator,
		appURL:        appURL,
		logger:        defaultLogger(logger),
	}
}

func randomCode() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

// Invite creates a user with a temporary login code. The record is persisted
// before any message goes out; delivery is a separate step so a provider
// outage never loses the invitation. Callers run the returned invitation's
// Dispatch when they want the messages sent.
func (s *UserService) Invite(ctx context.Context, actor model.User, input InviteUserInput) (model.User, *Invitation, error) {
	if s == nil {
		return model.User{}, nil, fmt.Errorf("UserService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "users", "invite", "actor", actor.ID)

	if !actor.IsAdmin() {
		logger.WarnContext(ctx, "invite denied", "error_kind", ErrorKind(ErrUnauthorized))
		return model.User{}, nil, ErrUnauthorized
	}
	if err := validateInvite(input); err != nil {
		return model.User{}, nil, err
	}
	if _, exists := s.store.UserByPhone(input.PhoneNumber); exists {
		return model.User{}, nil, ErrAlreadyExists
	}

	user, err := s.store.AddUser(ctx, model.User{
		Name:        strings.TrimSpace(input.Name),
		PhoneNumber: input.PhoneNumber,
		Email:       strings.TrimSpace(input.Email),
		Permissions: input.Permissions,
	})
	if err != nil {
		return model.User{}, nil, err
	}

	code := s.codeGenerator()
	user, ok, err := s.store.SetTemporaryCode(ctx, user.ID, code)
	if err != nil {
		return model.User{}, nil, err
	}
	if !ok {
		return model.User{}, nil, ErrNotFound
	}

	if s.notifications != nil {
		_, err := s.notifications.Add(ctx, notify.Input{
			Title:   "User Invited",
			Message: fmt.Sprintf("%s has been invited to join Camp Share.", user.Name),
			Type:    model.NotificationInfo,
		})
		if err != nil {
			logger.WarnContext(ctx, "feed entry failed", "error", err)
		}
	}

	logger.InfoContext(ctx, "user invited", "user_id", user.ID)
	return user, s.invitation(user, code, false), nil
}

// ResetCode issues a fresh temporary code for an existing user. Admins can
// reset anyone; users can reset themselves.
func (s *UserService) ResetCode(ctx context.Context, actor model.User, userID string) (model.User, *Invitation, error) {
	if s == nil {
		return model.User{}, nil, fmt.Errorf("UserService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "users", "reset_code", "actor", actor.ID, "user_id", userID)

	if !actor.IsAdmin() && actor.ID != userID {
		return model.User{}, nil, ErrUnauthorized
	}

	code := s.codeGenerator()
	user, ok, err := s.store.SetTemporaryCode(ctx, userID, code)
	if err != nil {
		return model.User{}, nil, err
	}
	if !ok {
		return model.User{}, nil, ErrNotFound
	}

	logger.InfoContext(ctx, "access code reset")
	return user, s.invitation(user, code, true), nil
}

// UpdatePermissions replaces a user's roles. Admin only.
func (s *UserService) UpdatePermissions(ctx context.Context, actor model.User, userID string, permissions []model.Permission) (model.User, error) {
	if s == nil {
		return model.User{}, fmt.Errorf("UserService is nil")
	}
	if !actor.IsAdmin() {
		return model.User{}, ErrUnauthorized
	}

	user, ok, err := s.store.UpdateUserPermissions(ctx, userID, permissions)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, ErrNotFound
	}
	return user, nil
}

// Delete removes a user from the directory. Admin only; admins cannot delete
// themselves.
func (s *UserService) Delete(ctx context.Context, actor model.User, userID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if !actor.IsAdmin() || actor.ID == userID {
		return ErrUnauthorized
	}

	removed, err := s.store.DeleteUser(ctx, userID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// Users returns a snapshot of the directory.
func (s *UserService) Users() []model.User {
	return s.store.Users()
}

func (s *UserService) invitation(user model.User, code string, reset bool) *Invitation {
	return &Invitation{
		User:   user,
		Code:   code,
		reset:  reset,
		email:  s.email,
		sms:    s.sms,
		appURL: s.appURL,
		logger: s.logger,
	}
}

func validateInvite(input InviteUserInput) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.PhoneNumber) == "" {
		vErr.add("phoneNumber", "phone number is required")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
