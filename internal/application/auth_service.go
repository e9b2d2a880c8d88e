package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/campshare/internal/dispatch"
	"github.com/example/campshare/internal/model"
	"github.com/example/campshare/internal/state"
	"github.com/example/campshare/internal/storage"
)

// AuthService handles login by phone number and the persisted session. The
// temporary code is a one-time credential: the first login that presents it
// marks the account set up, after which the phone number alone identifies
// the user.
type AuthService struct {
	store         *state.Store
	session       storage.Store
	sms           dispatch.SMSSender
	codeGenerator func() string
	logger        *slog.Logger
}

// NewAuthService wires dependencies for authentication operations. The
// session store holds the current user between program runs; the SMS sender
// delivers verification codes to self-registered users. A nil codeGenerator
// falls back to random six digit codes.
func NewAuthService(store *state.Store, session storage.Store, sms dispatch.SMSSender, codeGenerator func() string, logger *slog.Logger) *AuthService {
	if codeGenerator == nil {
		codeGenerator = randomCode
	}
	return &AuthService{
		store:         store,
		session:       session,
		sms:           sms,
		codeGenerator: codeGenerator,
		logger:        defaultLogger(logger),
	}
}

// Login authenticates by phone number and code. An unknown phone number or a
// wrong code on a first login fails with ErrInvalidCredentials. Accounts that
// already completed their first login are identified by phone number alone.
func (s *AuthService) Login(ctx context.Context, phoneNumber, code string) (model.User, error) {
	if s == nil {
		return model.User{}, fmt.Errorf("AuthService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "auth", "login")

	user, ok := s.store.UserByPhone(strings.TrimSpace(phoneNumber))
	if !ok {
		logger.WarnContext(ctx, "login failed", "error_kind", ErrorKind(ErrInvalidCredentials))
		return model.User{}, ErrInvalidCredentials
	}

	if !user.PasswordSet {
		if user.TemporaryCode == "" || code != user.TemporaryCode {
			logger.WarnContext(ctx, "login failed", "error_kind", ErrorKind(ErrInvalidCredentials))
			return model.User{}, ErrInvalidCredentials
		}
		updated, ok, err := s.store.MarkPasswordSet(ctx, user.ID)
		if err != nil {
			return model.User{}, err
		}
		if !ok {
			return model.User{}, ErrNotFound
		}
		user = updated
	}

	if err := s.saveSession(ctx, user); err != nil {
		return model.User{}, err
	}

	logger.InfoContext(ctx, "login succeeded", "user_id", user.ID)
	return user, nil
}

// Register creates a self-service account with no roles beyond read-only. A
// verification code is persisted on the record and sent by SMS so the first
// credentialed login can confirm it, and the new user is logged in right
// away. Delivery failure is logged but never rolls the account back.
func (s *AuthService) Register(ctx context.Context, name, phoneNumber string) (model.User, error) {
	if s == nil {
		return model.User{}, fmt.Errorf("AuthService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "auth", "register")

	vErr := &ValidationError{}
	if strings.TrimSpace(name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(phoneNumber) == "" {
		vErr.add("phoneNumber", "phone number is required")
	}
	if vErr.HasErrors() {
		return model.User{}, vErr
	}

	if _, exists := s.store.UserByPhone(phoneNumber); exists {
		return model.User{}, ErrAlreadyExists
	}

	user, err := s.store.AddUser(ctx, model.User{
		Name:        strings.TrimSpace(name),
		PhoneNumber: strings.TrimSpace(phoneNumber),
	})
	if err != nil {
		return model.User{}, err
	}

	code := s.codeGenerator()
	user, ok, err := s.store.SetTemporaryCode(ctx, user.ID, code)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, ErrNotFound
	}

	if s.sms != nil {
		if err := s.sms.SendSMS(ctx, dispatch.InvitationSMS(user.PhoneNumber, user.Name, code)); err != nil {
			logger.WarnContext(ctx, "verification SMS failed", "user_id", user.ID, "error", err)
		}
	}

	if err := s.saveSession(ctx, user); err != nil {
		return model.User{}, err
	}

	logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Logout discards the persisted session.
func (s *AuthService) Logout(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if err := s.session.Remove(ctx, storage.KeyCurrentUser); err != nil {
		return fmt.Errorf("application: clear session: %w", err)
	}
	return nil
}

// CurrentUser returns the logged-in user, refreshed against the directory so
// permission changes made elsewhere take effect. A session pointing at a
// deleted user counts as logged out.
func (s *AuthService) CurrentUser(ctx context.Context) (model.User, bool, error) {
	if s == nil {
		return model.User{}, false, fmt.Errorf("AuthService is nil")
	}

	data, ok, err := s.session.Get(ctx, storage.KeyCurrentUser)
	if err != nil {
		return model.User{}, false, fmt.Errorf("application: read session: %w", err)
	}
	if !ok {
		return model.User{}, false, nil
	}

	var saved model.User
	if err := json.Unmarshal(data, &saved); err != nil {
		s.logger.WarnContext(ctx, "discarding unparseable session", "error", err)
		return model.User{}, false, nil
	}

	user, ok := s.store.UserByID(saved.ID)
	if !ok {
		return model.User{}, false, nil
	}
	return user, true, nil
}

// UpdateProfile lets a user change their own name and email. The persisted
// session is rewritten so it reflects the change immediately.
func (s *AuthService) UpdateProfile(ctx context.Context, actor model.User, name, email string) (model.User, error) {
	if s == nil {
		return model.User{}, fmt.Errorf("AuthService is nil")
	}

	user, ok := s.store.UserByID(actor.ID)
	if !ok {
		return model.User{}, ErrNotFound
	}

	if trimmed := strings.TrimSpace(name); trimmed != "" {
		user.Name = trimmed
	}
	user.Email = strings.TrimSpace(email)

	updated, ok, err := s.store.UpdateUser(ctx, user)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, ErrNotFound
	}

	if err := s.saveSession(ctx, updated); err != nil {
		return model.User{}, err
	}
	return updated, nil
}

func (s *AuthService) saveSession(ctx context.Context, user model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("application: encode session: %w", err)
	}
	if err := s.session.Set(ctx, storage.KeyCurrentUser, data); err != nil {
		return fmt.Errorf("application: persist session: %w", err)
	}
	return nil
}
