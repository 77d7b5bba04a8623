package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"examprep/internal/logger"
	"examprep/internal/storage"
	"examprep/pkg/preptypes"
)

// Verification code bounds, inclusive.
const (
	minVerificationCode = 100000
	maxVerificationCode = 999999
)

// DefaultCodeTTL is how long a sign-up verification code stays valid.
const DefaultCodeTTL = 10 * time.Minute

// AuthOptions tunes an AuthService. Zero values select the defaults.
type AuthOptions struct {
	CodeTTL        time.Duration
	SimulatedDelay time.Duration
	HashCost       int
	Now            func() time.Time
	GenerateCode   func() (string, error)
}

// AuthService is the mock account and session store. It keeps three records on the
// storage port: the verified-accounts table, the unverified-accounts table and the
// current session. Every operation reads and writes whole records.
type AuthService struct {
	store        preptypes.Storage
	codeTTL      time.Duration
	delay        time.Duration
	hashCost     int
	now          func() time.Time
	generateCode func() (string, error)
}

// NewAuthService creates an AuthService over store.
func NewAuthService(store preptypes.Storage, opts AuthOptions) *AuthService {
	a := &AuthService{
		store:        store,
		codeTTL:      opts.CodeTTL,
		delay:        opts.SimulatedDelay,
		hashCost:     opts.HashCost,
		now:          opts.Now,
		generateCode: opts.GenerateCode,
	}
	if a.codeTTL <= 0 {
		a.codeTTL = DefaultCodeTTL
	}
	if a.hashCost == 0 {
		a.hashCost = bcrypt.DefaultCost
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.generateCode == nil {
		a.generateCode = randomVerificationCode
	}
	return a
}

// AuthOptionsFromConfig maps the resolved configuration onto AuthOptions.
func AuthOptionsFromConfig(cfg AppConfig) AuthOptions {
	return AuthOptions{CodeTTL: cfg.CodeTTL, SimulatedDelay: cfg.SimulatedDelay}
}

func randomVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxVerificationCode-minVerificationCode+1))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+minVerificationCode), nil
}

// passwordDigest pre-hashes a password so bcrypt sees every byte of it.
// bcrypt truncates its input at 72 bytes.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}

// NormalizeEmail trims and lower-cases an email for use as a table key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp stores a pending account and returns the verification code the caller must deliver.
// A second sign-up for a pending email replaces the earlier code.
func (a *AuthService) SignUp(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", preptypes.NewErrorf(preptypes.ErrInvalidInput, nil, "Email is required.")
	}

	verified, err := a.verifiedAccounts(ctx)
	if err != nil {
		return "", err
	}
	if _, exists := verified[email]; exists {
		return "", preptypes.NewError(preptypes.ErrDuplicateAccount, nil)
	}

	if err := a.pause(ctx); err != nil {
		return "", err
	}

	code, err := a.generateCode()
	if err != nil {
		return "", preptypes.NewError(preptypes.ErrUnknown, err)
	}
	hash, err := bcrypt.GenerateFromPassword(passwordDigest(password), a.hashCost)
	if err != nil {
		return "", preptypes.NewError(preptypes.ErrUnknown, fmt.Errorf("hash password: %w", err))
	}

	unverified, err := a.unverifiedAccounts(ctx)
	if err != nil {
		return "", err
	}
	unverified[email] = preptypes.UnverifiedAccount{
		Email:               email,
		PasswordPlaceholder: string(hash),
		VerificationCode:    code,
		ExpiresAt:           a.now().Add(a.codeTTL).UnixMilli(),
	}
	if err := writeTable(ctx, a.store, storage.KeyUnverifiedAccounts, unverified); err != nil {
		return "", err
	}

	logger.Info("Verification code issued", "email", email, "code", code)
	return code, nil
}

// ConfirmSignUp promotes a pending account when code matches and has not expired,
// then logs the account in.
func (a *AuthService) ConfirmSignUp(ctx context.Context, email, code string) (*preptypes.Session, error) {
	email = NormalizeEmail(email)

	unverified, err := a.unverifiedAccounts(ctx)
	if err != nil {
		return nil, err
	}
	pending, exists := unverified[email]
	if !exists {
		return nil, preptypes.NewError(preptypes.ErrNoPendingVerification, nil)
	}
	if pending.ExpiresAt < a.now().UnixMilli() {
		delete(unverified, email)
		if err := writeTable(ctx, a.store, storage.KeyUnverifiedAccounts, unverified); err != nil {
			logger.Warn("Failed to drop expired verification", "email", email, "error", err)
		}
		return nil, preptypes.NewError(preptypes.ErrCodeExpired, nil)
	}
	if pending.VerificationCode != code {
		return nil, preptypes.NewError(preptypes.ErrInvalidCode, nil)
	}

	if err := a.pause(ctx); err != nil {
		return nil, err
	}

	verified, err := a.verifiedAccounts(ctx)
	if err != nil {
		return nil, err
	}
	verified[email] = preptypes.VerifiedAccount{Email: pending.Email, PasswordPlaceholder: pending.PasswordPlaceholder}
	if err := writeTable(ctx, a.store, storage.KeyVerifiedAccounts, verified); err != nil {
		return nil, err
	}

	delete(unverified, email)
	if err := writeTable(ctx, a.store, storage.KeyUnverifiedAccounts, unverified); err != nil {
		return nil, err
	}

	return a.startSession(ctx, email)
}

// LogIn starts a session for a verified account with a matching password.
func (a *AuthService) LogIn(ctx context.Context, email, password string) (*preptypes.Session, error) {
	email = NormalizeEmail(email)

	verified, err := a.verifiedAccounts(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.pause(ctx); err != nil {
		return nil, err
	}

	account, exists := verified[email]
	if !exists || bcrypt.CompareHashAndPassword([]byte(account.PasswordPlaceholder), passwordDigest(password)) != nil {
		return nil, preptypes.NewError(preptypes.ErrInvalidCredentials, nil)
	}
	return a.startSession(ctx, email)
}

// LogOut clears the session. Storage failures are logged, never returned.
func (a *AuthService) LogOut(ctx context.Context) {
	if err := a.store.Remove(ctx, storage.KeySession); err != nil {
		logger.Warn("Failed to clear session", "error", err)
	}
}

// GetCurrentUser returns the logged-in session, or nil when there is none or the
// stored record cannot be read.
func (a *AuthService) GetCurrentUser(ctx context.Context) *preptypes.Session {
	value, ok, err := a.store.Get(ctx, storage.KeySession)
	if err != nil {
		logger.Warn("Failed to read session", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var session preptypes.Session
	if err := json.Unmarshal([]byte(value), &session); err != nil || session.Email == "" {
		logger.Debug("Ignoring unreadable session record", "error", err)
		return nil
	}
	return &session
}

func (a *AuthService) startSession(ctx context.Context, email string) (*preptypes.Session, error) {
	session := &preptypes.Session{Email: email}
	data, err := json.Marshal(session)
	if err != nil {
		return nil, preptypes.NewError(preptypes.ErrUnknown, err)
	}
	if err := a.store.Set(ctx, storage.KeySession, string(data)); err != nil {
		return nil, preptypes.NewError(preptypes.ErrUnknown, fmt.Errorf("write session: %w", err))
	}
	logger.Debug("Session started", "email", email)
	return session, nil
}

// pause simulates the round trip to an account backend.
func (a *AuthService) pause(ctx context.Context) error {
	if a.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(a.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return preptypes.NewError(preptypes.ErrUnknown, ctx.Err())
	}
}

func (a *AuthService) verifiedAccounts(ctx context.Context) (map[string]preptypes.VerifiedAccount, error) {
	return readTable[preptypes.VerifiedAccount](ctx, a.store, storage.KeyVerifiedAccounts)
}

func (a *AuthService) unverifiedAccounts(ctx context.Context) (map[string]preptypes.UnverifiedAccount, error) {
	return readTable[preptypes.UnverifiedAccount](ctx, a.store, storage.KeyUnverifiedAccounts)
}

// readTable loads an email-keyed table. A missing or corrupt record reads as empty.
func readTable[T any](ctx context.Context, store preptypes.Storage, key string) (map[string]T, error) {
	table := make(map[string]T)
	value, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, preptypes.NewError(preptypes.ErrUnknown, fmt.Errorf("read %s: %w", key, err))
	}
	if !ok {
		return table, nil
	}
	if err := json.Unmarshal([]byte(value), &table); err != nil || table == nil {
		logger.Warn("Discarding unreadable table", "key", key, "error", err)
		return make(map[string]T), nil
	}
	return table, nil
}

func writeTable[T any](ctx context.Context, store preptypes.Storage, key string, table map[string]T) error {
	data, err := json.Marshal(table)
	if err != nil {
		return preptypes.NewError(preptypes.ErrUnknown, err)
	}
	if err := store.Set(ctx, key, string(data)); err != nil {
		return preptypes.NewError(preptypes.ErrUnknown, fmt.Errorf("write %s: %w", key, err))
	}
	return nil
}
