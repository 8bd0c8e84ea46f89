package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/talkincode/storefront/internal/apperr"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/repository"
	"github.com/talkincode/storefront/pkg/common"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "Invalid credentials."
	msgUnauthenticated    = "Unauthenticated."
)

// Claims carried by every bearer token. ID is the AccessToken row id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type AuthOptions struct {
	Secret      []byte
	TokenTTL    time.Duration
	RememberTTL time.Duration
}

// AuthResult returned by register and login
type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

type UserStats struct {
	TotalUsers int64 `json:"totalUsers"`
}

type AuthService struct {
	users  *repository.UserRepository
	tokens *repository.TokenRepository
	opts   AuthOptions
	now    func() time.Time
}

func NewAuthService(users *repository.UserRepository, tokens *repository.TokenRepository, opts AuthOptions) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.RememberTTL <= 0 {
		opts.RememberTTL = opts.TokenTTL
	}
	return &AuthService{users: users, tokens: tokens, opts: opts, now: time.Now}
}

func (s *AuthService) SigningKey() []byte {
	return s.opts.Secret
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	err := check(&in)
	fields := apperr.FieldErrors{}
	if e, ok := apperr.As(err); ok && e.Kind == apperr.KindInvalidInput {
		fields = e.Fields
	} else if err != nil {
		return nil, err
	}
	if _, bad := fields["email"]; !bad {
		taken, err := s.users.EmailTaken(ctx, in.Email)
		if err != nil {
			return nil, storeErr(err, "")
		}
		if taken {
			fields.Add("email", "The email has already been taken.")
		}
	}
	if len(fields) > 0 {
		return nil, apperr.InvalidInput(fields)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("", err)
	}
	user := &domain.User{
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Email:     in.Email,
		Password:  hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeErr(err, "")
	}
	token, err := s.issue(ctx, user, false)
	if err != nil {
		return nil, err
	}
	zap.L().Info("user registered", zap.String("namespace", "auth"), zap.Int64("user_id", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// Login answers unknown email and wrong password with the same error
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := check(&in); err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return nil, storeErr(err, "")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		zap.L().Warn("login password mismatch", zap.String("namespace", "auth"), zap.Int64("user_id", user.ID))
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	token, err := s.issue(ctx, user, in.RememberMe)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// issue stores a token row and signs a JWT referencing it
func (s *AuthService) issue(ctx context.Context, user *domain.User, remember bool) (string, error) {
	ttl := s.opts.TokenTTL
	if remember {
		ttl = s.opts.RememberTTL
	}
	now := s.now()
	row := &domain.AccessToken{
		ID:        common.UUIDint64(),
		UserID:    user.ID,
		Name:      user.Email,
		Abilities: "*",
		ExpiresAt: now.Add(ttl),
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return "", storeErr(err, "")
	}
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        strconv.FormatInt(row.ID, 10),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(row.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
	if err != nil {
		return "", apperr.Internal("", err)
	}
	return signed, nil
}

// Authenticate resolves verified claims to a live token and its user
func (s *AuthService) Authenticate(ctx context.Context, claims *Claims) (*domain.User, *domain.AccessToken, error) {
	if claims == nil {
		return nil, nil, apperr.Unauthorized(msgUnauthenticated)
	}
	jti, err := strconv.ParseInt(claims.ID, 10, 64)
	if err != nil {
		return nil, nil, apperr.Unauthorized(msgUnauthenticated)
	}
	token, err := s.tokens.Find(ctx, jti)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apperr.Unauthorized(msgUnauthenticated)
	}
	if err != nil {
		return nil, nil, storeErr(err, "")
	}
	now := s.now()
	if token.Expired(now) || strconv.FormatInt(token.UserID, 10) != claims.Subject {
		return nil, nil, apperr.Unauthorized(msgUnauthenticated)
	}
	user, err := s.users.Find(ctx, token.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apperr.Unauthorized(msgUnauthenticated)
	}
	if err != nil {
		return nil, nil, storeErr(err, "")
	}
	if err := s.tokens.Touch(ctx, token.ID, now); err != nil {
		zap.L().Warn("token touch failed", zap.String("namespace", "auth"), zap.Error(err))
	}
	return user, token, nil
}

// Logout revokes a single token
func (s *AuthService) Logout(ctx context.Context, tokenID int64) error {
	if err := s.tokens.Revoke(ctx, tokenID); err != nil {
		return apperr.Internal("", err)
	}
	return nil
}

func (s *AuthService) Update(ctx context.Context, email string, in UserUpdateInput) error {
	if err := check(&in); err != nil {
		return err
	}
	n, err := s.users.PatchByEmail(ctx, email, map[string]interface{}{
		"firstname": in.Firstname,
		"lastname":  in.Lastname,
	})
	if err != nil {
		return storeErr(err, "User not found")
	}
	if n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (s *AuthService) Destroy(ctx context.Context, id int64) error {
	if _, err := s.users.DeleteWithTokens(ctx, id); err != nil {
		return apperr.Internal("User deletion unsuccessful.", err)
	}
	return nil
}

func (s *AuthService) List(ctx context.Context, q repository.ListQuery) (*repository.Page[domain.User], error) {
	page, err := s.users.List(ctx, q)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return page, nil
}

func (s *AuthService) Count(ctx context.Context) (*UserStats, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return &UserStats{TotalUsers: n}, nil
}

// PurgeExpiredTokens removes tokens past their lifetime
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokens.PurgeExpired(ctx, s.now())
}

// EnsureUser creates the user when the email is unknown, used by the bootstrap seeder
func (s *AuthService) EnsureUser(ctx context.Context, email, password string) (bool, error) {
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil || taken {
		return false, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	err = s.users.Create(ctx, &domain.User{
		Firstname: "Store",
		Lastname:  "Admin",
		Email:     email,
		Password:  hash,
	})
	return err == nil, err
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
