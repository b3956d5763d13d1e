package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"docvault/internal/model"
	"docvault/internal/repository"
)

const (
	// DefaultTokenTTL applies when the configured expression cannot be used.
	DefaultTokenTTL = time.Hour

	secretBytes = 32
)

var ttlPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseTTL parses "<integer><unit>" with unit one of s, m, h, d. Anything
// else, including a zero amount, yields DefaultTokenTTL.
func ParseTTL(expr string) time.Duration {
	m := ttlPattern.FindStringSubmatch(expr)
	if m == nil {
		return DefaultTokenTTL
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return DefaultTokenTTL
	}
	unit := map[string]time.Duration{
		"s": time.Second,
		"m": time.Minute,
		"h": time.Hour,
		"d": 24 * time.Hour,
	}[m[2]]
	if n > int64(1<<63-1)/int64(unit) {
		return DefaultTokenTTL
	}
	return time.Duration(n) * unit
}

// IssuedToken is what the issuer gets back: the secret and its expiry.
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenService manages single-use download tokens.
type TokenService interface {
	// Issue creates a token for an existing document and returns its secret.
	Issue(ctx context.Context, docID model.DocumentID, issuer model.UserID) (*IssuedToken, error)

	// Redeem consumes the token and returns the document it grants access to.
	// Unknown, used and expired tokens all yield ErrInvalidToken. Under
	// concurrent calls with the same secret at most one succeeds.
	Redeem(ctx context.Context, secret string) (model.DocumentID, error)

	// Validate applies the same rules as Redeem without consuming the token.
	Validate(ctx context.Context, secret string) (*model.DownloadToken, error)

	// Cleanup removes every expired token, used or not, and reports how many.
	Cleanup(ctx context.Context) (int64, error)
}

// TokenOption customises a TokenService.
type TokenOption func(*tokenService)

// WithClock replaces time.Now as the service's time source.
func WithClock(now func() time.Time) TokenOption {
	return func(s *tokenService) { s.now = now }
}

type tokenService struct {
	tokens repository.TokenRepository
	docs   repository.DocumentRepository
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService. A non-positive ttl means DefaultTokenTTL.
func NewTokenService(tokens repository.TokenRepository, docs repository.DocumentRepository, ttl time.Duration, opts ...TokenOption) TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s := &tokenService{
		tokens: tokens,
		docs:   docs,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *tokenService) Issue(ctx context.Context, docID model.DocumentID, issuer model.UserID) (_ *IssuedToken, err error) {
	ctx, span := tracer.Start(ctx, "TokenService.Issue")
	span.SetAttributes(attribute.String("document.id", docID.String()))
	defer func() { endSpan(span, err) }()

	if docID == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.docs.FindByID(ctx, docID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageFailure("find document", err)
	}

	secret, err := newSecret()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	tok := &model.DownloadToken{
		ID:         uuid.NewString(),
		DocumentID: docID,
		Token:      secret,
		ExpiresAt:  now.Add(s.ttl),
		CreatedBy:  issuer,
		CreatedAt:  now,
	}
	if err := s.tokens.Create(ctx, tok); err != nil {
		return nil, storageFailure("create token", err)
	}
	return &IssuedToken{Token: secret, ExpiresAt: tok.ExpiresAt}, nil
}

func (s *tokenService) Redeem(ctx context.Context, secret string) (_ model.DocumentID, err error) {
	ctx, span := tracer.Start(ctx, "TokenService.Redeem")
	defer func() { endSpan(span, err) }()

	if secret == "" {
		return "", ErrInvalidToken
	}
	tok, err := s.tokens.MarkUsed(ctx, secret, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", storageFailure("redeem token", err)
	}
	span.SetAttributes(attribute.String("document.id", tok.DocumentID.String()))
	return tok.DocumentID, nil
}

func (s *tokenService) Validate(ctx context.Context, secret string) (_ *model.DownloadToken, err error) {
	ctx, span := tracer.Start(ctx, "TokenService.Validate")
	defer func() { endSpan(span, err) }()

	if secret == "" {
		return nil, ErrInvalidToken
	}
	tok, err := s.tokens.FindBySecret(ctx, secret)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, storageFailure("find token", err)
	}
	if !tok.Redeemable(s.now().UTC()) {
		return nil, ErrInvalidToken
	}
	return tok, nil
}

func (s *tokenService) Cleanup(ctx context.Context) (_ int64, err error) {
	ctx, span := tracer.Start(ctx, "TokenService.Cleanup")
	defer func() { endSpan(span, err) }()

	n, err := s.tokens.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, storageFailure("delete expired tokens", err)
	}
	span.SetAttributes(attribute.Int64("tokens.removed", n))
	return n, nil
}

func newSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
