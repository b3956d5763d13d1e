package service

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/repository/memory"
	repoMocks "docvault/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTokenFixture(t *testing.T, ttl time.Duration) (TokenService, *memory.Store, *fakeClock, model.DocumentID) {
	t.Helper()
	store := memory.New()
	clock := &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	doc, err := store.Documents().Create(context.Background(), &model.Document{
		ID:          model.NewDocumentID(),
		OwnerID:     owner.UserID,
		StoragePath: "documents/x.pdf",
		CreatedAt:   clock.Now(),
	})
	require.NoError(t, err)
	svc := NewTokenService(store.Tokens(), store.Documents(), ttl, WithClock(clock.Now))
	return svc, store, clock, doc.ID
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		expr string
		want time.Duration
	}{
		{"1s", time.Second},
		{"30m", 30 * time.Minute},
		{"2h", 2 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"", DefaultTokenTTL},
		{"0h", DefaultTokenTTL},
		{"-5m", DefaultTokenTTL},
		{"1.5h", DefaultTokenTTL},
		{"10w", DefaultTokenTTL},
		{"h", DefaultTokenTTL},
		{" 5m", DefaultTokenTTL},
		{"99999999999999999999d", DefaultTokenTTL},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTTL(tt.expr))
		})
	}
}

func TestTokenService_IssueAndRedeem(t *testing.T) {
	ctx := context.Background()
	svc, store, clock, docID := newTokenFixture(t, time.Hour)

	issued, err := svc.Issue(ctx, docID, owner.UserID)
	require.NoError(t, err)
	raw, err := hex.DecodeString(issued.Token)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.Equal(t, clock.Now().Add(time.Hour), issued.ExpiresAt)

	tok, err := svc.Validate(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, docID, tok.DocumentID)
	assert.Nil(t, tok.UsedAt, "validate must not consume")

	got, err := svc.Redeem(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, docID, got)

	_, err = svc.Redeem(ctx, issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Validate(ctx, issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	stored, err := store.Tokens().FindBySecret(ctx, issued.Token)
	require.NoError(t, err)
	require.NotNil(t, stored.UsedAt)
	assert.Equal(t, owner.UserID, stored.CreatedBy)
}

func TestTokenService_ConcurrentRedeem(t *testing.T) {
	ctx := context.Background()
	svc, _, _, docID := newTokenFixture(t, time.Hour)

	issued, err := svc.Issue(ctx, docID, owner.UserID)
	require.NoError(t, err)

	const callers = 32
	results := make([]error, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, results[i] = svc.Redeem(ctx, issued.Token)
		}()
	}
	close(start)
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
	assert.Equal(t, 1, wins)
}

func TestTokenService_Expiry(t *testing.T) {
	ctx := context.Background()
	svc, _, clock, docID := newTokenFixture(t, ParseTTL("1s"))

	issued, err := svc.Issue(ctx, docID, owner.UserID)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)

	_, err = svc.Redeem(ctx, issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RedeemUnknown(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTokenFixture(t, time.Hour)

	_, err := svc.Redeem(ctx, "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Redeem(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_IssueMissingDocument(t *testing.T) {
	svc, _, _, _ := newTokenFixture(t, time.Hour)

	_, err := svc.Issue(context.Background(), model.NewDocumentID(), owner.UserID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenService_Cleanup(t *testing.T) {
	ctx := context.Background()
	svc, store, clock, docID := newTokenFixture(t, time.Hour)

	usedExpired, err := svc.Issue(ctx, docID, owner.UserID)
	require.NoError(t, err)
	_, err = svc.Redeem(ctx, usedExpired.Token)
	require.NoError(t, err)
	_, err = svc.Issue(ctx, docID, owner.UserID)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	fresh, err := svc.Issue(ctx, docID, owner.UserID)
	require.NoError(t, err)

	n, err := svc.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = store.Tokens().FindBySecret(ctx, fresh.Token)
	assert.NoError(t, err)
	_, err = store.Tokens().FindBySecret(ctx, usedExpired.Token)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	n, err = svc.Cleanup(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTokenService_StorageFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("db down")

	t.Run("redeem surfaces storage errors", func(t *testing.T) {
		mTok := new(repoMocks.MockTokenRepository)
		mTok.On("MarkUsed", mock.Anything, "s", mock.Anything).Return(nil, boom)
		svc := NewTokenService(mTok, nil, time.Hour)

		_, err := svc.Redeem(ctx, "s")
		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cleanup surfaces storage errors", func(t *testing.T) {
		mTok := new(repoMocks.MockTokenRepository)
		mTok.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(0), boom)
		svc := NewTokenService(mTok, nil, time.Hour)

		_, err := svc.Cleanup(ctx)
		assert.ErrorIs(t, err, ErrStorageFailure)
	})

	t.Run("issue surfaces document lookup errors", func(t *testing.T) {
		mDocs := new(repoMocks.MockDocumentRepository)
		mDocs.On("FindByID", mock.Anything, model.DocumentID("d1")).Return(nil, boom)
		svc := NewTokenService(new(repoMocks.MockTokenRepository), mDocs, time.Hour)

		_, err := svc.Issue(ctx, "d1", owner.UserID)
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}
