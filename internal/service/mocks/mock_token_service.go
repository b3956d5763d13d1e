package mocks

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(ctx context.Context, docID model.DocumentID, issuer model.UserID) (*service.IssuedToken, error) {
	args := m.Called(ctx, docID, issuer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IssuedToken), args.Error(1)
}

func (m *MockTokenService) Redeem(ctx context.Context, secret string) (model.DocumentID, error) {
	args := m.Called(ctx, secret)
	return args.Get(0).(model.DocumentID), args.Error(1)
}

func (m *MockTokenService) Validate(ctx context.Context, secret string) (*model.DownloadToken, error) {
	args := m.Called(ctx, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DownloadToken), args.Error(1)
}

func (m *MockTokenService) Cleanup(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
