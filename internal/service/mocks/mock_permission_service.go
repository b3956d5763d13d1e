package mocks

import (
	"context"

	"docvault/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockPermissionService struct {
	mock.Mock
}

func (m *MockPermissionService) Grant(ctx context.Context, actor model.Principal, docID model.DocumentID, grantee model.UserID, level model.PermissionLevel) (*model.PermissionGrant, error) {
	args := m.Called(ctx, actor, docID, grantee, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PermissionGrant), args.Error(1)
}

func (m *MockPermissionService) UpdateLevel(ctx context.Context, actor model.Principal, docID model.DocumentID, grantee model.UserID, level model.PermissionLevel) (*model.PermissionGrant, error) {
	args := m.Called(ctx, actor, docID, grantee, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PermissionGrant), args.Error(1)
}

func (m *MockPermissionService) Revoke(ctx context.Context, actor model.Principal, docID model.DocumentID, grantee model.UserID) error {
	args := m.Called(ctx, actor, docID, grantee)
	return args.Error(0)
}

func (m *MockPermissionService) ListForDocument(ctx context.Context, actor model.Principal, docID model.DocumentID) ([]model.PermissionGrant, error) {
	args := m.Called(ctx, actor, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PermissionGrant), args.Error(1)
}

func (m *MockPermissionService) ListForUser(ctx context.Context, userID model.UserID) ([]model.PermissionGrant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PermissionGrant), args.Error(1)
}
