package mocks

import (
	"context"

	"docvault/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) Create(ctx context.Context, g *model.PermissionGrant) (*model.PermissionGrant, error) {
	args := m.Called(ctx, g)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PermissionGrant), args.Error(1)
}

func (m *MockPermissionRepository) FindByDocument(ctx context.Context, docID model.DocumentID) ([]model.PermissionGrant, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PermissionGrant), args.Error(1)
}

func (m *MockPermissionRepository) FindByUser(ctx context.Context, userID model.UserID) ([]model.PermissionGrant, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PermissionGrant), args.Error(1)
}

func (m *MockPermissionRepository) FindByDocumentAndUser(ctx context.Context, docID model.DocumentID, userID model.UserID) (*model.PermissionGrant, error) {
	args := m.Called(ctx, docID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PermissionGrant), args.Error(1)
}

func (m *MockPermissionRepository) UpdateLevel(ctx context.Context, docID model.DocumentID, userID model.UserID, level model.PermissionLevel) (*model.PermissionGrant, error) {
	args := m.Called(ctx, docID, userID, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PermissionGrant), args.Error(1)
}

func (m *MockPermissionRepository) Delete(ctx context.Context, docID model.DocumentID, userID model.UserID) error {
	args := m.Called(ctx, docID, userID)
	return args.Error(0)
}
