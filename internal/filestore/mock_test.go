package filestore

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Provider() Provider {
	return m.Called().Get(0).(Provider)
}

func (m *MockClient) Ping(ctx context.Context, bucket string) error {
	return m.Called(ctx, bucket).Error(0)
}

func (m *MockClient) Close() error {
	return m.Called().Error(0)
}
