package http

import (
	"context"
	"sync"

	"github.com/AlibekovAA/usersapp/internal/user/domain"
)

type mockRepo struct {
	mu sync.Mutex

	initializeFunc func(ctx context.Context) error
	createFunc     func(ctx context.Context, fields domain.Fields) error
	readFunc       func(ctx context.Context, filter domain.ReadFilter) ([]domain.User, error)
	updateFunc     func(ctx context.Context, fields domain.Fields) (int64, error)
	deleteFunc     func(ctx context.Context, fields domain.Fields) error

	calls []string
}

func (m *mockRepo) record(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

func (m *mockRepo) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockRepo) Initialize(ctx context.Context) error {
	m.record("initialize")
	if m.initializeFunc != nil {
		return m.initializeFunc(ctx)
	}
	return nil
}

func (m *mockRepo) Create(ctx context.Context, fields domain.Fields) error {
	m.record("create")
	if m.createFunc != nil {
		return m.createFunc(ctx, fields)
	}
	return nil
}

func (m *mockRepo) Read(ctx context.Context, filter domain.ReadFilter) ([]domain.User, error) {
	m.record("read")
	if m.readFunc != nil {
		return m.readFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockRepo) Update(ctx context.Context, fields domain.Fields) (int64, error) {
	m.record("update")
	if m.updateFunc != nil {
		return m.updateFunc(ctx, fields)
	}
	return 1, nil
}

func (m *mockRepo) Delete(ctx context.Context, fields domain.Fields) error {
	m.record("delete")
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, fields)
	}
	return nil
}
