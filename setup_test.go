package schema_test

import (
	"context"
	"sync"

	"github.com/tinywasm/schema"
)

// MockExecutor captures submitted schemas.
type MockExecutor struct {
	mu        sync.Mutex
	Submitted []*schema.Schema
	ReturnErr error
	Block     chan struct{}
}

func (m *MockExecutor) Execute(ctx context.Context, s *schema.Schema) error {
	if m.Block != nil {
		<-m.Block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Submitted = append(m.Submitted, s)
	return m.ReturnErr
}

func (m *MockExecutor) Last() *schema.Schema {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Submitted) == 0 {
		return nil
	}
	return m.Submitted[len(m.Submitted)-1]
}

func (m *MockExecutor) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Submitted)
}

// MockClosingExecutor records Close calls.
type MockClosingExecutor struct {
	MockExecutor
	Closed   bool
	CloseErr error
}

func (m *MockClosingExecutor) Close() error {
	m.Closed = true
	return m.CloseErr
}

func newDB() (*schema.DB, *MockExecutor) {
	exec := &MockExecutor{}
	return schema.New(exec), exec
}
