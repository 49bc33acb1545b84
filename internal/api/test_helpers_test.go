package api

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/Vamsibolem10/Mini-Researcher/internal/config"
	"github.com/Vamsibolem10/Mini-Researcher/internal/events"
	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
	"github.com/Vamsibolem10/Mini-Researcher/internal/session"
	"github.com/Vamsibolem10/Mini-Researcher/internal/store"
)

type MockSession struct {
	mock.Mock
}

func (m *MockSession) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSession) Snapshot() session.Snapshot {
	args := m.Called()
	return args.Get(0).(session.Snapshot)
}

func (m *MockSession) Submit(ctx context.Context, req research.Request) (session.Snapshot, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(session.Snapshot), args.Error(1)
}

func (m *MockSession) SubmitAnswers(ctx context.Context, answers []string) (session.Snapshot, error) {
	args := m.Called(ctx, answers)
	return args.Get(0).(session.Snapshot), args.Error(1)
}

func (m *MockSession) Reset() (session.Snapshot, error) {
	args := m.Called()
	return args.Get(0).(session.Snapshot), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveRecord(ctx context.Context, record store.ResearchRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockStore) GetRecord(ctx context.Context, recordID string) (*store.ResearchRecord, error) {
	args := m.Called(ctx, recordID)
	if value := args.Get(0); value != nil {
		return value.(*store.ResearchRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) ListRecords(ctx context.Context, limit int) ([]store.ResearchRecord, error) {
	args := m.Called(ctx, limit)
	var result []store.ResearchRecord
	if value := args.Get(0); value != nil {
		result = value.([]store.ResearchRecord)
	}
	return result, args.Error(1)
}

func (m *MockStore) DeleteRecord(ctx context.Context, recordID string) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) Subscribe(ctx context.Context, sessionID string) <-chan events.SessionEvent {
	args := m.Called(ctx, sessionID)
	if value := args.Get(0); value != nil {
		if ch, ok := value.(chan events.SessionEvent); ok {
			return ch
		}
		if ch, ok := value.(<-chan events.SessionEvent); ok {
			return ch
		}
	}
	return nil
}

type MockProber struct {
	mock.Mock
}

func (m *MockProber) Probe(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newTestServer(t *testing.T, sess Session, store store.Store, broker Broker, remote Prober, cfg config.Config) *httptest.Server {
	t.Helper()
	server := NewServer(sess, store, broker, remote, cfg, nil)
	return httptest.NewServer(server.Router())
}
