package utils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gossipserver/gossip"
	"gossipserver/gossip/session"
	"gossipserver/gossip/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func putSession(t *testing.T, s *store.MemoryStore, id string, updated time.Time, status gossip.Status) {
	t.Helper()
	st, err := gossip.NewEngine(gossip.DefaultRules(), gossip.WithSeed(1)).Start(4, nil)
	require.NoError(t, err)
	st.Status = status
	require.NoError(t, s.Put(context.Background(), &session.Record{SessionID: id, UserID: 1, State: st, UpdatedAt: updated}))
}

func newService(s *store.MemoryStore, now time.Time) *session.Service {
	engine := gossip.NewEngine(gossip.DefaultRules(), gossip.WithSeed(1))
	return session.NewService(engine, s, zap.NewNop(), session.WithClock(func() time.Time { return now }))
}

func TestAbandonIdleSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	s := store.NewMemoryStore()
	svc := newService(s, now)
	putSession(t, s, "idle", now.Add(-3*time.Hour), gossip.StatusActive)
	putSession(t, s, "busy", now.Add(-time.Minute), gossip.StatusActive)

	ids := AbandonIdleSessions(ctx, svc, s, now.Add(-2*time.Hour), zap.NewNop())
	assert.Equal(t, []string{"idle"}, ids)

	rec, err := s.Get(ctx, "idle")
	require.NoError(t, err)
	assert.Equal(t, gossip.StatusAbandoned, rec.State.Status)
	rec, err = s.Get(ctx, "busy")
	require.NoError(t, err)
	assert.Equal(t, gossip.StatusActive, rec.State.Status)

	n := PurgeFinishedSessions(ctx, s, now, zap.NewNop())
	assert.Equal(t, int64(1), n)
	_, err = s.Get(ctx, "idle")
	assert.True(t, errors.Is(err, gossip.ErrNotFound))
}

type failingReaper struct{}

func (failingReaper) IdleSessions(context.Context, time.Time) ([]string, error) {
	return nil, errors.New("connection refused")
}

func (failingReaper) PurgeFinished(context.Context, time.Time) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestReaperErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core)

	svc := newService(store.NewMemoryStore(), time.Now())
	assert.Nil(t, AbandonIdleSessions(context.Background(), svc, failingReaper{}, time.Now(), logger))
	assert.Zero(t, PurgeFinishedSessions(context.Background(), failingReaper{}, time.Now(), logger))
	assert.Equal(t, 2, logs.Len())
}

func TestCronCleanerSchedulesJobs(t *testing.T) {
	s := store.NewMemoryStore()
	c, err := CronCleaner(newService(s, time.Now()), s, time.Hour, zap.NewNop())
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 2)
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusTeapot, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/ping", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
}
