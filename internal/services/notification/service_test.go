package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockNotifier struct {
	mock.Mock
	mu sync.Mutex
}

func (m *mockNotifier) Notify(ctx context.Context, userID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(userID, message)
	return args.Error(0)
}

func TestAsync_DeliversAndSwallowsErrors(t *testing.T) {
	next := &mockNotifier{}
	next.On("Notify", "u1", "hello").Return(nil).Once()
	next.On("Notify", "u2", "boom").Return(errors.New("down")).Once()

	a := NewAsync(next, zerolog.Nop(), time.Second)
	assert.NoError(t, a.Notify(context.Background(), "u1", "hello"))
	assert.NoError(t, a.Notify(context.Background(), "u2", "boom"))
	a.Wait()

	next.AssertExpectations(t)
}

func TestAsync_IgnoresCancelledCallerContext(t *testing.T) {
	next := &mockNotifier{}
	next.On("Notify", "u1", "late").Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAsync(next, zerolog.Nop(), time.Second)
	assert.NoError(t, a.Notify(ctx, "u1", "late"))
	a.Wait()
	next.AssertExpectations(t)
}

func TestRedisPublisher_ReportsUnreachableServer(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	err := NewRedisPublisher(rdb).Notify(context.Background(), "u1", "hello")
	assert.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, NewLogNotifier(zerolog.Nop()).Notify(context.Background(), "u1", "hi"))
}
