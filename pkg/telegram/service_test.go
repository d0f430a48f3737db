package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const okResponse = `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":100,"type":"private"}}}`

const (
	serverErrorResponse = `{"ok":false,"error_code":500,"description":"Internal Server Error"}`
	blockedResponse     = `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`
	chatNotFound        = `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`
	floodResponse       = `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 1","parameters":{"retry_after":1}}`
)

// scriptedBotAPI отвечает replies по порядку, дальше - успехом.
func scriptedBotAPI(t *testing.T, replies ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/sendMessage"))
		n := int(calls.Add(1))
		w.Header().Set("Content-Type", "application/json")
		if n <= len(replies) {
			_, _ = w.Write([]byte(replies[n-1]))
			return
		}
		_, _ = w.Write([]byte(okResponse))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func fakeBotAPI(t *testing.T, failures int) (*httptest.Server, *atomic.Int32) {
	replies := make([]string, failures)
	for i := range replies {
		replies[i] = serverErrorResponse
	}
	return scriptedBotAPI(t, replies...)
}

func TestService_RetriesUntilSuccess(t *testing.T) {
	srv, calls := fakeBotAPI(t, 2)
	svc, err := NewService("123:token", Options{MaxRetries: 3, RetryDelay: time.Millisecond, ServerURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, svc.SendMessage(context.Background(), 100, "<b>Заказ №1</b>"))
	assert.Equal(t, int32(3), calls.Load())
}

func TestService_GivesUpAfterMaxRetries(t *testing.T) {
	srv, calls := fakeBotAPI(t, 10)
	svc, err := NewService("123:token", Options{MaxRetries: 3, RetryDelay: time.Millisecond, ServerURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	assert.Error(t, svc.SendMessage(context.Background(), 100, "text"))
	assert.Equal(t, int32(3), calls.Load())
}

func TestService_DoesNotRetryRecipientErrors(t *testing.T) {
	testCases := []struct {
		name    string
		reply   string
		wantErr error
	}{
		{"бот заблокирован", blockedResponse, bot.ErrorForbidden},
		{"чат не найден", chatNotFound, bot.ErrorBadRequest},
		{"неверный токен", `{"ok":false,"error_code":401,"description":"Unauthorized"}`, bot.ErrorUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, calls := scriptedBotAPI(t, tc.reply, tc.reply, tc.reply)
			svc, err := NewService("123:token", Options{MaxRetries: 3, RetryDelay: time.Millisecond, ServerURL: srv.URL}, zap.NewNop())
			require.NoError(t, err)

			err = svc.SendMessage(context.Background(), 100, "text")
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestService_WaitsRetryAfterOnFlood(t *testing.T) {
	srv, calls := scriptedBotAPI(t, floodResponse)
	svc, err := NewService("123:token", Options{MaxRetries: 3, RetryDelay: time.Millisecond, ServerURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, svc.SendMessage(context.Background(), 100, "text"))
	assert.Equal(t, int32(2), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestService_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv, calls := fakeBotAPI(t, 100)
	svc, err := NewService("123:token", Options{
		MaxRetries:       1,
		RetryDelay:       time.Millisecond,
		ServerURL:        srv.URL,
		BreakerThreshold: 2,
		BreakerTimeout:   time.Hour,
	}, zap.NewNop())
	require.NoError(t, err)

	require.Error(t, svc.SendMessage(context.Background(), 100, "1"))
	assert.Equal(t, "closed", svc.Breakers()[0].State)
	require.Error(t, svc.SendMessage(context.Background(), 100, "2"))

	status := svc.Breakers()[0]
	assert.Equal(t, "telegram", status.Name)
	assert.Equal(t, "open", status.State)
	assert.NotNil(t, status.LastFailureAt)

	err = svc.SendMessage(context.Background(), 100, "3")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load(), "при открытом предохранителе запросов нет")
}

func TestService_BlockedChatDoesNotTripBreaker(t *testing.T) {
	srv, calls := scriptedBotAPI(t, blockedResponse, blockedResponse, blockedResponse)
	svc, err := NewService("123:token", Options{
		MaxRetries:       3,
		RetryDelay:       time.Millisecond,
		ServerURL:        srv.URL,
		BreakerThreshold: 1,
	}, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, svc.SendMessage(context.Background(), 100, "text"), bot.ErrorForbidden)
	}
	status := svc.Breakers()[0]
	assert.Equal(t, "closed", status.State)
	assert.Nil(t, status.LastFailureAt)
	assert.Equal(t, int32(3), calls.Load())

	require.NoError(t, svc.SendMessage(context.Background(), 100, "text"))
}

func TestService_DisabledWithoutToken(t *testing.T) {
	svc, err := NewService("", Options{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, svc.Enabled())
	assert.ErrorIs(t, svc.SendMessage(context.Background(), 1, "x"), ErrNotConfigured)
	assert.Equal(t, "closed", svc.Breakers()[0].State)
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;A&amp;B&lt;/b&gt;", Escape("<b>A&B</b>"))
}
