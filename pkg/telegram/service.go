package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"felix-hub/pkg/metrics"
)

var ErrNotConfigured = errors.New("токен Telegram-бота не установлен")

const breakerName = "telegram"

type ServiceInterface interface {
	// SendMessage отправляет HTML-сообщение с повторными попытками.
	SendMessage(ctx context.Context, chatID int64, text string) error
	Enabled() bool
	Breakers() []BreakerStatus
}

type Options struct {
	MaxRetries uint64
	RetryDelay time.Duration
	// ServerURL переопределяет адрес Bot API (для тестов).
	ServerURL string

	BreakerThreshold uint32
	BreakerTimeout   time.Duration
}

// BreakerStatus - снимок предохранителя для /api/metrics.
type BreakerStatus struct {
	Name                string     `json:"name"`
	State               string     `json:"state"`
	Requests            uint32     `json:"requests"`
	TotalSuccesses      uint32     `json:"success_count"`
	TotalFailures       uint32     `json:"failure_count"`
	ConsecutiveFailures uint32     `json:"consecutive_failures"`
	LastFailureAt       *time.Time `json:"last_failure_time"`
}

type Service struct {
	api     *bot.Bot
	opts    Options
	breaker *gobreaker.CircuitBreaker
	// unix nano последнего сбоя, 0 - сбоев не было
	lastFailure atomic.Int64
	logger      *zap.Logger
}

func NewService(botToken string, opts Options, logger *zap.Logger) (ServiceInterface, error) {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.BreakerThreshold == 0 {
		opts.BreakerThreshold = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = time.Minute
	}
	s := &Service{opts: opts, logger: logger}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isRecipientError(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("Telegram: предохранитель сменил состояние",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	if botToken == "" {
		logger.Warn("Telegram: токен не задан, уведомления отключены")
		return s, nil
	}

	botOpts := []bot.Option{bot.WithSkipGetMe()}
	if opts.ServerURL != "" {
		botOpts = append(botOpts, bot.WithServerURL(opts.ServerURL))
	}

	api, err := bot.New(botToken, botOpts...)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать Telegram-бота: %w", err)
	}
	s.api = api
	return s, nil
}

func (s *Service) Enabled() bool {
	return s.api != nil
}

func (s *Service) Breakers() []BreakerStatus {
	counts := s.breaker.Counts()
	status := BreakerStatus{
		Name:                s.breaker.Name(),
		State:               s.breaker.State().String(),
		Requests:            counts.Requests,
		TotalSuccesses:      counts.TotalSuccesses,
		TotalFailures:       counts.TotalFailures,
		ConsecutiveFailures: counts.ConsecutiveFailures,
	}
	if ns := s.lastFailure.Load(); ns != 0 {
		at := time.Unix(0, ns).UTC()
		status.LastFailureAt = &at
	}
	return []BreakerStatus{status}
}

// SendMessage: повторы идут внутри одного вызова предохранителя,
// при открытом предохранителе Bot API не вызывается вовсе.
func (s *Service) SendMessage(ctx context.Context, chatID int64, text string) error {
	if s.api == nil {
		return ErrNotConfigured
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		err := s.sendWithRetry(ctx, chatID, text)
		if err != nil && !isRecipientError(err) {
			s.lastFailure.Store(time.Now().UnixNano())
		}
		return nil, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("Telegram временно недоступен: %w", err)
	}
	return err
}

func (s *Service) sendWithRetry(ctx context.Context, chatID int64, text string) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.opts.RetryDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0

	retries := s.opts.MaxRetries
	if retries > 0 {
		retries--
	}
	wait := &retryAfterBackOff{BackOff: backoff.WithMaxRetries(policy, retries)}

	attempt := 0
	operation := func() error {
		attempt++
		_, err := s.api.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      text,
			ParseMode: models.ParseModeHTML,
		})
		if err == nil {
			return nil
		}
		s.logger.Warn("Telegram: ошибка отправки",
			zap.Int64("chat_id", chatID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		var tooMany *bot.TooManyRequestsError
		if errors.As(err, &tooMany) && tooMany.RetryAfter > 0 {
			wait.hint = time.Duration(tooMany.RetryAfter) * time.Second
		}
		if isRecipientError(err) || errors.Is(err, bot.ErrorUnauthorized) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(wait, ctx))
}

// isRecipientError: ошибка конкретного чата или сообщения, повтор её не исправит
// и на здоровье Bot API она не указывает.
func isRecipientError(err error) bool {
	var migrate *bot.MigrateError
	return errors.Is(err, bot.ErrorForbidden) ||
		errors.Is(err, bot.ErrorBadRequest) ||
		errors.As(err, &migrate)
}

// retryAfterBackOff подменяет очередную паузу значением retry_after из ответа 429.
type retryAfterBackOff struct {
	backoff.BackOff
	hint time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if b.hint > 0 {
		next, b.hint = b.hint, 0
	}
	return next
}

// Escape экранирует пользовательский текст для parse_mode=HTML.
func Escape(text string) string {
	return html.EscapeString(text)
}
