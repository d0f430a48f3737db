package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/entities"
	"felix-hub/internal/repositories"
	"felix-hub/pkg/config"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/metrics"
	"felix-hub/pkg/service"
	"felix-hub/pkg/utils"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.LoginResponseDTO, error)
	GetMechanicByID(ctx context.Context, mechanicID uint64) (*entities.Mechanic, error)
}

type AuthService struct {
	mechanicRepo repositories.MechanicRepositoryInterface
	cacheRepo    repositories.CacheRepositoryInterface
	jwtService   service.JWTService
	logger       *zap.Logger
	cfg          config.AuthConfig

	comparePasswords func(hash, plain string) error
}

func NewAuthService(
	mechanicRepo repositories.MechanicRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	logger *zap.Logger,
	cfg config.AuthConfig,
) AuthServiceInterface {
	return &AuthService{
		mechanicRepo: mechanicRepo,
		cacheRepo:    cacheRepo,
		jwtService:   jwtService,
		logger:       logger,
		cfg:          cfg,

		comparePasswords: utils.ComparePasswords,
	}
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error) {
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	logger := s.logger.With(zap.String("email", email))

	if err := s.checkLockout(ctx, email); err != nil {
		metrics.LoginAttempts.WithLabelValues("locked").Inc()
		logger.Warn("Вход заблокирован")
		return nil, err
	}

	mechanic, err := s.mechanicRepo.FindByEmail(ctx, email)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrMechanicNotFound) {
			return nil, err
		}
		_ = s.comparePasswords(utils.DummyPasswordHash(), payload.Password)
		s.handleFailedLoginAttempt(ctx, email)
		metrics.LoginAttempts.WithLabelValues("failed").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.comparePasswords(mechanic.PasswordHash, payload.Password); err != nil {
		s.handleFailedLoginAttempt(ctx, email)
		metrics.LoginAttempts.WithLabelValues("failed").Inc()
		logger.Warn("Неверный пароль")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !mechanic.Active {
		metrics.LoginAttempts.WithLabelValues("inactive").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	s.resetLoginAttempts(ctx, email)
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	logger.Info("Механик вошёл", zap.Uint64("mechanic_id", mechanic.ID))
	return s.issueTokens(mechanic)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.LoginResponseDTO, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}
	mechanic, err := s.GetMechanicByID(ctx, claims.MechanicID)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(mechanic)
}

// GetMechanicByID возвращает только активного механика, иначе 401.
func (s *AuthService) GetMechanicByID(ctx context.Context, mechanicID uint64) (*entities.Mechanic, error) {
	mechanic, err := s.mechanicRepo.FindMechanic(ctx, mechanicID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrMechanicNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if !mechanic.Active {
		s.logger.Warn("Токен неактивного механика", zap.Uint64("mechanic_id", mechanicID))
		return nil, apperrors.ErrUnauthorized
	}
	return mechanic, nil
}

func (s *AuthService) issueTokens(mechanic *entities.Mechanic) (*dto.LoginResponseDTO, error) {
	access, refresh, err := s.jwtService.GenerateTokens(mechanic.ID)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponseDTO{
		Token:        access,
		RefreshToken: refresh,
		Mechanic:     mechanicToDTO(*mechanic),
	}, nil
}

func (s *AuthService) checkLockout(ctx context.Context, email string) error {
	if s.cacheRepo == nil {
		return nil
	}
	lockoutKey := fmt.Sprintf("lockout:%s", email)

	// ключ есть - аккаунт заблокирован
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, email string) {
	if s.cacheRepo == nil {
		return
	}
	attemptsKey := fmt.Sprintf("login_attempts:%s", email)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("Не удалось учесть неудачный вход", zap.Error(err))
		return
	}
	if attempts == 1 {
		_, _ = s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf("lockout:%s", email)
		_ = s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, email string) {
	if s.cacheRepo == nil {
		return
	}
	_ = s.cacheRepo.Del(ctx, fmt.Sprintf("login_attempts:%s", email), fmt.Sprintf("lockout:%s", email))
}
