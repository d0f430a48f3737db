package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/entities"
	"felix-hub/internal/repositories"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/types"
	"felix-hub/pkg/utils"
)

type MechanicServiceInterface interface {
	GetMechanics(ctx context.Context, filter types.Filter) ([]dto.MechanicDTO, error)
	FindMechanic(ctx context.Context, id uint64) (*dto.MechanicDTO, error)
	CreateMechanic(ctx context.Context, data dto.CreateMechanicDTO) (*dto.MechanicDTO, error)
	UpdateMechanic(ctx context.Context, id uint64, data dto.UpdateMechanicDTO, rawBody []byte) (*dto.MechanicDTO, error)
	DeleteMechanic(ctx context.Context, id uint64) error
	UpdateProfile(ctx context.Context, id uint64, data dto.UpdateProfileDTO, rawBody []byte) (*dto.MechanicDTO, error)
	ChangePassword(ctx context.Context, id uint64, data dto.ChangePasswordDTO) error
}

type MechanicService struct {
	txManager    repositories.TxManagerInterface
	mechanicRepo repositories.MechanicRepositoryInterface
	logger       *zap.Logger
}

func NewMechanicService(
	txManager repositories.TxManagerInterface,
	mechanicRepo repositories.MechanicRepositoryInterface,
	logger *zap.Logger,
) MechanicServiceInterface {
	return &MechanicService{
		txManager:    txManager,
		mechanicRepo: mechanicRepo,
		logger:       logger,
	}
}

func (s *MechanicService) GetMechanics(ctx context.Context, filter types.Filter) ([]dto.MechanicDTO, error) {
	if filter.Filter == nil {
		filter.Filter = make(map[string]interface{})
	}
	if raw, ok := filter.Filter["active"].(string); ok {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperrors.NewBadRequestError("active должен быть true или false")
		}
		filter.Filter["active"] = active
	}

	mechanics, err := s.mechanicRepo.GetMechanics(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MechanicDTO, 0, len(mechanics))
	for _, m := range mechanics {
		out = append(out, mechanicToDTO(m))
	}
	return out, nil
}

func (s *MechanicService) FindMechanic(ctx context.Context, id uint64) (*dto.MechanicDTO, error) {
	mechanic, err := s.mechanicRepo.FindMechanic(ctx, id)
	if err != nil {
		return nil, err
	}
	out := mechanicToDTO(*mechanic)
	return &out, nil
}

func (s *MechanicService) CreateMechanic(ctx context.Context, data dto.CreateMechanicDTO) (*dto.MechanicDTO, error) {
	hash, err := utils.HashPassword(data.Password)
	if err != nil {
		return nil, err
	}

	mechanic := entities.Mechanic{
		Email:        strings.ToLower(strings.TrimSpace(data.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(data.Name),
		Phone:        utils.EmptyToNil(data.Phone),
		Specialty:    utils.EmptyToNil(data.Specialty),
		TelegramID:   utils.EmptyToNil(data.TelegramID),
		Active:       true,
	}
	if data.Active != nil {
		mechanic.Active = *data.Active
	}

	var id uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		id, err = s.mechanicRepo.CreateMechanic(ctx, tx, mechanic)
		return err
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewHttpError(409, "Механик с таким email уже существует", err, nil)
		}
		return nil, err
	}

	s.logger.Info("Создан механик", zap.Uint64("id", id), zap.String("email", mechanic.Email))
	return s.FindMechanic(ctx, id)
}

func (s *MechanicService) UpdateMechanic(ctx context.Context, id uint64, data dto.UpdateMechanicDTO, rawBody []byte) (*dto.MechanicDTO, error) {
	mechanic, err := s.mechanicRepo.FindMechanic(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := utils.ApplyPatch(mechanic, &data, rawBody)
	if err != nil {
		return nil, apperrors.NewHttpError(400, "Невалидный JSON", err, nil)
	}
	mechanic.Email = strings.ToLower(strings.TrimSpace(mechanic.Email))
	mechanic.Name = strings.TrimSpace(mechanic.Name)
	if mechanic.Email == "" || mechanic.Name == "" {
		return nil, apperrors.NewBadRequestError("email и name не могут быть пустыми")
	}

	var newHash string
	if data.Password.Valid && data.Password.String != "" {
		if newHash, err = utils.HashPassword(data.Password.String); err != nil {
			return nil, err
		}
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.mechanicRepo.UpdateMechanic(ctx, tx, *mechanic); err != nil {
			return err
		}
		if newHash != "" {
			return s.mechanicRepo.UpdatePassword(ctx, tx, id, newHash)
		}
		return nil
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewHttpError(409, "Механик с таким email уже существует", err, nil)
		}
		return nil, err
	}

	s.logger.Info("Обновлён механик", zap.Uint64("id", id), zap.Strings("fields", changed), zap.Bool("password", newHash != ""))
	return s.FindMechanic(ctx, id)
}

// DeleteMechanic: заказы и логи остаются, ссылки обнуляются на уровне БД.
func (s *MechanicService) DeleteMechanic(ctx context.Context, id uint64) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.mechanicRepo.DeleteMechanic(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Удалён механик", zap.Uint64("id", id))
	return nil
}

func (s *MechanicService) UpdateProfile(ctx context.Context, id uint64, data dto.UpdateProfileDTO, rawBody []byte) (*dto.MechanicDTO, error) {
	mechanic, err := s.mechanicRepo.FindMechanic(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := utils.ApplyPatch(mechanic, &data, rawBody); err != nil {
		return nil, apperrors.NewHttpError(400, "Невалидный JSON", err, nil)
	}
	mechanic.Phone = utils.EmptyToNil(mechanic.Phone)
	mechanic.Specialty = utils.EmptyToNil(mechanic.Specialty)

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.mechanicRepo.UpdateMechanic(ctx, tx, *mechanic)
	})
	if err != nil {
		return nil, err
	}
	out := mechanicToDTO(*mechanic)
	return &out, nil
}

func (s *MechanicService) ChangePassword(ctx context.Context, id uint64, data dto.ChangePasswordDTO) error {
	mechanic, err := s.mechanicRepo.FindMechanic(ctx, id)
	if err != nil {
		return err
	}
	if err := utils.ComparePasswords(mechanic.PasswordHash, data.CurrentPassword); err != nil {
		return apperrors.ErrWrongPassword
	}
	hash, err := utils.HashPassword(data.NewPassword)
	if err != nil {
		return err
	}
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.mechanicRepo.UpdatePassword(ctx, tx, id, hash)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Механик сменил пароль", zap.Uint64("id", id))
	return nil
}
