package services

import (
	"felix-hub/internal/dto"
	"felix-hub/internal/entities"
)

func categoryToDTO(c entities.Category) dto.CategoryDTO {
	return dto.CategoryDTO{
		ID:        c.ID,
		NameRu:    c.NameRu,
		NameHe:    c.NameHe,
		NameEn:    c.NameEn,
		Icon:      c.Icon,
		SortOrder: c.SortOrder,
		CreatedAt: c.CreatedAt,
	}
}

func partToDTO(p entities.Part) dto.PartDTO {
	return dto.PartDTO{
		ID:         p.ID,
		CategoryID: p.CategoryID,
		NameRu:     p.NameRu,
		NameHe:     p.NameHe,
		NameEn:     p.NameEn,
		IsCommon:   p.IsCommon,
		SortOrder:  p.SortOrder,
		CreatedAt:  p.CreatedAt,
	}
}

func mechanicToDTO(m entities.Mechanic) dto.MechanicDTO {
	return dto.MechanicDTO{
		ID:         m.ID,
		Email:      m.Email,
		Name:       m.Name,
		Phone:      m.Phone,
		Specialty:  m.Specialty,
		TelegramID: m.TelegramID,
		Active:     m.Active,
		CreatedAt:  m.CreatedAt,
	}
}

func orderToDTO(o entities.Order) dto.OrderDTO {
	parts := make([]dto.OrderPartDTO, 0, len(o.SelectedParts))
	for _, p := range o.SelectedParts {
		parts = append(parts, dto.OrderPartDTO(p))
	}
	return dto.OrderDTO{
		ID:                   o.ID,
		MechanicName:         o.MechanicName,
		TelegramID:           o.TelegramID,
		Category:             o.Category,
		CategoryID:           o.CategoryID,
		VIN:                  o.VIN,
		CarNumber:            o.CarNumber,
		SelectedParts:        parts,
		PartType:             o.PartType,
		IsOriginal:           o.IsOriginal,
		PhotoURL:             o.PhotoURL,
		Status:               o.Status,
		Printed:              o.Printed,
		Language:             o.Language,
		AssignedMechanicID:   o.AssignedMechanicID,
		AssignedMechanicName: o.AssignedMechanicName,
		WorkStatus:           o.WorkStatus,
		CommentsCount:        o.CommentsCount,
		TotalTimeMinutes:     o.TotalTimeMinutes,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

func ordersToDTO(orders []entities.Order) []dto.OrderDTO {
	out := make([]dto.OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderToDTO(o))
	}
	return out
}

func commentToDTO(c entities.OrderComment) dto.CommentDTO {
	return dto.CommentDTO{
		ID:           c.ID,
		OrderID:      c.OrderID,
		MechanicID:   c.MechanicID,
		MechanicName: c.MechanicName,
		Comment:      c.Comment,
		CreatedAt:    c.CreatedAt,
	}
}

func timeLogToDTO(l entities.TimeLog) dto.TimeLogDTO {
	return dto.TimeLogDTO{
		ID:              l.ID,
		OrderID:         l.OrderID,
		MechanicID:      l.MechanicID,
		StartedAt:       l.StartedAt,
		EndedAt:         l.EndedAt,
		DurationMinutes: l.DurationMinutes,
		Notes:           l.Notes,
		IsActive:        l.IsActive,
		CreatedAt:       l.CreatedAt,
	}
}

func timeLogsToDTO(logs []entities.TimeLog) []dto.TimeLogDTO {
	out := make([]dto.TimeLogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, timeLogToDTO(l))
	}
	return out
}

func customWorkToDTO(w entities.CustomWorkItem) dto.CustomWorkDTO {
	return dto.CustomWorkDTO{
		ID:                   w.ID,
		OrderID:              w.OrderID,
		Name:                 w.Name,
		Description:          w.Description,
		Price:                w.Price,
		EstimatedTimeMinutes: w.EstimatedTimeMinutes,
		AddedByMechanicID:    w.AddedByMechanicID,
		CreatedAt:            w.CreatedAt,
	}
}

func customPartToDTO(p entities.CustomPartItem) dto.CustomPartDTO {
	return dto.CustomPartDTO{
		ID:                p.ID,
		OrderID:           p.OrderID,
		Name:              p.Name,
		PartNumber:        p.PartNumber,
		Price:             p.Price,
		Quantity:          p.Quantity,
		AddedByMechanicID: p.AddedByMechanicID,
		CreatedAt:         p.CreatedAt,
	}
}

func historyToDTO(h entities.OrderHistory) dto.OrderHistoryDTO {
	return dto.OrderHistoryDTO{
		ID:        h.ID,
		Event:     h.Event,
		OldValue:  h.OldValue,
		NewValue:  h.NewValue,
		Actor:     h.Actor,
		CreatedAt: h.CreatedAt,
	}
}
