package service

import (
	"context"

	"ERPAdmin/internal/cli/api"
	"ERPAdmin/internal/cli/model"
)

// DashboardService — счётчики для главного экрана.
type DashboardService struct {
	client *api.Client
}

// NewDashboardService конструктор.
func NewDashboardService(c *api.Client) *DashboardService {
	return &DashboardService{client: c}
}

// Stats всегда возвращает пригодные для отображения счётчики: при ошибке — нулевые,
// а сама ошибка отдаётся вторым значением для предупреждения в консоли.
func (s *DashboardService) Stats(ctx context.Context) (model.DashboardStats, error) {
	st, err := s.client.DashboardStats(ctx)
	if err != nil {
		return model.DashboardStats{}, err
	}
	return st, nil
}
