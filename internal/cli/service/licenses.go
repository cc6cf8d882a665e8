package service

import (
	"context"
	"math"
	"strconv"
	"time"

	"ERPAdmin/internal/cli/api"
	"ERPAdmin/internal/cli/model"
)

// ExpiringWindow — горизонт "скоро истекает".
const ExpiringWindow = 30 * 24 * time.Hour

// LicenseFilter — фильтр списка лицензий в консоли. Expiring не поддерживается
// сервером и досчитывается на клиенте поверх active.
type LicenseFilter string

const (
	LicenseFilterAll      LicenseFilter = "all"
	LicenseFilterActive   LicenseFilter = "active"
	LicenseFilterExpiring LicenseFilter = "expiring"
	LicenseFilterExpired  LicenseFilter = "expired"
)

// ServerStatus переводит фильтр консоли в параметр status сервера.
func (f LicenseFilter) ServerStatus() model.LicenseStatus {
	switch f {
	case LicenseFilterActive, LicenseFilterExpiring:
		return model.LicenseStatusActive
	case LicenseFilterExpired:
		return model.LicenseStatusExpired
	default:
		return model.LicenseStatusAll
	}
}

// LicenseBadge — классификация лицензии для отображения.
type LicenseBadge string

const (
	BadgeInactive LicenseBadge = "inactive"
	BadgeExpired  LicenseBadge = "expired"
	BadgeExpiring LicenseBadge = "expiring"
	BadgeActive   LicenseBadge = "active"
)

// Label возвращает подпись бейджа; days используется только для BadgeExpiring.
func (b LicenseBadge) Label(days int) string {
	switch b {
	case BadgeInactive:
		return "Inactive"
	case BadgeExpired:
		return "Expired"
	case BadgeExpiring:
		return "Expiring in " + strconv.Itoa(days) + "d"
	default:
		return "Active"
	}
}

// DaysRemaining — число дней до expiresAt с округлением вверх; отрицательное для истёкших.
func DaysRemaining(expiresAt string, now time.Time) (int, error) {
	exp, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return 0, err
	}
	days := math.Ceil(exp.Sub(now).Hours() / 24)
	if days == 0 {
		// -0 после ceil
		return 0, nil
	}
	return int(days), nil
}

// Badge классифицирует лицензию. Нечитаемая дата истечения считается истёкшей.
func Badge(l model.License, now time.Time) (LicenseBadge, int) {
	if !l.IsActive {
		return BadgeInactive, 0
	}
	days, err := DaysRemaining(l.ExpiresAt, now)
	switch {
	case err != nil || days <= 0:
		return BadgeExpired, days
	case time.Duration(days)*24*time.Hour <= ExpiringWindow:
		return BadgeExpiring, days
	default:
		return BadgeActive, days
	}
}

// FilterExpiring оставляет лицензии, истекающие в (now, now+ExpiringWindow].
func FilterExpiring(ls []model.License, now time.Time) []model.License {
	limit := now.Add(ExpiringWindow)
	out := make([]model.License, 0, len(ls))
	for _, l := range ls {
		exp, err := time.Parse(time.RFC3339, l.ExpiresAt)
		if err != nil {
			continue
		}
		if exp.After(now) && !exp.After(limit) {
			out = append(out, l)
		}
	}
	return out
}

// LicenseService — выборки лицензий с фильтрами консоли.
type LicenseService struct {
	client *api.Client
	now    func() time.Time
}

// NewLicenseService конструктор. now == nil означает time.Now.
func NewLicenseService(c *api.Client, now func() time.Time) *LicenseService {
	if now == nil {
		now = time.Now
	}
	return &LicenseService{client: c, now: now}
}

// List возвращает страницу лицензий. Для LicenseFilterExpiring элементы страницы
// дополнительно фильтруются, метаданные страницы остаются серверными.
func (s *LicenseService) List(ctx context.Context, f LicenseFilter, tenantID string, page, pageSize int) (model.Page[model.License], error) {
	p, err := s.client.ListLicenses(ctx, api.LicenseQuery{
		Page:     page,
		PageSize: pageSize,
		TenantID: tenantID,
		Status:   f.ServerStatus(),
	})
	if err != nil {
		return model.Page[model.License]{}, err
	}
	if f == LicenseFilterExpiring {
		p.Items = FilterExpiring(p.Items, s.now())
	}
	return p, nil
}
