package service

import (
	"time"

	"ERPAdmin/internal/cli/model"
)

// LicenseExpiringSoon: у подписчика есть лицензия, и до её истечения от 1 до 30 дней.
func LicenseExpiringSoon(s model.Subscriber, now time.Time) bool {
	if s.License == nil {
		return false
	}
	days, err := DaysRemaining(s.License.ExpiresAt, now)
	return err == nil && days > 0 && time.Duration(days)*24*time.Hour <= ExpiringWindow
}

// LicenseExpired: лицензии нет или срок её действия уже прошёл.
func LicenseExpired(s model.Subscriber, now time.Time) bool {
	if s.License == nil {
		return true
	}
	exp, err := time.Parse(time.RFC3339, s.License.ExpiresAt)
	if err != nil {
		return true
	}
	return exp.Before(now)
}
