package fakeapi

import (
	"time"

	"ERPAdmin/internal/cli/model"
)

// Учётные данные администратора из Sample.
const (
	SampleAdminEmail    = "admin@erp.local"
	SampleAdminPassword = "admin123"
)

// SampleAdmin — администратор платформы из Sample.
var SampleAdmin = model.AdminUser{
	ID:         "adm-1",
	Email:      SampleAdminEmail,
	Name:       "Platform Root",
	Role:       "SUPER_ADMIN",
	Department: "Operations",
}

// Sample создаёт backend с демонстрационными данными относительно now.
func Sample(now time.Time, opts ...Option) (*Server, error) {
	s := New(append([]Option{WithClock(func() time.Time { return now })}, opts...)...)
	if err := s.AddAdmin(SampleAdminPassword, SampleAdmin); err != nil {
		return nil, err
	}
	s.Seed(func(d *Data) { *d = SampleData(now) })
	return s, nil
}

// SampleData — три тенанта, четыре подписчика и лицензии с разными сроками.
func SampleData(now time.Time) Data {
	ts := func(d time.Duration) string { return now.Add(d).UTC().Format(time.RFC3339) }
	day := 24 * time.Hour
	thisMonth := time.Date(now.Year(), now.Month(), 2, 10, 0, 0, 0, time.UTC).Format(time.RFC3339)
	lastMonth := time.Date(now.Year(), now.Month()-1, 15, 10, 0, 0, 0, time.UTC).Format(time.RFC3339)
	longAgo := time.Date(now.Year()-2, now.Month(), 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)

	lic := func(id, tier string, active bool, expires time.Duration) model.SubscriberLicense {
		return model.SubscriberLicense{ID: id, LicenseKey: "KEY-" + id, Tier: tier, MaxUsers: 10, IsActive: active, StartsAt: ts(-365 * day), ExpiresAt: ts(expires)}
	}
	licA := lic("lic-a", "L1", true, 200*day)
	licB := lic("lic-b", "L2", true, 10*day)
	licC := lic("lic-c", "L3", true, -5*day)

	return Data{
		Tenants: []model.Tenant{
			{ID: "t-acme", Name: "Acme Corp", Slug: "acme", Tier: "L1", Status: "ACTIVE", CreatedAt: thisMonth, UpdatedAt: thisMonth},
			{ID: "t-globex", Name: "Globex", Slug: "globex", Tier: "L2", Status: "ACTIVE", CreatedAt: lastMonth, UpdatedAt: lastMonth},
			{ID: "t-initech", Name: "Initech", Slug: "initech", Tier: "L3", Status: "SUSPENDED", CreatedAt: longAgo, UpdatedAt: longAgo},
		},
		Users: []model.User{
			{ID: "u-1", Email: "ann@acme.io", Name: "Ann", Role: "OWNER", TenantID: "t-acme", TenantName: "Acme Corp", Tier: "L1"},
			{ID: "u-2", Email: "bob@globex.io", Name: "Bob", Role: "MEMBER", TenantID: "t-globex", TenantName: "Globex", Tier: "L2"},
		},
		Licenses: []model.License{
			{ID: "lic-a", TenantID: "t-acme", LicenseKey: "KEY-lic-a", Tier: "L1", MaxUsers: 10, IsActive: true, StartsAt: ts(-365 * day), ExpiresAt: ts(200 * day)},
			{ID: "lic-b", TenantID: "t-globex", LicenseKey: "KEY-lic-b", Tier: "L2", MaxUsers: 50, IsActive: true, StartsAt: ts(-300 * day), ExpiresAt: ts(10 * day)},
			{ID: "lic-c", TenantID: "t-initech", LicenseKey: "KEY-lic-c", Tier: "L3", MaxUsers: 500, IsActive: true, StartsAt: ts(-400 * day), ExpiresAt: ts(-5 * day)},
			{ID: "lic-d", TenantID: "t-acme", LicenseKey: "KEY-lic-d", Tier: "L1", MaxUsers: 5, IsActive: false, StartsAt: ts(-30 * day), ExpiresAt: ts(20 * day)},
		},
		Subscribers: []model.SubscriberDetail{
			{Subscriber: model.Subscriber{ID: "s-acme", Name: "Acme Corp", Slug: "acme", Tier: model.TierL1, Status: model.SubscriberActive, CreatedAt: thisMonth, UpdatedAt: thisMonth, UserCount: 4, License: &licA}},
			{Subscriber: model.Subscriber{ID: "s-globex", Name: "Globex", Slug: "globex", Tier: model.TierL2, Status: model.SubscriberActive, CreatedAt: lastMonth, UpdatedAt: lastMonth, UserCount: 12, License: &licB}},
			{Subscriber: model.Subscriber{ID: "s-initech", Name: "Initech", Slug: "initech", Tier: model.TierL3, Status: model.SubscriberSuspended, CreatedAt: longAgo, UpdatedAt: longAgo, UserCount: 30, License: &licC}},
			{Subscriber: model.Subscriber{ID: "s-hooli", Name: "Hooli", Slug: "hooli", Tier: model.TierL2, Status: model.SubscriberTrial, CreatedAt: thisMonth, UpdatedAt: thisMonth, UserCount: 2}},
		},
		SubscriberUsers: map[string][]model.SubscriberUser{
			"s-acme": {
				{ID: "su-1", Email: "ann@acme.io", Name: "Ann", Role: "OWNER", IsActive: true, CreatedAt: thisMonth},
				{ID: "su-2", Email: "carl@acme.io", Name: "Carl", Role: "MEMBER", IsActive: false, CreatedAt: thisMonth},
			},
		},
		Stats: model.DashboardStats{
			TotalTenants: 3, ActiveTenants: 2, TotalUsers: 48, ActiveUsers: 40,
			TotalLicenses: 4, ActiveLicenses: 2, RevenueThisMonth: 1397, NewTenantsThisMonth: 1,
		},
	}
}
