package model

// Tenant — организация-клиент платформы.
type Tenant struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Tier         string `json:"tier"`
	Status       string `json:"status"`
	BillingEmail string `json:"billingEmail,omitempty"`
	BillingName  string `json:"billingName,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// License — лицензия тенанта.
type License struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenantId"`
	LicenseKey string `json:"licenseKey"`
	Tier       string `json:"tier"`
	MaxUsers   int    `json:"maxUsers"`
	IsActive   bool   `json:"isActive"`
	StartsAt   string `json:"startsAt"`
	ExpiresAt  string `json:"expiresAt"`
}

// LicenseStatus — фильтр списка лицензий на сервере.
type LicenseStatus string

const (
	LicenseStatusActive  LicenseStatus = "active"
	LicenseStatusExpired LicenseStatus = "expired"
	LicenseStatusAll     LicenseStatus = "all"
)

// DashboardStats — агрегированные счётчики для дашборда.
type DashboardStats struct {
	TotalTenants        int     `json:"totalTenants"`
	ActiveTenants       int     `json:"activeTenants"`
	TotalUsers          int     `json:"totalUsers"`
	ActiveUsers         int     `json:"activeUsers"`
	TotalLicenses       int     `json:"totalLicenses"`
	ActiveLicenses      int     `json:"activeLicenses"`
	RevenueThisMonth    float64 `json:"revenueThisMonth"`
	NewTenantsThisMonth int     `json:"newTenantsThisMonth"`
}
