package model

// Tier — уровень подписки.
type Tier string

const (
	TierL1 Tier = "L1"
	TierL2 Tier = "L2"
	TierL3 Tier = "L3"
)

// Tiers перечисляет известные уровни в порядке возрастания.
var Tiers = []Tier{TierL1, TierL2, TierL3}

// Name возвращает маркетинговое название уровня; неизвестный уровень возвращается как есть.
func (t Tier) Name() string {
	switch t {
	case TierL1:
		return "Basic"
	case TierL2:
		return "Pro"
	case TierL3:
		return "Enterprise"
	default:
		return string(t)
	}
}

// SubscriberStatus — статус подписчика.
type SubscriberStatus string

const (
	SubscriberActive    SubscriberStatus = "ACTIVE"
	SubscriberSuspended SubscriberStatus = "SUSPENDED"
	SubscriberTrial     SubscriberStatus = "TRIAL"
	SubscriberExpired   SubscriberStatus = "EXPIRED"
)

// SubscriberLicense — лицензия в составе подписчика.
type SubscriberLicense struct {
	ID         string         `json:"id"`
	LicenseKey string         `json:"licenseKey"`
	Tier       string         `json:"tier"`
	MaxUsers   int            `json:"maxUsers"`
	IsActive   bool           `json:"isActive"`
	StartsAt   string         `json:"startsAt"`
	ExpiresAt  string         `json:"expiresAt"`
	Features   map[string]any `json:"features,omitempty"`
}

// Subscriber — организация-подписчик в списке.
type Subscriber struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Slug      string             `json:"slug"`
	Domain    string             `json:"domain,omitempty"`
	Tier      Tier               `json:"tier"`
	Status    SubscriberStatus   `json:"status"`
	CreatedAt string             `json:"createdAt"`
	UpdatedAt string             `json:"updatedAt"`
	UserCount int                `json:"userCount"`
	License   *SubscriberLicense `json:"license"`
}

// SubscriberDetail — подробная карточка подписчика.
type SubscriberDetail struct {
	Subscriber
	Settings    map[string]any      `json:"settings,omitempty"`
	AllLicenses []SubscriberLicense `json:"allLicenses,omitempty"`
}

// SubscriberUser — пользователь подписчика.
type SubscriberUser struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	IsActive    bool    `json:"isActive"`
	LastLoginAt *string `json:"lastLoginAt"`
	CreatedAt   string  `json:"createdAt"`
}

// SubscriberStatusUpdate — ответ на смену статуса.
type SubscriberStatusUpdate struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Status    SubscriberStatus `json:"status"`
	UpdatedAt string           `json:"updatedAt"`
}

// RemovalAck — подтверждение удаления подписчика.
type RemovalAck struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Name    string `json:"name"`
}
