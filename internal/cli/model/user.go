package model

// User — денормализованная проекция аутентифицированного оператора (CurrentUser).
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Avatar      string   `json:"avatar,omitempty"`
	Role        string   `json:"role"`
	TenantID    string   `json:"tenantId"`
	TenantName  string   `json:"tenantName"`
	Tier        string   `json:"tier"`
	Permissions []string `json:"permissions"`
}

// AdminUser — администратор платформы, как его возвращает /admin/auth/*.
type AdminUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar,omitempty"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

const (
	// PlatformAdminTenant — имя "тенанта" для администраторов платформы.
	PlatformAdminTenant = "Platform Admin"
	// AdminTier — уровень доступа администратора платформы.
	AdminTier           = "ADMIN"
)

// AsUser проецирует администратора на User: администраторы не принадлежат тенантам.
func (a AdminUser) AsUser() User {
	return User{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Avatar:      a.Avatar,
		Role:        a.Role,
		TenantID:    "",
		TenantName:  PlatformAdminTenant,
		Tier:        AdminTier,
		Permissions: []string{},
	}
}

// TokenPair — пара токенов, выдаваемая при login и refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// LoginResult — ответ /admin/auth/login.
type LoginResult struct {
	TokenPair
	Admin *AdminUser `json:"admin,omitempty"`
	User  *User      `json:"user,omitempty"`
}

// Principal возвращает CurrentUser из ответа логина: admin приоритетнее user.
func (r LoginResult) Principal() (User, bool) {
	switch {
	case r.Admin != nil:
		return r.Admin.AsUser(), true
	case r.User != nil:
		return *r.User, true
	default:
		return User{}, false
	}
}

// MeResult — ответ /admin/auth/me.
type MeResult struct {
	Admin *AdminUser `json:"admin,omitempty"`
}

// Message — простое подтверждение от сервера.
type Message struct {
	Message string `json:"message"`
}
