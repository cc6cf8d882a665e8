package api

import (
	"context"
	"net/http"

	"ERPAdmin/internal/cli/model"
)

// TenantQuery — параметры списка тенантов.
type TenantQuery struct {
	Page     int `validate:"gte=0"`
	PageSize int `validate:"gte=0"`
	Search   string
	Status   string
}

// UserQuery — параметры списка пользователей.
type UserQuery struct {
	Page     int `validate:"gte=0"`
	PageSize int `validate:"gte=0"`
	Search   string
	TenantID string
}

// LicenseQuery — параметры списка лицензий.
type LicenseQuery struct {
	Page     int `validate:"gte=0"`
	PageSize int `validate:"gte=0"`
	TenantID string
	Status   model.LicenseStatus `validate:"omitempty,oneof=active expired all"`
}

// SubscriberQuery — параметры списка подписчиков. Status и Tier принимают также "all".
type SubscriberQuery struct {
	Page     int `validate:"gte=0"`
	PageSize int `validate:"gte=0"`
	Search   string
	Status   string `validate:"omitempty,oneof=ACTIVE SUSPENDED TRIAL EXPIRED all"`
	Tier     string `validate:"omitempty,oneof=L1 L2 L3 all"`
}

// PageQuery — только пагинация.
type PageQuery struct {
	Page     int `validate:"gte=0"`
	PageSize int `validate:"gte=0"`
}

type statusUpdate struct {
	Status model.SubscriberStatus `json:"status" validate:"required,oneof=ACTIVE SUSPENDED TRIAL EXPIRED"`
}

// listPage выполняет GET списка и приводит метаданные страницы к инварианту.
func listPage[T any](ctx context.Context, c *Client, path string, q query) (model.Page[T], error) {
	p, err := Execute[model.Page[T]](ctx, c, Request{Method: http.MethodGet, Path: path, Query: q.values()})
	if err != nil {
		return model.Page[T]{}, err
	}
	if p.PageSize > 0 && len(p.Items) > p.PageSize {
		c.log.Warnw("page holds more items than pageSize, extra items dropped",
			"path", path, "items", len(p.Items), "pageSize", p.PageSize)
	}
	return model.NewPage(p.Items, p.Total, p.Page, p.PageSize), nil
}

// ListTenants возвращает страницу тенантов.
func (c *Client) ListTenants(ctx context.Context, q TenantQuery) (model.Page[model.Tenant], error) {
	if err := checkStruct(q); err != nil {
		return model.Page[model.Tenant]{}, err
	}
	return listPage[model.Tenant](ctx, c, PathTenants, query{}.
		withInt("page", q.Page).
		withInt("pageSize", q.PageSize).
		withString("search", q.Search).
		withString("status", q.Status))
}

// GetTenant возвращает тенанта по id.
func (c *Client) GetTenant(ctx context.Context, id string) (model.Tenant, error) {
	if err := checkID("tenant id", id); err != nil {
		return model.Tenant{}, err
	}
	return Execute[model.Tenant](ctx, c, Request{Method: http.MethodGet, Path: tenantPath(id)})
}

// ListUsers возвращает страницу пользователей.
func (c *Client) ListUsers(ctx context.Context, q UserQuery) (model.Page[model.User], error) {
	if err := checkStruct(q); err != nil {
		return model.Page[model.User]{}, err
	}
	return listPage[model.User](ctx, c, PathUsers, query{}.
		withInt("page", q.Page).
		withInt("pageSize", q.PageSize).
		withString("search", q.Search).
		withString("tenantId", q.TenantID))
}

// ListLicenses возвращает страницу лицензий.
func (c *Client) ListLicenses(ctx context.Context, q LicenseQuery) (model.Page[model.License], error) {
	if err := checkStruct(q); err != nil {
		return model.Page[model.License]{}, err
	}
	return listPage[model.License](ctx, c, PathLicenses, query{}.
		withInt("page", q.Page).
		withInt("pageSize", q.PageSize).
		withString("tenantId", q.TenantID).
		withString("status", string(q.Status)))
}

// ListSubscribers возвращает страницу подписчиков.
func (c *Client) ListSubscribers(ctx context.Context, q SubscriberQuery) (model.Page[model.Subscriber], error) {
	if err := checkStruct(q); err != nil {
		return model.Page[model.Subscriber]{}, err
	}
	return listPage[model.Subscriber](ctx, c, PathSubscribers, query{}.
		withInt("page", q.Page).
		withInt("pageSize", q.PageSize).
		withString("search", q.Search).
		withString("status", q.Status).
		withString("tier", q.Tier))
}

// GetSubscriber возвращает карточку подписчика.
func (c *Client) GetSubscriber(ctx context.Context, id string) (model.SubscriberDetail, error) {
	if err := checkID("subscriber id", id); err != nil {
		return model.SubscriberDetail{}, err
	}
	return Execute[model.SubscriberDetail](ctx, c, Request{Method: http.MethodGet, Path: subscriberPath(id)})
}

// ListSubscriberUsers возвращает страницу пользователей подписчика.
func (c *Client) ListSubscriberUsers(ctx context.Context, id string, q PageQuery) (model.Page[model.SubscriberUser], error) {
	if err := checkID("subscriber id", id); err != nil {
		return model.Page[model.SubscriberUser]{}, err
	}
	if err := checkStruct(q); err != nil {
		return model.Page[model.SubscriberUser]{}, err
	}
	return listPage[model.SubscriberUser](ctx, c, subscriberPath(id)+"/users", query{}.
		withInt("page", q.Page).
		withInt("pageSize", q.PageSize))
}

// UpdateSubscriberStatus меняет статус подписчика.
func (c *Client) UpdateSubscriberStatus(ctx context.Context, id string, status model.SubscriberStatus) (model.SubscriberStatusUpdate, error) {
	if err := checkID("subscriber id", id); err != nil {
		return model.SubscriberStatusUpdate{}, err
	}
	body := statusUpdate{Status: status}
	if err := checkStruct(body); err != nil {
		return model.SubscriberStatusUpdate{}, err
	}
	return Execute[model.SubscriberStatusUpdate](ctx, c, Request{
		Method: http.MethodPatch,
		Path:   subscriberPath(id) + "/status",
		Body:   body,
	})
}

// RemoveSubscriber удаляет подписчика.
func (c *Client) RemoveSubscriber(ctx context.Context, id string) (model.RemovalAck, error) {
	if err := checkID("subscriber id", id); err != nil {
		return model.RemovalAck{}, err
	}
	return Execute[model.RemovalAck](ctx, c, Request{Method: http.MethodDelete, Path: subscriberPath(id)})
}

// DashboardStats возвращает агрегированные счётчики.
func (c *Client) DashboardStats(ctx context.Context) (model.DashboardStats, error) {
	return Execute[model.DashboardStats](ctx, c, Request{Method: http.MethodGet, Path: PathStats})
}
