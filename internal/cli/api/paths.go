package api

import (
	"net/url"
	"strconv"
)

// Пути admin API.
const (
	PathLogin   = "/admin/auth/login"
	PathLogout  = "/admin/auth/logout"
	PathRefresh = "/admin/auth/refresh"
	PathMe      = "/admin/auth/me"

	PathTenants     = "/api/v1/admin/tenants"
	PathUsers       = "/api/v1/admin/users"
	PathLicenses    = "/api/v1/admin/licenses"
	PathSubscribers = "/api/v1/admin/subscribers"
	PathStats       = "/api/v1/admin/dashboard/stats"
)

func tenantPath(id string) string     { return PathTenants + "/" + url.PathEscape(id) }
func subscriberPath(id string) string { return PathSubscribers + "/" + url.PathEscape(id) }

// query собирает параметры списка, пропуская нулевые значения.
type query url.Values

func (q query) withInt(key string, v int) query {
	if v > 0 {
		url.Values(q).Set(key, strconv.Itoa(v))
	}
	return q
}

func (q query) withString(key, v string) query {
	if v != "" {
		url.Values(q).Set(key, v)
	}
	return q
}

func (q query) values() url.Values { return url.Values(q) }
