package fakeapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ERPAdmin/internal/cli/model"

	"github.com/go-chi/chi/v5"
)

const defaultPageSize = 20

// paginate режет срез по параметрам page/pageSize запроса.
func paginate[T any](r *http.Request, items []T) model.Page[T] {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if size < 1 {
		size = defaultPageSize
	}
	from := min((page-1)*size, len(items))
	to := min(from+size, len(items))
	out := make([]T, to-from)
	copy(out, items[from:to])
	return model.NewPage(out, len(items), page, size)
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// matches сравнивает фильтр со значением; пустой фильтр и "all" пропускают всё.
func matches(filter, v string) bool {
	return filter == "" || filter == "all" || filter == v
}

func (s *Server) listTenants(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	var out []model.Tenant
	for _, t := range s.data.Tenants {
		if (containsFold(t.Name, q.Get("search")) || containsFold(t.Slug, q.Get("search"))) && matches(q.Get("status"), t.Status) {
			out = append(out, t)
		}
	}
	s.mu.Unlock()
	writeData(w, paginate(r, out))
}

func (s *Server) getTenant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.data.Tenants {
		if t.ID == id {
			writeData(w, t)
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Tenant not found")
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	var out []model.User
	for _, u := range s.data.Users {
		if (containsFold(u.Email, q.Get("search")) || containsFold(u.Name, q.Get("search"))) && matches(q.Get("tenantId"), u.TenantID) {
			out = append(out, u)
		}
	}
	s.mu.Unlock()
	writeData(w, paginate(r, out))
}

func (s *Server) listLicenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := s.now()
	s.mu.Lock()
	var out []model.License
	for _, l := range s.data.Licenses {
		if !matches(q.Get("tenantId"), l.TenantID) {
			continue
		}
		exp, err := time.Parse(time.RFC3339, l.ExpiresAt)
		expired := err == nil && !exp.After(now)
		switch model.LicenseStatus(q.Get("status")) {
		case model.LicenseStatusActive:
			if !l.IsActive || expired {
				continue
			}
		case model.LicenseStatusExpired:
			if !expired {
				continue
			}
		}
		out = append(out, l)
	}
	s.mu.Unlock()
	writeData(w, paginate(r, out))
}

func (s *Server) listSubscribers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	var out []model.Subscriber
	for _, d := range s.data.Subscribers {
		sub := d.Subscriber
		if (containsFold(sub.Name, q.Get("search")) || containsFold(sub.Slug, q.Get("search"))) &&
			matches(q.Get("status"), string(sub.Status)) &&
			matches(q.Get("tier"), string(sub.Tier)) {
			out = append(out, sub)
		}
	}
	s.mu.Unlock()
	writeData(w, paginate(r, out))
}

// subscriberIndex ищет подписчика; вызывается под s.mu.
func (s *Server) subscriberIndex(id string) int {
	for i, d := range s.data.Subscribers {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) getSubscriber(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.subscriberIndex(chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Subscriber not found")
		return
	}
	writeData(w, s.data.Subscribers[i])
}

func (s *Server) listSubscriberUsers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	if s.subscriberIndex(id) < 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Subscriber not found")
		return
	}
	users := append([]model.SubscriberUser(nil), s.data.SubscriberUsers[id]...)
	s.mu.Unlock()
	writeData(w, paginate(r, users))
}

func (s *Server) updateSubscriberStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status model.SubscriberStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	switch in.Status {
	case model.SubscriberActive, model.SubscriberSuspended, model.SubscriberTrial, model.SubscriberExpired:
	default:
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.subscriberIndex(chi.URLParam(r, "id"))
	if i < 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Subscriber not found")
		return
	}
	sub := &s.data.Subscribers[i]
	sub.Status = in.Status
	sub.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	writeData(w, model.SubscriberStatusUpdate{ID: sub.ID, Name: sub.Name, Status: sub.Status, UpdatedAt: sub.UpdatedAt})
}

func (s *Server) removeSubscriber(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := chi.URLParam(r, "id")
	i := s.subscriberIndex(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Subscriber not found")
		return
	}
	name := s.data.Subscribers[i].Name
	s.data.Subscribers = append(s.data.Subscribers[:i], s.data.Subscribers[i+1:]...)
	delete(s.data.SubscriberUsers, id)
	writeData(w, model.RemovalAck{Message: "Subscriber removed", ID: id, Name: name})
}

func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statsFail {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Stats unavailable")
		return
	}
	writeData(w, s.data.Stats)
}
