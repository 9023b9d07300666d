package mock

import (
	"net/http"
	"strings"
)

// Handler routes HTTP requests to the mock API endpoints.
type Handler struct {
	// Service is the mock API with endpoint handlers.
	Service *Service
}

// ServeHTTP dispatches incoming HTTP requests based on URL path.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, strings.TrimSuffix(h.Service.BasePath, "/"))
	switch path {
	case "/user/login":
		h.Service.loginHandler(w, r)
	case "/user/token/refresh":
		if h.Service.RefreshHandler != nil {
			h.Service.RefreshHandler(w, r)
		} else {
			h.Service.refreshHandler(w, r)
		}
	case "/user/get/info":
		h.Service.identityHandler(w, r)
	case "/user/logout":
		h.Service.logoutHandler(w, r)
	case "/resource":
		if h.Service.ResourceHandler != nil {
			h.Service.ResourceHandler(w, r)
		} else {
			h.Service.resourceHandler(w, r)
		}
	case "/admin/resource":
		h.Service.adminResourceHandler(w, r)
	default:
		http.NotFound(w, r)
	}
}
