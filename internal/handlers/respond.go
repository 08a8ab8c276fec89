package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	svc "github.com/whisperbox/whisperbox/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errStatus maps the service-layer taxonomy onto HTTP codes.
func errStatus(err error) int {
	var ve *svc.ValidationError
	switch {
	case errors.Is(err, svc.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, svc.ErrPermission):
		return http.StatusUnauthorized
	case errors.As(err, &ve):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// clientIP is best-effort: middleware.RealIP has already rewritten
// RemoteAddr when a proxy header was present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type pagination struct {
	Page    int
	Pages   int
	PrevNum int
	NextNum int
	HasPrev bool
	HasNext bool
}

func paginate(page, per int, total int64) pagination {
	pages := int((total + int64(per) - 1) / int64(per))
	if pages < 1 {
		pages = 1
	}
	return pagination{
		Page:    page,
		Pages:   pages,
		PrevNum: page - 1,
		NextNum: page + 1,
		HasPrev: page > 1,
		HasNext: page < pages,
	}
}
