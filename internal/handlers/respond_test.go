package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	svc "github.com/whisperbox/whisperbox/internal/services"
)

func TestErrStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{svc.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", svc.ErrNotFound), http.StatusNotFound},
		{svc.ErrPermission, http.StatusUnauthorized},
		{&svc.ValidationError{Reason: "too long"}, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := errStatus(c.err); got != c.want {
			t.Errorf("errStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestPaginate(t *testing.T) {
	p := paginate(1, 20, 0)
	if p.Pages != 1 || p.HasPrev || p.HasNext {
		t.Errorf("empty set: %+v", p)
	}

	p = paginate(1, 20, 45) // 3 pages
	if p.Pages != 3 || p.HasPrev || !p.HasNext || p.NextNum != 2 {
		t.Errorf("first of three: %+v", p)
	}

	p = paginate(2, 20, 45)
	if !p.HasPrev || !p.HasNext || p.PrevNum != 1 || p.NextNum != 3 {
		t.Errorf("middle page: %+v", p)
	}

	p = paginate(3, 20, 45)
	if !p.HasPrev || p.HasNext {
		t.Errorf("last page: %+v", p)
	}

	p = paginate(1, 20, 20) // exact fit
	if p.Pages != 1 || p.HasNext {
		t.Errorf("exact fit: %+v", p)
	}
}
