package route

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCanonical(t *testing.T) {
	cases := map[string]string{
		"":               "/",
		"/":              "/",
		"///":            "/",
		"/api/dragons":   "/api/dragons",
		"/api/dragons/":  "/api/dragons",
		"/api/dragons//": "/api/dragons",
	}
	for in, want := range cases {
		if got := Canonical(in); got != want {
			t.Fatalf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalUnder(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := CanonicalUnder("/api/", next)

	tests := []struct {
		name     string
		method   string
		target   string
		status   int
		location string
	}{
		{name: "canonical api path", method: http.MethodGet, target: "/api/dragons", status: http.StatusNoContent},
		{name: "trailing slash get", method: http.MethodGet, target: "/api/dragons/?page=2", status: http.StatusMovedPermanently, location: "/api/dragons?page=2"},
		{name: "trailing slash post", method: http.MethodPost, target: "/api/battle/create/", status: http.StatusPermanentRedirect, location: "/api/battle/create"},
		{name: "sibling prefix untouched", method: http.MethodGet, target: "/apidocs/", status: http.StatusNoContent},
		{name: "static directory keeps slash", method: http.MethodGet, target: "/images/", status: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := rec.Header().Get("Location"); got != tt.location {
				t.Fatalf("location = %q, want %q", got, tt.location)
			}
		})
	}
}
