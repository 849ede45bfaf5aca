package http

import (
	nethttp "net/http"

	"github.com/preston-bernstein/mister-service/internal/http/handlers"
)

// NewRouter registers HTTP routes on a ServeMux.
func NewRouter(handler *handlers.Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/health", handler.Health)
	mux.HandleFunc("/make-teams", handler.MakeTeams)
	return mux
}
