package delivery

import (
	"net"
	"net/http"
	"sync"
)

const clientIDHeader = "X-Client-ID"

// InFlightGuard не даёт одному клиенту запустить вторую операцию,
// пока первая не закончилась.
type InFlightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{active: make(map[string]struct{})}
}

func (g *InFlightGuard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[key]; busy {
		return false
	}
	g.active[key] = struct{}{}
	return true
}

func (g *InFlightGuard) release(key string) {
	g.mu.Lock()
	delete(g.active, key)
	g.mu.Unlock()
}

func (g *InFlightGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !g.acquire(key) {
			writeError(w, http.StatusConflict, "another operation is already in progress")
			return
		}
		defer g.release(key)

		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if id := r.Header.Get(clientIDHeader); id != "" {
		return "id:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
