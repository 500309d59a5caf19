package gatenet

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"github.com/EWIAW/gobang/internal/config"
	"github.com/EWIAW/gobang/internal/protocol"
	sessionpkg "github.com/EWIAW/gobang/internal/session"
	"github.com/EWIAW/gobang/internal/store"
)

// cookieName is the cookie the spec's HTTP surface issues at login and
// expects back on /information, per spec.md §6.
const cookieName = "SSID"

// HTTPServer implements spec.md §4.7/§6's HTTP surface: POST /login,
// POST /reg, GET /information, and a static-file fallback, translated
// from original_source/src/server.hpp's handler_http dispatch table
// into gorilla/mux routes.
type HTTPServer struct {
	sessions  *sessionpkg.Registry
	users     *store.Store
	webRoot   string
	cookieKey []byte
	cfg       config.SessionConfig
}

// NewHTTPServer builds the router. cookieKey seals the SSID cookie
// value with xxtea so a tampered cookie fails to decode rather than
// resolving to an unrelated session.
func NewHTTPServer(sessions *sessionpkg.Registry, users *store.Store, webRoot string, cookieKey []byte, cfg config.SessionConfig) *HTTPServer {
	return &HTTPServer{sessions: sessions, users: users, webRoot: webRoot, cookieKey: cookieKey, cfg: cfg}
}

// Router builds the gorilla/mux handler for this server.
func (h *HTTPServer) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/reg", h.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/information", h.handleInformation).Methods(http.MethodGet)
	r.PathPrefix("/").HandlerFunc(h.handleStatic)
	return r
}

func (h *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req protocol.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &protocol.LoginResponse{Result: false, Reason: "malformed request"})
		return
	}

	user, err := h.users.Login(req.Username, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, &protocol.LoginResponse{Result: false, Reason: "invalid username or password"})
		return
	}

	sess := h.sessions.Create(user.ID, sessionpkg.Login)
	h.sessions.SetExpire(sess.SSID, h.cfg.LoginTimeout)

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    sealSSID(sess.SSID, h.cookieKey),
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(h.cfg.LoginTimeout),
	})
	writeJSON(w, http.StatusOK, &protocol.LoginResponse{Result: true})
}

func (h *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req protocol.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &protocol.RegisterResponse{Result: false, Reason: "malformed request"})
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, &protocol.RegisterResponse{Result: false, Reason: "username and password are required"})
		return
	}

	err := h.users.Register(req.Username, req.Password)
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, &protocol.RegisterResponse{Result: true})
	case store.ErrConflict:
		writeJSON(w, http.StatusConflict, &protocol.RegisterResponse{Result: false, Reason: "username already taken"})
	default:
		logger.Errorf("register failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, &protocol.RegisterResponse{Result: false, Reason: "internal error"})
	}
}

func (h *HTTPServer) handleInformation(w http.ResponseWriter, r *http.Request) {
	ssid, ok := h.ssidFromCookie(r)
	if !ok {
		http.Error(w, "missing or invalid SSID cookie", http.StatusUnauthorized)
		return
	}

	sess, ok := h.sessions.Get(ssid)
	if !ok {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return
	}

	user, err := h.users.Lookup(sess.UID)
	if err != nil {
		logger.Errorf("lookup uid=%d failed: %v", sess.UID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.sessions.SetExpire(ssid, h.cfg.LoginTimeout)
	writeJSON(w, http.StatusOK, &protocol.InformationResponse{
		ID:         user.ID,
		Username:   user.Username,
		Score:      user.Score,
		TotalCount: user.TotalCount,
		WinCount:   user.WinCount,
	})
}

// handleStatic serves files from the configured web root, falling
// back to 404.html, matching original_source/src/server.hpp's
// default_page handler.
func (h *HTTPServer) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "" || path == "/" {
		path = "/login.html"
	}

	full := filepath.Join(h.webRoot, filepath.Clean(path))
	if _, err := os.Stat(full); err != nil {
		http.ServeFile(w, r, filepath.Join(h.webRoot, "404.html"))
		return
	}
	http.ServeFile(w, r, full)
}

func (h *HTTPServer) ssidFromCookie(r *http.Request) (uint64, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return 0, false
	}
	return unsealSSID(c.Value, h.cookieKey)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
