// Package stub serves a scripted stand-in for the flight assistant so the
// client can be exercised without the real backend.
package stub

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"github.com/schardosin/smartflight/pkg/assistant"
	"github.com/schardosin/smartflight/pkg/chat"
)

// AlternativeReply is the scripted alternative-ticket proposal. The layout
// mirrors what the real assistant produces: HTML line breaks and bold labels.
const AlternativeReply = "I found an alternative ticket that matches your request. " +
	"It departs one day later and costs $35.00 more than your original ticket." +
	"<br/><br/>**Options**<br/>" +
	"- **Departure Airport:** Frankfurt Airport (FRA)<br/>" +
	"- **Arrival Airport:** Beijing Capital International Airport (PEK)<br/>" +
	"- **Departure Date:** 05/12/2025<br/>" +
	"- **Departure Time:** 13:45<br/>" +
	"- **Arrival Date:** 05/13/2025<br/>" +
	"- **Arrival Time:** 05:30<br/>" +
	"- **Return Date:** 05/26/2025<br/>" +
	"- **Return Departure Time:** 20:10<br/>" +
	"- **Return Arrival Date:** 05/27/2025<br/>" +
	"- **Return Arrival Time:** 06:55<br/>" +
	"- **Price USD:** $612.40<br/>" +
	"- **Flight Number:** LH720<br/><br/>" +
	"Is this the ticket you are looking for?"

const (
	greetingReply = "Hello! I can help you change your flight. Tell me what you would like to change."
	researchReply = "No problem. What should I look for instead: another date, time or airport?"
	humanReply    = "A human agent has been notified and will join this conversation shortly."
	confirmReply  = "Your ticket has been changed. Complete the payment on the booking page to finish."
)

// Config controls the stub's behaviour.
type Config struct {
	Username     string
	Password     string
	RequireLogin bool
	// CheckoutURL is the purchase link returned after a confirmed change.
	CheckoutURL string
	// SessionTTL is how long an idle conversation or token is remembered.
	SessionTTL time.Duration
}

// DefaultSessionTTL applies when Config.SessionTTL is zero.
const DefaultSessionTTL = 30 * time.Minute

type sessionState struct {
	turns   int
	offered bool
}

// Server is the stub assistant.
type Server struct {
	cfg Config

	// mu serialises the scripted turns of a session
	mu       sync.Mutex
	sessions *cache.Cache // session id -> *sessionState
	tokens   *cache.Cache // token -> username
}

// New creates a stub server.
func New(cfg Config) *Server {
	if cfg.CheckoutURL == "" {
		cfg.CheckoutURL = "https://booking.example.com/checkout"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	return &Server{
		cfg:      cfg,
		sessions: cache.New(cfg.SessionTTL, 2*cfg.SessionTTL),
		tokens:   cache.New(cfg.SessionTTL, 2*cfg.SessionTTL),
	}
}

// Router returns the stub's routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/login", s.handleLogin).Methods("POST")
	router.HandleFunc("/chat", s.handleChat).Methods("POST")
	router.HandleFunc("/test", s.handleHealth).Methods("GET")
	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid form"})
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || username != s.cfg.Username || password != s.cfg.Password {
		log.Printf("stub: rejected login for %q", username)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
		return
	}

	token := uuid.NewString()
	s.tokens.Set(token, username, cache.DefaultExpiration)

	writeJSON(w, http.StatusOK, assistant.LoginResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) authorized(r *http.Request) bool {
	if !s.cfg.RequireLogin {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	_, known := s.tokens.Get(token)
	return known
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
		return
	}

	var req assistant.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}

	sessionID := ""
	if req.SessionID != nil {
		sessionID = *req.SessionID
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.mu.Lock()
	sess := &sessionState{}
	if v, ok := s.sessions.Get(sessionID); ok {
		sess = v.(*sessionState)
	}
	// every turn restarts the idle clock
	s.sessions.Set(sessionID, sess, cache.DefaultExpiration)
	sess.turns++
	resp := s.script(sess, sessionID, req.Message)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// script picks the scripted reply for message. Callers hold s.mu.
func (s *Server) script(sess *sessionState, sessionID, message string) assistant.ChatResponse {
	resp := assistant.ChatResponse{SessionID: sessionID}
	lower := strings.ToLower(strings.TrimSpace(message))

	switch {
	case message == chat.MessageConfirmChange && sess.offered:
		link := fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.CheckoutURL, "/"), sessionID)
		resp.Response = confirmReply
		resp.FlightURL = &link
		sess.offered = false
	case message == chat.MessageResearch:
		resp.Response = researchReply
		sess.offered = false
	case message == chat.MessageHumanAssistant:
		resp.Response = humanReply
		requires := true
		resp.RequiresInput = &requires
	case lower == "wait" || strings.HasSuffix(lower, "..."):
		resp.Response = chat.AwaitSignal
	case strings.Contains(lower, "change") || strings.Contains(lower, "flight") || strings.Contains(lower, "ticket"):
		resp.Response = AlternativeReply
		sess.offered = true
	default:
		resp.Response = greetingReply
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("stub: failed to write response: %v", err)
	}
}
