// Package webdrivertest provides an in-memory W3C WebDriver remote end for
// tests. It keeps per-session page and cookie state so session reuse, staleness
// and reset can be observed without a real browser.
package webdrivertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"github.com/riffvuln/udh-yappingny/internal/webdriver"
)

// Page is a document served by the fake browser.
type Page struct {
	Title string
	HTML  string
}

// SessionState is a snapshot of one fake session.
type SessionState struct {
	URL          string
	Cookies      []webdriver.Cookie
	Capabilities map[string]any
	Navigations  int
}

// Server is a fake remote end backed by httptest.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	sessions map[string]*SessionState
	pages    map[string]Page
	created  int
	nextID   int

	failCreate  bool
	failSource  bool
	failCookies bool
}

// NewServer starts a fake remote end. Close it when done.
func NewServer() *Server {
	s := &Server{
		sessions: make(map[string]*SessionState),
		pages:    make(map[string]Page),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /session", s.handleNewSession)
	mux.HandleFunc("DELETE /session/{id}", s.withSession(s.handleDeleteSession))
	mux.HandleFunc("POST /session/{id}/url", s.withSession(s.handleNavigate))
	mux.HandleFunc("GET /session/{id}/url", s.withSession(s.handleCurrentURL))
	mux.HandleFunc("GET /session/{id}/title", s.withSession(s.handleTitle))
	mux.HandleFunc("GET /session/{id}/source", s.withSession(s.handleSource))
	mux.HandleFunc("GET /session/{id}/cookie", s.withSession(s.handleGetCookies))
	mux.HandleFunc("DELETE /session/{id}/cookie", s.withSession(s.handleDeleteCookies))
	mux.HandleFunc("POST /session/{id}/execute/sync", s.withSession(s.handleExecute))

	s.Server = httptest.NewServer(mux)
	return s
}

// SetPage registers the document served for rawURL.
func (s *Server) SetPage(rawURL string, page Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[rawURL] = page
}

// Created returns how many sessions have been started.
func (s *Server) Created() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

// Live returns how many sessions currently exist.
func (s *Server) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Session returns a snapshot of session id.
func (s *Server) Session(id string) (SessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[id]
	if !ok {
		return SessionState{}, false
	}
	snap := *st
	snap.Cookies = append([]webdriver.Cookie(nil), st.Cookies...)
	return snap, true
}

// Kill drops session id as if its browser crashed.
func (s *Server) Kill(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// AddCookie plants a cookie in session id.
func (s *Server) AddCookie(id string, c webdriver.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.sessions[id]; ok {
		st.Cookies = append(st.Cookies, c)
	}
}

// FailCreate makes new session requests fail.
func (s *Server) FailCreate(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreate = fail
}

// FailSource makes page source requests fail.
func (s *Server) FailSource(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSource = fail
}

// FailCookies makes cookie deletion fail.
func (s *Server) FailCookies(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCookies = fail
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, id string, st *SessionState)

// withSession resolves {id} and holds the server lock for the handler.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		s.mu.Lock()
		defer s.mu.Unlock()

		st, ok := s.sessions[id]
		if !ok {
			writeError(w, http.StatusNotFound, webdriver.CodeInvalidSessionID, "Tried to run command without establishing a connection")
			return
		}
		h(w, r, id, st)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeValue(w, map[string]any{"ready": true, "message": "fake remote end ready"})
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Capabilities struct {
			AlwaysMatch map[string]any `json:"alwaysMatch"`
		} `json:"capabilities"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, webdriver.CodeInvalidArgument, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCreate {
		writeError(w, http.StatusInternalServerError, webdriver.CodeSessionNotCreated, "browser failed to start")
		return
	}

	s.nextID++
	s.created++
	id := "fake-" + strconv.Itoa(s.nextID)
	s.sessions[id] = &SessionState{
		URL:          webdriver.BlankPage,
		Capabilities: body.Capabilities.AlwaysMatch,
	}

	writeValue(w, map[string]any{
		"sessionId":    id,
		"capabilities": body.Capabilities.AlwaysMatch,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request, id string, st *SessionState) {
	delete(s.sessions, id)
	writeValue(w, nil)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request, id string, st *SessionState) {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, webdriver.CodeInvalidArgument, err.Error())
		return
	}

	u, err := url.Parse(body.URL)
	if err != nil || u.Scheme == "" {
		writeError(w, http.StatusBadRequest, webdriver.CodeInvalidArgument, "Malformed URL: "+body.URL+" is not a valid URL.")
		return
	}

	st.URL = body.URL
	st.Navigations++
	if u.Scheme == "http" || u.Scheme == "https" {
		st.Cookies = append(st.Cookies, webdriver.Cookie{Name: "visited", Value: u.Host, Domain: u.Hostname(), Path: "/"})
	}
	writeValue(w, nil)
}

func (s *Server) handleCurrentURL(w http.ResponseWriter, r *http.Request, id string, st *SessionState) {
	writeValue(w, st.URL)
}

func (s *Server) handleTitle(w http.ResponseWriter, r *http.Request, id string, st *SessionState) {
	writeValue(w, s.page(st.URL).Title)
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request, id string, st *SessionState) {
	if s.failSource {
		writeError(w, http.StatusInternalServerError, webdriver.CodeUnknownError, "page source unavailable")
		return
	}
	writeValue(w, s.page(st.URL).HTML)
}

func (s *Server) handleGetCookies(w http.ResponseWriter, r *http.Request, id string, st *SessionState) {
	cookies := st.Cookies
	if cookies == nil {
		cookies = []webdriver.Cookie{}
	}
	writeValue(w, cookies)
}

func (s *Server) handleDeleteCookies(w http.ResponseWriter, r *http.Request, id string, st *SessionState) {
	if s.failCookies {
		writeError(w, http.StatusInternalServerError, webdriver.CodeUnknownError, "cookie store unavailable")
		return
	}
	st.Cookies = nil
	writeValue(w, nil)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request, id string, st *SessionState) {
	var body struct {
		Script string `json:"script"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, webdriver.CodeInvalidArgument, err.Error())
		return
	}
	if body.Script != "return document.readyState" {
		writeError(w, http.StatusInternalServerError, webdriver.CodeJavascriptError, "unsupported script")
		return
	}
	writeValue(w, "complete")
}

// page returns the document for rawURL; caller holds s.mu.
func (s *Server) page(rawURL string) Page {
	if p, ok := s.pages[rawURL]; ok {
		return p
	}
	if rawURL == webdriver.BlankPage {
		return Page{HTML: "<html><head></head><body></body></html>"}
	}
	u, _ := url.Parse(rawURL)
	host := ""
	if u != nil {
		host = u.Host
	}
	return Page{
		Title: host,
		HTML:  fmt.Sprintf("<html><head><title>%s</title></head><body><p>%s</p></body></html>", host, rawURL),
	}
}

func writeValue(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"value": v})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"value": map[string]string{
			"error":      code,
			"message":    message,
			"stacktrace": "",
		},
	})
}
