// Package sonictest provides an in-memory SonicOS device served over TLS
// for tests. It implements enough of the REST API for the sonicos client:
// Basic-auth login with a session cookie, logout, the four object
// collections and the pending-changes endpoint. Every request is recorded.
package sonictest

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// SessionCookie is the cookie set on login.
const SessionCookie = "SonicOSSession"

const apiPrefix = "/api/sonicos/"

// Request is one recorded request.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
	// Authed is true if the request carried a valid session cookie.
	Authed bool
}

// Change is one staged modification.
type Change struct {
	Method     string `json:"method"`
	Collection string `json:"collection"`
	Name       string `json:"name"`
}

// objects maps collection ("address-objects/ipv4") to name to object.
type objects map[string]map[string]map[string]any

func (o objects) clone() objects {
	out := make(objects, len(o))
	for coll, items := range o {
		m := make(map[string]map[string]any, len(items))
		for name, obj := range items {
			m[name] = obj
		}
		out[coll] = m
	}
	return out
}

// Device is a fake SonicOS device.
type Device struct {
	Username string
	Password string

	server *httptest.Server
	router chi.Router

	mu        sync.Mutex
	requests  []Request
	sessions  map[string]bool
	nextID    int
	live      objects
	committed objects
	pending   []Change
	commits   int
	overrides map[string]int
}

// NewDevice starts a device accepting the given credentials.
func NewDevice(username, password string) *Device {
	d := &Device{
		Username:  username,
		Password:  password,
		sessions:  make(map[string]bool),
		live:      make(objects),
		committed: make(objects),
		overrides: make(map[string]int),
	}
	d.router = d.routes()
	d.server = httptest.NewTLSServer(d.router)
	return d
}

// Close shuts the server down.
func (d *Device) Close() {
	d.server.Close()
}

// Host returns the listener's IP address.
func (d *Device) Host() string {
	host, _, _ := net.SplitHostPort(d.server.Listener.Addr().String())
	return host
}

// Port returns the listener's port.
func (d *Device) Port() int {
	_, port, _ := net.SplitHostPort(d.server.Listener.Addr().String())
	p, _ := strconv.Atoi(port)
	return p
}

// Seed stores a committed object, e.g. Seed("address-objects/ipv4", "web", obj).
func (d *Device) Seed(collection, name string, obj map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if obj == nil {
		obj = map[string]any{}
	}
	obj["name"] = name
	for _, store := range []objects{d.live, d.committed} {
		if store[collection] == nil {
			store[collection] = make(map[string]map[string]any)
		}
		store[collection][name] = obj
	}
}

// Object returns the current (possibly uncommitted) object.
func (d *Device) Object(collection, name string) (map[string]any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	obj, ok := d.live[collection][name]
	return obj, ok
}

// Committed reports whether name is present in the committed configuration.
func (d *Device) Committed(collection, name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.committed[collection][name]
	return ok
}

// Respond forces every request matching method and path to be answered
// with status. Path is the full URL path, e.g. "/api/sonicos/config/pending/".
func (d *Device) Respond(method, path string, status int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.overrides[method+" "+path] = status
}

// Requests returns a copy of all recorded requests.
func (d *Device) Requests() []Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Request(nil), d.requests...)
}

// Count returns the number of recorded requests with method whose path
// starts with prefix.
func (d *Device) Count(method, prefix string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, r := range d.requests {
		if r.Method == method && strings.HasPrefix(r.Path, prefix) {
			n++
		}
	}
	return n
}

// Logins returns the number of login requests.
func (d *Device) Logins() int {
	return d.Count(http.MethodPost, apiPrefix+"auth")
}

// Logouts returns the number of logout requests.
func (d *Device) Logouts() int {
	return d.Count(http.MethodDelete, "/auth")
}

// Commits returns the number of successful commits.
func (d *Device) Commits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commits
}

// Pending returns the staged changes.
func (d *Device) Pending() []Change {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Change(nil), d.pending...)
}

// OpenSessions returns the number of sessions not logged out.
func (d *Device) OpenSessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// ExpireSessions invalidates every open session, as a device reboot or
// idle timeout would.
func (d *Device) ExpireSessions() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions = make(map[string]bool)
}

// Reset forgets recorded requests; objects and sessions are kept.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = nil
}

func (d *Device) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(d.record)

	// login lives under the API root, logout under the site root
	r.Delete("/auth", d.handleLogout)

	r.Route("/api/sonicos", func(r chi.Router) {
		r.Post("/auth", d.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(d.requireSession)

			r.Get("/config/pending/", d.handlePendingGet)
			r.Get("/config/pending/*", d.handlePendingGet)
			r.Post("/config/pending/", d.handleCommit)
			r.Delete("/config/pending/", d.handleDiscard)

			for _, coll := range []string{
				"/address-objects/{kind}",
				"/address-groups/{kind}",
				"/service-objects",
				"/service-groups",
			} {
				r.Get(coll, d.handleList)
				r.Post(coll, d.handleCreate)
				r.Get(coll+"/name/{name}", d.handleGet)
				r.Put(coll+"/name/{name}", d.handleUpdate)
				r.Delete(coll+"/name/{name}", d.handleDelete)
			}
		})
	})
	return r
}

// record logs the request and applies forced responses.
func (d *Device) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		d.mu.Lock()
		d.requests = append(d.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
			Authed: d.sessionOf(r) != "",
		})
		status, forced := d.overrides[r.Method+" "+r.URL.Path]
		d.mu.Unlock()

		if forced {
			writeStatus(w, status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionOf returns the valid session id carried by r. Caller holds d.mu.
func (d *Device) sessionOf(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil || !d.sessions[c.Value] {
		return ""
	}
	return c.Value
}

func (d *Device) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		ok := d.sessionOf(r) != ""
		d.mu.Unlock()
		if !ok {
			writeStatus(w, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (d *Device) handleLogin(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != d.Username || pass != d.Password {
		writeStatus(w, http.StatusUnauthorized)
		return
	}

	d.mu.Lock()
	d.nextID++
	id := fmt.Sprintf("session-%d", d.nextID)
	d.sessions[id] = true
	d.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: id, Path: "/"})
	writeJSON(w, http.StatusOK, statusBody(true, "Success."))
}

func (d *Device) handleLogout(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	id := d.sessionOf(r)
	delete(d.sessions, id)
	d.mu.Unlock()

	if id == "" {
		writeStatus(w, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, statusBody(true, "Success."))
}

func (d *Device) handlePendingGet(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	scope := chi.URLParam(r, "*")
	name := r.URL.Query().Get("name")
	changes := []Change{}
	for _, c := range d.pending {
		if scope != "" && !strings.HasPrefix(c.Collection, strings.TrimSuffix(scope, "/")) {
			continue
		}
		if name != "" && c.Name != name {
			continue
		}
		changes = append(changes, c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": changes})
}

func (d *Device) handleCommit(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.committed = d.live.clone()
	d.pending = nil
	d.commits++
	writeJSON(w, http.StatusOK, statusBody(true, "Success."))
}

func (d *Device) handleDiscard(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.live = d.committed.clone()
	d.pending = nil
	writeJSON(w, http.StatusOK, statusBody(true, "Success."))
}

func (d *Device) handleList(w http.ResponseWriter, r *http.Request) {
	coll := collectionOf(r)

	d.mu.Lock()
	defer d.mu.Unlock()
	writeJSON(w, http.StatusOK, listBody(coll, d.live[coll]))
}

func (d *Device) handleGet(w http.ResponseWriter, r *http.Request) {
	coll := collectionOf(r)
	name := chi.URLParam(r, "name")

	d.mu.Lock()
	defer d.mu.Unlock()

	obj, ok := d.live[coll][name]
	if !ok {
		writeJSON(w, http.StatusNotFound, statusBody(false, "Object not found."))
		return
	}
	writeJSON(w, http.StatusOK, listBody(coll, map[string]map[string]any{name: obj}))
}

func (d *Device) handleCreate(w http.ResponseWriter, r *http.Request) {
	coll := collectionOf(r)
	objs, err := decodeObjects(r.Body)
	if err != nil || len(objs) == 0 {
		writeJSON(w, http.StatusBadRequest, statusBody(false, "Malformed payload."))
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.live[coll] == nil {
		d.live[coll] = make(map[string]map[string]any)
	}
	for _, obj := range objs {
		name := obj["name"].(string)
		if _, exists := d.live[coll][name]; exists {
			writeJSON(w, http.StatusBadRequest, statusBody(false, "Duplicate name."))
			return
		}
	}
	for _, obj := range objs {
		name := obj["name"].(string)
		d.live[coll][name] = obj
		d.pending = append(d.pending, Change{Method: http.MethodPost, Collection: coll, Name: name})
	}
	writeJSON(w, http.StatusOK, statusBody(true, "Success."))
}

func (d *Device) handleUpdate(w http.ResponseWriter, r *http.Request) {
	coll := collectionOf(r)
	name := chi.URLParam(r, "name")
	objs, err := decodeObjects(r.Body)
	if err != nil || len(objs) != 1 {
		writeJSON(w, http.StatusBadRequest, statusBody(false, "Malformed payload."))
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	current, ok := d.live[coll][name]
	if !ok {
		writeJSON(w, http.StatusNotFound, statusBody(false, "Object not found."))
		return
	}

	merged := make(map[string]any, len(current))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range objs[0] {
		merged[k] = v
	}
	newName := merged["name"].(string)
	delete(d.live[coll], name)
	d.live[coll][newName] = merged
	d.pending = append(d.pending, Change{Method: http.MethodPut, Collection: coll, Name: newName})
	writeJSON(w, http.StatusOK, statusBody(true, "Success."))
}

func (d *Device) handleDelete(w http.ResponseWriter, r *http.Request) {
	coll := collectionOf(r)
	name := chi.URLParam(r, "name")

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.live[coll][name]; !ok {
		writeJSON(w, http.StatusNotFound, statusBody(false, "Object not found."))
		return
	}
	delete(d.live[coll], name)
	d.pending = append(d.pending, Change{Method: http.MethodDelete, Collection: coll, Name: name})
	writeJSON(w, http.StatusOK, statusBody(true, "Success."))
}

// listBody renders objects the way the device lists them:
// {"address_objects": [{"ipv4": {...}}, ...]} for versioned collections,
// {"service_objects": [{...}, ...]} otherwise.
func listBody(coll string, items map[string]map[string]any) map[string]any {
	family, kind, _ := strings.Cut(coll, "/")
	list := []any{}
	for _, obj := range items {
		if kind != "" {
			list = append(list, map[string]any{kind: obj})
		} else {
			list = append(list, obj)
		}
	}
	return map[string]any{strings.ReplaceAll(family, "-", "_"): list}
}

// collectionOf returns "address-objects/ipv4" or "service-objects" for r.
func collectionOf(r *http.Request) string {
	path := strings.TrimPrefix(r.URL.Path, apiPrefix)
	coll, _, _ := strings.Cut(path, "/name/")
	return strings.TrimSuffix(coll, "/")
}

// decodeObjects extracts every object carrying a "name" from a payload such
// as {"address_object": {"ipv4": {"name": ...}}} or
// {"address_objects": [{"ipv4": {"name": ...}}]}.
func decodeObjects(body io.Reader) ([]map[string]any, error) {
	var doc any
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return nil, err
	}

	var found []map[string]any
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			if name, ok := t["name"].(string); ok && name != "" {
				found = append(found, t)
				return
			}
			for _, child := range t {
				walk(child)
			}
		case []any:
			for _, child := range t {
				walk(child)
			}
		}
	}
	walk(doc)
	return found, nil
}

func statusBody(success bool, message string) map[string]any {
	return map[string]any{
		"status": map[string]any{
			"success": success,
			"info":    []any{map[string]any{"message": message}},
		},
	}
}

func writeStatus(w http.ResponseWriter, code int) {
	writeJSON(w, code, statusBody(false, http.StatusText(code)))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
