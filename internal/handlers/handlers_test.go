package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/billionaireobi/adaladesigns/internal/api"
	"github.com/billionaireobi/adaladesigns/internal/catalogue"
	"github.com/billionaireobi/adaladesigns/internal/models"
	"github.com/billionaireobi/adaladesigns/internal/session"
)

const (
	testUser     = "ada"
	testPassword = "secret"
	testToken    = "tok-123"
)

func ptr(v float64) *float64 { return &v }

// fakeBackend emulates the catalogue REST backend.
type fakeBackend struct {
	mu           sync.Mutex
	designs      map[int]models.Design
	nextID       int
	rejectAuth   bool // answer 401 on protected calls
	failList     bool
	requests     int
	createCalls  int
	lastCategory string

	mux *http.ServeMux
}

func newFakeBackend() *fakeBackend {
	fb := &fakeBackend{
		designs: map[int]models.Design{
			1: {ID: 1, Title: "Classic Navy Suit", Category: "suits", Price: ptr(45000), Currency: "KES", ImageURL: "/uploads/navy.jpg"},
			2: {ID: 2, Title: "Kitenge Gown", Category: "traditional", Currency: "KES"},
		},
		nextID: 3,
		mux:    http.NewServeMux(),
	}

	fb.mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["username"] != testUser || creds["password"] != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid username or password"})
			return
		}
		json.NewEncoder(w).Encode(models.AuthResponse{
			Token: testToken,
			User:  models.User{ID: 1, Username: testUser, Role: "admin"},
		})
	})

	fb.mux.HandleFunc("GET /api/designs", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.lastCategory = r.URL.Query().Get("category")
		fail := fb.failList
		var out []models.Design
		for id := 1; id < fb.nextID; id++ {
			d, ok := fb.designs[id]
			if !ok {
				continue
			}
			if fb.lastCategory == "" || d.Category == fb.lastCategory {
				out = append(out, d)
			}
		}
		fb.mu.Unlock()
		if fail {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(out)
	})

	fb.mux.HandleFunc("GET /api/designs/categories", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		seen := map[string]bool{}
		var out []string
		for id := 1; id < fb.nextID; id++ {
			if d, ok := fb.designs[id]; ok && !seen[d.Category] {
				seen[d.Category] = true
				out = append(out, d.Category)
			}
		}
		fb.mu.Unlock()
		json.NewEncoder(w).Encode(out)
	})

	fb.mux.HandleFunc("GET /api/designs/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		fb.mu.Lock()
		d, ok := fb.designs[id]
		fb.mu.Unlock()
		if !ok {
			http.Error(w, `{"error":"design not found"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(d)
	})

	fb.mux.HandleFunc("POST /api/designs", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.createCalls++
		fb.mu.Unlock()
		if !fb.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		r.ParseMultipartForm(1 << 20)
		if r.FormValue("title") == "" {
			http.Error(w, `{"error":"title is required"}`, http.StatusBadRequest)
			return
		}
		fb.mu.Lock()
		d := models.Design{
			ID:       fb.nextID,
			Title:    r.FormValue("title"),
			Category: r.FormValue("category"),
			Currency: r.FormValue("currency"),
		}
		fb.designs[fb.nextID] = d
		fb.nextID++
		fb.mu.Unlock()
		json.NewEncoder(w).Encode(d)
	})

	fb.mux.HandleFunc("PUT /api/designs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !fb.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id, _ := strconv.Atoi(r.PathValue("id"))
		fb.mu.Lock()
		defer fb.mu.Unlock()
		d, ok := fb.designs[id]
		if !ok {
			http.Error(w, `{"error":"design not found"}`, http.StatusNotFound)
			return
		}
		r.ParseMultipartForm(1 << 20)
		d.Title = r.FormValue("title")
		d.Category = r.FormValue("category")
		d.Currency = r.FormValue("currency")
		if r.FormValue("remove_image") == "true" {
			d.ImageURL = ""
		}
		fb.designs[id] = d
		w.WriteHeader(http.StatusOK)
	})

	fb.mux.HandleFunc("DELETE /api/designs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !fb.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id, _ := strconv.Atoi(r.PathValue("id"))
		fb.mu.Lock()
		defer fb.mu.Unlock()
		if _, ok := fb.designs[id]; !ok {
			http.Error(w, `{"error":"design not found"}`, http.StatusNotFound)
			return
		}
		delete(fb.designs, id)
		w.WriteHeader(http.StatusOK)
	})

	return fb
}

func (fb *fakeBackend) authorized(r *http.Request) bool {
	fb.mu.Lock()
	reject := fb.rejectAuth
	fb.mu.Unlock()
	return !reject && r.Header.Get("Authorization") == "Bearer "+testToken
}

func (fb *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	fb.requests++
	fb.mu.Unlock()
	fb.mux.ServeHTTP(w, r)
}

func (fb *fakeBackend) requestCount() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.requests
}

type testApp struct {
	t       *testing.T
	server  *httptest.Server
	client  *http.Client
	backend *fakeBackend
}

// newTestApp wires the full route table over a fake backend. CSRF, logging
// and rate limiting stay out; they belong to main's middleware chain.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	fb := newFakeBackend()
	backendSrv := httptest.NewServer(fb)
	t.Cleanup(backendSrv.Close)

	apiClient := api.NewClient(backendSrv.URL+"/api", backendSrv.URL, 5*time.Second)
	cache := catalogue.New(apiClient, time.Hour)
	sessions := session.NewStore([]byte("0123456789abcdef0123456789abcdef"), false, "")

	templates := NewTemplateCache()
	templates.AddFunc("priceLabel", models.PriceLabel)
	templates.AddFunc("imageURL", apiClient.ImageURL)
	require.NoError(t, templates.Load("../../templates"))

	public := &PublicHandler{API: apiClient, Catalogue: cache, Templates: templates}
	admin := &AdminHandler{API: apiClient, Sessions: sessions, Catalogue: cache, Templates: templates}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", public.Home)
	mux.HandleFunc("GET /catalogue", public.CataloguePage)
	mux.HandleFunc("GET /design/{id}", public.DesignDetail)
	mux.HandleFunc("GET /about", public.About)
	mux.HandleFunc("GET /contact", public.Contact)
	mux.HandleFunc("GET /admin/login", admin.LoginGet)
	mux.HandleFunc("POST /admin/login", admin.LoginPost)
	mux.HandleFunc("GET /admin/logout", admin.Logout)
	mux.HandleFunc("GET /admin/dashboard", admin.RequireSession(admin.Dashboard))
	mux.HandleFunc("GET /admin/design/new", admin.RequireSession(admin.NewDesignForm))
	mux.HandleFunc("POST /admin/design/new", admin.RequireSession(admin.CreateDesign))
	mux.HandleFunc("GET /admin/design/edit/{id}", admin.RequireSession(admin.EditDesignForm))
	mux.HandleFunc("POST /admin/design/edit/{id}", admin.RequireSession(admin.UpdateDesign))
	mux.HandleFunc("POST /admin/design/delete", admin.RequireSession(admin.DeleteDesign))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{t: t, server: srv, client: client, backend: fb}
}

func (a *testApp) get(path string) (*http.Response, string) {
	a.t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp, string(body)
}

func (a *testApp) postForm(path string, form url.Values) (*http.Response, string) {
	a.t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp, string(body)
}

// postMultipart submits the design form the way the browser does.
func (a *testApp) postMultipart(path string, fields map[string]string) (*http.Response, string) {
	a.t.Helper()
	var buf strings.Builder
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(a.t, mw.WriteField(name, value))
	}
	require.NoError(a.t, mw.Close())

	resp, err := a.client.Post(a.server.URL+path, mw.FormDataContentType(), strings.NewReader(buf.String()))
	require.NoError(a.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp, string(body)
}

func (a *testApp) login() {
	a.t.Helper()
	resp, _ := a.postForm("/admin/login", url.Values{
		"username": {testUser},
		"password": {testPassword},
	})
	require.Equal(a.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(a.t, "/admin/dashboard", resp.Header.Get("Location"))
}
