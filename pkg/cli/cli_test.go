package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/gaslink/pkg/audit"
	"github.com/platinummonkey/gaslink/pkg/client"
	"github.com/platinummonkey/gaslink/pkg/config"
	"github.com/platinummonkey/gaslink/pkg/pricing"
	"github.com/platinummonkey/gaslink/pkg/session"
	"github.com/platinummonkey/gaslink/pkg/views"
	"github.com/platinummonkey/gaslink/pkg/webhooks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type call struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]interface{}
}

type fakePlatform struct {
	*httptest.Server
	mu    sync.Mutex
	calls []call
}

func (f *fakePlatform) record(r *http.Request) {
	c := call{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&c.Body)
	}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakePlatform) find(method, path string) (call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			return c, true
		}
	}
	return call{}, false
}

var (
	customer = map[string]interface{}{"_id": "u1", "firstName": "Ada", "lastName": "Obi", "email": "ada@example.com", "role": "customer"}
	admin    = map[string]interface{}{"_id": "a1", "firstName": "Tunde", "email": "tunde@example.com", "role": "admin"}
	plan     = map[string]interface{}{
		"_id": "p1", "name": "Family", "type": "preset", "pricePerKg": 500,
		"cylinderSizes": []string{"6kg", "12kg"}, "deliveryFrequency": []string{"Weekly", "Bi-weekly"},
		"subscriptionPeriod": []int{1, 2, 3}, "isActive": true,
	}
	subscription = map[string]interface{}{
		"_id": "s1", "user": customer, "plan": plan, "size": "12kg", "frequency": "Weekly",
		"subscriptionPeriod": 1, "price": 24000, "status": "active",
	}
)

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	f := &fakePlatform{}
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.record(req)
			if req.URL.Path != "/api/v1/auth/login" && req.Header.Get("Authorization") == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "message": "No token provided"})
				return
			}
			next.ServeHTTP(w, req)
		})
	})

	r.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		body := f.calls[len(f.calls)-1].Body
		f.mu.Unlock()
		if body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "token": "tok-customer", "user": customer})
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/subscription-plans", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "plans": []interface{}{plan}})
	})
	r.HandleFunc("/api/v1/subscription-plans/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "plan": plan})
	})
	r.HandleFunc("/api/v1/subscriptions", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "subscription": map[string]interface{}{"_id": "s2", "status": "pending"}})
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/subscriptions/{id}/pause", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "subscription": map[string]interface{}{"_id": mux.Vars(req)["id"], "status": "paused"}})
	})
	r.HandleFunc("/api/v1/admin/delivery/my-deliveries", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"deliveries": []map[string]interface{}{
				{"_id": "d-next-week", "deliveryDate": fixedNow.AddDate(0, 0, 7), "status": "pending", "address": "Lekki"},
				{"_id": "d-today", "deliveryDate": fixedNow, "status": "out_for_delivery", "address": "Ikeja"},
			},
		})
	})
	r.HandleFunc("/api/v1/admin/users", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"users":      []interface{}{customer, admin},
			"pagination": map[string]int{"page": 1, "limit": 20, "total": 2, "totalPages": 1},
		})
	})
	r.HandleFunc("/api/v1/admin/users/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "User deleted"})
	}).Methods(http.MethodDelete)
	r.HandleFunc("/api/v1/admin/subscriptions/{id}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "subscription": subscription})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/admin/subscriptions/{id}", func(w http.ResponseWriter, req *http.Request) {
		updated := map[string]interface{}{}
		for k, v := range subscription {
			updated[k] = v
		}
		updated["status"] = "paused"
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "subscription": updated})
	}).Methods(http.MethodPut)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Close)
	return f
}

func newTestApp(t *testing.T, baseURL string, opts ...func(*config.Config)) *App {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{
		API:           config.APIConfig{BaseURL: baseURL, Timeout: 5 * time.Second},
		Catalog:       config.CatalogConfig{TTL: time.Minute, Size: 16},
		WatchSchedule: "@every 15m",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	app := &App{
		Config: cfg,
		Logger: logger,
		Store:  session.NewMemoryStore(),
		Now:    func() time.Time { return fixedNow },
	}
	require.NoError(t, app.setup(context.Background()))
	t.Cleanup(func() { app.Close() })
	return app
}

func loginAs(t *testing.T, app *App, token string, user map[string]interface{}) {
	t.Helper()
	u := client.User{ID: user["_id"].(string), FirstName: user["firstName"].(string), Role: client.Role(user["role"].(string))}
	_, err := app.Sessions.Login(context.Background(), token, u)
	require.NoError(t, err)
}

func run(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	f := newFakePlatform(t)
	app := newTestApp(t, f.URL)

	out, err := run(t, app, "", "login", "--email", "ada@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Ada Obi (customer)")
	c, ok := f.find(http.MethodPost, "/api/v1/auth/login")
	require.True(t, ok)
	assert.Empty(t, c.Auth)

	out, err = run(t, app, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")

	_, err = run(t, app, "", "logout")
	require.NoError(t, err)

	_, err = run(t, app, "", "whoami")
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Equal(t, "Not logged in. Run `gaslink login` first.", UserMessage(err))
}

func TestLogin_PromptsAndReportsPlatformMessage(t *testing.T) {
	f := newFakePlatform(t)
	app := newTestApp(t, f.URL)

	_, err := run(t, app, "ada@example.com\nwrong\n", "login")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", UserMessage(err))

	c, ok := f.find(http.MethodPost, "/api/v1/auth/login")
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", c.Body["email"])
	assert.Empty(t, c.Auth)
}

func TestQuote(t *testing.T) {
	f := newFakePlatform(t)
	app := newTestApp(t, f.URL)
	loginAs(t, app, "tok-customer", customer)

	out, err := run(t, app, "", "quote", "--plan", "p1", "--size", "12kg", "--frequency", "Bi-weekly", "--period", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "NGN 24,000")

	_, err = run(t, app, "", "quote", "--plan", "p1", "--size", "50kg", "--frequency", "Weekly")
	var verr *pricing.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "size", verr.Field)
}

func TestSubscriptionsCreateAndPause(t *testing.T) {
	f := newFakePlatform(t)
	app := newTestApp(t, f.URL)
	loginAs(t, app, "tok-customer", customer)

	out, err := run(t, app, "", "subscriptions", "create", "--plan", "p1", "--size", "6kg", "--frequency", "Weekly", "--address", "12 Admiralty Way")
	require.NoError(t, err)
	assert.Contains(t, out, "s2")

	c, ok := f.find(http.MethodPost, "/api/v1/subscriptions")
	require.True(t, ok)
	assert.Equal(t, float64(12000), c.Body["price"])
	assert.Equal(t, float64(1), c.Body["subscriptionPeriod"])
	assert.Equal(t, "12 Admiralty Way", c.Body["address"])

	out, err = run(t, app, "", "subs", "pause", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Subscription s1 is now paused")
}

func TestDeliveries(t *testing.T) {
	f := newFakePlatform(t)
	app := newTestApp(t, f.URL)
	loginAs(t, app, "tok-customer", customer)

	out, err := run(t, app, "", "deliveries")
	require.NoError(t, err)
	assert.Contains(t, out, "Upcoming: 2")
	assert.Less(t, strings.Index(out, "d-today"), strings.Index(out, "d-next-week"))

	out, err = run(t, app, "", "deliveries", "--json", "--search", "lekki")
	require.NoError(t, err)
	var board struct {
		Sorted []map[string]interface{} `json:"sorted"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &board))
	require.Len(t, board.Sorted, 1)
	assert.Equal(t, "d-next-week", board.Sorted[0]["_id"])

	_, err = run(t, app, "", "deliveries", "--order", "sideways")
	assert.ErrorContains(t, err, "invalid sort order")
}

func TestWatchOnce(t *testing.T) {
	f := newFakePlatform(t)
	app := newTestApp(t, f.URL)
	loginAs(t, app, "tok-customer", customer)

	out, err := run(t, app, "", "watch", "--once")
	require.NoError(t, err)
	assert.Contains(t, out, "Today (1):")
	assert.Contains(t, out, "d-today")
}

func TestWatchOnce_Webhook(t *testing.T) {
	f := newFakePlatform(t)
	app := newTestApp(t, f.URL)
	loginAs(t, app, "tok-customer", customer)

	received := make(chan webhooks.Event, 1)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event webhooks.Event
		json.NewDecoder(r.Body).Decode(&event)
		received <- event
	}))
	defer hook.Close()

	_, err := run(t, app, "", "watch", "--once", "--webhook", hook.URL)
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, webhooks.EventDeliveryReminder, event.Type)
		require.Len(t, event.Data.Today, 1)
		assert.Equal(t, "d-today", event.Data.Today[0].ID)
	default:
		t.Fatal("webhook was not called")
	}
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	f := newFakePlatform(t)
	app := newTestApp(t, f.URL)
	loginAs(t, app, "tok-customer", customer)

	_, err := run(t, app, "", "admin", "users", "list")
	assert.ErrorContains(t, err, "admin access required")
	_, called := f.find(http.MethodGet, "/api/v1/admin/users")
	assert.False(t, called)
}

func TestAdmin_UsersListAndDelete(t *testing.T) {
	f := newFakePlatform(t)
	app := newTestApp(t, f.URL, func(cfg *config.Config) { cfg.Audit.Dir = t.TempDir() })
	loginAs(t, app, "tok-admin", admin)

	out, err := run(t, app, "", "admin", "users", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "Page 1 of 1 (2 users)")

	out, err = run(t, app, "n\n", "admin", "users", "delete", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")
	_, deleted := f.find(http.MethodDelete, "/api/v1/admin/users/u1")
	assert.False(t, deleted)

	out, err = run(t, app, "", "admin", "users", "delete", "u1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted user u1")
	_, deleted = f.find(http.MethodDelete, "/api/v1/admin/users/u1")
	assert.True(t, deleted)

	events, err := app.Audit.(*audit.FileLogger).ReadLogs(0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventTypeUserDelete, events[0].EventType)
	assert.Equal(t, audit.EventStatusSuccess, events[0].Status)
	assert.Equal(t, "a1", events[0].ActorID)
	assert.Equal(t, "u1", events[0].ResourceID)
}

func TestAdmin_SubscriptionEdit(t *testing.T) {
	f := newFakePlatform(t)
	app := newTestApp(t, f.URL)
	loginAs(t, app, "tok-admin", admin)

	out, err := run(t, app, "", "admin", "subscriptions", "edit", "s1", "--status", "paused")
	require.NoError(t, err)
	assert.Contains(t, out, "paused")
	assert.Contains(t, out, "Ada Obi")

	c, ok := f.find(http.MethodPut, "/api/v1/admin/subscriptions/s1")
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"status": "paused"}, c.Body)
	assert.IsType(t, audit.NoOpLogger{}, app.Audit)

	_, err = run(t, app, "", "admin", "subscriptions", "edit", "s1", "--next-delivery", "10/03/2026")
	assert.ErrorContains(t, err, "YYYY-MM-DD")
}

func TestAdmin_SubscriptionEditSizeReprices(t *testing.T) {
	f := newFakePlatform(t)
	app := newTestApp(t, f.URL)
	loginAs(t, app, "tok-admin", admin)

	_, err := run(t, app, "", "admin", "subscriptions", "edit", "s1", "--size", "50kg")
	require.Error(t, err)
	_, ok := f.find(http.MethodPut, "/api/v1/admin/subscriptions/s1")
	assert.False(t, ok, "an unpriceable size must not be saved")

	_, err = run(t, app, "", "admin", "subscriptions", "edit", "s1", "--size", "6kg")
	require.NoError(t, err)

	c, ok := f.find(http.MethodPut, "/api/v1/admin/subscriptions/s1")
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"size": "6kg", "price": float64(12000)}, c.Body)
}

func TestEditFlow(t *testing.T) {
	type item struct{ ID, Name string }
	load := func() (*item, error) { return &item{ID: "1", Name: "before"}, nil }

	screen := views.NewScreen[item]()
	got, err := editFlow(screen, load, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "before", got.Name)
	assert.Equal(t, views.ModeDetails, screen.Mode())

	screen = views.NewScreen[item]()
	_, err = editFlow(screen, load, func(i *item) (*item, error) { return nil, errors.New("rejected") }, true)
	assert.ErrorContains(t, err, "rejected")
	assert.Equal(t, views.ModeEdit, screen.Mode())

	screen = views.NewScreen[item]()
	got, err = editFlow(screen, load, func(i *item) (*item, error) {
		return &item{ID: i.ID, Name: "after"}, nil
	}, true)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Name)
	selected, ok := screen.Selected()
	require.True(t, ok)
	assert.Equal(t, "after", selected.Name)
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "NGN 0"},
		{999, "NGN 999"},
		{1000, "NGN 1,000"},
		{24000, "NGN 24,000"},
		{1234567, "NGN 1,234,567"},
		{1000005, "NGN 1,000,005"},
		{-5000, "NGN -5,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, money(tt.in))
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Your session has expired. Run `gaslink login` again.", UserMessage(session.ErrSessionExpired))
	assert.Equal(t, "Network error, please try again", UserMessage(&client.Error{Kind: client.KindNetwork, Err: errors.New("refused")}))
	assert.Equal(t, "Your session is no longer valid. Run `gaslink login` again.", UserMessage(&client.Error{Kind: client.KindAPI, Status: 401}))
	assert.Equal(t, "Error: boom", UserMessage(errors.New("boom")))
}
