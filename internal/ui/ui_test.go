package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tripmate/internal/catalog"
	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/router"
	"github.com/desertthunder/tripmate/internal/shared"
	"github.com/desertthunder/tripmate/internal/store"
	"github.com/desertthunder/tripmate/internal/tasks"
	tu "github.com/desertthunder/tripmate/internal/testing"
)

var testCatalog = &catalog.Catalog{
	Places: []models.Place{
		{ID: 1, Name: "Harbor Market", Category: "market", Rating: 4.5},
		{ID: 2, Name: "Hill Cafe", Category: "cafe", Rating: 4.1},
	},
	Locations: []models.Location{{ID: 1, PlaceID: 1, Name: "Harbor Market", Lat: 35.1, Lng: 129.0}},
}

type harness struct {
	model    *Model
	state    *store.AppState
	router   *router.Router
	identity *tu.MockIdentity
	writer   *tu.MockWriter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := shared.NewLogger(io.Discard)
	h := &harness{
		router:   router.New(logger),
		identity: &tu.MockIdentity{Credential: &models.Credential{UID: "u1", DisplayName: "Ada", Email: "ada@example.com"}},
		writer:   &tu.MockWriter{},
	}
	h.state = store.New(store.Options{
		Catalog:   testCatalog,
		Identity:  h.identity,
		Documents: tu.NewMemoryDocuments(nil),
		Navigator: h.router,
		Writer:    h.writer,
		Logger:    logger,
	})
	h.model = NewModel(context.Background(), h.state, h.router)
	h.model.email.Cursor.SetMode(cursor.CursorStatic)
	h.model.password.Cursor.SetMode(cursor.CursorStatic)
	return h
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	if err := h.state.LoginWithPassword(context.Background(), "ada@example.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	h.model.refresh()
}

// press sends a key and runs the resulting command, feeding action results back into the model.
func (h *harness) press(t *testing.T, k tea.KeyMsg) {
	t.Helper()
	_, cmd := h.model.Update(k)
	h.drain(cmd)
}

func (h *harness) drain(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(Msg); ok {
		_, next := h.model.Update(msg)
		h.drain(next)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func titles(m *Model) []string {
	var out []string
	for _, item := range m.list.Items() {
		out = append(out, item.FilterValue())
	}
	return out
}

func TestModel(t *testing.T) {
	t.Run("home lists the catalog", func(t *testing.T) {
		h := newHarness(t)
		got := titles(h.model)
		if len(got) != 2 || got[0] != "Harbor Market" || got[1] != "Hill Cafe" {
			t.Errorf("titles = %v", got)
		}
		if h.model.list.Title != "Places" {
			t.Errorf("title = %q", h.model.list.Title)
		}
	})

	t.Run("like toggles the selected place", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t)

		h.press(t, runes("f"))
		if !h.state.IsLiked(1) {
			t.Fatal("expected place 1 to be liked")
		}
		item := h.model.list.Items()[0].(placeItem)
		if !item.liked || !strings.Contains(item.Title(), "♥") {
			t.Errorf("item not marked liked: %+v", item)
		}
		if h.model.status != "Added to liked places" {
			t.Errorf("status = %q", h.model.status)
		}

		h.press(t, runes("f"))
		if h.state.IsLiked(1) {
			t.Error("expected place 1 to be unliked")
		}
		if got := len(h.writer.Enqueued()); got != 2 {
			t.Errorf("expected 2 write-through snapshots, got %d", got)
		}
	})

	t.Run("like while signed out opens the login modal", func(t *testing.T) {
		h := newHarness(t)
		h.press(t, runes("f"))

		if !h.state.ModalVisible() {
			t.Error("expected login modal")
		}
		if !errors.Is(h.model.err, shared.ErrNotSignedIn) {
			t.Errorf("err = %v", h.model.err)
		}
		if len(h.state.Liked()) != 0 {
			t.Error("liked set changed")
		}
	})

	t.Run("schedule adds the selected place", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t)

		h.press(t, tea.KeyMsg{Type: tea.KeyDown})
		h.press(t, runes("s"))

		schedules := h.state.Schedules()
		if len(schedules) != 1 {
			t.Fatalf("expected 1 schedule, got %d", len(schedules))
		}
		if schedules[0].Title() != "Hill Cafe" || schedules[0]["place_id"] != 2 {
			t.Errorf("entry = %v", schedules[0])
		}
	})

	t.Run("login modal signs in with password", func(t *testing.T) {
		h := newHarness(t)
		h.press(t, runes("a"))
		if !h.state.ModalVisible() {
			t.Fatal("expected login modal")
		}

		h.press(t, runes("ada@example.com"))
		h.press(t, tea.KeyMsg{Type: tea.KeyTab})
		h.press(t, runes("secret1"))
		h.press(t, tea.KeyMsg{Type: tea.KeyEnter})

		if user := h.state.User(); user == nil || user.ID != "u1" {
			t.Fatalf("user = %+v", user)
		}
		if h.state.ModalVisible() {
			t.Error("modal should close after sign in")
		}
		if h.identity.CallCount("SignInWithPassword") != 1 {
			t.Error("expected one password sign in")
		}
		if h.model.password.Value() != "" {
			t.Error("password input should be cleared")
		}
	})

	t.Run("login modal registers when toggled", func(t *testing.T) {
		h := newHarness(t)
		h.press(t, runes("a"))
		h.press(t, tea.KeyMsg{Type: tea.KeyCtrlR})
		if !strings.Contains(h.model.View(), "Create account") {
			t.Error("expected register heading")
		}

		h.press(t, runes("new@example.com"))
		h.press(t, tea.KeyMsg{Type: tea.KeyEnter})
		h.press(t, runes("secret1"))
		h.press(t, tea.KeyMsg{Type: tea.KeyEnter})

		if h.identity.CallCount("CreateUser") != 1 {
			t.Error("expected CreateUser")
		}
		if !h.state.IsLoggedIn() {
			t.Error("expected signed in")
		}
	})

	t.Run("failed sign in keeps the modal open", func(t *testing.T) {
		h := newHarness(t)
		h.identity.PopupErr = errors.New("popup closed")
		h.press(t, runes("a"))
		h.press(t, tea.KeyMsg{Type: tea.KeyCtrlG})

		if h.state.IsLoggedIn() {
			t.Error("expected signed out")
		}
		if !h.state.ModalVisible() {
			t.Error("modal should stay open")
		}
		if !errors.Is(h.model.err, shared.ErrAuthFailed) {
			t.Errorf("err = %v", h.model.err)
		}
		if !strings.Contains(h.model.View(), "popup closed") {
			t.Error("expected error in modal")
		}
	})

	t.Run("side menu navigates", func(t *testing.T) {
		h := newHarness(t)
		h.press(t, runes("m"))
		if !h.state.SideMenuVisible() {
			t.Fatal("expected side menu")
		}

		h.model.menu.Select(3)
		h.press(t, tea.KeyMsg{Type: tea.KeyEnter})

		if h.router.Current() != router.Locations {
			t.Errorf("route = %q", h.router.Current())
		}
		if h.state.SideMenuVisible() {
			t.Error("menu should close")
		}
		if _, ok := h.model.list.Items()[0].(locationItem); !ok {
			t.Error("expected location items")
		}
		if h.model.list.Title != "Places › Locations" {
			t.Errorf("title = %q", h.model.list.Title)
		}

		h.press(t, tea.KeyMsg{Type: tea.KeyEsc})
		if h.router.Current() != router.Home {
			t.Errorf("back should return home, got %q", h.router.Current())
		}
	})

	t.Run("logout shows an alert that enter dismisses", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t)
		h.router.Navigate(router.Liked)

		h.press(t, runes("x"))
		if h.state.IsLoggedIn() {
			t.Fatal("expected signed out")
		}
		if h.router.Current() != router.Home {
			t.Errorf("route = %q", h.router.Current())
		}
		if !strings.Contains(h.model.View(), store.LogoutMessage) {
			t.Error("expected logout alert")
		}

		h.press(t, tea.KeyMsg{Type: tea.KeyEnter})
		if h.state.Alert() != nil {
			t.Error("alert should be cleared")
		}
	})

	t.Run("alert without callback is cleared", func(t *testing.T) {
		h := newHarness(t)
		h.state.SetAlert(&models.AlertData{AlertText: "hello", ButtonText1: "OK"})
		h.press(t, tea.KeyMsg{Type: tea.KeyEsc})
		if h.state.Alert() != nil {
			t.Error("alert should be cleared")
		}
	})

	t.Run("state changes refresh the list", func(t *testing.T) {
		h := newHarness(t)
		h.router.Navigate(router.Liked)
		h.model.refresh()
		if len(h.model.list.Items()) != 0 {
			t.Fatal("expected no liked places")
		}

		h.state.InitLiked([]int{2})
		h.model.Update(stateChangedMsg(store.ChangeInitLiked))
		if got := titles(h.model); len(got) != 1 || got[0] != "Hill Cafe" {
			t.Errorf("titles = %v", got)
		}
	})
}

func TestWriteProgress(t *testing.T) {
	t.Run("no channel means nothing to wait for", func(t *testing.T) {
		h := newHarness(t)
		if cmd := h.model.Init(); cmd != nil {
			t.Error("Init() should return nil without a progress channel")
		}
	})

	t.Run("status line follows write updates", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t)
		updates := make(chan tasks.WriteUpdate, 4)
		h.model.Watch(updates)

		tests := []struct {
			update tasks.WriteUpdate
			want   string
		}{
			{tasks.WriteUpdate{Phase: tasks.WriteStarted, Path: "users/u1"}, "Saving users/u1..."},
			{tasks.WriteUpdate{Phase: tasks.WriteCoalesced, Path: "users/u1"}, "Saving users/u1..."},
			{tasks.WriteUpdate{Phase: tasks.WriteDone, Path: "users/u1"}, "Saved users/u1"},
			{tasks.WriteUpdate{Phase: tasks.WriteFailed, Path: "users/u1", Err: errors.New("disk full")}, "Failed to save users/u1: disk full"},
		}

		cmd := h.model.Init()
		for _, tt := range tests {
			updates <- tt.update
			if cmd == nil {
				t.Fatal("expected a command waiting for write updates")
			}
			_, cmd = h.model.Update(cmd())
			if view := h.model.View(); !strings.Contains(view, tt.want) {
				t.Errorf("%s: view missing %q", tt.update.Phase, tt.want)
			}
		}
	})

	t.Run("closed channel stops waiting", func(t *testing.T) {
		h := newHarness(t)
		updates := make(chan tasks.WriteUpdate)
		close(updates)
		h.model.Watch(updates)

		if msg := h.model.Init()(); msg != nil {
			t.Errorf("msg = %v, want nil", msg)
		}
	})
}

func TestListItems(t *testing.T) {
	tests := []struct {
		name  string
		item  list.DefaultItem
		title string
		desc  string
	}{
		{"place", placeItem{place: testCatalog.Places[0]}, "Harbor Market", "market • ★ 4.5"},
		{"location", locationItem{location: testCatalog.Locations[0]}, "Harbor Market", "35.10000, 129.00000"},
		{"schedule", scheduleItem{entry: models.ScheduleEntry{"title": "Day one"}}, "Day one", ""},
		{"untitled schedule", scheduleItem{index: 2, entry: models.ScheduleEntry{}}, "Entry 3", ""},
		{"route", routeItem{path: "/liked", title: "Liked"}, "Liked", "/liked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Title(); got != tt.title {
				t.Errorf("Title() = %q, want %q", got, tt.title)
			}
			if got := tt.item.Description(); got != tt.desc {
				t.Errorf("Description() = %q, want %q", got, tt.desc)
			}
		})
	}
}
