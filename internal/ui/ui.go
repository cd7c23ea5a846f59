package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/router"
	"github.com/desertthunder/tripmate/internal/shared"
	"github.com/desertthunder/tripmate/internal/store"
	"github.com/desertthunder/tripmate/internal/tasks"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	menuWidth     = 24
)

const (
	focusEmail = iota
	focusPassword
)

var actionSuccess = map[string]string{
	"sign in":        "Signed in",
	"register":       "Account created",
	"google sign in": "Signed in with Google",
	"sign out":       "Signed out",
	"like":           "Added to liked places",
	"unlike":         "Removed from liked places",
	"schedule":       "Added to schedule",
}

// Model represents the TUI application state. Everything user-visible is read from the store.
type Model struct {
	ctx         context.Context
	state       *store.AppState
	router      *router.Router
	width       int
	height      int
	list        list.Model
	menu        list.Model
	email       textinput.Model
	password    textinput.Model
	focus       int
	registering bool
	busy        bool
	status      string
	err         error
	writes      <-chan tasks.WriteUpdate
	write       *tasks.WriteUpdate
	help        help.Model
	keys        keyMap
}

// NewModel creates a TUI model bound to state and r.
func NewModel(ctx context.Context, state *store.AppState, r *router.Router) *Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	routes := make([]list.Item, len(router.Routes))
	for i, rt := range router.Routes {
		routes[i] = routeItem{path: rt.Path, title: rt.Title}
	}
	menu := list.New(routes, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "Menu"
	menu.SetShowHelp(false)
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)

	places := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	places.SetShowHelp(false)

	m := &Model{
		ctx:      ctx,
		state:    state,
		router:   r,
		list:     places,
		menu:     menu,
		email:    email,
		password: password,
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.setSize(defaultWidth, defaultHeight)
	m.refresh()
	return m
}

// Attach forwards store mutations and route changes to p. The returned func detaches.
//
// Listeners send from a new goroutine: mutations made inside Update would otherwise block on the
// program's own event loop.
func (m *Model) Attach(p *tea.Program) (detach func()) {
	cancel := m.state.Subscribe(func(c store.Change) {
		go p.Send(stateChangedMsg(c))
	})
	m.router.OnChange(func(path string) {
		go p.Send(routeChangedMsg(path))
	})
	return func() {
		cancel()
		m.router.OnChange(nil)
	}
}

// Watch shows write-through progress from updates in the status line. Call before the program starts.
func (m *Model) Watch(updates <-chan tasks.WriteUpdate) {
	m.writes = updates
}

// Init implements [tea.Model]. The store is already populated; only write progress is awaited.
func (m *Model) Init() tea.Cmd {
	return m.waitForWrite()
}

func (m *Model) waitForWrite() tea.Cmd {
	if m.writes == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-m.writes
		if !ok {
			return nil
		}
		return writeUpdateMsg(update)
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.state.Alert() != nil:
			return m.handleAlertKeys(msg)
		case m.state.ModalVisible():
			return m.handleModalKeys(msg)
		case m.state.SideMenuVisible():
			return m.handleMenuKeys(msg)
		default:
			return m.handleListKeys(msg)
		}
	}

	return m.updateInputs(msg)
}

// View renders the route view with whichever overlay is active.
func (m *Model) View() string {
	if alert := m.state.Alert(); alert != nil {
		return m.renderAlert(alert)
	}
	if m.state.ModalVisible() {
		return m.renderModal()
	}

	body := m.list.View()
	if m.state.SideMenuVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, styles.menu.Render(m.menu.View()), body)
	}
	return fmt.Sprintf("%s\n%s\n%s", body, m.renderStatus(), m.help.View(m.keys))
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStateChanged, MsgRouteChanged:
		m.refresh()
	case MsgWriteUpdate:
		update := msg.data.(tasks.WriteUpdate)
		if update.Phase != tasks.WriteCoalesced {
			m.write = &update
		}
		return m, m.waitForWrite()
	case MsgActionDone:
		res := msg.data.(actionResult)
		m.busy = false
		m.err = res.err
		m.status = ""
		switch {
		case errors.Is(res.err, shared.ErrNotSignedIn):
			m.refresh()
			return m, m.openModal()
		case res.err == nil:
			m.status = actionSuccess[res.op]
			if !m.state.ModalVisible() {
				m.password.SetValue("")
				m.email.Blur()
				m.password.Blur()
			}
		}
		m.refresh()
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.menu):
		m.state.SetSideMenuVisible(true)
		return m, nil
	case key.Matches(msg, m.keys.back):
		if m.router.Back() {
			m.refresh()
		}
		return m, nil
	case key.Matches(msg, m.keys.login):
		if !m.state.IsLoggedIn() {
			return m, m.openModal()
		}
		return m, nil
	case key.Matches(msg, m.keys.logout):
		if m.state.IsLoggedIn() {
			return m, m.run("sign out", m.state.Logout)
		}
		return m, nil
	case key.Matches(msg, m.keys.like):
		if place, ok := m.selectedPlace(); ok {
			id := place.ID
			if m.state.IsLiked(id) {
				return m, m.run("unlike", func(ctx context.Context) error { return m.state.UnlikePlace(ctx, id) })
			}
			return m, m.run("like", func(ctx context.Context) error { return m.state.LikePlace(ctx, id) })
		}
		return m, nil
	case key.Matches(msg, m.keys.schedule):
		if place, ok := m.selectedPlace(); ok {
			entry := models.ScheduleEntry{
				"title":    place.Name,
				"place_id": place.ID,
				"added_at": time.Now().Format(time.RFC3339),
			}
			return m, m.run("schedule", func(ctx context.Context) error { return m.state.AddScheduleEntry(ctx, entry) })
		}
		return m, nil
	}

	return m.updateList(msg)
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.menu):
		m.state.SetSideMenuVisible(false)
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.menu.SelectedItem().(routeItem); ok {
			m.state.SetSideMenuVisible(false)
			m.router.Navigate(item.path)
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) handleModalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.back):
		m.state.SetModalVisible(false)
		m.email.Blur()
		m.password.Blur()
		return m, nil
	case key.Matches(msg, m.keys.next):
		return m, m.setFocus(1 - m.focus)
	case key.Matches(msg, m.keys.register):
		m.registering = !m.registering
		return m, nil
	case key.Matches(msg, m.keys.google):
		return m, m.run("google sign in", m.state.LoginWithProvider)
	case key.Matches(msg, m.keys.enter):
		if m.focus == focusEmail {
			return m, m.setFocus(focusPassword)
		}
		email, password := m.email.Value(), m.password.Value()
		if m.registering {
			return m, m.run("register", func(ctx context.Context) error {
				return m.state.RegisterAccount(ctx, email, password)
			})
		}
		return m, m.run("sign in", func(ctx context.Context) error {
			return m.state.LoginWithPassword(ctx, email, password)
		})
	}

	return m.updateInputs(msg)
}

func (m *Model) handleAlertKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	alert := m.state.Alert()
	button := 0
	switch {
	case key.Matches(msg, m.keys.enter):
		button = 1
	case key.Matches(msg, m.keys.back):
		button = 1
		if alert.ButtonText2 != "" {
			button = 2
		}
	default:
		return m, nil
	}

	alert.Acknowledge(button)
	if m.state.Alert() == alert {
		m.state.SetAlert(nil)
	}
	m.refresh()
	return m, nil
}

// run executes a store action off the event loop and reports through [MsgActionDone].
func (m *Model) run(op string, action func(context.Context) error) tea.Cmd {
	m.busy = true
	m.err = nil
	m.status = op + "..."
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg(op, action(ctx))
	}
}

func (m *Model) openModal() tea.Cmd {
	m.state.SetModalVisible(true)
	return m.setFocus(focusEmail)
}

func (m *Model) setFocus(field int) tea.Cmd {
	m.focus = field
	if field == focusEmail {
		m.password.Blur()
		return m.email.Focus()
	}
	m.email.Blur()
	return m.password.Focus()
}

func (m *Model) selectedPlace() (models.Place, bool) {
	item, ok := m.list.SelectedItem().(placeItem)
	return item.place, ok
}

func (m *Model) setSize(width, height int) {
	m.width, m.height = width, height
	m.list.SetSize(width-4, height-6)
	m.menu.SetSize(menuWidth, height-6)
	m.email.Width = min(40, width-12)
	m.password.Width = min(40, width-12)
}

// refresh rebuilds the list for the active route from the store.
func (m *Model) refresh() {
	path := m.router.Current()
	var items []list.Item

	switch path {
	case router.Liked:
		for _, p := range m.state.LikedPlaces() {
			items = append(items, placeItem{place: p, liked: true})
		}
	case router.Schedules:
		for i, e := range m.state.Schedules() {
			items = append(items, scheduleItem{index: i, entry: e})
		}
	case router.Locations:
		for _, l := range m.state.Locations() {
			items = append(items, locationItem{location: l})
		}
	default:
		liked := make(map[int]bool)
		for _, id := range m.state.Liked() {
			liked[id] = true
		}
		for _, p := range m.state.Places() {
			items = append(items, placeItem{place: p, liked: liked[p.ID]})
		}
	}

	m.list.Title = m.breadcrumb(path)
	m.list.SetItems(items)
}

// breadcrumb titles the list with the route the user came from, when it differs from path.
func (m *Model) breadcrumb(path string) string {
	title := router.Title(path)
	history := m.router.History()
	if len(history) == 0 {
		return title
	}
	if prev := history[len(history)-1]; prev != path {
		return router.Title(prev) + " › " + title
	}
	return title
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.state.ModalVisible() {
		return m.updateList(msg)
	}
	var cmd tea.Cmd
	if m.focus == focusEmail {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) renderStatus() string {
	var account string
	if user := m.state.User(); user != nil {
		account = styles.help.Render("Signed in as " + user.Name)
	} else {
		account = styles.help.Render("Not signed in")
	}

	if m.write != nil {
		if m.write.Phase == tasks.WriteFailed {
			account += "  " + styles.err.Render(m.write.Message())
		} else {
			account += "  " + styles.help.Render(m.write.Message())
		}
	}

	switch {
	case m.err != nil:
		return fmt.Sprintf("%s  %s", account, styles.err.Render("Error: "+m.err.Error()))
	case m.status != "":
		return fmt.Sprintf("%s  %s", account, styles.ok.Render(m.status))
	default:
		return account
	}
}

func (m *Model) renderModal() string {
	heading := "Sign in"
	if m.registering {
		heading = "Create account"
	}

	body := fmt.Sprintf("%s\n%s\n%s", styles.title.Render(heading), m.email.View(), m.password.View())
	if m.busy {
		body += "\n\n" + styles.warn.Render(m.status)
	} else if m.err != nil {
		body += "\n\n" + styles.err.Render(m.err.Error())
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.next, m.keys.register, m.keys.google, m.keys.back}
	return fmt.Sprintf("%s\n\n%s", styles.modal.Render(body), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderAlert(alert *models.AlertData) string {
	buttons := "[enter] " + alert.ButtonText1
	if alert.ButtonText2 != "" {
		buttons += "  [esc] " + alert.ButtonText2
	}
	body := fmt.Sprintf("%s\n\n%s", alert.AlertText, styles.help.Render(buttons))
	return styles.modal.Render(body)
}
