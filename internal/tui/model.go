package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZertGraf/user-directory/internal/domain"
	"github.com/ZertGraf/user-directory/internal/service"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Directory is the collection provider the browser reads from.
type Directory interface {
	Snapshot() service.DirectorySnapshot
	Wait(ctx context.Context) error
}

// DetailLoader fetches one user at a time; only the latest load commits.
type DetailLoader interface {
	Load(ctx context.Context, userID int) service.Ticket
	Snapshot() service.DetailSnapshot
	Generation() uint64
}

type route int

const (
	routeList route = iota
	routeDetail
)

// usersSettledMsg arrives once the directory leaves the loading state.
type usersSettledMsg struct {
	err error
}

// detailSettledMsg arrives when the load with the given generation finishes.
type detailSettledMsg struct {
	gen uint64
}

// Options configures a Model.
type Options struct {
	Directory Directory
	Loader    DetailLoader
	Scope     service.SearchScope
	Theme     Theme
}

// Model is the root bubbletea model: a paginated user list and a detail view.
type Model struct {
	ctx       context.Context
	directory Directory
	loader    DetailLoader

	view   *service.ListView
	route  route
	cursor int

	search    textinput.Model
	searching bool
	spinner   spinner.Model
	styles    Styles

	width  int
	height int
}

// New builds the model. ctx bounds the fetches it starts.
func New(ctx context.Context, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Search by name"
	ti.Prompt = "Search: "
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	styles := NewStyles(opts.Theme)
	sp.Style = styles.Spinner

	return Model{
		ctx:       ctx,
		directory: opts.Directory,
		loader:    opts.Loader,
		view:      service.NewListView(opts.Scope),
		search:    ti,
		spinner:   sp,
		styles:    styles,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUsers())
}

func (m Model) waitForUsers() tea.Cmd {
	directory, ctx := m.directory, m.ctx
	return func() tea.Msg {
		return usersSettledMsg{err: directory.Wait(ctx)}
	}
}

func waitForDetail(ticket service.Ticket) tea.Cmd {
	return func() tea.Msg {
		<-ticket.Done
		return detailSettledMsg{gen: ticket.Gen}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case usersSettledMsg:
		m.clampCursor()
		return m, nil

	case detailSettledMsg:
		// the view reads the loader snapshot, which only ever holds the latest load
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.route == routeDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.view.Query {
		m.view.SetQuery(m.search.Value())
		m.cursor = 0
	}
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	users := m.users()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "t":
		m.toggleTheme()
	case "/":
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case "s":
		m.view.ToggleSort()
		m.cursor = 0
	case "n", "right":
		if m.view.NextPage(users) {
			m.cursor = 0
		}
	case "p", "left":
		if m.view.PrevPage() {
			m.cursor = 0
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.view.Render(users).Users)-1 {
			m.cursor++
		}
	case "enter":
		page := m.view.Render(users)
		if m.cursor >= len(page.Users) {
			return m, nil
		}
		ticket := m.loader.Load(m.ctx, page.Users[m.cursor].ID)
		m.route = routeDetail
		return m, tea.Batch(waitForDetail(ticket), m.spinner.Tick)
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "t":
		m.toggleTheme()
	case "esc", "b", "backspace":
		m.route = routeList
		m.clampCursor()
	}
	return m, nil
}

func (m *Model) toggleTheme() {
	m.styles = NewStyles(m.styles.Theme.Toggled())
	m.spinner.Style = m.styles.Spinner
}

func (m Model) users() []domain.User {
	snap := m.directory.Snapshot()
	if snap.Status != service.StatusSuccess {
		return nil
	}
	return snap.Users
}

func (m Model) loading() bool {
	if m.route == routeDetail {
		return m.loader.Snapshot().Status == service.StatusLoading
	}
	return !m.directory.Snapshot().Status.Settled()
}

func (m *Model) clampCursor() {
	n := len(m.view.Render(m.users()).Users)
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m Model) View() string {
	var b strings.Builder

	header := "User Directory"
	if m.route == routeDetail {
		header = "User Details"
	}
	b.WriteString(m.styles.Header.Render(header))
	b.WriteString("\n")

	if m.route == routeDetail {
		b.WriteString(m.detailView())
	} else {
		b.WriteString(m.listView())
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render(m.help()))
	return b.String()
}

func (m Model) listView() string {
	snap := m.directory.Snapshot()
	switch snap.Status {
	case service.StatusIdle, service.StatusLoading:
		return m.spinner.View() + " " + m.styles.Muted.Render("Loading users...")
	case service.StatusFailure:
		return m.styles.Error.Render(snap.Err)
	}

	page := m.view.Render(snap.Users)

	var b strings.Builder
	b.WriteString(m.search.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Sort by Name (" + page.NextOrder.Label() + ")"))
	b.WriteString("\n\n")

	if len(page.Users) == 0 {
		b.WriteString(m.styles.Muted.Render("No users on this page."))
		b.WriteString("\n")
	}
	for i, u := range page.Users {
		row := fmt.Sprintf("%-24s %-28s %s", u.Name, u.Email, u.Address.City)
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> " + row))
		} else {
			b.WriteString(m.styles.Body.Render("  " + row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.pager("Previous", page.HasPrev))
	b.WriteString(m.styles.Body.Render(fmt.Sprintf("  Page %d of %d  ", page.Number, max(page.TotalPages, 1))))
	b.WriteString(m.pager("Next", page.HasNext))
	return b.String()
}

func (m Model) pager(label string, enabled bool) string {
	if enabled {
		return m.styles.Title.Render("[" + label + "]")
	}
	return m.styles.Muted.Render("(" + label + ")")
}

func (m Model) detailView() string {
	snap := m.loader.Snapshot()
	switch {
	case snap.Status == service.StatusLoading:
		return m.spinner.View() + " " + m.styles.Muted.Render("Loading user...")
	case snap.Err != "":
		return m.styles.Error.Render(snap.Err)
	case snap.NotFound || snap.User == nil:
		return m.styles.Muted.Render(service.MsgUserMissing)
	}

	u := snap.User
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(u.Name))
	b.WriteString("\n\n")
	for _, field := range []struct{ label, value string }{
		{"ID:", fmt.Sprint(u.ID)},
		{"Username:", u.Username},
		{"Email:", u.Email},
		{"Phone:", u.Phone},
		{"Company:", u.Company.Name},
		{"Website:", u.Website},
	} {
		b.WriteString(m.styles.Label.Render(field.label))
		b.WriteString(m.styles.Body.Render(field.value))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) help() string {
	theme := "t " + m.styles.Theme.ToggleLabel()
	switch {
	case m.searching:
		return "enter/esc done searching"
	case m.route == routeDetail:
		return "esc/b Go Back • " + theme + " • q quit"
	default:
		return "/ search • s sort • ←/p prev • →/n next • ↑/↓ select • enter open • " + theme + " • q quit"
	}
}
