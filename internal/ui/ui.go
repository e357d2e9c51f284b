package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/notify"
	"github.com/desertthunder/reelx/internal/search"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	SearchView
	FavoritesView
	HistoryView
	DetailView
)

var tabs = []ViewState{HomeView, FavoritesView, HistoryView}

func (v ViewState) String() string {
	switch v {
	case HomeView:
		return "Trang Chủ"
	case SearchView:
		return "Tìm Kiếm"
	case FavoritesView:
		return "Yêu Thích"
	case HistoryView:
		return "Lịch Sử"
	case DetailView:
		return "Chi Tiết"
	default:
		return "?"
	}
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	prev        ViewState
	engine      *tasks.Engine
	suggester   *search.Suggester
	width       int
	height      int
	home        *tasks.HomeFeed
	homeList    list.Model
	searchInput textinput.Model
	searchList  list.Model
	query       string
	favList     list.Model
	histList    list.Model
	episodeList list.Model
	detail      *models.CatalogDetail
	favorite    bool
	session     *tasks.WatchSession
	loading     bool
	status      string
	statusErr   bool
	err         error
	help        help.Model
	keys        keyMap
	favCh       <-chan struct{}
	histCh      <-chan struct{}
	suggestCh   chan []models.CatalogItem
	cancels     []func()
}

// NewModel creates a new TUI model and subscribes it to library changes.
// Call [Model.Close] when the program exits.
func NewModel(ctx context.Context, engine *tasks.Engine, suggester *search.Suggester) *Model {
	input := textinput.New()
	input.Placeholder = "Tìm kiếm phim..."
	input.CharLimit = 100
	input.Prompt = "🔍 "

	m := &Model{
		ctx:         ctx,
		view:        HomeView,
		engine:      engine,
		suggester:   suggester,
		homeList:    newList("Trang Chủ"),
		searchInput: input,
		searchList:  newList("Gợi ý"),
		favList:     newList("Phim Yêu Thích"),
		histList:    newList("Lịch Sử Xem"),
		episodeList: newList("Tập Phim"),
		loading:     true,
		help:        help.New(),
		keys:        newKeyMap(),
		suggestCh:   make(chan []models.CatalogItem, 1),
	}

	var cancelFav, cancelHist func()
	m.favCh, cancelFav = notify.Channel(engine.Favorites(), 1)
	m.histCh, cancelHist = notify.Channel(engine.History(), 1)
	m.cancels = append(m.cancels, cancelFav, cancelHist)

	m.refreshFavorites()
	m.refreshHistory()
	return m
}

func newList(title string) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// Close releases the library subscriptions and stops pending searches.
func (m *Model) Close() {
	for _, cancel := range m.cancels {
		cancel()
	}
	m.cancels = nil
	if m.suggester != nil {
		m.suggester.Close()
	}
}

// Init fetches the home feed and starts listening for library changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchHome(),
		m.waitForSignal(m.favCh, MsgFavoritesChanged),
		m.waitForSignal(m.histCh, MsgHistoryChanged),
		m.waitForSuggestions(),
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateActive(msg)
}

func (m *Model) resize() {
	w, h := max(m.width-4, 20), max(m.height-8, 5)
	for _, l := range []*list.Model{&m.homeList, &m.favList, &m.histList} {
		l.SetSize(w, h)
	}
	m.searchList.SetSize(w, max(h-2, 3))
	m.episodeList.SetSize(w, max(h-6, 3))
	m.searchInput.Width = max(w-6, 10)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.view == SearchView {
		return m.handleSearchKeys(msg)
	}
	if l := m.activeList(); l != nil && l.FilterState() == list.Filtering {
		return m.updateActive(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		m.nextTab()
		return m, nil
	case key.Matches(msg, m.keys.search):
		return m, m.openSearch()
	case key.Matches(msg, m.keys.back) && m.view == DetailView:
		m.view = m.prev
		if m.view == SearchView {
			return m, m.searchInput.Focus()
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh) && m.view == HomeView:
		m.loading = true
		return m, m.fetchHome()
	case key.Matches(msg, m.keys.favorite):
		return m, m.toggleFavorite()
	case key.Matches(msg, m.keys.remove) && m.view == HistoryView:
		return m, m.removeHistory()
	}

	if m.view == DetailView {
		return m.handleDetailKeys(msg)
	}

	if key.Matches(msg, m.keys.enter) {
		if item, ok := m.selected(); ok {
			return m, m.openDetail(item.Slug)
		}
		return m, nil
	}

	return m.updateActive(msg)
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		if it, ok := m.episodeList.SelectedItem().(episodeItem); ok {
			return m, m.watch(m.detail.Slug, it.episode.Slug)
		}
		return m, nil
	case key.Matches(msg, m.keys.next):
		if m.session == nil {
			return m, nil
		}
		return m, m.nextEpisode()
	case key.Matches(msg, m.keys.open):
		if m.session == nil {
			m.setStatus("Chọn một tập để xem trước", false)
			return m, nil
		}
		return m, m.openPlayer(m.session.Episode.LinkEmbed)
	}
	return m.updateActive(msg)
}

// handleSearchKeys routes typing to the input and arrows to the suggestion list.
func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.suggester.Cancel()
		m.searchInput.Blur()
		m.view = m.prev
		return m, nil
	case tea.KeyEnter:
		if item, ok := selectedItem(m.searchList.SelectedItem()); ok {
			m.searchInput.Blur()
			return m, m.openDetail(item.Slug)
		}
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.searchList, cmd = m.searchList.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if value := m.searchInput.Value(); value != m.query {
		m.query = value
		m.suggester.Suggest(m.ctx, value, m.deliver)
	}
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgHomeFetched:
		d := msg.data.(homeData)
		m.loading = false
		if d.err != nil {
			m.err = d.err
			return m, nil
		}
		m.home = d.feed
		m.refreshHome()

	case MsgDetailFetched:
		d := msg.data.(detailData)
		if d.err != nil {
			m.setStatus(d.err.Error(), true)
			return m, nil
		}
		if m.view != DetailView {
			m.prev = m.view
		}
		m.view = DetailView
		m.detail = d.detail
		m.session = nil
		m.favorite = m.engine.Favorites().Has(d.detail.Slug)
		m.refreshEpisodes()
		m.setStatus("", false)

	case MsgSuggestions:
		items := msg.data.([]models.CatalogItem)
		m.searchList.SetItems(cardItems(m.engine.Cards(items), ""))
		return m, m.waitForSuggestions()

	case MsgWatched:
		d := msg.data.(watchData)
		if d.session == nil {
			m.setStatus(d.err.Error(), true)
			return m, nil
		}
		m.session = d.session
		m.setStatus(m.sessionLine(), false)
		if d.err != nil {
			m.setStatus(fmt.Sprintf("%s (lịch sử chưa lưu: %v)", m.sessionLine(), d.err), true)
		}

	case MsgFavoriteToggled:
		d := msg.data.(toggleData)
		if d.err != nil {
			m.setStatus(fmt.Sprintf("Không thể cập nhật yêu thích: %v", d.err), true)
			return m, nil
		}
		if m.detail != nil && m.detail.Slug == d.slug {
			m.favorite = d.added
		}
		if d.added {
			m.setStatus("Đã thêm vào yêu thích "+heart, false)
		} else {
			m.setStatus("Đã xóa khỏi yêu thích", false)
		}

	case MsgFavoritesChanged:
		m.refreshFavorites()
		m.refreshHome()
		if m.detail != nil {
			m.favorite = m.engine.Favorites().Has(m.detail.Slug)
		}
		return m, m.waitForSignal(m.favCh, MsgFavoritesChanged)

	case MsgHistoryChanged:
		m.refreshHistory()
		m.refreshHome()
		m.refreshEpisodes()
		return m, m.waitForSignal(m.histCh, MsgHistoryChanged)

	case MsgStatus:
		d := msg.data.(statusData)
		if d.err != nil {
			m.setStatus(fmt.Sprintf("%s: %v", d.text, d.err), true)
		} else {
			m.setStatus(d.text, false)
		}
	}
	return m, nil
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.view == SearchView {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	if l := m.activeList(); l != nil {
		updated, cmd := l.Update(msg)
		*l = updated
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) activeList() *list.Model {
	switch m.view {
	case HomeView:
		return &m.homeList
	case SearchView:
		return &m.searchList
	case FavoritesView:
		return &m.favList
	case HistoryView:
		return &m.histList
	case DetailView:
		return &m.episodeList
	default:
		return nil
	}
}

func (m *Model) selected() (models.CatalogItem, bool) {
	l := m.activeList()
	if l == nil {
		return models.CatalogItem{}, false
	}
	return selectedItem(l.SelectedItem())
}

func (m *Model) nextTab() {
	current := m.view
	if current == DetailView || current == SearchView {
		current = m.prev
	}
	for i, v := range tabs {
		if v == current {
			m.view = tabs[(i+1)%len(tabs)]
			return
		}
	}
	m.view = HomeView
}

func (m *Model) openSearch() tea.Cmd {
	if m.view != DetailView {
		m.prev = m.view
	}
	m.view = SearchView
	return m.searchInput.Focus()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) refreshHome() {
	if m.home == nil {
		return
	}
	var items []list.Item
	items = append(items, cardItems(m.engine.Cards(m.home.Hero), "Phim Mới")...)
	items = append(items, cardItems(m.engine.Cards(m.home.Recommended), "Đề Xuất")...)
	items = append(items, cardItems(m.engine.Cards(m.home.Series), models.Series.Title())...)
	items = append(items, cardItems(m.engine.Cards(m.home.Singles), models.SingleMovies.Title())...)
	m.homeList.SetItems(items)
}

func (m *Model) refreshFavorites() {
	m.favList.SetItems(favoriteItems(m.engine.Favorites().List()))
}

func (m *Model) refreshHistory() {
	m.histList.SetItems(historyItems(m.engine.History().List()))
}

func (m *Model) refreshEpisodes() {
	if m.detail == nil {
		return
	}
	var last string
	if entry, ok := m.engine.History().Get(m.detail.Slug); ok {
		last = entry.EpisodeSlug
	}
	m.episodeList.Title = fmt.Sprintf("Tập Phim (%d)", m.detail.EpisodeCount())
	m.episodeList.SetItems(episodeItems(m.detail, last))
}

// deliver hands suggestions to the program, keeping only the newest undelivered list.
func (m *Model) deliver(items []models.CatalogItem) {
	for {
		select {
		case m.suggestCh <- items:
			return
		default:
		}
		select {
		case <-m.suggestCh:
		default:
		}
	}
}

func (m *Model) fetchHome() tea.Cmd {
	return func() tea.Msg {
		feed, err := m.engine.Home(m.ctx, nil)
		return homeFetchedMsg(feed, err)
	}
}

func (m *Model) openDetail(slug string) tea.Cmd {
	m.setStatus("Đang tải...", false)
	return func() tea.Msg {
		detail, err := m.engine.Detail(m.ctx, slug)
		return detailFetchedMsg(detail, err)
	}
}

func (m *Model) watch(slug, episodeSlug string) tea.Cmd {
	return func() tea.Msg {
		session, err := m.engine.Watch(m.ctx, slug, episodeSlug, nil)
		return watchedMsg(session, err)
	}
}

func (m *Model) nextEpisode() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		next, err := m.engine.NextEpisode(m.ctx, session)
		return watchedMsg(next, err)
	}
}

func (m *Model) openPlayer(link string) tea.Cmd {
	return func() tea.Msg {
		if err := shared.OpenBrowser(link); err != nil {
			return statusMsg("Không mở được trình phát", err)
		}
		return statusMsg("Đã mở trình phát", nil)
	}
}

func (m *Model) toggleFavorite() tea.Cmd {
	var item models.CatalogItem
	if m.view == DetailView && m.detail != nil {
		item = m.detail.CatalogItem
	} else if selected, ok := m.selected(); ok {
		item = selected
	} else {
		return nil
	}

	return func() tea.Msg {
		added, err := m.engine.Favorites().Toggle(item)
		return favoriteToggledMsg(item.Slug, added, err)
	}
}

func (m *Model) removeHistory() tea.Cmd {
	it, ok := m.histList.SelectedItem().(historyItem)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		if err := m.engine.History().Remove(it.entry.Slug); err != nil {
			return statusMsg("Không thể xóa lịch sử", err)
		}
		return statusMsg("Đã xóa "+it.entry.Name, nil)
	}
}

func (m *Model) waitForSignal(ch <-chan struct{}, kind MsgKind) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ch:
			return libraryChangedMsg(kind)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForSuggestions() tea.Cmd {
	return func() tea.Msg {
		select {
		case items := <-m.suggestCh:
			return suggestionsMsg(items)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	var body string
	var helpKeys []key.Binding
	switch m.view {
	case HomeView:
		body = m.renderHome()
		helpKeys = []key.Binding{m.keys.enter, m.keys.favorite, m.keys.search, m.keys.tab, m.keys.refresh, m.keys.quit}
	case SearchView:
		body = m.renderSearch()
		helpKeys = []key.Binding{m.keys.enter, m.keys.back}
	case FavoritesView:
		body = m.renderList(&m.favList, "Chưa có phim yêu thích.")
		helpKeys = []key.Binding{m.keys.enter, m.keys.favorite, m.keys.search, m.keys.tab, m.keys.quit}
	case HistoryView:
		body = m.renderList(&m.histList, "Chưa có lịch sử xem.")
		helpKeys = []key.Binding{m.keys.enter, m.keys.remove, m.keys.search, m.keys.tab, m.keys.quit}
	case DetailView:
		body = m.renderDetail()
		helpKeys = []key.Binding{m.keys.enter, m.keys.next, m.keys.open, m.keys.favorite, m.keys.back, m.keys.quit}
	}

	return fmt.Sprintf("%s\n\n%s\n%s\n%s", m.renderTabs(), body, m.renderStatus(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(tabs)+1)
	for _, v := range append(tabs, SearchView) {
		if v == m.view || (m.view == DetailView && v == m.prev) {
			parts = append(parts, styles.on.Render(v.String()))
		} else {
			parts = append(parts, styles.tab.Render(v.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderStatus() string {
	switch {
	case m.status == "":
		return ""
	case m.statusErr:
		return styles.warn.Render(m.status)
	default:
		return styles.ok.Render(m.status)
	}
}

func (m *Model) renderHome() string {
	if m.loading {
		return styles.help.Render("Đang tải trang chủ...")
	}
	if m.home == nil || m.home.Empty() {
		return styles.warn.Render("Không tải được danh sách phim. Nhấn r để thử lại.")
	}
	return m.homeList.View()
}

func (m *Model) renderList(l *list.Model, empty string) string {
	if len(l.Items()) == 0 {
		return styles.help.Render(empty)
	}
	return l.View()
}

func (m *Model) renderSearch() string {
	var hint string
	if !m.suggester.Eligible(m.query) {
		hint = styles.help.Render(fmt.Sprintf("Nhập ít nhất %d ký tự để tìm kiếm", m.suggester.MinLength()))
	}
	return fmt.Sprintf("%s\n%s\n%s", m.searchInput.View(), hint, m.searchList.View())
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return ""
	}
	d := m.detail

	title := d.Label()
	if m.favorite {
		title = fmt.Sprintf("%s %s", title, heart)
	}

	meta := []string{styles.badge.Render(d.AudioBadge())}
	for _, s := range []string{d.OriginName, d.Quality, d.EpisodeCurrent, d.Time} {
		if s != "" {
			meta = append(meta, s)
		}
	}

	content := d.Content
	if runes := []rune(content); len(runes) > 280 {
		content = string(runes[:280]) + "…"
	}
	content = lipgloss.NewStyle().Width(max(m.width-4, 20)).Render(content)

	var sections []string
	sections = append(sections, styles.title.Render(title), strings.Join(meta, " • "), content)
	if m.session != nil {
		sections = append(sections, styles.ok.Render(m.sessionLine()))
	}
	sections = append(sections, m.episodeList.View())
	return strings.Join(sections, "\n")
}

func (m *Model) sessionLine() string {
	if m.session == nil {
		return ""
	}
	line := fmt.Sprintf("▶ %s • %s", m.session.Detail.Name, m.session.Episode.Name)
	if m.session.Next != nil {
		line += fmt.Sprintf(" (tiếp theo: %s)", m.session.Next.Name)
	}
	return line
}
