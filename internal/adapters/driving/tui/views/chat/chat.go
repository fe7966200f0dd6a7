// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/sidebar"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// chromeHeight is the number of rows used by the header, input and status bar.
const chromeHeight = 7

// turn is one question and its answer in the transcript.
type turn struct {
	question string
	category string
	result   *domain.QueryResult
	err      error
}

// pending reports whether the answer has not arrived yet.
func (t turn) pending() bool {
	return t.result == nil && t.err == nil
}

// View is the chat screen: transcript, statistics sidebar, input and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	viewport  viewport.Model
	spinner   spinner.Model
	sidebar   *sidebar.Panel
	statusbar *status.Bar

	query     driving.QueryService
	stats     driving.StatsRecorder
	catalogue domain.Catalogue
	ctx       context.Context

	turns       []turn
	category    int // index into catalogue, -1 for all documents
	busy        bool
	showSidebar bool

	width  int
	height int
	ready  bool
}

// NewView creates a chat view. stats may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	query driving.QueryService,
	stats driving.StatsRecorder,
	catalogue domain.Catalogue,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	v := &View{
		styles:      s,
		keymap:      km,
		input:       input.NewQuestionInput(s),
		viewport:    viewport.New(80, 16),
		spinner:     sp,
		sidebar:     sidebar.NewPanel(s, catalogue.Names()),
		statusbar:   status.NewBar(s, km),
		query:       query,
		stats:       stats,
		catalogue:   catalogue,
		ctx:         context.Background(),
		category:    -1,
		showSidebar: stats != nil,
		width:       80,
		height:      24,
	}
	v.refreshStats()
	v.renderTranscript()
	return v
}

// WithContext sets the context used for queries.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.StatsUpdated:
		v.sidebar.SetStats(msg.Stats)
		return v, nil

	case messages.ErrorOccurred:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.renderTranscript()
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Quit):
		return v, tea.Quit

	case keymap.Matches(key, v.keymap.Send):
		return v, v.submit()

	case keymap.Matches(key, v.keymap.NextCategory):
		v.cycleCategory(1)
		return v, nil

	case keymap.Matches(key, v.keymap.PrevCategory):
		v.cycleCategory(-1)
		return v, nil

	case keymap.Matches(key, v.keymap.ScrollUp), keymap.Matches(key, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case keymap.Matches(key, v.keymap.ResetStats):
		if v.stats != nil {
			v.stats.Reset()
			v.refreshStats()
			v.statusbar.SetMessage("Statistics cleared")
		}
		return v, nil

	case keymap.Matches(key, v.keymap.ToggleSidebar):
		v.showSidebar = !v.showSidebar && v.stats != nil
		v.layout()
		return v, nil
	}

	if v.busy {
		return v, nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit starts answering the typed question. Only one question is in
// flight at a time.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.busy {
		return nil
	}

	category := v.Category()
	v.turns = append(v.turns, turn{question: question, category: category})
	v.busy = true
	v.input.Reset()
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateThinking)
	v.renderTranscript()
	v.viewport.GotoBottom()

	return tea.Batch(v.spinner.Tick, v.ask(question, category))
}

// ask runs the query off the UI goroutine.
func (v *View) ask(question, category string) tea.Cmd {
	query := v.query
	catalogue := v.catalogue
	ctx := v.ctx
	return func() tea.Msg {
		if query == nil {
			return messages.AnswerReceived{Err: ErrNoQueryService}
		}
		var selected []string
		if category != "" {
			selected = []string{category}
		}
		filter, err := catalogue.BuildFilter(selected)
		if err != nil {
			return messages.AnswerReceived{Err: err}
		}
		result, err := query.AnswerQuestion(ctx, question, filter)
		return messages.AnswerReceived{Result: result, Err: err}
	}
}

// handleAnswer fills in the pending turn.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.busy = false
	if n := len(v.turns); n > 0 && v.turns[n-1].pending() {
		if msg.Err != nil {
			v.turns[n-1].err = msg.Err
		} else {
			result := msg.Result
			v.turns[n-1].result = &result
		}
	}

	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
	} else {
		v.statusbar.SetState(status.StateReady)
		v.statusbar.SetMessage(fmt.Sprintf("Answered in %s", msg.Result.Elapsed.Round(10*time.Millisecond)))
	}

	v.refreshStats()
	v.renderTranscript()
	v.viewport.GotoBottom()
}

// cycleCategory moves the filter through "all documents" and each category.
func (v *View) cycleCategory(step int) {
	n := len(v.catalogue) + 1
	idx := (v.category + 1 + step + n) % n
	v.category = idx - 1
	v.statusbar.SetCategory(v.Category())
}

// LoadStats returns a command that reads the current snapshot.
func (v *View) LoadStats() tea.Cmd {
	stats := v.stats
	if stats == nil {
		return nil
	}
	return func() tea.Msg {
		return messages.StatsUpdated{Stats: stats.Snapshot()}
	}
}

// refreshStats copies the latest snapshot into the sidebar.
func (v *View) refreshStats() {
	if v.stats != nil {
		v.sidebar.SetStats(v.stats.Snapshot())
	}
}

// transcriptWidth is the viewport width.
func (v *View) transcriptWidth() int {
	w := v.width
	if v.showSidebar {
		w -= v.sidebar.Width()
	}
	if w < 20 {
		w = 20
	}
	return w
}

// layout sizes the components for the current dimensions.
func (v *View) layout() {
	body := v.height - chromeHeight
	if body < 3 {
		body = 3
	}
	v.viewport.Width = v.transcriptWidth()
	v.viewport.Height = body
	v.sidebar.SetDimensions(sidebar.DefaultWidth, body)
	v.input.SetWidth(v.width)
	v.statusbar.SetWidth(v.width)
	v.renderTranscript()
}

// renderTranscript rebuilds the viewport content.
func (v *View) renderTranscript() {
	if len(v.turns) == 0 {
		v.viewport.SetContent(v.styles.Muted.Render(
			"Ask a question about the indexed documents.\n" +
				"Press tab to restrict answers to a category."))
		return
	}

	width := v.transcriptWidth() - 2
	blocks := make([]string, 0, len(v.turns))
	for _, t := range v.turns {
		blocks = append(blocks, v.renderTurn(t, width))
	}
	v.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

// renderTurn renders a question, its answer and citations.
func (v *View) renderTurn(t turn, width int) string {
	lines := make([]string, 0, 8)

	q := "You: " + t.question
	if t.category != "" {
		q += "  (" + t.category + ")"
	}
	lines = append(lines, v.styles.Question.Width(width).Render(q))

	switch {
	case t.pending():
		lines = append(lines, v.spinner.View()+" "+v.styles.Muted.Render("Thinking..."))

	case t.err != nil:
		lines = append(lines, v.styles.Error.Width(width).Render("Error: "+t.err.Error()))

	default:
		style := v.styles.Answer
		switch t.result.Outcome {
		case domain.AnswerRefusal:
			style = v.styles.Warning
		case domain.AnswerModelError:
			style = v.styles.Error
		}
		lines = append(lines, style.Width(width).Render(t.result.Answer))

		if len(t.result.Sources) > 0 {
			lines = append(lines, v.styles.Subtitle.Render("Sources:"))
			for _, src := range t.result.Sources {
				lines = append(lines, v.styles.Citation.Render(fmt.Sprintf(
					"[%d] %s - %s (Chunk %d)", src.SourceNum, src.Document, src.PageReference, src.ChunkID)))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// View renders the chat screen.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("docqa") + "  " +
		v.styles.Muted.Render("answers grounded in your documents")

	body := v.viewport.View()
	if v.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, v.sidebar.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		v.input.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.layout()
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Busy reports whether an answer is pending.
func (v *View) Busy() bool {
	return v.busy
}

// Category returns the active category name, or "" for all documents.
func (v *View) Category() string {
	if v.category < 0 || v.category >= len(v.catalogue) {
		return ""
	}
	return v.catalogue[v.category].Name
}

// Turns returns the number of questions asked.
func (v *View) Turns() int {
	return len(v.turns)
}

// SidebarVisible reports whether the statistics panel is shown.
func (v *View) SidebarVisible() bool {
	return v.showSidebar
}

// Stats returns the snapshot shown in the sidebar.
func (v *View) Stats() domain.StatsSnapshot {
	return v.sidebar.Stats()
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}
