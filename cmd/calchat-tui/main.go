package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"go.uber.org/zap"

	appconfig "github.com/calchat/calchat/config"
	"github.com/calchat/calchat/conversation"
	"github.com/calchat/calchat/gateway"
	"github.com/calchat/calchat/logging"
	"github.com/calchat/calchat/storage"
)

const (
	appTitle          = "AI Calendar Assistant"
	startupRetryDelay = 60
	celebrationTicks  = 5
	maxPickerSlots    = 9
	timestampLayout   = "03:04 PM"
)

type appConfig struct {
	settings  appconfig.Config
	altScreen bool
	persist   bool
}

func loadAppConfig() appConfig {
	settings := appconfig.Load()

	backend := flag.String("backend", "", "backend base URL (overrides config)")
	session := flag.String("session", "", "session id (overrides config)")
	dbPath := flag.String("db", "", "transcript database path (overrides config)")
	logFile := flag.String("log-file", "", "log file path (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	noPersist := flag.Bool("no-persist", false, "disable transcript persistence")
	altScreen := flag.Bool("alt-screen", true, "run in the terminal alternate screen")
	flag.Parse()

	if *backend != "" {
		settings.BackendURL = *backend
	}
	if *session != "" {
		settings.SessionID = *session
	}
	if *dbPath != "" {
		settings.DBPath = *dbPath
	}
	if *logFile != "" {
		settings.LogFile = *logFile
	}
	if *logLevel != "" {
		settings.LogLevel = *logLevel
	}

	return appConfig{
		settings:  settings,
		altScreen: *altScreen,
		persist:   !*noPersist && settings.DBPath != "",
	}
}

type uiTheme struct {
	root        lipgloss.Style
	header      lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	footer      lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	inputPanel  lipgloss.Style
	userLabel   lipgloss.Style
	agentLabel  lipgloss.Style
	muted       lipgloss.Style
	success     lipgloss.Style
	warning     lipgloss.Style
	slotKey     lipgloss.Style
	celebrate   lipgloss.Style
}

func newTheme() uiTheme {
	green := lipgloss.Color("#05ffa1")
	blue := lipgloss.Color("#01cdfe")
	amber := lipgloss.Color("#ffd166")
	pink := lipgloss.Color("#ff71ce")
	bg := lipgloss.Color("#101629")
	panelBg := lipgloss.Color("#182038")
	text := lipgloss.Color("#f3f3ff")
	muted := lipgloss.Color("#9ca3d8")

	return uiTheme{
		root: lipgloss.NewStyle().
			Background(bg).
			Foreground(text).
			Padding(0, 1),
		header: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().
			Foreground(green).
			Bold(true),
		footer: lipgloss.NewStyle().
			Background(panelBg).
			Foreground(muted).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(pink).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(blue).Bold(true),
		errorStatus: lipgloss.NewStyle().Foreground(pink).Bold(true),
		inputPanel: lipgloss.NewStyle().
			Background(panelBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(green).
			Padding(0, 1),
		userLabel:  lipgloss.NewStyle().Foreground(green).Bold(true),
		agentLabel: lipgloss.NewStyle().Foreground(blue).Bold(true),
		muted:      lipgloss.NewStyle().Foreground(muted),
		success:    lipgloss.NewStyle().Foreground(green).Bold(true),
		warning:    lipgloss.NewStyle().Foreground(amber).Bold(true),
		slotKey:    lipgloss.NewStyle().Foreground(pink).Bold(true),
		celebrate: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22062f")).
			Background(green).
			Bold(true).
			Padding(0, 1),
	}
}

type model struct {
	cfg       appConfig
	logger    *zap.Logger
	client    *gateway.Client
	processor *conversation.Processor
	session   *conversation.Session

	statusLine    string
	inflight      bool
	checkingHlth  bool
	quitConfirm   bool
	countdownLeft int
	celebration   int
	health        gateway.HealthStatus
	healthAt      time.Time

	width  int
	height int

	input    textinput.Model
	timeline viewport.Model
	sidebar  viewport.Model
	spinner  spinner.Model

	theme uiTheme
}

type replyMsg struct {
	reply conversation.Reply
}

type healthDoneMsg struct {
	status gateway.HealthStatus
}

type tickMsg time.Time

func tickEvery(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func newModel(cfg appConfig, logger *zap.Logger, client *gateway.Client, processor *conversation.Processor, session *conversation.Session) model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.CharLimit = 2000
	input.Placeholder = "Type your message... (e.g. 'Schedule a meeting tomorrow at 3 PM')"
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	timeline := viewport.New(0, 0)
	timeline.MouseWheelEnabled = true
	timeline.MouseWheelDelta = 4
	sidebar := viewport.New(0, 0)

	return model{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		processor:  processor,
		session:    session,
		statusLine: "ready",
		input:      input,
		timeline:   timeline,
		sidebar:    sidebar,
		spinner:    sp,
		theme:      newTheme(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.healthCmd(),
		tickEvery(time.Second),
	)
}

// sendCmd performs the blocking backend call. Session mutation stays in
// Update; the reply is absorbed when the message arrives.
func (m model) sendCmd(text string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return replyMsg{reply: client.SendMessage(context.Background(), text)}
	}
}

func (m model) healthCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return healthDoneMsg{status: client.CheckHealth(context.Background())}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case replyMsg:
		m.inflight = false
		m.processor.Absorb(m.session, msg.reply)
		switch {
		case msg.reply.IsStartupNotice:
			m.countdownLeft = startupRetryDelay
			m.statusLine = "backend is starting up"
		case msg.reply.Booking != nil && strings.TrimSpace(msg.reply.Booking.ID) != "":
			m.statusLine = "appointment booked"
		case msg.reply.RequiresConfirmation:
			m.statusLine = "confirmation required"
		case len(msg.reply.SuggestedTimes) > 0:
			m.statusLine = fmt.Sprintf("%d time slots available", len(msg.reply.SuggestedTimes))
		default:
			m.statusLine = "reply received"
		}
		m.renderPanes()
	case healthDoneMsg:
		m.checkingHlth = false
		m.health = msg.status
		m.healthAt = time.Now()
		if msg.status.Healthy {
			m.statusLine = "backend is healthy"
		} else {
			m.statusLine = "backend health check failed"
		}
		m.renderPanes()
	case tickMsg:
		changed := false
		if m.countdownLeft > 0 {
			m.countdownLeft--
			changed = true
		}
		if m.celebration > 0 {
			m.celebration--
			changed = true
		}
		if changed && !m.inflight {
			m.renderPanes()
		}
		cmds = append(cmds, tickEvery(time.Second))
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderPanes()
	case tea.MouseMsg:
		if m.quitConfirm {
			break
		}
		var cmd tea.Cmd
		m.timeline, cmd = m.timeline.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.quitConfirm {
			switch msg.String() {
			case "y", "Y", "enter":
				return m, tea.Quit
			case "n", "N", "esc":
				m.quitConfirm = false
				m.statusLine = "quit canceled"
			}
			return m, tea.Batch(cmds...)
		}
		switch msg.String() {
		case "esc":
			m.beginQuitConfirm()
			return m, tea.Batch(cmds...)
		case "enter":
			cmd := m.handleSubmit()
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		case "pgup", "ctrl+b":
			m.timeline.LineUp(8)
			return m, tea.Batch(cmds...)
		case "pgdown", "ctrl+f":
			m.timeline.LineDown(8)
			return m, tea.Batch(cmds...)
		case "home":
			m.timeline.GotoTop()
			return m, tea.Batch(cmds...)
		case "end":
			m.timeline.GotoBottom()
			return m, tea.Batch(cmds...)
		case "up":
			if strings.TrimSpace(m.input.Value()) == "" {
				m.timeline.LineUp(4)
				return m, tea.Batch(cmds...)
			}
		case "down":
			if strings.TrimSpace(m.input.Value()) == "" {
				m.timeline.LineDown(4)
				return m, tea.Batch(cmds...)
			}
		}
		// With an empty input, number and y/n keys drive the active
		// affordance instead of the text box.
		if strings.TrimSpace(m.input.Value()) == "" {
			if cmd, handled := m.handleAffordanceKey(msg.String()); handled {
				if cmd != nil {
					cmds = append(cmds, cmd)
				}
				return m, tea.Batch(cmds...)
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) beginQuitConfirm() {
	m.quitConfirm = true
	m.statusLine = "quit? y/n"
}

// handleSubmit turns the input line into a slash command or a free-text
// round-trip.
func (m *model) handleSubmit() tea.Cmd {
	raw := strings.TrimSpace(m.input.Value())
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "/") {
		m.input.SetValue("")
		return m.handleSlash(raw)
	}
	if m.inflight {
		m.statusLine = "still waiting on the previous message"
		return nil
	}
	m.input.SetValue("")
	return m.beginRoundTrip(raw, conversation.TurnFlags{})
}

// beginRoundTrip appends the user turn immediately so it renders before
// the backend answers, then hands the blocking call to a command.
func (m *model) beginRoundTrip(text string, flags conversation.TurnFlags) tea.Cmd {
	m.processor.Begin(m.session, text, flags)
	m.inflight = true
	m.statusLine = "connecting to the calendar assistant..."
	m.renderPanes()
	m.timeline.GotoBottom()
	return m.sendCmd(text)
}

// handleAffordanceKey routes a keypress to the single interactive
// affordance, if one is on screen. The key only records intent in the
// deferred-action queue; the round-trip starts on the drain that follows.
func (m *model) handleAffordanceKey(key string) (tea.Cmd, bool) {
	if m.inflight {
		return nil, false
	}
	index, affordance := conversation.ActiveInteraction(m.session)
	if index < 0 {
		return nil, false
	}
	turn := m.session.Turns()[index]
	switch affordance {
	case conversation.AffordanceTimeSlots:
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 || n > len(turn.SuggestedTimes) || n > maxPickerSlots {
			return nil, false
		}
		m.session.QueueTimeSelection(turn.SuggestedTimes[n-1])
		return m.drainPending(), true
	case conversation.AffordanceConfirmation:
		switch key {
		case "y", "Y":
			m.session.QueueConfirmation(conversation.ConfirmYes)
		case "n", "N":
			m.session.QueueConfirmation(conversation.ConfirmCancel)
		default:
			return nil, false
		}
		return m.drainPending(), true
	}
	return nil, false
}

// drainPending runs the queue-drain half of a processing pass: consume
// the pending action, append its user turn, and start the backend call.
func (m *model) drainPending() tea.Cmd {
	text, ok := m.processor.BeginPending(m.session)
	if !ok {
		return nil
	}
	m.inflight = true
	m.statusLine = "sending your selection..."
	m.renderPanes()
	m.timeline.GotoBottom()
	return m.sendCmd(text)
}

func (m *model) handleSlash(raw string) tea.Cmd {
	fields := strings.Fields(raw)
	cmd := strings.ToLower(fields[0])
	switch cmd {
	case "/help":
		m.statusLine = "commands: /today /call /tomorrow /health /reset /quit"
		return nil
	case "/reset":
		m.processor.Reset(m.session)
		m.countdownLeft = 0
		m.celebration = 0
		m.statusLine = "conversation cleared"
		m.renderPanes()
		return nil
	case "/health":
		if m.checkingHlth {
			m.statusLine = "health check already running"
			return nil
		}
		m.checkingHlth = true
		m.statusLine = "testing backend connection..."
		return m.healthCmd()
	case "/today":
		return m.quickAction("What's my availability today?")
	case "/call":
		return m.quickAction("I want to schedule a call")
	case "/tomorrow":
		return m.quickAction("Book a meeting tomorrow")
	case "/quit", "/exit":
		m.beginQuitConfirm()
		return nil
	default:
		m.statusLine = "unknown command: " + cmd
		return nil
	}
}

func (m *model) quickAction(message string) tea.Cmd {
	if m.inflight {
		m.statusLine = "still waiting on the previous message"
		return nil
	}
	return m.beginRoundTrip(message, conversation.TurnFlags{})
}

func (m model) View() string {
	out := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderContent(),
		m.renderInput(),
		m.renderFooter(),
	)
	if m.quitConfirm {
		out = m.renderQuitModal()
	}
	return m.theme.root.Render(out)
}

func (m *model) resize() {
	contentWidth := maxInt(40, m.width-4)
	m.input.Width = maxInt(20, contentWidth-6)
}

// renderPanes recomputes the viewport contents from session state. It is
// only called from Update paths where no round-trip is mutating state.
func (m *model) renderPanes() {
	prevAtBottom := m.timeline.AtBottom()
	prevYOffset := m.timeline.YOffset

	contentHeight := maxInt(8, m.height-10)
	contentWidth := maxInt(40, m.width-4)
	leftWidth := int(float64(contentWidth) * 0.68)
	rightWidth := contentWidth - leftWidth - 1
	if rightWidth < 30 {
		rightWidth = 30
		leftWidth = contentWidth - rightWidth - 1
	}

	m.timeline.Width = maxInt(20, leftWidth-4)
	m.timeline.Height = maxInt(5, contentHeight-3)
	m.sidebar.Width = maxInt(20, rightWidth-4)
	m.sidebar.Height = maxInt(5, contentHeight-3)

	m.timeline.SetContent(m.renderTimeline())
	if prevAtBottom {
		m.timeline.GotoBottom()
	} else {
		m.timeline.SetYOffset(prevYOffset)
	}
	m.sidebar.SetContent(m.renderSidebar())
}

func (m *model) renderTimeline() string {
	turns := m.session.Turns()
	if len(turns) == 0 {
		return "No messages yet. I can help you schedule appointments, check availability, and manage your calendar.\n\n" +
			"First time today? The service may take 30-60 seconds to wake up. Be patient with the first reply."
	}
	width := maxInt(24, m.timeline.Width-2)
	var b strings.Builder
	for index, turn := range turns {
		label := m.theme.agentLabel
		name := "assistant"
		if turn.Role == conversation.RoleUser {
			label = m.theme.userLabel
			name = "you"
		}
		header := fmt.Sprintf("%s [%s]", formatClock(turn.Timestamp), name)
		b.WriteString(label.Render(header))
		b.WriteString("\n")
		b.WriteString(wordwrap.String(turn.Content, width))
		b.WriteString("\n")

		switch conversation.Select(index, m.session) {
		case conversation.AffordanceBooking:
			b.WriteString(m.renderBooking(turn))
		case conversation.AffordanceConfirmation:
			b.WriteString(m.theme.warning.Render("Confirmation required"))
			b.WriteString("\n")
			b.WriteString(wordwrap.String("Press y to book it, n to cancel (with an empty input box).", width))
			b.WriteString("\n")
		case conversation.AffordanceTimeSlots:
			b.WriteString(m.renderTimeSlots(turn))
		case conversation.AffordanceMismatchWarning:
			b.WriteString(m.theme.warning.Render("Heads up"))
			b.WriteString("\n")
			b.WriteString(wordwrap.String(
				"The assistant described a booking, but the backend returned no booking record. "+
					"Your calendar may not have been updated - ask it to confirm or try again.", width))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *model) renderBooking(turn conversation.Turn) string {
	booking := turn.Booking
	if booking == nil {
		return ""
	}
	// The celebration fires on the first render of a booking id, then
	// never again for that id within the session.
	if m.session.MarkCelebrated(booking.ID) {
		m.celebration = celebrationTicks
		m.logger.Info("celebration fired", zap.String("booking_id", booking.ID))
	}

	width := maxInt(24, m.timeline.Width-2)
	var b strings.Builder
	b.WriteString(m.theme.success.Render("Appointment booked"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Title:  %s\n", nullCoalesce(booking.Title, "Meeting")))
	b.WriteString(fmt.Sprintf("  When:   %s\n", formatStartTime(booking.StartTime)))
	b.WriteString(fmt.Sprintf("  Status: %s\n", nullCoalesce(booking.Status, "confirmed")))
	b.WriteString(fmt.Sprintf("  ID:     %s\n", booking.ID))
	if strings.TrimSpace(booking.HTMLLink) != "" {
		b.WriteString(wordwrap.String("  Link:   "+booking.HTMLLink, width))
		b.WriteString("\n")
	} else {
		b.WriteString(m.theme.muted.Render("  The event was added to your calendar."))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *model) renderTimeSlots(turn conversation.Turn) string {
	var b strings.Builder
	b.WriteString(m.theme.panelTitle.Render("Available time slots"))
	b.WriteString("\n")
	for i, slot := range turn.SuggestedTimes {
		if i >= maxPickerSlots {
			b.WriteString(m.theme.muted.Render(fmt.Sprintf("  ...and %d more - ask to narrow it down", len(turn.SuggestedTimes)-maxPickerSlots)))
			b.WriteString("\n")
			break
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", m.theme.slotKey.Render(fmt.Sprintf("[%d]", i+1)), slot))
	}
	b.WriteString(m.theme.muted.Render("Press a number (with an empty input box) to pick a slot."))
	b.WriteString("\n")
	return b.String()
}

func (m *model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Session   %s\n", m.session.ID))
	b.WriteString(fmt.Sprintf("Backend   %s\n", m.cfg.settings.BackendURL))
	b.WriteString(fmt.Sprintf("Persist   %s\n", onOff(m.cfg.persist)))

	user, assistant := m.session.Counts()
	b.WriteString(fmt.Sprintf("Messages  total=%d you=%d assistant=%d\n", m.session.Len(), user, assistant))
	b.WriteString("\n")

	b.WriteString(m.theme.panelTitle.Render("Connection"))
	b.WriteString("\n")
	switch {
	case m.checkingHlth:
		b.WriteString("checking...\n")
	case m.healthAt.IsZero():
		b.WriteString(m.theme.muted.Render("no health check yet - try /health"))
		b.WriteString("\n")
	case m.health.Healthy:
		b.WriteString(m.theme.success.Render("backend healthy"))
		b.WriteString("\n")
		switch m.health.CalendarStatus {
		case "authenticated":
			b.WriteString("calendar: connected\n")
		case "mock":
			b.WriteString(m.theme.warning.Render("calendar: not connected (mock)"))
			b.WriteString("\n")
		default:
			b.WriteString("calendar: " + nullCoalesce(m.health.CalendarStatus, "unknown") + "\n")
		}
		if m.health.ServerTime != "" {
			b.WriteString("server time: " + m.health.ServerTime + "\n")
		}
	default:
		b.WriteString(m.theme.errorStatus.Render("backend unreachable"))
		b.WriteString("\n")
		b.WriteString(wordwrap.String(m.health.Err, maxInt(20, m.sidebar.Width-2)))
		b.WriteString("\n")
		b.WriteString(m.theme.muted.Render("if it is starting up, wait 30-60s and retry"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.theme.panelTitle.Render("Quick actions"))
	b.WriteString("\n")
	b.WriteString("/today     availability today\n")
	b.WriteString("/call      schedule a call\n")
	b.WriteString("/tomorrow  meeting tomorrow\n")
	b.WriteString("/health    test the backend\n")
	b.WriteString("/reset     clear conversation\n")
	return strings.TrimRight(b.String(), "\n")
}

func (m *model) renderHeader() string {
	title := m.theme.panelTitle.Render(appTitle)
	meta := m.theme.muted.Render("  session=" + m.session.ID)
	return m.theme.header.Width(maxInt(20, m.width-4)).Render(title + meta)
}

func (m *model) renderContent() string {
	contentHeight := maxInt(8, m.height-10)
	contentWidth := maxInt(40, m.width-4)
	leftWidth := int(float64(contentWidth) * 0.68)
	rightWidth := contentWidth - leftWidth - 1
	if rightWidth < 30 {
		rightWidth = 30
		leftWidth = contentWidth - rightWidth - 1
	}
	left := m.theme.panel.Width(leftWidth).Height(contentHeight).Render(
		m.theme.panelTitle.Render("Conversation") + "\n" + m.timeline.View(),
	)
	right := m.theme.panel.Width(rightWidth).Height(contentHeight).Render(
		m.theme.panelTitle.Render("Assistant") + "\n" + m.sidebar.View(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m *model) renderInput() string {
	return m.theme.inputPanel.Width(maxInt(20, m.width-4)).Render(m.input.View())
}

func (m *model) renderFooter() string {
	var parts []string
	if m.inflight {
		parts = append(parts, m.spinner.View()+" "+m.theme.status.Render(m.statusLine))
	} else {
		parts = append(parts, m.theme.status.Render(m.statusLine))
	}
	if m.celebration > 0 {
		parts = append(parts, m.theme.celebrate.Render("🎉 appointment added to your calendar"))
	}
	if m.countdownLeft > 0 {
		parts = append(parts, m.theme.warning.Render(fmt.Sprintf("startup in progress - retry in %ds", m.countdownLeft)))
	} else if m.lastTurnIsStartupNotice() {
		parts = append(parts, m.theme.success.Render("startup window elapsed - send your message again"))
	}
	parts = append(parts, m.theme.muted.Render("enter send · 1-9/y/n affordances · /help · esc quit"))
	return m.theme.footer.Width(maxInt(20, m.width-4)).Render(strings.Join(parts, "  "))
}

func (m *model) lastTurnIsStartupNotice() bool {
	turns := m.session.Turns()
	if len(turns) == 0 {
		return false
	}
	return turns[len(turns)-1].IsStartupNotice
}

func (m *model) renderQuitModal() string {
	panel := m.theme.panel.Width(maxInt(30, minInt(60, m.width-8))).Render(
		m.theme.panelTitle.Render("Quit "+appTitle+"?") + "\n\n" +
			"The conversation transcript " + ternary(m.cfg.persist, "is saved and will be restored.", "will be lost.") + "\n\n" +
			m.theme.muted.Render("y quit · n stay"),
	)
	return lipgloss.Place(
		maxInt(34, m.width-2),
		maxInt(10, m.height-2),
		lipgloss.Center,
		lipgloss.Center,
		panel,
	)
}

// formatClock renders a turn timestamp the way the chat shows it.
func formatClock(t time.Time) string {
	if t.IsZero() {
		return "--:--"
	}
	return t.Format(timestampLayout) + " IST"
}

// formatStartTime renders a backend booking start time in a friendly
// long form, falling back to the raw string when it does not parse.
func formatStartTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "not specified"
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("Monday, January 2, 2006 at 03:04 PM") + " IST"
		}
	}
	return raw
}

func nullCoalesce(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func ternary[T any](condition bool, whenTrue T, whenFalse T) T {
	if condition {
		return whenTrue
	}
	return whenFalse
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func main() {
	cfg := loadAppConfig()

	logger, err := logging.NewLogger(cfg.settings.LogFile, cfg.settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client := gateway.NewClient(gateway.Config{
		BaseURL:       cfg.settings.BackendURL,
		SessionID:     cfg.settings.SessionID,
		ChatTimeout:   time.Duration(cfg.settings.ChatTimeoutSeconds) * time.Second,
		HealthTimeout: time.Duration(cfg.settings.HealthTimeoutSeconds) * time.Second,
	}, logger)

	var transcript conversation.TranscriptStore
	var store *storage.SQLiteStore
	if cfg.persist {
		store, err = storage.NewSQLiteStore(cfg.settings.DBPath)
		if err != nil {
			logger.Warn("transcript store unavailable, continuing without persistence", zap.Error(err))
			cfg.persist = false
		} else {
			defer store.Close()
			transcript = store
		}
	}

	processor := conversation.NewProcessor(client, transcript, logger)
	session := conversation.NewSession(cfg.settings.SessionID)
	if store != nil {
		turns, err := store.LoadSession(session.ID)
		if err != nil {
			logger.Warn("failed to load transcript", zap.Error(err))
		} else {
			session.Restore(turns)
		}
	}

	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if cfg.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(newModel(cfg, logger, client, processor, session), opts...)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "calchat-tui: %v\n", err)
		os.Exit(1)
	}
}
