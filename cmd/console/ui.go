package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/story-crafter/internal/handlers"
	"github.com/jwebster45206/story-crafter/pkg/plot"
)

const PlaceHolderText = "Enter to roll a beat, or type /help"

const helpText = `
Commands:
• (empty) Enter - roll the next beat by theme
• /open [plot line] - open a turning point (new plot line if omitted)
• /beat [axis|1-5] - pick a beat on an axis or theme priority
• /char new|auto|<key> - fill a waiting character slot
• /note <turning point> <slot> <text> - annotate a beat
• /copy - copy the outline to the clipboard
• Ctrl+C - Quit
`

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	backend       Backend
	story         *plot.Story
	storyViewport viewport.Model
	metaViewport  viewport.Model
	textarea      textarea.Model
	ready         bool
	width         int
	height        int
	busy          bool

	status string
	err    error

	// Quit confirmation state
	showQuitModal bool
}

type stepMsg struct {
	label string
	resp  *handlers.StepResponse
	err   error
}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(backend Backend, story *plot.Story) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	storyVp := viewport.New(50, 20)
	storyVp.MouseWheelEnabled = true

	return ConsoleUI{
		backend:       backend,
		story:         story,
		textarea:      ta,
		storyViewport: storyVp,
		metaViewport:  viewport.New(20, 20),
		status:        "Type /open to start the first turning point.",
	}
}

func writeMetadata(s *plot.Story, backend string) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("STORY") + "\n\n")

	content.WriteString("Story ID:\n")
	content.WriteString(s.ID.String()[:8] + "...\n\n")

	content.WriteString("Backend:\n" + backend + "\n\n")

	content.WriteString("Themes:\n")
	for i, a := range s.Themes {
		fmt.Fprintf(&content, "%d. %s\n", i+1, a)
	}
	content.WriteString("\n")

	content.WriteString("Plot lines:\n")
	if len(s.PlotLines) == 0 {
		content.WriteString("None yet\n")
	}
	for _, pl := range s.PlotLines {
		state := "open"
		if pl.Concluded {
			state = "concluded"
		}
		fmt.Fprintf(&content, "• %s (%s)\n", pl.Key, state)
	}
	content.WriteString("\n")

	content.WriteString("Characters:\n")
	if len(s.Characters) == 0 {
		content.WriteString("None yet\n")
	}
	for _, c := range s.Characters {
		fmt.Fprintf(&content, "• %s\n", c.Key)
	}

	if s.Concluded() {
		content.WriteString("\n" + statusStyle.Render("Story concluded") + "\n")
	}
	return content.String()
}

// writeStoryContent renders the outline and status for the current width.
func (m *ConsoleUI) writeStoryContent() {
	width := m.storyViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("STORY CRAFTER") + "\n\n")
	content.WriteString(renderOutline(m.story, width))
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(width-6, 1))) + "\n\n")

	switch {
	case m.busy:
		content.WriteString(loadingStyle.Render("Rolling...") + "\n")
	case m.err != nil:
		content.WriteString(errorStyle.Render(wordwrap.String("Error: "+m.err.Error(), width)) + "\n")
	case m.status != "":
		content.WriteString(statusStyle.Render(wordwrap.String(m.status, width)) + "\n")
	}

	m.storyViewport.SetContent(content.String())
	m.storyViewport.GotoBottom()
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m *ConsoleUI) resize() {
	storyWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - storyWidth - 6

	m.storyViewport.Width = storyWidth - 2
	m.storyViewport.Height = m.height - 6
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(storyWidth - 4)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.storyViewport, vpCmd = m.storyViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeStoryContent()
		m.metaViewport.SetContent(writeMetadata(m.story, m.backend.Name()))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			return m.handleInput(input)
		}

	case stepMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.story = msg.resp.Story
			m.status = describeStep(msg.label, msg.resp)
			m.metaViewport.SetContent(writeMetadata(m.story, m.backend.Name()))
		}
		m.writeStoryContent()
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.storyViewport, vpCmd = m.storyViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) handleInput(input string) (tea.Model, tea.Cmd) {
	if input == "" {
		return m.run("beat", func() (*handlers.StepResponse, error) {
			return m.backend.NextBeat(handlers.NextBeatRequest{})
		})
	}

	cmd, ok := parseCommand(input)
	if !ok {
		m.err = fmt.Errorf("unknown input %q, type /help", input)
		m.writeStoryContent()
		return m, nil
	}

	switch cmd.name {
	case "help":
		m.err = nil
		m.status = helpText
		m.writeStoryContent()
		return m, nil

	case "open":
		plotLine := strings.Join(cmd.args, " ")
		return m.run("open", func() (*handlers.StepResponse, error) {
			return m.backend.OpenTurningPoint(plotLine)
		})

	case "beat":
		req := handlers.NextBeatRequest{}
		if len(cmd.args) > 0 {
			if p, err := strconv.Atoi(cmd.args[0]); err == nil {
				req.Priority = p
			} else {
				req.Axis = cmd.args[0]
			}
		}
		return m.run("beat", func() (*handlers.StepResponse, error) {
			return m.backend.NextBeat(req)
		})

	case "char":
		choice := plot.ChoiceAuto
		if len(cmd.args) > 0 {
			choice = cmd.args[0]
		}
		return m.run("char", func() (*handlers.StepResponse, error) {
			return m.backend.AssignCharacter(choice)
		})

	case "note":
		req, err := parseNote(cmd.args)
		if err != nil {
			m.err = err
			m.writeStoryContent()
			return m, nil
		}
		return m.run("note", func() (*handlers.StepResponse, error) {
			return m.backend.Annotate(req)
		})

	case "copy":
		m.err = clipboard.WriteAll(renderOutline(m.story, 80))
		if m.err == nil {
			m.status = "Outline copied to the clipboard."
		}
		m.writeStoryContent()
		return m, nil
	}

	m.err = fmt.Errorf("unknown command /%s, type /help", cmd.name)
	m.writeStoryContent()
	return m, nil
}

// parseNote reads "<turning point> <slot> <text>", both numbers 1-based.
func parseNote(args []string) (handlers.AnnotateRequest, error) {
	if len(args) < 3 {
		return handlers.AnnotateRequest{}, fmt.Errorf("usage: /note <turning point> <slot> <text>")
	}
	tp, err := strconv.Atoi(args[0])
	if err != nil {
		return handlers.AnnotateRequest{}, fmt.Errorf("turning point must be a number: %w", err)
	}
	slot, err := strconv.Atoi(args[1])
	if err != nil {
		return handlers.AnnotateRequest{}, fmt.Errorf("slot must be a number: %w", err)
	}
	return handlers.AnnotateRequest{
		TurningPoint: tp - 1,
		Slot:         slot - 1,
		Notes:        strings.Join(args[2:], " "),
	}, nil
}

func (m ConsoleUI) run(label string, step func() (*handlers.StepResponse, error)) (tea.Model, tea.Cmd) {
	m.busy = true
	m.err = nil
	m.writeStoryContent()
	return m, func() tea.Msg {
		resp, err := step()
		return stepMsg{label: label, resp: resp, err: err}
	}
}

func describeStep(label string, resp *handlers.StepResponse) string {
	switch {
	case resp.Opened != nil:
		return fmt.Sprintf("Opened turning point %d on %s.", resp.Opened.Index+1, resp.Opened.PlotLine)
	case resp.Result != nil && resp.Result.Placed:
		return fmt.Sprintf("Placed %q.", resp.Result.Detail.Name)
	case resp.Result != nil:
		return fmt.Sprintf("%q needs %d more character(s): /char new, /char auto or /char <key>.",
			resp.Result.Detail.Name, resp.Result.AwaitingCharacters)
	case label == "note":
		return "Note saved."
	}
	return ""
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Use /copy first if you want to keep the outline.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	storyWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - storyWidth - 6

	storyPanel := storyPanelStyle.Width(storyWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.storyViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(storyWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, storyPanel, metaPanel)
}
