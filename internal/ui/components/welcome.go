// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the Ava TUI.
package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rorymaher2092/ava-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN MODEL
// =============================================================================

// Welcome is the startup screen shown before the first message is sent.
type Welcome struct {
	// Display info
	version     string
	botLabel    string
	backendHost string
	greeting    string
	prompts     []string

	// Dimensions
	width  int
	height int

	// Theme
	theme *styles.Theme
}

// NewWelcome creates a new welcome screen.
func NewWelcome(theme *styles.Theme) Welcome {
	return Welcome{
		version:  "dev",
		botLabel: "Ava",
		theme:    theme,
	}
}

// SetVersion sets the version string.
func (w *Welcome) SetVersion(version string) {
	w.version = version
}

// SetBot sets the active bot label.
func (w *Welcome) SetBot(label string) {
	w.botLabel = label
}

// SetBackend sets the backend host shown in the info block.
func (w *Welcome) SetBackend(host string) {
	w.backendHost = host
}

// SetGreeting sets the personalized greeting fetched from the backend.
// Empty keeps the static fallback.
func (w *Welcome) SetGreeting(greeting string) {
	w.greeting = greeting
}

// SetPrompts sets the bot's suggested prompts.
func (w *Welcome) SetPrompts(prompts []string) {
	w.prompts = prompts
}

// SetSize updates the dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the welcome screen.
func (w Welcome) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (w Welcome) Update(msg tea.Msg) (Welcome, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
	}
	return w, nil
}

// View renders the welcome screen centered in the available space.
// Responsive: adapts to terminal size, minimum 80x24 supported.
func (w Welcome) View() string {
	width := w.width
	if width == 0 {
		width = 80
	}
	height := w.height
	if height == 0 {
		height = 24
	}

	// Box width tracks the terminal but stays readable.
	boxWidth := 64
	if width < 72 {
		boxWidth = width - 8
	}
	if boxWidth < 40 {
		boxWidth = 40
	}
	if boxWidth > width-4 {
		boxWidth = width - 4
	}

	innerWidth := boxWidth - 8 // border + padding overhead

	// Build sections, dropping the optional ones when vertical space is
	// tight. Logo(5) + version(1) + greeting(~3) + info(2) + prompts(n+1)
	// + press-key(1) plus blank separators.
	sections := []string{w.renderLogo()}
	sections = append(sections, w.renderVersion())

	availableLines := height - 6 // box border, padding, breathing room
	if g := w.renderGreeting(innerWidth); g != "" && availableLines >= 16 {
		sections = append(sections, g)
	}
	sections = append(sections, w.renderSystemInfo())
	if p := w.renderPrompts(innerWidth); p != "" && availableLines >= 20 {
		sections = append(sections, p)
	}
	sections = append(sections, w.renderPressKey())

	content := strings.Join(sections, "\n\n")

	box := w.theme.WelcomeBox.
		Width(boxWidth).
		Align(lipgloss.Center).
		Render(content)

	boxHeight := lipgloss.Height(box)
	if boxHeight >= height {
		// Too tall to center: align top so the logo stays visible.
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, box)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// RENDER HELPERS
// =============================================================================

// renderLogo renders the ASCII art logo (5 lines).
// Responsive: uses a compact logo for narrow terminals.
func (w Welcome) renderLogo() string {
	if w.width >= 60 || w.width == 0 {
		logo := `    ___  _    __    ___
   /   || |  / /   /   |
  / /| || | / /   / /| |
 / ___ || |/ /   / ___ |
/_/  |_||___/   /_/  |_|`
		return w.theme.WelcomeLogo.Render(logo)
	}
	if w.width >= 40 {
		return w.theme.WelcomeLogo.Render(`+------------------+
|       Ava        |
+------------------+`)
	}
	return w.theme.WelcomeLogo.Render("Ava - Vocus Assistant")
}

// renderVersion renders the version subtitle.
func (w Welcome) renderVersion() string {
	return w.theme.WelcomeVersion.Render("Vocus knowledge assistant v" + w.version)
}

// renderGreeting renders the backend-provided greeting, wrapped to the box.
func (w Welcome) renderGreeting(innerWidth int) string {
	if w.greeting == "" {
		return ""
	}
	if innerWidth < 20 {
		innerWidth = 20
	}
	return w.theme.WelcomeGreeting.Width(innerWidth).Render(w.greeting)
}

// renderSystemInfo renders the bot and backend lines.
func (w Welcome) renderSystemInfo() string {
	lines := []string{
		w.theme.WelcomeInfo.Render("Bot: " + w.botLabel),
	}
	if w.backendHost != "" {
		lines = append(lines, w.theme.WelcomeInfo.Render("Backend: "+w.backendHost))
	}
	return strings.Join(lines, "\n")
}

// renderPrompts renders the bot's suggested prompts, truncated to the box.
func (w Welcome) renderPrompts(innerWidth int) string {
	if len(w.prompts) == 0 {
		return ""
	}
	lines := []string{w.theme.WelcomeInfo.Render("Try asking:")}
	max := 3
	for i, p := range w.prompts {
		if i >= max {
			break
		}
		if innerWidth > 10 && len(p) > innerWidth-4 {
			p = p[:innerWidth-7] + "..."
		}
		lines = append(lines, w.theme.WelcomePrompt.Render("> "+p))
	}
	return strings.Join(lines, "\n")
}

// renderPressKey renders the call to action.
func (w Welcome) renderPressKey() string {
	return w.theme.WelcomeKey.Render("Press enter to start chatting") +
		w.theme.WelcomeVersion.Render("  (? for help)")
}
