// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation screen of the Ava TUI.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY BINDINGS
// =============================================================================

// KeyMap defines the keyboard bindings for the chat screen.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Actions
	Submit   key.Binding
	Cancel   key.Binding
	Dismiss  key.Binding
	Followup key.Binding

	// Panels
	Sources  key.Binding
	Artifact key.Binding

	// Conversation
	NewConv key.Binding
	Copy    key.Binding
	Clear   key.Binding

	// Application
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("ctrl+home"),
			key.WithHelp("ctrl+home", "top"),
		),
		End: key.NewBinding(
			key.WithKeys("ctrl+end"),
			key.WithHelp("ctrl+end", "bottom"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "cancel answer / quit"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
		Followup: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next follow-up / tab"),
		),
		Sources: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "sources panel"),
		),
		Artifact: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "artifact overlay"),
		),
		NewConv: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new conversation"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy last answer"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear transcript"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sources, k.Artifact, k.Help, k.Quit}
}

// FullHelp returns all bindings grouped for the help listing.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Cancel, k.Followup, k.Dismiss},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Sources, k.Artifact, k.NewConv, k.Copy, k.Clear},
		{k.Help, k.Quit},
	}
}

// HelpText renders the full help as plain text for the /help command.
func HelpText() string {
	return `Keys
  enter        send message
  ctrl+c       cancel the streaming answer (or quit when idle)
  tab          cycle follow-up suggestions into the input
  esc          dismiss overlay / close panel / cancel answer
  up/down      scroll transcript
  pgup/pgdn    page transcript
  ctrl+s       toggle the sources panel
  ctrl+o       toggle the diagram / story-map overlay
  ctrl+n       start a new conversation (current one is saved)
  ctrl+y       copy the last answer
  ctrl+l       clear the transcript
  ctrl+q       quit

Commands
  /help                 this help
  /new                  new conversation
  /clear                clear the transcript
  /bots                 list available bots
  /bot <id>             switch bot (starts a new conversation)
  /sources              toggle the sources panel
  /artifact             toggle the diagram / story-map overlay
  /open <n>             copy the link behind citation [n]
  /copy                 copy the last answer
  /save                 save the conversation now
  /export [fmt]         export to a file (md, html or json)
  /feedback <+|-> [why] rate the last answer
  /history              list saved conversations
  /load <n>             load a saved conversation
  /retry                ask the last question again
  /quit                 quit`
}
