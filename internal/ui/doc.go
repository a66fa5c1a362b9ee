// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for music generation:
//  1. [PromptView] : Enter a text prompt for a new generation
//  2. [GenerateView] : Monitor polling progress with per-track statuses
//  3. [ResultView] : Display finished tracks or the failure message
//  4. [LibraryView] : Browse recently cached tracks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Lifecycle snapshots flow through a subscription channel from the tasks.Manager,
// providing non-blocking status reporting while a generation is in flight.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, l, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
