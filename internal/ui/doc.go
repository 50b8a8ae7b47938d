// Package ui provides the terminal interface for streetlens.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model owns all presentation state and
// talks to three collaborators:
//
//   - LocationAPI fetches random locations and stores the exploration
//     preference on the server.
//   - Describer (a describe.Controller) owns the description request
//     lifecycle: debounce, timeouts, automatic retry, cancellation and
//     network gating. The UI only issues requests and renders State.
//   - state.Store holds the location on screen and refuses overlapping or
//     too frequent fetches.
//
// # Package Structure
//
//   - app.go: Model, Options, Init/Update/View and Run
//   - commands.go: message types and tea.Cmd constructors
//   - handlers.go: key handling and message handlers
//   - view.go: header, command bar, panels and footer
//   - help.go, logs.go: overlays
//   - minimap.go: equirectangular world map with a location marker
//   - theme.go, style_helpers.go: themes and background-safe rendering
//
// # Event Flow
//
//  1. Init starts the spinner, listens on the controller's Changes channel
//     and on connectivity transitions, and fetches the first location.
//  2. A locationMsg stores the location and requests its description in the
//     active language.
//  3. Each describeMsg replaces the rendered State and re-arms the listener.
//     The listener ends when the controller is closed.
//  4. When connectivity returns, a description that failed with
//     describe.ErrNetworkUnavailable is retried.
//
// Preferences (theme, language, exploration mode) are written through a
// debounced saver and once more when Run returns.
package ui
