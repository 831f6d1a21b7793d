// Package ui implements an interactive now-playing dashboard using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [LoadingView] : Spinner and progress updates while the dashboard is assembled
//  2. [DashboardView] : The playing track and a browsable list of artist news
//  3. [ErrorView] : The failure, with a retry hint
//
// The (view) [Model] implements the standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from a [tasks.Engine], so the spinner keeps running while the
// Spotify and news requests are in flight.
//
// Keys: r refreshes, enter or o opens the selected story in the browser, q quits.
package ui
