// Package tasks composes the dashboard: who is listening, what is playing, and news about its artists.
//
// # Core Operation
//
// [DashboardEngine.Dashboard] runs in three phases:
//
//  1. Profile and playback are fetched inside auth.Guard.Do, so a 401 on either call refreshes the
//     token once and both calls run again.
//  2. When something is playing, its artists are handed to the news aggregator. When nothing is
//     playing the news list is empty and no search is made.
//  3. When a [PlayRecorder] is configured the play is written to history.
//
// # Progress Reporting
//
// Callers may pass a channel to receive [ProgressUpdate] values. Updates use select with default so a
// slow or absent reader never blocks the dashboard.
//
// # History
//
// Recording is best effort. A recorder error is logged and the dashboard is still returned.
package tasks
