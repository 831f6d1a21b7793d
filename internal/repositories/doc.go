// Package repositories implements SQLite persistence for observed plays.
//
// [PlayRepository] keeps a log of tracks seen while building dashboards. Consecutive observations of the
// same track collapse into one row, so polling a long song does not flood the history.
//
// Artists are stored as a JSON array in a TEXT column. Timestamps are written in UTC.
package repositories
