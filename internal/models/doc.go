// Package models defines the domain entities shared by the playback, news and history layers.
//
//   - [Artist] : a performing artist as reported by the playback provider
//   - [NewsItem] : one scraped news result
//   - [Play] : a persisted record of a track seen while building a dashboard
//
// The package has no dependencies on transport or storage so every layer can import it.
package models
