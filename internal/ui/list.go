package ui

import (
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/nowplaying/internal/models"
)

var _ list.Item = newsItem{}

// newsItem wraps [models.NewsItem] to implement [list.Item].
type newsItem struct {
	item models.NewsItem
}

func (i newsItem) FilterValue() string { return i.item.Title }
func (i newsItem) Title() string       { return i.item.Title }
func (i newsItem) Description() string {
	desc := i.item.PreviewText
	if u, err := url.Parse(i.item.URL); err == nil && u.Host != "" {
		host := strings.TrimPrefix(u.Host, "www.")
		if desc == "" {
			return host
		}
		desc = host + " • " + desc
	}
	return desc
}

func newsItems(items []models.NewsItem) []list.Item {
	out := make([]list.Item, len(items))
	for i, item := range items {
		out[i] = newsItem{item: item}
	}
	return out
}
