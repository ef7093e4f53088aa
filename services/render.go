package services

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/DailyBread/models"
)

// Devotional bodies are authored in markdown. Raw HTML is not passed through.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
		extension.Typographer,
	),
)

// RenderMarkdown converts a markdown body to HTML.
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// NewContentView prepares a record for end-user pages.
func NewContentView(rec models.ContentRecord) (models.ContentView, error) {
	html, err := RenderMarkdown(rec.Devotional)
	if err != nil {
		return models.ContentView{}, err
	}
	return models.ContentView{ContentRecord: rec, Devotional_HTML: html}, nil
}

// ContentETag identifies a revision of a record. Counters are left out so
// that views and prayers don't invalidate cached copies.
func ContentETag(rec models.ContentRecord) string {
	key := rec.Date_Key + "|" + rec.Status + "|" + strconv.FormatInt(rec.Datetime_Update.UnixNano(), 10)
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64String(key))
}
