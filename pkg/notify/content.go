// Package notify renders observed events into presentation-ready
// notification content, independent of the delivery mechanism.
package notify

import (
	"net/url"
	"time"
)

// Color is the presentation color tag for a notification. The mapping from
// kind to color is fixed; downstream sinks translate tags to platform hues.
type Color int

const (
	ColorNeutral Color = iota
	ColorWarning
	ColorDanger
	ColorPositive
	ColorAccent
)

// Hex returns the hex color string for a tag.
func (c Color) Hex() string {
	switch c {
	case ColorWarning:
		return "#CA8A04"
	case ColorDanger:
		return "#DC2626"
	case ColorPositive:
		return "#16A34A"
	case ColorAccent:
		return "#9333EA"
	default:
		return "#6B7280"
	}
}

// Field is one labelled value in a notification body. Order matters.
type Field struct {
	Label string
	Value string
}

// Content is a rendered notification, ready for a delivery sink.
type Content struct {
	Title        string
	Color        Color
	Description  string
	Fields       []Field
	FooterTime   time.Time // render-time wall clock ("logged at"), not the event time
	ThumbnailURL string    // empty when the source URL was absent or malformed
	ImageURL     string
}

// wellFormedAbsoluteURL reports whether s parses as an absolute URL with a
// host. Malformed avatar URLs are silently dropped, never an error.
func wellFormedAbsoluteURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.IsAbs() && u.Host != ""
}
