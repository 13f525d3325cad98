// Package door holds the canonical door model of a calendar instance and the
// sanitizer that turns authored, untrusted door entries into it.
package door

import "fmt"

// Count is the number of doors every calendar instance has.
const Count = 24

// Type is the closed set of door content kinds.
type Type string

const (
	TypeImage    Type = "image"
	TypeDownload Type = "download"
	TypeLink     Type = "link"
	TypeVideo    Type = "video"
)

// Types lists every valid Type.
var Types = []Type{TypeImage, TypeDownload, TypeLink, TypeVideo}

// ParseType maps a raw value onto the closed set. Unknown values become TypeImage.
func ParseType(s string) Type {
	switch t := Type(s); t {
	case TypeImage, TypeDownload, TypeLink, TypeVideo:
		return t
	default:
		return TypeImage
	}
}

func (t Type) String() string { return string(t) }

// Door is one sanitized content slot.
type Door struct {
	Day   int    `json:"day" yaml:"day"`
	Title string `json:"title" yaml:"title"`
	Type  Type   `json:"type" yaml:"type"`
	// Description is safe HTML.
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	ImageID       int    `json:"imageId,omitempty" yaml:"imageId,omitempty"`
	DownloadLabel string `json:"downloadLabel,omitempty" yaml:"downloadLabel,omitempty"`
	LinkURL       string `json:"linkUrl,omitempty" yaml:"linkUrl,omitempty"`
	LinkLabel     string `json:"linkLabel,omitempty" yaml:"linkLabel,omitempty"`
	VideoURL      string `json:"videoUrl,omitempty" yaml:"videoUrl,omitempty"`
}

// Meta is the subset of a door that is exposed before a reveal.
type Meta struct {
	Day   int    `json:"day"`
	Title string `json:"title"`
	Type  Type   `json:"type"`
}

func (d Door) Meta() Meta {
	return Meta{Day: d.Day, Title: d.Title, Type: d.Type}
}

// DefaultTitle is the title used when the author left it empty.
func DefaultTitle(day int) string {
	return fmt.Sprintf("Door %d", day)
}

// List is an ordered sequence of exactly Count doors, index i holding day i+1.
type List []Door

// Find returns the door for day.
func (l List) Find(day int) (Door, bool) {
	if day >= 1 && day <= len(l) && l[day-1].Day == day {
		return l[day-1], true
	}
	for _, d := range l {
		if d.Day == day {
			return d, true
		}
	}
	return Door{}, false
}

// Metas returns the pre-reveal metadata of every door.
func (l List) Metas() []Meta {
	out := make([]Meta, 0, len(l))
	for _, d := range l {
		out = append(out, d.Meta())
	}
	return out
}
