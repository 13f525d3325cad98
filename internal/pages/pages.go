// Package pages loads authored pages and their calendar blocks from YAML.
package pages

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"advent-calendar/internal/door"
)

var ErrPageNotFound = errors.New("page not found")

// Block is one calendar placed on a page. Doors are the raw authored entries.
type Block struct {
	InstanceID string     `yaml:"instance_id"`
	Doors      []door.Raw `yaml:"doors"`
}

type Page struct {
	ID    int64  `yaml:"id"`
	Slug  string `yaml:"slug"`
	Title string `yaml:"title"`
	// Intro is author HTML shown above the blocks.
	Intro  string  `yaml:"intro"`
	Blocks []Block `yaml:"blocks"`
}

type Site struct {
	Pages []Page `yaml:"pages"`
}

// Load reads path. A missing file yields an empty site.
func Load(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Pages file not found, serving no pages", "file", path)
		return &Site{}, nil
	} else if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a pages document.
func Parse(data []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("parse pages: %w", err)
	}

	slugs := map[string]bool{}
	for i := range site.Pages {
		p := &site.Pages[i]
		p.Slug = strings.Trim(strings.TrimSpace(p.Slug), "/")
		if p.Slug == "" {
			return nil, fmt.Errorf("page %d: slug is required", i)
		}
		if slugs[p.Slug] {
			return nil, fmt.Errorf("page %q: duplicate slug", p.Slug)
		}
		slugs[p.Slug] = true
		if p.ID == 0 {
			p.ID = int64(i + 1)
		}
		for j := range p.Blocks {
			p.Blocks[j].InstanceID = strings.TrimSpace(p.Blocks[j].InstanceID)
		}
	}
	return &site, nil
}

func (s *Site) BySlug(slug string) (*Page, error) {
	for i := range s.Pages {
		if s.Pages[i].Slug == slug {
			return &s.Pages[i], nil
		}
	}
	return nil, ErrPageNotFound
}

// Instances returns every block with a non-empty instance id, keyed by id.
func (s *Site) Instances() map[string]*Block {
	out := map[string]*Block{}
	for i := range s.Pages {
		for j := range s.Pages[i].Blocks {
			b := &s.Pages[i].Blocks[j]
			if b.InstanceID != "" {
				out[b.InstanceID] = b
			}
		}
	}
	return out
}
