// Package assets resolves enqueued asset ids to script and style tags.
package assets

import (
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"html"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
)

// Calendar asset ids.
const (
	CalendarScript = "advent-calendar"
	CalendarStyle  = "advent-calendar-style"
)

type Kind int

const (
	Script Kind = iota
	Style
)

type Asset struct {
	ID   string
	Kind Kind
	Src  string
	// Deps are emitted before the asset itself.
	Deps []string
}

// Enqueuer is the capability renderers use to request an asset.
type Enqueuer interface {
	Enqueue(id string)
}

// Registry maps asset ids to sources. Sources below a mounted URL prefix get
// a sha384 integrity attribute computed from the mounted file system.
type Registry struct {
	mu     sync.RWMutex
	assets map[string]Asset
	mounts map[string]fs.FS
	sri    sync.Map // src -> integrity
}

func NewRegistry() *Registry {
	return &Registry{assets: make(map[string]Asset), mounts: make(map[string]fs.FS)}
}

// DefaultRegistry registers the calendar script and stylesheet, with
// /assets/ served from static and /dist/ from dist.
func DefaultRegistry(static, dist fs.FS) *Registry {
	r := NewRegistry()
	r.Mount("/assets/", static)
	r.Mount("/dist/", dist)
	r.Register(Asset{ID: CalendarStyle, Kind: Style, Src: "/assets/css/advent-calendar.css"})
	r.Register(Asset{ID: CalendarScript, Kind: Script, Src: "/dist/advent-calendar.js", Deps: []string{CalendarStyle}})
	return r
}

func (r *Registry) Register(a Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[a.ID] = a
}

// Mount makes files of fsys addressable below prefix, e.g. /assets/.
func (r *Registry) Mount(prefix string, fsys fs.FS) {
	if fsys == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mounts[prefix] = fsys
}

func (r *Registry) Lookup(id string) (Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assets[id]
	return a, ok
}

// Tags renders the tags for ids in dependency order, each asset once.
func (r *Registry) Tags(ids []string) template.HTML {
	var b strings.Builder
	seen := map[string]bool{}

	var emit func(id string)
	emit = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		a, ok := r.Lookup(id)
		if !ok {
			slog.Warn("Unknown asset enqueued", "asset", id)
			return
		}
		for _, dep := range a.Deps {
			emit(dep)
		}
		switch a.Kind {
		case Style:
			b.WriteString(string(r.StyleTag(a.Src)))
		default:
			b.WriteString(string(r.ScriptTag(a.Src)))
		}
		b.WriteString("\n")
	}
	for _, id := range ids {
		emit(id)
	}
	return template.HTML(b.String())
}

func (r *Registry) open(src string) (fs.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for prefix, fsys := range r.mounts {
		if name, ok := strings.CutPrefix(src, prefix); ok {
			return fsys.Open(name)
		}
	}
	return nil, fs.ErrNotExist
}

func (r *Registry) integrity(src string) string {
	if v, ok := r.sri.Load(src); ok {
		return v.(string)
	}
	f, err := r.open(src)
	if err != nil {
		return ""
	}
	defer f.Close()

	h := sha512.New384()
	if _, err := io.Copy(h, f); err != nil {
		return ""
	}
	sri := "sha384-" + base64.StdEncoding.EncodeToString(h.Sum(nil))
	r.sri.Store(src, sri)
	return sri
}

func (r *Registry) integrityAttrs(src string) string {
	if sri := r.integrity(src); sri != "" {
		return fmt.Sprintf(" integrity=\"%s\" crossorigin=\"anonymous\"", html.EscapeString(sri))
	}
	return ""
}

// ScriptTag returns a script tag for src, with integrity for local files.
func (r *Registry) ScriptTag(src string) template.HTML {
	return template.HTML(fmt.Sprintf("<script src=\"%s\"%s defer></script>", html.EscapeString(src), r.integrityAttrs(src)))
}

// StyleTag returns a stylesheet link for src, with integrity for local files.
func (r *Registry) StyleTag(src string) template.HTML {
	return template.HTML(fmt.Sprintf("<link rel=\"stylesheet\" href=\"%s\"%s>", html.EscapeString(src), r.integrityAttrs(src)))
}

// TemplateFuncs exposes the tag helpers to page templates.
func (r *Registry) TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"script_tag": r.ScriptTag,
		"style_tag":  r.StyleTag,
	}
}
