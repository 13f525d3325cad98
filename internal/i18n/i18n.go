// Package i18n resolves UI strings from embedded YAML catalogs.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localesFS embed.FS

// Translate is the lookup capability handed to renderers.
type Translate func(key string, args ...any) string

// Bundle holds one catalog per language.
type Bundle struct {
	fallback language.Tag
	tags     []language.Tag
	catalogs map[language.Tag]map[string]string
	matcher  language.Matcher
}

// Load reads the embedded catalogs. fallback must be one of them.
func Load(fallback string) (*Bundle, error) {
	entries, err := localesFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}

	b := &Bundle{catalogs: make(map[language.Tag]map[string]string)}
	for _, entry := range entries {
		name := entry.Name()
		tag, err := language.Parse(strings.TrimSuffix(name, path.Ext(name)))
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", name, err)
		}
		data, err := localesFS.ReadFile("locales/" + name)
		if err != nil {
			return nil, err
		}
		catalog := map[string]string{}
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("locale %s: %w", name, err)
		}
		b.catalogs[tag] = catalog
	}

	fb, err := language.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("default language: %w", err)
	}
	if _, ok := b.catalogs[fb]; !ok {
		return nil, fmt.Errorf("no catalog for default language %q", fallback)
	}
	b.fallback = fb

	// The matcher prefers its first tag on ties.
	b.tags = []language.Tag{fb}
	others := make([]language.Tag, 0, len(b.catalogs))
	for tag := range b.catalogs {
		if tag != fb {
			others = append(others, tag)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
	b.tags = append(b.tags, others...)
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Languages lists the supported tags, default first.
func (b *Bundle) Languages() []language.Tag {
	return append([]language.Tag(nil), b.tags...)
}

// Match picks the best supported language for an Accept-Language header
// or explicit language codes.
func (b *Bundle) Match(preferences ...string) language.Tag {
	var desired []language.Tag
	for _, p := range preferences {
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		desired = append(desired, tags...)
	}
	if len(desired) == 0 {
		return b.fallback
	}
	_, index, confidence := b.matcher.Match(desired...)
	if confidence == language.No {
		return b.fallback
	}
	return b.tags[index]
}

// T translates key in lang, falling back to the default catalog and then
// the key itself.
func (b *Bundle) T(lang language.Tag, key string, args ...any) string {
	msg, ok := b.catalogs[lang][key]
	if !ok {
		msg, ok = b.catalogs[b.fallback][key]
	}
	if !ok {
		msg = key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// For binds lang into a Translate func.
func (b *Bundle) For(lang language.Tag) Translate {
	return func(key string, args ...any) string {
		return b.T(lang, key, args...)
	}
}
