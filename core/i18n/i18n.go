// Package i18n loads the bot's message catalogs and renders localized strings.
//
// Catalog files live under locales/<locale>/<namespace>.yaml:
//
//	locale: "en"
//	namespace: "poker"
//	messages:
//	  poker.room.created: "Room %s created"
//
// Every key must start with its namespace followed by a dot.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale must be present in the embedded catalogs.
const BaseLocale = "en"

//go:embed locales/*/*.yaml
var embedded embed.FS

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Catalog translates message keys. It is immutable after loading.
type Catalog struct {
	fallback language.Tag
	tags     []language.Tag
	matcher  language.Matcher
	builder  *catalog.Builder
	keys     map[language.Tag]map[string]struct{}
}

// Load reads the embedded catalogs, then overlays files from overrideDir when
// it is not empty. defaultLocale is used for unknown or empty languages.
func Load(defaultLocale, overrideDir string) (*Catalog, error) {
	sources := []fs.FS{embedded}
	if dir := strings.TrimSpace(overrideDir); dir != "" {
		sources = append(sources, os.DirFS(dir))
	}
	return LoadFS(defaultLocale, sources...)
}

// LoadFS loads catalogs from each source in order. Later sources override
// keys from earlier ones; within one source a key may be defined once.
func LoadFS(defaultLocale string, sources ...fs.FS) (*Catalog, error) {
	messages := map[string]map[string]string{}
	for i, src := range sources {
		paths, err := fs.Glob(src, "locales/*/*.yaml")
		if err != nil {
			return nil, fmt.Errorf("i18n: glob source %d: %w", i, err)
		}
		slices.Sort(paths)
		seen := map[string]string{}
		for _, p := range paths {
			file, err := readFile(src, p)
			if err != nil {
				return nil, err
			}
			locale := messages[file.Locale]
			if locale == nil {
				locale = map[string]string{}
				messages[file.Locale] = locale
			}
			for key, value := range file.Messages {
				id := file.Locale + "/" + key
				if prev, dup := seen[id]; dup {
					return nil, fmt.Errorf("i18n: %s: key %q already defined in %s", p, key, prev)
				}
				seen[id] = p
				locale[key] = value
			}
		}
	}
	if _, ok := messages[BaseLocale]; !ok {
		return nil, fmt.Errorf("i18n: base locale %q has no catalogs", BaseLocale)
	}
	return build(defaultLocale, messages)
}

func readFile(src fs.FS, p string) (catalogFile, error) {
	data, err := fs.ReadFile(src, p)
	if err != nil {
		return catalogFile{}, fmt.Errorf("i18n: read %s: %w", p, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return catalogFile{}, fmt.Errorf("i18n: parse %s: %w", p, err)
	}
	wantLocale := path.Base(path.Dir(p))
	wantNS := strings.TrimSuffix(path.Base(p), path.Ext(p))
	switch {
	case strings.TrimSpace(file.Locale) != wantLocale:
		return catalogFile{}, fmt.Errorf("i18n: %s: locale %q must match directory %q", p, file.Locale, wantLocale)
	case strings.TrimSpace(file.Namespace) != wantNS:
		return catalogFile{}, fmt.Errorf("i18n: %s: namespace %q must match file name %q", p, file.Namespace, wantNS)
	case len(file.Messages) == 0:
		return catalogFile{}, fmt.Errorf("i18n: %s: no messages", p)
	}
	file.Locale = wantLocale
	for key := range file.Messages {
		if !strings.HasPrefix(key, wantNS+".") {
			return catalogFile{}, fmt.Errorf("i18n: %s: key %q must start with %q", p, key, wantNS+".")
		}
	}
	return file, nil
}

func build(defaultLocale string, messages map[string]map[string]string) (*Catalog, error) {
	base := language.Make(BaseLocale)
	fallback := base
	if dl := strings.TrimSpace(defaultLocale); dl != "" {
		tag, err := language.Parse(dl)
		if err != nil {
			return nil, fmt.Errorf("i18n: default locale %q: %w", dl, err)
		}
		if _, ok := messages[tag.String()]; !ok {
			return nil, fmt.Errorf("i18n: default locale %q has no catalogs", dl)
		}
		fallback = tag
	}

	c := &Catalog{
		fallback: fallback,
		builder:  catalog.NewBuilder(catalog.Fallback(base)),
		keys:     map[language.Tag]map[string]struct{}{},
	}
	// The matcher prefers the first tag on ties, so the fallback goes first.
	c.tags = append(c.tags, fallback)
	locales := make([]string, 0, len(messages))
	for l := range messages {
		locales = append(locales, l)
	}
	slices.Sort(locales)
	for _, l := range locales {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("i18n: locale %q: %w", l, err)
		}
		if tag != fallback {
			c.tags = append(c.tags, tag)
		}
		known := make(map[string]struct{}, len(messages[l]))
		for key, value := range messages[l] {
			if err := c.builder.SetString(tag, key, value); err != nil {
				return nil, fmt.Errorf("i18n: %s %s: %w", l, key, err)
			}
			known[key] = struct{}{}
		}
		c.keys[tag] = known
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// Match returns the supported locale closest to lang, or the default locale.
func (c *Catalog) Match(lang string) language.Tag {
	if strings.TrimSpace(lang) == "" {
		return c.fallback
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return c.fallback
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return c.fallback
	}
	return c.tags[idx]
}

// Translate renders key for lang, formatting args with the message as a
// printf template. Missing keys fall back to the base locale and then to the
// key itself.
func (c *Catalog) Translate(lang, key string, args ...any) string {
	if c == nil {
		return key
	}
	for _, tag := range []language.Tag{c.Match(lang), c.fallback, language.Make(BaseLocale)} {
		if _, ok := c.keys[tag][key]; ok {
			return message.NewPrinter(tag, message.Catalog(c.builder)).Sprintf(key, args...)
		}
	}
	return key
}

// Has reports whether lang (after matching) defines key itself.
func (c *Catalog) Has(lang, key string) bool {
	_, ok := c.keys[c.Match(lang)][key]
	return ok
}

// Locales lists loaded locales, default first.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.tags))
	for _, t := range c.tags {
		out = append(out, t.String())
	}
	return out
}

// Keys lists every key of the base locale, sorted.
func (c *Catalog) Keys() []string {
	known := c.keys[language.Make(BaseLocale)]
	out := make([]string, 0, len(known))
	for k := range known {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
