// Package i18n looks up translated UI strings. Messages are keyed by their
// English default text and may contain {name} placeholders.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

//go:embed locales/*.toml
var localeFS embed.FS

// Values holds placeholder values for interpolation.
type Values map[string]any

// Catalog is a set of translations for one locale.
type Catalog struct {
	Locale   string            `toml:"locale"`
	Messages map[string]string `toml:"messages"`
}

// Translator translates messages for a single locale.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// New returns a translator for locale using the built-in catalogues plus any
// extra catalogues supplied. Later catalogues override earlier ones.
func New(locale string, extra ...Catalog) (*Translator, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}

	builtin, err := builtinCatalogs()
	if err != nil {
		return nil, err
	}

	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, c := range append(builtin, extra...) {
		ctag, err := language.Parse(c.Locale)
		if err != nil {
			return nil, fmt.Errorf("catalog locale %q: %w", c.Locale, err)
		}
		for key, msg := range c.Messages {
			// The printer treats messages as format strings.
			if err := b.SetString(ctag, key, strings.ReplaceAll(msg, "%", "%%")); err != nil {
				return nil, fmt.Errorf("catalog %s: set %q: %w", c.Locale, key, err)
			}
		}
	}

	// Match the requested locale against what the catalogue supports so
	// "de-AT" picks up "de" translations.
	supported := append([]language.Tag{language.English}, b.Languages()...)
	_, idx, conf := language.NewMatcher(supported).Match(tag)
	matched := tag
	if conf != language.No {
		matched = supported[idx]
	}

	return &Translator{
		tag:     tag,
		printer: message.NewPrinter(matched, message.Catalog(b)),
	}, nil
}

// English returns a translator that returns default messages unchanged.
func English() *Translator {
	t, err := New("en")
	if err != nil {
		panic(err) // built-in catalogues are embedded and always parse
	}
	return t
}

// Tag returns the translator's requested language.
func (t *Translator) Tag() language.Tag {
	return t.tag
}

// T translates msg and substitutes {name} placeholders from vals.
// Integer values are formatted with the locale's digit grouping.
func (t *Translator) T(msg string, vals Values) string {
	translated := t.lookup(msg)
	if len(vals) == 0 {
		return translated
	}
	return placeholderRe.ReplaceAllStringFunc(translated, func(ph string) string {
		name := ph[1 : len(ph)-1]
		v, ok := vals[name]
		if !ok {
			return ph
		}
		return t.format(v)
	})
}

// TN picks singular or pluralForm using the locale's plural rules for n,
// then translates it. n is available to the message as {count}.
func (t *Translator) TN(singular, pluralForm string, n int, vals Values) string {
	msg := pluralForm
	if plural.Cardinal.MatchPlural(t.tag, n, 0, 0, 0, 0) == plural.One {
		msg = singular
	}
	all := Values{"count": n}
	for k, v := range vals {
		all[k] = v
	}
	return t.T(msg, all)
}

// FormatInt formats n with the locale's digit grouping.
func (t *Translator) FormatInt(n int) string {
	return t.printer.Sprintf("%d", n)
}

func (t *Translator) lookup(msg string) string {
	out := t.printer.Sprintf(msg)
	// Untranslated messages come back as the key; undo format escaping
	// artefacts for keys containing verbs.
	if strings.Contains(out, "%!") {
		return msg
	}
	return out
}

func (t *Translator) format(v any) string {
	switch n := v.(type) {
	case int:
		return t.FormatInt(n)
	case int64:
		return t.printer.Sprintf("%d", n)
	case string:
		return n
	default:
		return fmt.Sprint(v)
	}
}

// LoadCatalog reads a TOML catalogue file.
func LoadCatalog(filename string) (Catalog, error) {
	var c Catalog
	data, err := os.ReadFile(filename)
	if err != nil {
		return c, fmt.Errorf("read catalog: %w", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode catalog %s: %w", filename, err)
	}
	if c.Locale == "" {
		return c, fmt.Errorf("catalog %s: locale is required", filename)
	}
	return c, nil
}

func builtinCatalogs() ([]Catalog, error) {
	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("read built-in locales: %w", err)
	}
	var out []Catalog
	for _, e := range entries {
		data, err := localeFS.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read built-in locale %s: %w", e.Name(), err)
		}
		var c Catalog
		if err := toml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode built-in locale %s: %w", e.Name(), err)
		}
		out = append(out, c)
	}
	return out, nil
}
