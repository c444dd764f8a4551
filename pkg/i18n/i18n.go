// Package i18n resolves dotted translation keys against per-language
// dictionaries.
package i18n

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/bmi/pkg/storage"
)

// PreferenceKey is the storage key of the persisted language.
const PreferenceKey = "selectedLanguage"

// ErrUnsupportedLanguage is returned by SetLanguage for unknown codes.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Translator turns a dotted key into display text.
type Translator interface {
	T(key string) string
}

// Resolver holds the loaded dictionaries and the active language.
type Resolver struct {
	loader Loader
	prefs  storage.Store

	mu       sync.RWMutex
	cache    map[string]Dictionary
	current  string
	onChange []func(code string)
}

var _ Translator = &Resolver{}

// New returns a resolver using loader for dictionaries and prefs to persist
// the chosen language. The active language is DefaultLanguage until Init or
// SetLanguage is called.
func New(loader Loader, prefs storage.Store) *Resolver {
	return &Resolver{
		loader:  loader,
		prefs:   prefs,
		cache:   map[string]Dictionary{},
		current: DefaultLanguage,
	}
}

// ResolveLanguage returns the persisted preference if it is supported,
// otherwise the best match of the user's declared languages, otherwise
// DefaultLanguage.
func (r *Resolver) ResolveLanguage(ctx context.Context, declared string) string {
	if saved, err := r.prefs.Get(ctx, PreferenceKey); err == nil && IsSupported(saved) {
		return saved
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logrus.Warnf("failed to read language preference: %v", err)
	}

	if code := MatchLanguage(declared); code != "" {
		return code
	}

	return DefaultLanguage
}

// Init resolves the initial language and loads its dictionary.
func (r *Resolver) Init(ctx context.Context, declared string) string {
	code := r.ResolveLanguage(ctx, declared)
	r.Load(ctx, code)

	r.mu.Lock()
	r.current = code
	r.mu.Unlock()

	return code
}

// Load returns the dictionary of code, fetching it on first use. Failures
// are logged and yield an empty dictionary, which is not cached.
func (r *Resolver) Load(ctx context.Context, code string) Dictionary {
	r.mu.RLock()
	d, ok := r.cache[code]
	r.mu.RUnlock()
	if ok {
		return d
	}

	if !IsSupported(code) {
		logrus.Errorf("error loading translations for %s: %v", code, ErrUnsupportedLanguage)
		return Dictionary{}
	}

	d, err := r.loader.Load(ctx, code)
	if err != nil {
		logrus.Errorf("error loading translations for %s: %v", code, err)
		return Dictionary{}
	}

	r.mu.Lock()
	r.cache[code] = d
	r.mu.Unlock()

	return d
}

// Language returns the active language code.
func (r *Resolver) Language() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// T translates key in the active language; see Lookup for the fallback.
func (r *Resolver) T(key string) string {
	r.mu.RLock()
	d := r.cache[r.current]
	r.mu.RUnlock()

	s, _ := Lookup(d, key)
	return s
}

// Translate is T.
func (r *Resolver) Translate(key string) string {
	return r.T(key)
}

// SetLanguage switches to code once its dictionary is loaded, persists the
// choice and runs every OnChange hook. Unsupported codes are logged and
// leave everything unchanged.
func (r *Resolver) SetLanguage(ctx context.Context, code string) error {
	if !IsSupported(code) {
		logrus.Errorf("unsupported language: %s", code)
		return ErrUnsupportedLanguage
	}

	r.Load(ctx, code)

	r.mu.Lock()
	r.current = code
	hooks := append([]func(string){}, r.onChange...)
	r.mu.Unlock()

	if err := r.prefs.Set(ctx, PreferenceKey, code); err != nil {
		logrus.Warnf("failed to save language preference: %v", err)
	}

	for _, h := range hooks {
		h(code)
	}
	return nil
}

// OnChange registers a hook run after every successful SetLanguage.
func (r *Resolver) OnChange(f func(code string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = append(r.onChange, f)
}

// Cached returns the codes whose dictionaries are loaded.
func (r *Resolver) Cached() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.cache))
	for _, code := range SupportedLanguages {
		if _, ok := r.cache[code]; ok {
			codes = append(codes, code)
		}
	}
	return codes
}

// Lookup walks d along the dot-separated segments of key. If a segment is
// missing, an intermediate value is not an object, or the leaf is not a
// non-empty string, it returns key itself and false.
func Lookup(d Dictionary, key string) (string, bool) {
	var value any = map[string]any(d)
	for _, k := range strings.Split(key, ".") {
		m, ok := value.(map[string]any)
		if !ok {
			return key, false
		}
		value = m[k]
	}

	s, ok := value.(string)
	if !ok || s == "" {
		return key, false
	}
	return s, true
}
