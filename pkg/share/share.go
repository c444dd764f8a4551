// Package share builds the share message for a result and hands it to the
// first share method that works.
package share

import (
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// URL is the public address of the calculator.
const URL = "https://dopabrain.com/bmi-calculator/"

const (
	textKey  = "share.text"
	titleKey = "share.title"

	fallbackText  = "My BMI is {bmi}! 🏃 BMI Calculator: {url}"
	fallbackTitle = "BMI Calculator"
)

// ErrUnavailable is returned by a Sharer that cannot work on this system.
var ErrUnavailable = errors.New("share method unavailable")

// Translator is the subset of the i18n resolver used here.
type Translator interface {
	T(key string) string
}

// Message is what gets shared.
type Message struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// NewMessage builds the localized message for a BMI value. Keys the
// dictionary does not have fall back to English.
func NewMessage(t Translator, bmi float64) Message {
	text := translate(t, textKey, fallbackText)
	text = strings.NewReplacer(
		"{bmi}", strconv.FormatFloat(bmi, 'f', 1, 64),
		"{url}", URL,
	).Replace(text)

	return Message{
		Title: translate(t, titleKey, fallbackTitle),
		Text:  text,
		URL:   URL,
	}
}

func translate(t Translator, key, fallback string) string {
	if t == nil {
		return fallback
	}
	if s := t.T(key); s != key {
		return s
	}
	return fallback
}

// Sharer delivers a message one way.
type Sharer interface {
	Name() string
	Share(ctx context.Context, m Message) error
}

// Do tries each sharer in order and returns the name of the first that
// succeeds, or "" if none did. Failures are never returned.
func Do(ctx context.Context, m Message, sharers ...Sharer) string {
	for _, s := range sharers {
		if s == nil {
			continue
		}
		err := s.Share(ctx, m)
		if err == nil {
			return s.Name()
		}
		logrus.WithField("method", s.Name()).Debugf("share failed: %v", err)
	}
	return ""
}

// Clipboard copies the message text with whatever clipboard tool is
// installed.
type Clipboard struct {
	// Commands are tried in order; the first one found in $PATH is used.
	Commands [][]string
}

// NewClipboard returns a Clipboard knowing the usual macOS and Linux tools.
func NewClipboard() *Clipboard {
	return &Clipboard{Commands: [][]string{
		{"pbcopy"},
		{"wl-copy"},
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
	}}
}

func (c *Clipboard) Name() string { return "clipboard" }

func (c *Clipboard) Share(ctx context.Context, m Message) error {
	for _, argv := range c.Commands {
		if len(argv) == 0 {
			continue
		}
		if _, err := exec.LookPath(argv[0]); err != nil {
			continue
		}
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Stdin = strings.NewReader(m.Text)
		return cmd.Run()
	}
	return ErrUnavailable
}
