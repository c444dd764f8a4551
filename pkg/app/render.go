package app

import (
	"fmt"
	"strconv"

	"github.com/charlie0129/bmi/pkg/bmi"
	"github.com/charlie0129/bmi/pkg/i18n"
)

// Text holds the translated static strings of the page.
type Text struct {
	Title         string `json:"title"`
	Subtitle      string `json:"subtitle"`
	Height        string `json:"height"`
	Weight        string `json:"weight"`
	Metric        string `json:"metric"`
	Imperial      string `json:"imperial"`
	Calculate     string `json:"calculate"`
	Share         string `json:"share"`
	ResultTitle   string `json:"resultTitle"`
	ResultHeight  string `json:"resultHeight"`
	ResultWeight  string `json:"resultWeight"`
	ResultBMI     string `json:"resultBmi"`
	IdealRange    string `json:"idealRange"`
	Tip           string `json:"tip"`
	HistoryTitle  string `json:"historyTitle"`
	HistoryClear  string `json:"historyClear"`
	ConfirmClear  string `json:"confirmClear"`
	ShareCopied   string `json:"shareCopied"`
	LanguageTitle string `json:"languageTitle"`
	ThemeToggle   string `json:"themeToggle"`
}

// ResultView is the result block. A nil *ResultView means it is hidden.
type ResultView struct {
	Value    float64      `json:"value"`
	BMI      string       `json:"bmi"`
	Category bmi.Category `json:"category"`
	Emoji    string       `json:"emoji"`
	Label    string       `json:"label"`
	Tip      string       `json:"tip"`
	Height   string       `json:"height"`
	Weight   string       `json:"weight"`
	IdealMin string       `json:"idealMin"`
	IdealMax string       `json:"idealMax"`
}

type HistoryRow struct {
	Text string `json:"text"`
	BMI  string `json:"bmi"`
	Time string `json:"time"`
}

type LanguageOption struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// View describes the whole page for one snapshot.
type View struct {
	Language    string           `json:"language"`
	Theme       Theme            `json:"theme"`
	ThemeIcon   string           `json:"themeIcon"`
	Unit        bmi.Unit         `json:"unit"`
	HeightLabel string           `json:"heightLabel"`
	WeightLabel string           `json:"weightLabel"`
	Input       Input            `json:"input"`
	Text        Text             `json:"text"`
	Result      *ResultView      `json:"result"`
	History     []HistoryRow     `json:"history"`
	EmptyText   string           `json:"emptyText,omitempty"`
	Languages   []LanguageOption `json:"languages"`
}

// Render lays out s in the language of t. It does no IO.
func Render(s Snapshot, t i18n.Translator) View {
	v := View{
		Language:    s.Language,
		Theme:       s.Theme,
		ThemeIcon:   s.Theme.Icon(),
		Unit:        s.Unit,
		HeightLabel: s.Unit.HeightLabel(),
		WeightLabel: s.Unit.WeightLabel(),
		Input:       s.Input,
		Text:        renderText(t),
		History:     []HistoryRow{},
	}

	if s.Result != nil {
		v.Result = renderResult(*s.Result, t)
	}

	for _, e := range s.History {
		v.History = append(v.History, HistoryRow{
			Text: fmt.Sprintf("BMI: %.1f (%.1f %s / %.1f %s)",
				e.BMI, e.Height, e.Unit.HeightLabel(), e.Weight, e.Unit.WeightLabel()),
			BMI:  fmt.Sprintf("%.1f", e.BMI),
			Time: e.Timestamp.Format("15:04"),
		})
	}
	if len(v.History) == 0 {
		v.EmptyText = t.T("history.empty")
	}

	for _, code := range i18n.SupportedLanguages {
		v.Languages = append(v.Languages, LanguageOption{
			Code:   code,
			Name:   i18n.LanguageName(code),
			Active: code == s.Language,
		})
	}
	return v
}

func renderText(t i18n.Translator) Text {
	return Text{
		Title:         t.T("app.title"),
		Subtitle:      t.T("app.subtitle"),
		Height:        t.T("input.height"),
		Weight:        t.T("input.weight"),
		Metric:        t.T("input.metric"),
		Imperial:      t.T("input.imperial"),
		Calculate:     t.T("button.calculate"),
		Share:         t.T("button.share"),
		ResultTitle:   t.T("result.title"),
		ResultHeight:  t.T("result.height"),
		ResultWeight:  t.T("result.weight"),
		ResultBMI:     t.T("result.bmi"),
		IdealRange:    t.T("result.idealRange"),
		Tip:           t.T("result.tip"),
		HistoryTitle:  t.T("history.title"),
		HistoryClear:  t.T("history.clear"),
		ConfirmClear:  t.T("history.confirmClear"),
		ShareCopied:   t.T("share.copied"),
		LanguageTitle: t.T("language.title"),
		ThemeToggle:   t.T("theme.toggle"),
	}
}

func renderResult(r bmi.Result, t i18n.Translator) *ResultView {
	u := r.Measurement.Unit
	rv := &ResultView{
		Value:    r.BMI,
		BMI:      fmt.Sprintf("%.1f", r.BMI),
		Category: r.Category,
		Emoji:    r.Category.Emoji(),
		Label:    t.T(r.Category.LabelKey()),
		Tip:      t.T(r.Category.TipKey()),
		IdealMin: fmt.Sprintf("%.1f %s", r.Ideal.Min, u.WeightLabel()),
		IdealMax: fmt.Sprintf("%.1f %s", r.Ideal.Max, u.WeightLabel()),
	}

	// Metric values are shown as typed, imperial ones to two decimals.
	if u == bmi.Imperial {
		rv.Height = fmt.Sprintf("%.2f %s", r.Measurement.Height, u.HeightLabel())
		rv.Weight = fmt.Sprintf("%.2f %s", r.Measurement.Weight, u.WeightLabel())
	} else {
		rv.Height = strconv.FormatFloat(r.Measurement.Height, 'f', -1, 64) + " " + u.HeightLabel()
		rv.Weight = strconv.FormatFloat(r.Measurement.Weight, 'f', -1, 64) + " " + u.WeightLabel()
	}
	return rv
}
