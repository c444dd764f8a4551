package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/charlie0129/bmi/pkg/app"
	"github.com/charlie0129/bmi/pkg/bmi"
)

func TestAskConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		if got := askConfirm(strings.NewReader(tt.in), &out, "Clear?"); got != tt.want {
			t.Errorf("askConfirm(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !strings.HasPrefix(out.String(), "Clear? [y/N] ") {
			t.Errorf("unexpected prompt %q", out.String())
		}
	}
}

func TestParseFloatArg(t *testing.T) {
	if v, err := parseFloatArg(" 170.5", "height"); err != nil || v != 170.5 {
		t.Errorf("parseFloatArg() = %v, %v", v, err)
	}
	if _, err := parseFloatArg("tall", "height"); err == nil || !strings.Contains(err.Error(), "invalid height") {
		t.Errorf("expected invalid height error, got %v", err)
	}
}

func TestPrintResult(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	printResult(&out, app.View{})
	if !strings.Contains(out.String(), "No result") {
		t.Errorf("expected placeholder, got %q", out.String())
	}

	out.Reset()
	printResult(&out, app.View{
		Text: app.Text{ResultHeight: "Height", ResultWeight: "Weight", IdealRange: "Ideal", Tip: "Tip"},
		Result: &app.ResultView{
			BMI:      "22.5",
			Category: bmi.Normal,
			Emoji:    "✅",
			Label:    "Normal",
			Tip:      "Keep it up",
			Height:   "170 cm",
			Weight:   "65 kg",
			IdealMin: "53.5 kg",
			IdealMax: "72.0 kg",
		},
	})
	for _, want := range []string{"22.5  ✅ Normal", "Height: 170 cm", "Weight: 65 kg", "Ideal: 53.5 kg ~ 72.0 kg", "Tip Keep it up"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output %q does not contain %q", out.String(), want)
		}
	}
}

func TestConvertCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := NewConvertCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"metric", "170", "65"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "5.58 ft, 143.30 lb\n" {
		t.Errorf("got %q", got)
	}

	cmd = NewConvertCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"stones", "1", "1"})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for an unknown unit")
	}
}

func TestLocalCalcCommand(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	cmd := NewCalcCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--local", "--lang", "en", "170", "65"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "22.5  ") {
		t.Errorf("unexpected output %q", out.String())
	}

	out.Reset()
	cmd = NewCalcCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--local", "--lang", "en", "0", "65"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No result") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestGaugeCommand(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"gauge.png", "gauge.svg"} {
		path := filepath.Join(dir, name)
		cmd := NewGaugeCommand()
		cmd.SetArgs([]string{"22.5", "--out", path})
		if err := cmd.Execute(); err != nil {
			t.Fatal(err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	cmd := NewGaugeCommand()
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"22.5", "--out", filepath.Join(dir, "gauge.gif")})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
