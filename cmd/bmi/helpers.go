package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/charlie0129/bmi/pkg/app"
	"github.com/charlie0129/bmi/pkg/bmi"
	"github.com/charlie0129/bmi/pkg/client"
)

var apiClient = client.NewClient(unixSocketPath)

func parseFloatArg(arg string, valueName string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", valueName, err)
	}

	return value, nil
}

// askConfirm prints prompt and reads a yes/no answer. Anything but y or yes
// is a no, including EOF.
func askConfirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

func categoryColor(c bmi.Category) *color.Color {
	switch c {
	case bmi.Underweight:
		return color.New(color.Bold, color.FgBlue)
	case bmi.Normal:
		return color.New(color.Bold, color.FgGreen)
	case bmi.Overweight:
		return color.New(color.Bold, color.FgYellow)
	default:
		return color.New(color.Bold, color.FgRed)
	}
}

func printResult(w io.Writer, v app.View) {
	r := v.Result
	if r == nil {
		fmt.Fprintln(w, color.New(color.Faint).Sprint("No result. Enter a positive height and weight."))
		return
	}

	c := categoryColor(r.Category)
	fmt.Fprintf(w, "%s  %s %s\n", c.Sprint(r.BMI), r.Emoji, c.Sprint(r.Label))
	fmt.Fprintf(w, "  %s: %s\n", v.Text.ResultHeight, r.Height)
	fmt.Fprintf(w, "  %s: %s\n", v.Text.ResultWeight, r.Weight)
	fmt.Fprintf(w, "  %s: %s ~ %s\n", v.Text.IdealRange, r.IdealMin, r.IdealMax)
	fmt.Fprintf(w, "  %s %s\n", bold("%s", v.Text.Tip), r.Tip)
}

func printHistory(w io.Writer, v app.View) {
	fmt.Fprintln(w, bold("%s", v.Text.HistoryTitle))
	if len(v.History) == 0 {
		fmt.Fprintf(w, "  %s\n", v.EmptyText)
		return
	}
	for _, row := range v.History {
		fmt.Fprintf(w, "  %s  %s\n", color.New(color.Faint).Sprint(row.Time), row.Text)
	}
}
