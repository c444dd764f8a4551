package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/bmi/pkg/app"
	"github.com/charlie0129/bmi/pkg/bmi"
	"github.com/charlie0129/bmi/pkg/history"
	"github.com/charlie0129/bmi/pkg/i18n"
	"github.com/charlie0129/bmi/pkg/storage"
	"github.com/charlie0129/bmi/pkg/version"
)

// NewVersionCommand .
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print version",
		GroupID: gBasic,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

// NewCalcCommand .
func NewCalcCommand() *cobra.Command {
	var (
		local bool
		unit  string
		lang  string
	)

	cmd := &cobra.Command{
		Use:     "calc <height> <weight>",
		Short:   "Calculate BMI",
		GroupID: gBasic,
		Long: `Calculate body mass index from a height and a weight.

Values are read in the unit currently selected in the daemon (cm and kg, or
ft and lb). The result is added to the history.

With --local the calculation runs in this process and nothing is stored.`,
		Example: `  bmi calc 170 65
  bmi calc --local --unit imperial 5.83 150`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if local {
				return runLocalCalc(cmd, args[0], args[1], unit, lang)
			}

			if unit != "" {
				u, err := bmi.ParseUnit(unit)
				if err != nil {
					return err
				}
				if _, err := apiClient.SwitchUnit(u); err != nil {
					return fmt.Errorf("failed to switch unit: %v", err)
				}
			}

			resp, err := apiClient.Calculate(args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to calculate: %v", err)
			}
			if resp.Result == nil {
				logrus.Warn("height and weight must be positive numbers")
			}
			printResult(cmd.OutOrStdout(), resp.View)

			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&local, "local", false, "calculate without the daemon")
	f.StringVarP(&unit, "unit", "u", "", "unit of the input (metric or imperial)")
	f.StringVar(&lang, "lang", "", "language of the output with --local (defaults to $LANG)")

	return cmd
}

// runLocalCalc calculates with an in-memory state so the output looks the
// same as the daemon's.
func runLocalCalc(cmd *cobra.Command, height, weight, unit, lang string) error {
	ctx := context.Background()

	u := bmi.Metric
	if unit != "" {
		var err error
		u, err = bmi.ParseUnit(unit)
		if err != nil {
			return err
		}
	}

	h, err := parseFloatArg(height, "height")
	if err != nil {
		return err
	}
	w, err := parseFloatArg(weight, "weight")
	if err != nil {
		return err
	}

	prefs := storage.NewMemory()
	resolver := i18n.New(i18n.EmbeddedLoader(), prefs)
	if lang == "" {
		lang = os.Getenv("LANG")
	}
	resolver.Init(ctx, lang)

	r, ok := bmi.Calculate(bmi.Measurement{Height: h, Weight: w, Unit: u})
	snap := app.Snapshot{
		Unit:     u,
		Input:    app.Input{Height: height, Weight: weight},
		History:  []history.Entry{},
		Language: resolver.Language(),
		Theme:    app.DefaultTheme,
	}
	if ok {
		snap.Result = &r
	} else {
		logrus.Warn("height and weight must be positive numbers")
	}

	printResult(cmd.OutOrStdout(), app.Render(snap, resolver))
	return nil
}

// NewUnitCommand .
func NewUnitCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "unit <metric|imperial>",
		Short:     "Switch the unit system",
		GroupID:   gBasic,
		Long:      "Switch between metric (cm, kg) and imperial (ft, lb). The current input is converted and the result recalculated.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(bmi.Metric), string(bmi.Imperial)},
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := bmi.ParseUnit(args[0])
			if err != nil {
				return err
			}

			resp, err := apiClient.SwitchUnit(u)
			if err != nil {
				return fmt.Errorf("failed to switch unit: %v", err)
			}

			v := resp.View
			cmd.Printf("%s: %s %s, %s: %s %s\n",
				v.Text.Height, displayInput(v.Input.Height), v.HeightLabel,
				v.Text.Weight, displayInput(v.Input.Weight), v.WeightLabel)
			if v.Result != nil {
				printResult(cmd.OutOrStdout(), v)
			}

			return nil
		},
	}
}

// NewStatusCommand .
func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Get the current result, history and preferences",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := apiClient.GetView()
			if err != nil {
				return fmt.Errorf("failed to get status: %v", err)
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), v)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, bold("%s", v.Text.Title))
			fmt.Fprintf(out, "  Unit: %s (%s, %s)\n", v.Unit, v.HeightLabel, v.WeightLabel)
			fmt.Fprintf(out, "  %s: %s\n", v.Text.LanguageTitle, i18n.LanguageName(v.Language))
			fmt.Fprintf(out, "  Theme: %s %s\n", v.Theme, v.ThemeIcon)
			fmt.Fprintln(out)
			fmt.Fprintln(out, bold("%s", v.Text.ResultTitle))
			printResult(out, *v)
			fmt.Fprintln(out)
			printHistory(out, *v)

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output in json format")

	return cmd
}

func displayInput(s string) string {
	if s == "" {
		return "-"
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return strconv.Quote(s)
	}
	return s
}
