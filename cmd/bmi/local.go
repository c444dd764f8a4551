package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/bmi/pkg/bmi"
	"github.com/charlie0129/bmi/pkg/gauge"
)

// NewConvertCommand .
func NewConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "convert <metric|imperial> <height> <weight>",
		Short:   "Convert a height and weight to the other unit system",
		GroupID: gAdvanced,
		Long: `Convert a height and weight given in one unit system to the other.

The first argument is the unit of the input. Results are rounded to 2
decimal places. This command does not need the daemon.`,
		Example: `  bmi convert metric 170 65
  bmi convert imperial 5.58 143.3`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := bmi.ParseUnit(args[0])
			if err != nil {
				return err
			}
			h, err := parseFloatArg(args[1], "height")
			if err != nil {
				return err
			}
			w, err := parseFloatArg(args[2], "weight")
			if err != nil {
				return err
			}

			to := bmi.Imperial
			if from == bmi.Imperial {
				to = bmi.Metric
			}

			m := bmi.Convert(bmi.Measurement{Height: h, Weight: w, Unit: from}, to)
			cmd.Printf("%.2f %s, %.2f %s\n", m.Height, m.Unit.HeightLabel(), m.Weight, m.Unit.WeightLabel())

			return nil
		},
	}

	return cmd
}

// NewGaugeCommand .
func NewGaugeCommand() *cobra.Command {
	var (
		out        string
		format     string
		pixelRatio float64
	)

	cmd := &cobra.Command{
		Use:     "gauge <bmi>",
		Short:   "Draw the BMI gauge to an image file",
		GroupID: gAdvanced,
		Long: `Draw the semicircular BMI gauge for a value to a PNG or SVG file.

The format is taken from --format, or from the extension of --out.`,
		Example: "  bmi gauge 22.5 --out gauge.png --pixel-ratio 2",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseFloatArg(args[0], "bmi")
			if err != nil {
				return err
			}
			if pixelRatio <= 0 || pixelRatio > 4 {
				return fmt.Errorf("invalid pixel ratio %v, expected a value in (0, 4]", pixelRatio)
			}

			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(out), ".")
			}
			f, err := gauge.ParseFormat(strings.ToLower(format))
			if err != nil {
				return err
			}

			file, err := os.Create(out)
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to create %s", out)
			}
			defer file.Close()

			l := gauge.NewLayout(value, gauge.DefaultWidth, gauge.DefaultHeight, pixelRatio)
			if err := gauge.Render(file, f, l); err != nil {
				return fmt.Errorf("failed to render gauge: %v", err)
			}
			logrus.Infof("gauge written to %s", out)

			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&out, "out", "o", "gauge.png", "output file")
	f.StringVar(&format, "format", "", "image format (png or svg)")
	f.Float64Var(&pixelRatio, "pixel-ratio", 1, "device pixel ratio of the output")

	return cmd
}
