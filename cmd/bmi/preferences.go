package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/bmi/pkg/app"
	"github.com/charlie0129/bmi/pkg/i18n"
)

// NewLanguageCommand .
func NewLanguageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lang [code]",
		Short:   "Get or set the display language",
		GroupID: gPreferences,
		Long: `Get or set the display language.

Without an argument, the current language is printed. Run 'bmi lang list'
for the supported codes.`,
		Example:   "  bmi lang ko",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: i18n.SupportedLanguages,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				code, err := apiClient.GetLanguage()
				if err != nil {
					return fmt.Errorf("failed to get language: %v", err)
				}
				cmd.Printf("%s (%s)\n", code, i18n.LanguageName(code))
				return nil
			}

			code := args[0]
			if !i18n.IsSupported(code) {
				return fmt.Errorf("unsupported language %q, run 'bmi lang list' for supported ones", code)
			}

			ret, err := apiClient.SetLanguage(code)
			if err != nil {
				return fmt.Errorf("failed to set language: %v", err)
			}
			logrus.Infof("daemon responded: %s", ret)

			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List supported languages",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, code := range i18n.SupportedLanguages {
				cmd.Printf("%-3s %s\n", code, i18n.LanguageName(code))
			}
		},
	})

	return cmd
}

// NewThemeCommand .
func NewThemeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "theme [light|dark|toggle]",
		Short:     "Get or set the page theme",
		GroupID:   gPreferences,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(app.Light), string(app.Dark), "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				t, err := apiClient.GetTheme()
				if err != nil {
					return fmt.Errorf("failed to get theme: %v", err)
				}
				cmd.Printf("%s %s\n", themeName(t), t.Icon())
				return nil
			}

			t := app.Theme(args[0])
			if args[0] != "toggle" {
				var err error
				t, err = app.ParseTheme(args[0])
				if err != nil {
					return err
				}
			}

			ret, err := apiClient.SetTheme(t)
			if err != nil {
				return fmt.Errorf("failed to set theme: %v", err)
			}
			logrus.Infof("daemon responded: %s", ret)

			return nil
		},
	}

	return cmd
}

func themeName(t app.Theme) string {
	if t == app.Light {
		return color.New(color.Bold).Sprint(t)
	}
	return color.New(color.Bold, color.Faint).Sprint(t)
}
