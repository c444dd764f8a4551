package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/bmi/pkg/client"
	"github.com/charlie0129/bmi/pkg/version"
)

var (
	logLevel       = "info"
	unixSocketPath = "/var/run/bmi.sock"
	configPath     = "/etc/bmi.json"
)

var (
	gBasic        = "Basic:"
	gPreferences  = "Preferences:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gPreferences,
		gAdvanced,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: bmi daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'bmi daemon', or use 'bmi calc --local' to calculate without it.")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
		fmt.Fprintln(os.Stderr, "  - Or restart the daemon with '--always-allow-non-root-access' to grant permissions to your user")
	} else if errors.Is(err, client.ErrNoResult) {
		fmt.Fprintln(os.Stderr, "\nError: nothing to share yet")
		fmt.Fprintln(os.Stderr, "Run 'bmi calc <height> <weight>' first.")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bmi",
		Short: "bmi is a body mass index calculator",
		Long: `bmi is a body mass index calculator.

A local daemon keeps your unit, language, theme and the last 10 calculations,
and serves the calculator page in your browser. Every other command talks to
that daemon.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			err := setupLogger()
			if err != nil {
				return err
			}

			apiClient = client.NewClient(unixSocketPath)

			daemonVersion, err := apiClient.GetVersion()
			if err != nil {
				logrus.WithError(err).Debug("failed to get daemon version")
				return nil
			}
			if daemonVersion != version.Version {
				logrus.Warnf("bmi client version (%s) and daemon version (%s) differ, consider restarting the daemon", version.Version, daemonVersion)
			}

			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "bmi daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewCalcCommand(),
		NewUnitCommand(),
		NewStatusCommand(),
		NewHistoryCommand(),
		NewShareCommand(),
		NewConvertCommand(),
		NewGaugeCommand(),
		NewLanguageCommand(),
		NewThemeCommand(),
		NewCacheCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
	)

	return cmd
}
