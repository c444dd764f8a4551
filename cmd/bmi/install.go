package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/bmi/pkg/config"
	"github.com/charlie0129/bmi/pkg/utils/service"
)

var gInstallation = "Installation:"

func init() {
	commandGroups = append(commandGroups, gInstallation)
}

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	var (
		allowNonRootAccess bool
		listen             string
		origin             string
	)

	cmd := &cobra.Command{
		Use:     "install",
		Short:   "Install bmi daemon as a systemd service (system-wide)",
		GroupID: gInstallation,
		Long: `Install bmi daemon as a systemd service (system-wide).

This makes bmi run in the background and automatically start on boot. You must run this command as root.

By default, only root user is allowed to access the bmi daemon socket. If you want to allow non-root users, i.e., you, to use the bmi client, you can use the --allow-non-root-access flag, so you don't have to use sudo every time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			conf.SetAllowNonRootAccess(allowNonRootAccess)
			if allowNonRootAccess {
				logrus.Info("non-root users are allowed to access the bmi daemon.")
			} else {
				logrus.Info("only root user is allowed to access the bmi daemon.")
			}
			if cmd.Flags().Changed("listen") {
				conf.SetListen(listen)
			}
			if cmd.Flags().Changed("origin") {
				conf.SetOrigin(origin)
			}
			if err := conf.Validate(); err != nil {
				return err
			}

			err = service.Install(configPath)
			if err != nil {
				// check if current user is root
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to install daemon: %v. Are you root?", err)
			}

			err = conf.Save()
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			logrus.Infof("installation succeeded")

			exePath, _ := os.Executable()

			cmd.Printf("systemd will use current binary (%s) at startup so please make sure you do not move this binary. Once this binary is moved or deleted, you will need to run `bmi install' again.\n", exePath)
			cmd.Printf("The calculator is served on http://%s\n", conf.Listen())

			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&allowNonRootAccess, "allow-non-root-access", false, "Allow non-root users to access bmi daemon.")
	f.StringVar(&listen, "listen", "", "TCP address the calculator page is served on")
	f.StringVar(&origin, "origin", "", "origin to keep an offline copy of")

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall bmi daemon (system-wide)",
		GroupID: gInstallation,
		Long: `Uninstall bmi daemon from systemd (system-wide).

This stops bmi and removes its service unit.

You must run this command as root.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := service.Uninstall()
			if err != nil {
				// check if current user is root
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to uninstall daemon: %v", err)
			}

			cmd.Println("successfully uninstalled")

			cmd.Printf("Your config is kept in %s and your history in the configured storage, in case you want to use `bmi' again. If you want a complete uninstall, you can remove them and bmi itself manually.\n", configPath)

			return nil
		},
	}

	return cmd
}
