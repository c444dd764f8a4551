// Package service installs the bmi daemon as a systemd service.
package service

import (
	"strings"
)

const unitTemplate = `[Unit]
Description=BMI calculator daemon
After=network.target

[Service]
ExecStart=/path/to/bmi daemon --config /path/to/config
Restart=on-failure
RestartSec=5

[Install]
WantedBy=multi-user.target
`

var (
	unitName = "bmi.service"
	unitDir  = "/etc/systemd/system"
	// systemctl is replaced in tests.
	systemctl = runSystemctl
)

// Unit returns the service unit running exePath with configPath.
func Unit(exePath, configPath string) string {
	return strings.NewReplacer(
		"/path/to/bmi", exePath,
		"/path/to/config", configPath,
	).Replace(unitTemplate)
}
