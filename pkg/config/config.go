package config

import (
	"github.com/sirupsen/logrus"
)

// Storage backends.
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

// Config is the daemon configuration.
type Config interface {
	Listen() string
	Storage() string
	StoragePath() string
	RedisAddr() string
	RedisPassword() string
	RedisDB() int
	AnalyticsEndpoint() string
	Origin() string
	CacheName() string
	CacheRefreshCron() string
	AllowNonRootAccess() bool

	SetListen(string)
	SetStorage(string)
	SetOrigin(string)
	SetAllowNonRootAccess(bool)

	// Validate reports values that cannot work.
	Validate() error
	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() logrus.Fields
}
