package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/bmi/pkg/offline"
	"github.com/charlie0129/bmi/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		Listen:            ptr.To("127.0.0.1:8080"),
		Storage:           ptr.To(StorageFile),
		StoragePath:       ptr.To("/var/lib/bmi/storage.json"),
		RedisAddr:         ptr.To("127.0.0.1:6379"),
		RedisPassword:     ptr.To(""),
		RedisDB:           ptr.To(0),
		AnalyticsEndpoint: ptr.To(""),
		// No origin means the daemon serves its embedded assets and the
		// offline cache stays empty.
		Origin:             ptr.To(""),
		CacheName:          ptr.To(offline.DefaultName),
		CacheRefreshCron:   ptr.To("@every 6h"),
		AllowNonRootAccess: ptr.To(false),
	}
)

var _ Config = &File{}

// File is a JSON config file. Values from the environment (BMI_*) take
// precedence over the file and are never written back to it.
type File struct {
	c        *RawFileConfig
	env      *RawFileConfig
	mu       *sync.RWMutex
	filepath string
	lookup   func(string) (string, bool)
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
		lookup:   os.LookupEnv,
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		env:      &RawFileConfig{},
		mu:       &sync.RWMutex{},
		filepath: configPath,
		lookup:   os.LookupEnv,
	}

	return f
}

type RawFileConfig struct {
	Listen             *string `json:"listen,omitempty"`
	Storage            *string `json:"storage,omitempty"`
	StoragePath        *string `json:"storagePath,omitempty"`
	RedisAddr          *string `json:"redisAddr,omitempty"`
	RedisPassword      *string `json:"redisPassword,omitempty"`
	RedisDB            *int    `json:"redisDB,omitempty"`
	AnalyticsEndpoint  *string `json:"analyticsEndpoint,omitempty"`
	Origin             *string `json:"origin,omitempty"`
	CacheName          *string `json:"cacheName,omitempty"`
	CacheRefreshCron   *string `json:"cacheRefreshCron,omitempty"`
	AllowNonRootAccess *bool   `json:"allowNonRootAccess,omitempty"`
}

// value returns the first set field among the env overlay, the file and
// the defaults.
func value[T any](f *File, field func(*RawFileConfig) *T) T {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.env != nil {
		if v := field(f.env); v != nil {
			return *v
		}
	}
	if v := field(f.c); v != nil {
		return *v
	}
	return *field(defaultFileConfig)
}

func (f *File) Listen() string {
	return value(f, func(c *RawFileConfig) *string { return c.Listen })
}

func (f *File) Storage() string {
	return value(f, func(c *RawFileConfig) *string { return c.Storage })
}

func (f *File) StoragePath() string {
	return value(f, func(c *RawFileConfig) *string { return c.StoragePath })
}

func (f *File) RedisAddr() string {
	return value(f, func(c *RawFileConfig) *string { return c.RedisAddr })
}

func (f *File) RedisPassword() string {
	return value(f, func(c *RawFileConfig) *string { return c.RedisPassword })
}

func (f *File) RedisDB() int {
	return value(f, func(c *RawFileConfig) *int { return c.RedisDB })
}

func (f *File) AnalyticsEndpoint() string {
	return value(f, func(c *RawFileConfig) *string { return c.AnalyticsEndpoint })
}

func (f *File) Origin() string {
	return value(f, func(c *RawFileConfig) *string { return c.Origin })
}

func (f *File) CacheName() string {
	return value(f, func(c *RawFileConfig) *string { return c.CacheName })
}

func (f *File) CacheRefreshCron() string {
	return value(f, func(c *RawFileConfig) *string { return c.CacheRefreshCron })
}

func (f *File) AllowNonRootAccess() bool {
	return value(f, func(c *RawFileConfig) *bool { return c.AllowNonRootAccess })
}

func (f *File) SetListen(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Listen = &s
}

func (f *File) SetStorage(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Storage = &s
}

func (f *File) SetOrigin(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Origin = &s
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AllowNonRootAccess = &b
}

func (f *File) Validate() error {
	switch s := f.Storage(); s {
	case StorageFile:
		if f.StoragePath() == "" {
			return fmt.Errorf("storagePath must be set for %s storage", s)
		}
	case StorageRedis:
		if f.RedisAddr() == "" {
			return fmt.Errorf("redisAddr must be set for %s storage", s)
		}
	default:
		return fmt.Errorf("unknown storage %q: must be %s or %s", s, StorageFile, StorageRedis)
	}

	if f.Listen() == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if f.RedisDB() < 0 {
		return fmt.Errorf("redisDB must not be negative")
	}
	return nil
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	env, err := envConfig(f.lookup)
	if err != nil {
		return err
	}
	f.env = env

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	if err := os.MkdirAll(filepath.Dir(f.filepath), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create directory for %s", f.filepath)
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	fields := logrus.Fields{
		"listen":             f.Listen(),
		"storage":            f.Storage(),
		"analyticsEndpoint":  f.AnalyticsEndpoint(),
		"origin":             f.Origin(),
		"cacheName":          f.CacheName(),
		"cacheRefreshCron":   f.CacheRefreshCron(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
	}
	if f.Storage() == StorageRedis {
		fields["redisAddr"] = f.RedisAddr()
		fields["redisDB"] = f.RedisDB()
	} else {
		fields["storagePath"] = f.StoragePath()
	}
	return fields
}
