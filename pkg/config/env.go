package config

import (
	"errors"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BMI_"

// LoadDotEnv loads .env style files into the process environment. Variables
// already set win. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		err := godotenv.Load(p)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return pkgerrors.Wrapf(err, "failed to load %s", p)
	}
	return nil
}

func envConfig(lookup func(string) (string, bool)) (*RawFileConfig, error) {
	c := &RawFileConfig{}
	if lookup == nil {
		return c, nil
	}

	str := func(name string, dst **string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = &v
		}
	}
	str("LISTEN", &c.Listen)
	str("STORAGE", &c.Storage)
	str("STORAGE_PATH", &c.StoragePath)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	str("ANALYTICS_ENDPOINT", &c.AnalyticsEndpoint)
	str("ORIGIN", &c.Origin)
	str("CACHE_NAME", &c.CacheName)
	str("CACHE_REFRESH_CRON", &c.CacheRefreshCron)

	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "invalid %sREDIS_DB", EnvPrefix)
		}
		c.RedisDB = &db
	}
	if v, ok := lookup(EnvPrefix + "ALLOW_NON_ROOT_ACCESS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "invalid %sALLOW_NON_ROOT_ACCESS", EnvPrefix)
		}
		c.AllowNonRootAccess = &b
	}
	return c, nil
}
