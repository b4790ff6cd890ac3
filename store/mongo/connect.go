package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"
)

var ErrFailedToConnectToMongo = errors.New("directory/mongo: failed to connect")

// Config holds MongoDB connection settings. Zero values are filled from
// DefaultConfig by Open.
type Config struct {
	ConnectionURL   string        `yaml:"url"                env:"MONGODB_URL"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"    env:"MONGODB_CONNECT_TIMEOUT"`
	MaxPoolSize     uint64        `yaml:"max_pool_size"      env:"MONGODB_MAX_POOL_SIZE"`
	MinPoolSize     uint64        `yaml:"min_pool_size"      env:"MONGODB_MIN_POOL_SIZE"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"MONGODB_MAX_CONN_IDLE_TIME"`
	RetryWrites     bool          `yaml:"retry_writes"       env:"MONGODB_RETRY_WRITES"`
	RetryReads      bool          `yaml:"retry_reads"        env:"MONGODB_RETRY_READS"`
	RetryAttempts   int           `yaml:"retry_attempts"     env:"MONGODB_RETRY_ATTEMPTS"`
	RetryInterval   time.Duration `yaml:"retry_interval"     env:"MONGODB_RETRY_INTERVAL"`
}

// DefaultConfig returns the connection defaults.
func DefaultConfig() Config {
	return Config{
		ConnectionURL:   "mongodb://localhost:27017",
		ConnectTimeout:  10 * time.Second,
		MaxPoolSize:     100,
		MinPoolSize:     1,
		MaxConnIdleTime: 300 * time.Second,
		RetryWrites:     true,
		RetryReads:      true,
		RetryAttempts:   3,
		RetryInterval:   5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = def.MaxPoolSize
	}
	if c.MaxConnIdleTime <= 0 {
		c.MaxConnIdleTime = def.MaxConnIdleTime
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 1
	}
	return c
}

// uri returns ConnectionURL with the pool, timeout and retry settings added
// as connection string options. Options already present in the URL win.
func (c Config) uri() (string, error) {
	u, err := url.Parse(c.ConnectionURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	set := func(key, value string) {
		if !q.Has(key) {
			q.Set(key, value)
		}
	}
	set("connectTimeoutMS", strconv.FormatInt(c.ConnectTimeout.Milliseconds(), 10))
	set("maxPoolSize", strconv.FormatUint(c.MaxPoolSize, 10))
	set("minPoolSize", strconv.FormatUint(c.MinPoolSize, 10))
	set("maxIdleTimeMS", strconv.FormatInt(c.MaxConnIdleTime.Milliseconds(), 10))
	set("retryWrites", strconv.FormatBool(c.RetryWrites))
	set("retryReads", strconv.FormatBool(c.RetryReads))
	u.RawQuery = q.Encode()
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

// Open connects to the named database through grove's mongo driver and
// pings it, retrying up to RetryAttempts times. It gives up early when ctx
// is done. Pass the handle to New.
func Open(ctx context.Context, cfg Config, database string) (*grove.DB, error) {
	if cfg.ConnectionURL == "" {
		return nil, fmt.Errorf("%w: connection url is empty", ErrFailedToConnectToMongo)
	}
	if database == "" {
		return nil, fmt.Errorf("%w: database name is empty", ErrFailedToConnectToMongo)
	}
	cfg = cfg.withDefaults()

	uri, err := cfg.uri()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToConnectToMongo, err)
	}

	var lastErr error
	for attempt := range cfg.RetryAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToConnectToMongo, ctx.Err())
			case <-time.After(cfg.RetryInterval):
			}
		}

		mdb := mongodriver.New()
		if err := mdb.Open(ctx, uri, mongodriver.WithDatabase(database)); err != nil {
			_ = mdb.Close() //nolint:errcheck // best-effort cleanup
			lastErr = err
			continue
		}

		db, err := grove.Open(mdb)
		if err != nil {
			_ = mdb.Close() //nolint:errcheck // best-effort cleanup
			return nil, errors.Join(ErrFailedToConnectToMongo, err)
		}
		return db, nil
	}

	return nil, errors.Join(ErrFailedToConnectToMongo, lastErr)
}
