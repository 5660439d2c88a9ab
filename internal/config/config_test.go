package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// unsetForTest removes keys for the duration of the test. godotenv never
// overrides variables that are present, even when empty.
func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "")

	cfg, err := Load(writeEnv(t, ""))
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 25*time.Second, cfg.Server.RequestTimeout)
	require.Equal(t, DriverMongoDB, cfg.Store.Driver)
	require.Equal(t, "dairyfarm", cfg.MongoDB.DBName)
	require.Equal(t, 23, cfg.Closing.AutoHour)
	require.Equal(t, 22, cfg.Closing.ManualMinHour)
	require.Equal(t, 7, cfg.Closing.CatchUpDays)
	require.Equal(t, "* * * * *", cfg.Closing.CronSchedule)
	require.False(t, cfg.Redis.Enabled())
	require.False(t, cfg.WhatsApp.Enabled())
	require.False(t, cfg.Sheets.Enabled())

	loc, err := cfg.Closing.Location()
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)
}

func TestLoadFromEnvFile(t *testing.T) {
	unsetForTest(t, "JWT_SECRET", "STORE_DRIVER", "CLOSE_AUTO_HOUR", "CLOSE_MANUAL_MIN_HOUR", "LOCK_TTL", "REDIS_ADDR", "ANIMALS_SEED_FILE")
	path := writeEnv(t, "JWT_SECRET=file-secret\nSTORE_DRIVER=memory\nCLOSE_AUTO_HOUR=21\nCLOSE_MANUAL_MIN_HOUR=20\nLOCK_TTL=5s\nREDIS_ADDR=localhost:6379\nANIMALS_SEED_FILE=/etc/dairyfarm/animals.json\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	require.Equal(t, DriverMemory, cfg.Store.Driver)
	require.Equal(t, 21, cfg.Closing.AutoHour)
	require.Equal(t, 5*time.Second, cfg.Redis.LockTTL)
	require.True(t, cfg.Redis.Enabled())
	require.Equal(t, "/etc/dairyfarm/animals.json", cfg.Store.AnimalsSeedFile)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load(writeEnv(t, ""))
	require.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CLOSE_AUTO_HOUR", "eleven")
	_, err := Load(writeEnv(t, ""))
	require.ErrorContains(t, err, "CLOSE_AUTO_HOUR")
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080", RequestTimeout: time.Second},
		Store:    StoreConfig{Driver: DriverMemory},
		Auth:     AuthConfig{JWTSecret: "s"},
		Closing:  ClosingConfig{Timezone: "UTC", AutoHour: 23, ManualMinHour: 22, CatchUpDays: 7, CronSchedule: "* * * * *"},
		WhatsApp: WhatsAppConfig{BaseURL: "https://graph.facebook.com", APIVersion: "v20.0"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := map[string]func(*Config){
		"manual after auto": func(c *Config) { c.Closing.ManualMinHour = 23; c.Closing.AutoHour = 22 },
		"hour out of range": func(c *Config) { c.Closing.AutoHour = 24 },
		"bad timezone":      func(c *Config) { c.Closing.Timezone = "Mars/Olympus" },
		"postgres no url":   func(c *Config) { c.Store.Driver = DriverPostgres },
		"unknown driver":    func(c *Config) { c.Store.Driver = "sqlite" },
		"negative catch-up": func(c *Config) { c.Closing.CatchUpDays = -1 },
		"whatsapp no base": func(c *Config) {
			c.WhatsApp = WhatsAppConfig{AccessToken: "t", PhoneNumberID: "p", ManagerID: "m", APIVersion: "v20.0"}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
