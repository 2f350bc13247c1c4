package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "pgsql", cfg.Database.Type)
	assert.Equal(t, []int64{2}, cfg.Site.Admins)
	assert.Equal(t, []string{"student"}, cfg.Flow.TrackingRoles)
	assert.Equal(t, 5*time.Minute, cfg.Flow.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.Nbpa.RefreshInterval)
	assert.Equal(t, 2*time.Minute, cfg.Nbpa.RefreshTimeout)
	assert.Equal(t, "logstore_socialflow", cfg.Flow.LogComponent)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DB_TYPE", "SQLSRV")
	v.Set("SITE_ADMINS", "2, 5,abc,-1")
	v.Set("SITE_URL", "https://moodle.example.org/")
	v.Set("TRACKING_ROLES", "student, guest ,")
	v.Set("FLOW_CACHE_TTL", "not-a-duration")

	cfg := fromViper(v)

	assert.Equal(t, "sqlsrv", cfg.Database.Type)
	assert.Equal(t, []int64{2, 5}, cfg.Site.Admins)
	assert.Equal(t, "https://moodle.example.org", cfg.Site.URL)
	assert.Equal(t, []string{"student", "guest"}, cfg.Flow.TrackingRoles)
	assert.Equal(t, 5*time.Minute, cfg.Flow.CacheTTL)
}
