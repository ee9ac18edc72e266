package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "0.16", cfg.Billing.TaxRate.String())
	assert.Equal(t, "0.5", cfg.Billing.DepositFraction.String())
	assert.Equal(t, 30*time.Second, cfg.Signing.Timeout)
	assert.Equal(t, facturamaSandboxURL, cfg.Signing.BaseURL())
}

func TestLoad_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("FACTURAMA_SANDBOX", "false")
	t.Setenv("BILLING_DEPOSIT_FRACTION", "0.30")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, facturamaProductionURL, cfg.Signing.BaseURL())
	assert.Equal(t, "0.3", cfg.Billing.DepositFraction.String())
}

func TestLoad_RejectsDepositOutOfRange(t *testing.T) {
	viper.Reset()
	t.Setenv("BILLING_DEPOSIT_FRACTION", "1.5")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: "5432", Name: "n", User: "u", Password: "p", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", db.DSN())
}
