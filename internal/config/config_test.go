package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cardrecon/internal/model"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Example Hotel")
	cfg.ToleranceMinutes = 45
	cfg.Matching.GCCNETSuffixes = []string{"0580", "1111"}
	cfg.Report.BankName = "QNB Al-Najada Branch"
	cfg.History.Enabled = false

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default("acme")

	assert.Equal(t, "acme", cfg.ClientName)
	assert.Equal(t, 30, cfg.ToleranceMinutes)
	assert.Equal(t, []string{"0580", "8628", "8134"}, cfg.Matching.GCCNETSuffixes)
	assert.Equal(t, []string{"VISA", "MASTERCARD", "NAPS", "GCCNET"}, cfg.Categories.Mandatory)
	assert.Equal(t, []string{"AMEX", "DINERS", "JCB"}, cfg.Categories.Excluded)
	assert.Equal(t, "merchant-settlement", cfg.Formats.Bank)
	assert.Equal(t, "opera", cfg.Formats.Hotel)
	assert.Equal(t, "reports", cfg.Report.OutputDir)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, ".cardrecon/history.db", cfg.History.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 32, cfg.Server.MaxUploadMB)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.ToleranceMinutes)
	assert.Equal(t, "client", cfg.ClientName)
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("client_name: globex\nreport:\n  bank_name: QNB\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "globex", cfg.ClientName)
	assert.Equal(t, "QNB", cfg.Report.BankName)
	assert.Equal(t, "reports", cfg.Report.OutputDir)
	assert.Equal(t, 30, cfg.ToleranceMinutes)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("acme")))

	t.Setenv("CARDRECON_TOLERANCE_MINUTES", "10")
	t.Setenv("CARDRECON_SERVER_ADDR", ":9090")
	t.Setenv("CARDRECON_HISTORY_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.ToleranceMinutes)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "acme", cfg.ClientName)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("client_name: [unclosed\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("Test Hotel")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "client_name: Test Hotel")
	assert.Contains(t, contents, "tolerance_minutes: 30")
	assert.Contains(t, contents, `- "0580"`)
	assert.Contains(t, contents, "hotel: opera")
	assert.Contains(t, contents, "max_upload_mb: 32")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"negative tolerance", func(c *Config) { c.ToleranceMinutes = -1 }, "tolerance_minutes"},
		{"short suffix", func(c *Config) { c.Matching.GCCNETSuffixes = []string{"580"} }, "not four digits"},
		{"letter suffix", func(c *Config) { c.Matching.GCCNETSuffixes = []string{"05A0"} }, "not four digits"},
		{"missing format", func(c *Config) { c.Formats.Hotel = "" }, "formats"},
		{"upload limit", func(c *Config) { c.Server.MaxUploadMB = 0 }, "max_upload_mb"},
		{"excluded mandatory", func(c *Config) { c.Categories.Excluded = []string{"AMEX", "visa"} }, "VISA is always reported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("acme")
			tt.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestValidate_EmptyMandatoryList(t *testing.T) {
	cfg := Default("acme")
	cfg.Categories.Mandatory = []string{}
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvExcludesMandatoryType(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("acme")))

	t.Setenv("CARDRECON_CATEGORIES_EXCLUDED", "AMEX,VISA")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "VISA is always reported")
}

func TestCardTypeLists(t *testing.T) {
	cfg := Default("acme")
	cfg.Categories.Mandatory = []string{" visa ", "", "NAPS"}

	assert.Equal(t, []model.CardType{model.CardVisa, model.CardNAPS}, cfg.MandatoryCardTypes())
	assert.Equal(t, model.ExcludedCardTypes, cfg.ExcludedCardTypes())
}
