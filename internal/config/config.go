package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/cardrecon/internal/model"
)

// FileName is the default configuration file name.
const FileName = "cardrecon.yaml"

// EnvPrefix prefixes environment overrides, e.g. CARDRECON_TOLERANCE_MINUTES.
const EnvPrefix = "CARDRECON"

// Config represents the top-level cardrecon.yaml configuration.
type Config struct {
	ClientName       string           `yaml:"client_name" mapstructure:"client_name"`
	ToleranceMinutes int              `yaml:"tolerance_minutes" mapstructure:"tolerance_minutes"`
	Matching         MatchingConfig   `yaml:"matching" mapstructure:"matching"`
	Categories       CategoriesConfig `yaml:"categories" mapstructure:"categories"`
	Formats          FormatsConfig    `yaml:"formats" mapstructure:"formats"`
	Report           ReportConfig     `yaml:"report" mapstructure:"report"`
	History          HistoryConfig    `yaml:"history" mapstructure:"history"`
	Server           ServerConfig     `yaml:"server" mapstructure:"server"`
}

// MatchingConfig tunes statement parsing for matching.
type MatchingConfig struct {
	GCCNETSuffixes []string `yaml:"gccnet_suffixes" mapstructure:"gccnet_suffixes"`
}

// CategoriesConfig controls the card types shown in reports.
type CategoriesConfig struct {
	Mandatory []string `yaml:"mandatory" mapstructure:"mandatory"`
	Excluded  []string `yaml:"excluded" mapstructure:"excluded"`
}

// FormatsConfig names the statement parsers to use.
type FormatsConfig struct {
	Bank  string `yaml:"bank" mapstructure:"bank"`
	Hotel string `yaml:"hotel" mapstructure:"hotel"`
}

// ReportConfig controls report output and the summary sheet header.
type ReportConfig struct {
	OutputDir     string `yaml:"output_dir" mapstructure:"output_dir"`
	CompanyName   string `yaml:"company_name" mapstructure:"company_name"`
	AccountName   string `yaml:"account_name" mapstructure:"account_name"`
	AccountNumber string `yaml:"account_number" mapstructure:"account_number"`
	BankName      string `yaml:"bank_name" mapstructure:"bank_name"`
	GLAccount     string `yaml:"gl_account" mapstructure:"gl_account"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr        string `yaml:"addr" mapstructure:"addr"`
	MaxUploadMB int    `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// Load reads a cardrecon.yaml file from disk. Any key can be overridden
// from the environment. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default("client"))

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault is Load, falling back to defaults when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Load("")
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new client.
func Default(clientName string) *Config {
	return &Config{
		ClientName:       clientName,
		ToleranceMinutes: 30,
		Matching: MatchingConfig{
			GCCNETSuffixes: cardStrings(nil, model.DefaultGCCNETSuffixes),
		},
		Categories: CategoriesConfig{
			Mandatory: cardStrings(model.MandatoryCardTypes, nil),
			Excluded:  cardStrings(model.ExcludedCardTypes, nil),
		},
		Formats: FormatsConfig{
			Bank:  "merchant-settlement",
			Hotel: "opera",
		},
		Report: ReportConfig{
			OutputDir:   "reports",
			CompanyName: clientName,
			AccountName: clientName,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    ".cardrecon/history.db",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 32,
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.ToleranceMinutes < 0 {
		return fmt.Errorf("tolerance_minutes must not be negative, got %d", c.ToleranceMinutes)
	}
	for _, s := range c.Matching.GCCNETSuffixes {
		if !isFourDigits(s) {
			return fmt.Errorf("matching.gccnet_suffixes: %q is not four digits", s)
		}
	}
	if c.Formats.Bank == "" || c.Formats.Hotel == "" {
		return fmt.Errorf("formats.bank and formats.hotel are required")
	}
	for _, ct := range c.ExcludedCardTypes() {
		if slices.Contains(model.MandatoryCardTypes, ct) {
			return fmt.Errorf("categories.excluded: %s is always reported and cannot be excluded", ct)
		}
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	return nil
}

// MandatoryCardTypes returns categories.mandatory as card types.
func (c *Config) MandatoryCardTypes() []model.CardType {
	return toCardTypes(c.Categories.Mandatory)
}

// ExcludedCardTypes returns categories.excluded as card types.
func (c *Config) ExcludedCardTypes() []model.CardType {
	return toCardTypes(c.Categories.Excluded)
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("client_name", d.ClientName)
	v.SetDefault("tolerance_minutes", d.ToleranceMinutes)
	v.SetDefault("matching.gccnet_suffixes", d.Matching.GCCNETSuffixes)
	v.SetDefault("categories.mandatory", d.Categories.Mandatory)
	v.SetDefault("categories.excluded", d.Categories.Excluded)
	v.SetDefault("formats.bank", d.Formats.Bank)
	v.SetDefault("formats.hotel", d.Formats.Hotel)
	v.SetDefault("report.output_dir", d.Report.OutputDir)
	v.SetDefault("report.company_name", d.Report.CompanyName)
	v.SetDefault("report.account_name", d.Report.AccountName)
	v.SetDefault("report.account_number", d.Report.AccountNumber)
	v.SetDefault("report.bank_name", d.Report.BankName)
	v.SetDefault("report.gl_account", d.Report.GLAccount)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
}

func cardStrings(types []model.CardType, plain []string) []string {
	out := make([]string, 0, len(types)+len(plain))
	for _, t := range types {
		out = append(out, string(t))
	}
	return append(out, plain...)
}

func toCardTypes(ss []string) []model.CardType {
	out := make([]model.CardType, 0, len(ss))
	for _, s := range ss {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, model.CardType(s))
		}
	}
	return out
}

func isFourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
