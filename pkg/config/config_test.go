package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/certchain/certchain/pkg/config"
	"github.com/stretchr/testify/suite"
)

type sampleConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Timeout int    `yaml:"timeout"`
}

func (c *sampleConfig) SetDefaults() {
	c.Timeout = 30
}

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) TestFromFileWithEnvironment() {
	s.T().Setenv("CERTCHAIN_TEST_HOST", "db.internal")
	s.T().Setenv("CERTCHAIN_TEST_PORT", "5433")

	path := filepath.Join(s.T().TempDir(), "config.yaml")
	content := "host: {{ .CERTCHAIN_TEST_HOST }}\nport: ${CERTCHAIN_TEST_PORT}\n"
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	cfg := sampleConfig{}
	s.Require().NoError(config.FromFile(path, &cfg))
	s.Equal("db.internal", cfg.Host)
	s.Equal(5433, cfg.Port)
	s.Equal(30, cfg.Timeout)
}

func (s *ConfigTestSuite) TestFromBytesOverridesDefaults() {
	cfg := sampleConfig{}
	s.Require().NoError(config.FromBytes("inline", []byte("timeout: 5\n"), &cfg))
	s.Equal(5, cfg.Timeout)
}

func (s *ConfigTestSuite) TestFromFileMissing() {
	cfg := sampleConfig{}
	s.Error(config.FromFile(filepath.Join(s.T().TempDir(), "missing.yaml"), &cfg))
}
