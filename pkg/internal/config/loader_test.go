package config_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minima-tools/go-minima-gateway/pkg/internal/config"
)

func TestDefaults(t *testing.T) {
	// given:
	l := config.NewLoader(newLoaderTestConfig, "TEST")

	// when:
	cfg, err := l.Load()

	// then:
	require.NoError(t, err)
	require.Equal(t, "default_hello", cfg.A)
	require.Equal(t, 1, cfg.B)
	require.Equal(t, "default_world", cfg.C.D)
}

func TestEnvVariables(t *testing.T) {
	// given:
	l := config.NewLoader(newLoaderTestConfig, "TEST")

	// and:
	t.Setenv("TEST_B_WITH_LONG_NAME", "2")
	t.Setenv("TEST_C_SUB_CONFIG_D_NESTED_FIELD", "env_world")

	// when:
	cfg, err := l.Load()

	// then:
	require.NoError(t, err)
	require.Equal(t, "default_hello", cfg.A)
	require.Equal(t, 2, cfg.B)
	require.Equal(t, "env_world", cfg.C.D)
}

func TestFileConfig(t *testing.T) {
	// given:
	l := config.NewLoader(newLoaderTestConfig, "TEST")

	// and:
	configFilePath := tempConfig(t, yamlConfig, "yaml")

	// when:
	err := l.SetConfigFilePath(configFilePath)

	// then:
	require.NoError(t, err)

	// and:
	cfg, err := l.Load()

	// then:
	require.NoError(t, err)
	require.Equal(t, "default_hello", cfg.A)
	require.Equal(t, 3, cfg.B)
	require.Equal(t, "file_world", cfg.C.D)
}

func TestMixedConfig(t *testing.T) {
	// given:
	l := config.NewLoader(newLoaderTestConfig, "TEST")

	// and:
	t.Setenv("TEST_B_WITH_LONG_NAME", "2")

	// and:
	configFilePath := tempConfig(t, yamlConfig, "yaml")

	// when:
	err := l.SetConfigFilePath(configFilePath)

	// then:
	require.NoError(t, err)

	// and:
	cfg, err := l.Load()

	// then: env variables take precedence over the config file.
	require.NoError(t, err)
	require.Equal(t, "default_hello", cfg.A)
	require.Equal(t, 2, cfg.B)
	require.Equal(t, "file_world", cfg.C.D)
}

func TestDotEnvConfig(t *testing.T) {
	// given:
	l := config.NewLoader(newLoaderTestConfig, "TEST")

	// and:
	t.Setenv("TEST_A", "env_hello")

	// and:
	configFilePath := tempConfig(t, dotEnvConfig, "env")

	// when:
	err := l.SetConfigFilePath(configFilePath)

	// then:
	require.NoError(t, err)

	// and:
	cfg, err := l.Load()

	// then:
	require.NoError(t, err)
	require.Equal(t, "env_hello", cfg.A)
	require.Equal(t, 4, cfg.B)
	require.Equal(t, "dotenv_world", cfg.C.D)
}

func TestRejectsUnsupportedExtension(t *testing.T) {
	// given:
	l := config.NewLoader(newLoaderTestConfig, "TEST")

	// when:
	err := l.SetConfigFilePath("config.toml")

	// then:
	require.Error(t, err)
}

func TestYAMLExportRoundTrip(t *testing.T) {
	// given:
	exported := newLoaderTestConfig()
	exported.B = 42
	exported.C.D = "exported_world"

	configFilePath := fmt.Sprintf("%s/config.yaml", t.TempDir())

	// when:
	err := config.ToYAMLFile(exported, configFilePath)

	// then:
	require.NoError(t, err)

	// and:
	l := config.NewLoader(newLoaderTestConfig, "TEST")
	require.NoError(t, l.SetConfigFilePath(configFilePath))
	cfg, err := l.Load()

	// then:
	require.NoError(t, err)
	require.Equal(t, exported, cfg)
}

func tempConfig(t *testing.T, content, extension string) string {
	configFilePath := fmt.Sprintf("%s/config.%s", t.TempDir(), extension)
	err := os.WriteFile(configFilePath, []byte(content), 0644)
	require.NoError(t, err)

	return configFilePath
}

type loaderTestConfig struct {
	A string              `mapstructure:"a"`
	B int                 `mapstructure:"b_with_long_name"`
	C loaderTestSubConfig `mapstructure:"c_sub_config"`
}

type loaderTestSubConfig struct {
	D string `mapstructure:"d_nested_field"`
}

func newLoaderTestConfig() loaderTestConfig {
	return loaderTestConfig{
		A: "default_hello",
		B: 1,
		C: loaderTestSubConfig{
			D: "default_world",
		},
	}
}

const yamlConfig = `
b_with_long_name: 3
c_sub_config:
  d_nested_field: file_world
`

const dotEnvConfig = `
TEST_B_WITH_LONG_NAME=4
TEST_C_SUB_CONFIG_D_NESTED_FIELD=dotenv_world
`
