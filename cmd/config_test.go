package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestSetConfig_Defaults(t *testing.T) {
	assert := assert.New(t)
	defer viper.Reset()

	configPath := filepath.Join(t.TempDir(), "config.toml")
	assert.Nil(setConfig(configPath))

	assert.Equal(":8080", viper.GetString("server.listen_addr"))
	assert.Equal(10, viper.GetInt("download.default_size_mb"))
	assert.False(viper.GetBool("speed.simulated"))
	assert.False(viper.GetBool("speed.clamp_enabled"))
	assert.Equal(100.0, viper.GetFloat64("speed.max_download_mbps"))
	assert.Equal(20.0, viper.GetFloat64("speed.max_upload_mbps"))
	assert.Equal(2*time.Second, viper.GetDuration("lookup.timeout"))
	assert.Equal("https://api.ipify.org?format=json", viper.GetString("lookup.echo_ip_url"))
}

func TestSetConfig_FileOverrides(t *testing.T) {
	assert := assert.New(t)
	defer viper.Reset()

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := "[speed]\nsimulated = true\nclamp_enabled = true\n"
	assert.Nil(os.WriteFile(configPath, []byte(content), 0644))

	assert.Nil(setConfig(configPath))
	assert.True(viper.GetBool("speed.simulated"))
	assert.True(viper.GetBool("speed.clamp_enabled"))
}

func TestNewHandler(t *testing.T) {
	assert := assert.New(t)
	defer viper.Reset()

	configPath := filepath.Join(t.TempDir(), "config.toml")
	assert.Nil(setConfig(configPath))
	assert.NotNil(newHandler())
}
