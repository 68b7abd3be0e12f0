package configfx

import (
	"io/ioutil"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requiredEnv = map[string]string{
	"BOT_TOKEN":            "123456:token",
	"BOT_ADMIN_CHAT_IDS":   "100,200",
	"S3_ACCESS_KEY_ID":     "access-key",
	"S3_SECRET_ACCESS_KEY": "secret-key",
	"S3_BUCKET":            "backups",
	"S3_ENDPOINT":          "s3.example.com",
}

func newTestViper(t *testing.T) *viper.Viper {
	logger := logrus.New()
	logger.Out = ioutil.Discard

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.Nil(t, fs.Parse(nil))

	v, err := ViperProvider(logger, fs)
	require.Nil(t, err)

	return v
}

func setRequiredEnv(t *testing.T) {
	for env, value := range requiredEnv {
		t.Setenv(env, value)
	}
}

func TestConfigProvider(t *testing.T) {
	setRequiredEnv(t)

	config, err := ConfigProvider(newTestViper(t))

	require.Nil(t, err)
	assert.Equal(t, "123456:token", config.Bot.Token)
	assert.Equal(t, []string{"100", "200"}, config.Bot.AdminChatIds)
	assert.Equal(t, "access-key", config.S3.AccessKeyId)
	assert.Equal(t, "s3.example.com", config.S3.Endpoint)
	assert.Equal(t, DefaultRetentionDays, config.Backup.RetentionDays)

	// defaults
	assert.Equal(t, "/var/lib/volback", config.Backup.Root)
	assert.Equal(t, "alpine:3.20", config.Backup.Image)
	assert.Equal(t, "unix:///var/run/docker.sock", config.Docker.Host)
}

func TestConfigProvider_MissingRequiredKey(t *testing.T) {
	for _, env := range []string{
		"BOT_TOKEN",
		"BOT_ADMIN_CHAT_IDS",
		"S3_ACCESS_KEY_ID",
		"S3_SECRET_ACCESS_KEY",
		"S3_BUCKET",
		"S3_ENDPOINT",
	} {
		t.Run(env, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(env, "")

			config, err := ConfigProvider(newTestViper(t))

			assert.Nil(t, config)
			require.NotNil(t, err)
			assert.Contains(t, err.Error(), env)
		})
	}
}

func TestConfigProvider_RetentionDays(t *testing.T) {
	cases := []struct {
		name     string
		value    string
		expected int
	}{
		{"unset", "", DefaultRetentionDays},
		{"zero", "0", DefaultRetentionDays},
		{"non-numeric", "whatever", DefaultRetentionDays},
		{"negative", "-3", DefaultRetentionDays},
		{"valid", "30", 30},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("BACKUP_RETENTION_DAYS", c.value)

			config, err := ConfigProvider(newTestViper(t))

			require.Nil(t, err)
			assert.Equal(t, c.expected, config.Backup.RetentionDays)
		})
	}
}

func TestConfigProvider_ChatIdList(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BOT_ADMIN_CHAT_IDS", " 100, 200 ,,300 ")

	config, err := ConfigProvider(newTestViper(t))

	require.Nil(t, err)
	assert.Equal(t, []string{"100", "200", "300"}, config.Bot.AdminChatIds)
}
