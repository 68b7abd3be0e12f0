package configfx

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	ConfigBotToken        = "bot.token"
	ConfigBotAdminChatIds = "bot.admin_chat_ids"
	ConfigBotAPIBaseURL   = "bot.api_base_url"

	ConfigS3AccessKeyId     = "s3.access_key_id"
	ConfigS3SecretAccessKey = "s3.secret_access_key"
	ConfigS3Bucket          = "s3.bucket"
	ConfigS3Endpoint        = "s3.endpoint"

	ConfigBackupRoot          = "backup.root"
	ConfigBackupImage         = "backup.image"
	ConfigBackupRetentionDays = "backup.retention_days"
	ConfigBackupSchedule      = "backup.schedule"

	ConfigDockerHost    = "docker.host"
	ConfigDockerVersion = "docker.version"

	ConfigDatabaseDSN        = "database.dsn"
	ConfigDatabaseName       = "database.name"
	ConfigDatabaseMigrations = "database.migrations"

	ConfigServerAddress      = "server.address"
	ConfigServerTimeoutRead  = "server.timeout.read"
	ConfigServerTimeoutWrite = "server.timeout.write"
	ConfigServerLogRequests  = "server.log.requests"
)

const DefaultRetentionDays = 7

var envBindings = map[string]string{
	ConfigBotToken:            "BOT_TOKEN",
	ConfigBotAdminChatIds:     "BOT_ADMIN_CHAT_IDS",
	ConfigS3AccessKeyId:       "S3_ACCESS_KEY_ID",
	ConfigS3SecretAccessKey:   "S3_SECRET_ACCESS_KEY",
	ConfigS3Bucket:            "S3_BUCKET",
	ConfigS3Endpoint:          "S3_ENDPOINT",
	ConfigBackupRetentionDays: "BACKUP_RETENTION_DAYS",
}

// required settings, validated in this order
var requiredKeys = []string{
	ConfigBotToken,
	ConfigBotAdminChatIds,
	ConfigS3AccessKeyId,
	ConfigS3SecretAccessKey,
	ConfigS3Bucket,
	ConfigS3Endpoint,
}

type BotConfig struct {
	Token        string
	AdminChatIds []string
	APIBaseURL   string
}

type S3Config struct {
	AccessKeyId     string
	SecretAccessKey string
	Bucket          string
	Endpoint        string
}

type BackupConfig struct {
	Root          string
	Image         string
	RetentionDays int
	Schedule      string
}

type DockerConfig struct {
	Host    string
	Version string
}

type DatabaseConfig struct {
	DSN            string
	DatabaseName   string
	MigrationsPath string
}

type ServerConfig struct {
	Address           string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	EnableRequestsLog bool
}

// Config is the immutable per-run configuration, built and validated once at
// startup and passed by reference to every component.
type Config struct {
	Bot      BotConfig
	S3       S3Config
	Backup   BackupConfig
	Docker   DockerConfig
	Database DatabaseConfig
	Server   ServerConfig
}

func ConfigProvider(v *viper.Viper) (*Config, error) {
	for _, key := range requiredKeys {
		if v.GetString(key) == "" {
			return nil, errors.Errorf("missing required setting %s (environment variable %s)", key, envBindings[key])
		}
	}

	chatIds := splitList(v.GetString(ConfigBotAdminChatIds))
	if len(chatIds) == 0 {
		return nil, errors.Errorf("missing required setting %s (environment variable %s)",
			ConfigBotAdminChatIds, envBindings[ConfigBotAdminChatIds])
	}

	// Absent, zero or unparseable retention silently falls back to the
	// default. This leniency is deliberate, not a validation failure.
	retention := v.GetInt(ConfigBackupRetentionDays)
	if retention <= 0 {
		retention = DefaultRetentionDays
	}

	return &Config{
		Bot: BotConfig{
			Token:        v.GetString(ConfigBotToken),
			AdminChatIds: chatIds,
			APIBaseURL:   v.GetString(ConfigBotAPIBaseURL),
		},
		S3: S3Config{
			AccessKeyId:     v.GetString(ConfigS3AccessKeyId),
			SecretAccessKey: v.GetString(ConfigS3SecretAccessKey),
			Bucket:          v.GetString(ConfigS3Bucket),
			Endpoint:        v.GetString(ConfigS3Endpoint),
		},
		Backup: BackupConfig{
			Root:          v.GetString(ConfigBackupRoot),
			Image:         v.GetString(ConfigBackupImage),
			RetentionDays: retention,
			Schedule:      v.GetString(ConfigBackupSchedule),
		},
		Docker: DockerConfig{
			Host:    v.GetString(ConfigDockerHost),
			Version: v.GetString(ConfigDockerVersion),
		},
		Database: DatabaseConfig{
			DSN:            v.GetString(ConfigDatabaseDSN),
			DatabaseName:   v.GetString(ConfigDatabaseName),
			MigrationsPath: v.GetString(ConfigDatabaseMigrations),
		},
		Server: ServerConfig{
			Address:           v.GetString(ConfigServerAddress),
			ReadTimeout:       v.GetDuration(ConfigServerTimeoutRead),
			WriteTimeout:      v.GetDuration(ConfigServerTimeoutWrite),
			EnableRequestsLog: v.GetBool(ConfigServerLogRequests),
		},
	}, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")

	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		result = append(result, part)
	}

	return result
}
