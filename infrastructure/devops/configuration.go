package devops

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Configuration is the YAML application config. It is read once from a local
// file (CONFIG_FILE) or, in deployed environments, from an encrypted SSM
// parameter (CONFIG_SSM_PARAMETER). PORT, DSN and JWT_SECRET environment
// variables override the loaded values.
type Configuration struct {
	Port           string `yaml:"port"`
	DSN            string `yaml:"dsn"`
	MaxConnections int    `yaml:"maxConnections"`
	JWTSecret      string `yaml:"jwtSecret"`
	S3Bucket       string `yaml:"s3Bucket"`
	UploadPrefix   string `yaml:"uploadPrefix"`
	BackupPrefix   string `yaml:"backupPrefix"`
	BackupSchedule string `yaml:"backupSchedule"`
	BackupKeep     int    `yaml:"backupKeep"`
	SlackToken     string `yaml:"slackToken"`
	SlackInfoCh    string `yaml:"slackInfoChannel"`
	SlackErrorCh   string `yaml:"slackErrorChannel"`
}

var (
	once    sync.Once
	loaded  Configuration
	loadErr error
)

func Load(ctx context.Context) (Configuration, error) {
	once.Do(func() {
		var raw []byte

		if path := os.Getenv("CONFIG_FILE"); path != "" {
			raw, loadErr = os.ReadFile(path)
			if loadErr != nil {
				loadErr = fmt.Errorf("read config file: %w", loadErr)
				return
			}
		} else if param := os.Getenv("CONFIG_SSM_PARAMETER"); param != "" {
			raw, loadErr = fetchParameter(ctx, param)
			if loadErr != nil {
				return
			}
		}

		cfg := defaults()
		if len(raw) > 0 {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				loadErr = fmt.Errorf("unmarshal yaml: %w", err)
				return
			}
		}

		if v := os.Getenv("PORT"); v != "" {
			cfg.Port = v
		}
		if v := os.Getenv("DSN"); v != "" {
			cfg.DSN = v
		}
		if v := os.Getenv("JWT_SECRET"); v != "" {
			cfg.JWTSecret = v
		}

		loaded = cfg
	})

	return loaded, loadErr
}

func fetchParameter(ctx context.Context, name string) ([]byte, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(cfg)
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get parameter: %w", err)
	}

	return []byte(*out.Parameter.Value), nil
}

func defaults() Configuration {
	return Configuration{
		Port:           "5000",
		MaxConnections: 10,
		UploadPrefix:   "uploads/",
		BackupPrefix:   "backups/",
		BackupSchedule: "0 2 1 * *",
		BackupKeep:     12,
	}
}
