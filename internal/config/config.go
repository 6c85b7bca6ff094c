package config

import (
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
	Blob     *blobConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"stitchup"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string `envconfig:"STITCHUP_ADDRESS" default:":8080"`
	MetricsAddress  string `envconfig:"STITCHUP_METRICS_ADDRESS" default:":8081"`
	BaseUrl         string `envconfig:"STITCHUP_BASE_URL" default:"http://localhost:8080"`
	LogLevel        string `envconfig:"STITCHUP_LOG_LEVEL" default:"info"`
	Auth            Auth
	MigrationFolder string `envconfig:"STITCHUP_MIGRATIONS_FOLDER" default:""`
}

type blobConfig struct {
	Endpoint  string `envconfig:"STITCHUP_BLOB_ENDPOINT" default:"localhost:9000"`
	Bucket    string `envconfig:"STITCHUP_BLOB_BUCKET" default:"stitchup-job-proofs"`
	AccessKey string `envconfig:"STITCHUP_BLOB_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"STITCHUP_BLOB_SECRET_KEY" default:""`
	UseSSL    bool   `envconfig:"STITCHUP_BLOB_USE_SSL" default:"false"`
}

type Auth struct {
	AuthenticationType string `envconfig:"STITCHUP_AUTH" default:""`
	JwtSigningKey      string `envconfig:"STITCHUP_JWT_KEY" default:""`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a config suitable for tests: sqlite in memory, no auth.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{Type: "sqlite", Name: ":memory:"},
		Service:  &svcConfig{Address: ":8080", MetricsAddress: ":8081", LogLevel: "debug"},
		Blob:     &blobConfig{},
	}
}
