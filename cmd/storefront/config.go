package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/storefront/infrastructure/auth"
	"storefront/pkg/storefront/infrastructure/mysql"
)

type config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	ServeRESTAddress string `envconfig:"SERVE_REST_ADDRESS" default:":8080"`
	ServeGRPCAddress string `envconfig:"SERVE_GRPC_ADDRESS" default:":8081"`

	DBHost                  string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort                  string        `envconfig:"DB_PORT" default:"3306"`
	DBUser                  string        `envconfig:"DB_USER" default:"storefront"`
	DBPassword              string        `envconfig:"DB_PASSWORD"`
	DBName                  string        `envconfig:"DB_NAME" default:"storefront"`
	DBMaxConnections        int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBConnectionMaxLifetime time.Duration `envconfig:"DB_CONNECTION_MAX_LIFETIME" default:"1h"`
	DBPingInterval          time.Duration `envconfig:"DB_PING_INTERVAL" default:"10s"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL"`

	UploadDir              string        `envconfig:"UPLOAD_DIR" default:"uploads"`
	StatusTransitionPolicy string        `envconfig:"STATUS_TRANSITION_POLICY" default:"override"`
	ShutdownTimeout        time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`

	AdminName     string `envconfig:"ADMIN_NAME" default:"Administrator"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

func parseEnv() (*config, error) {
	c := new(config)
	if err := envconfig.Process("", c); err != nil {
		return nil, errors.Wrap(err, "failed to parse env")
	}

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "invalid LOG_LEVEL")
	}
	log.SetLevel(level)

	if c.JWTTTL <= 0 {
		c.JWTTTL = auth.DefaultTokenTTL
	}
	return c, nil
}

func (c *config) database() mysql.Config {
	return mysql.Config{
		Host:                  c.DBHost,
		Port:                  c.DBPort,
		User:                  c.DBUser,
		Password:              c.DBPassword,
		Name:                  c.DBName,
		MaxConnections:        c.DBMaxConnections,
		ConnectionMaxLifetime: c.DBConnectionMaxLifetime,
	}
}
