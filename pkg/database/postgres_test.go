package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/eduflow-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "edu",
		Password: "secret",
		Name:     "eduflow",
		SSLMode:  "disable",
	})

	assert.Equal(t, "host=db port=5433 user=edu password=secret dbname=eduflow sslmode=disable", dsn)
}
