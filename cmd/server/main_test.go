package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/flight-seat-booking/internal/config"
	"github.com/iliyamo/flight-seat-booking/internal/logger"
)

func TestRun_ReturnsStartupErrors(t *testing.T) {
	cfg := config.Config{
		DBUser: "app",
		DBHost: "127.0.0.1",
		DBPort: "1",
		DBName: "flights",
	}
	err := run(cfg, logger.Nop())
	assert.ErrorContains(t, err, "database unavailable")
}
