// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings. Both the gaslink CLI and the gateway use it.
//
// # Configuration Structure
//
// Platform API:
//
//	GASLINK_API_URL="https://api.example.ng"
//	GASLINK_API_TIMEOUT="15s"
//
// Gateway server settings:
//
//	GASLINK_HOST="0.0.0.0"
//	GASLINK_PORT="8080"
//	GASLINK_HEALTH_PORT="9090"
//	GASLINK_READ_TIMEOUT="15s"
//	GASLINK_WRITE_TIMEOUT="15s"
//	GASLINK_SHUTDOWN_TIMEOUT="30s"
//
// Session settings:
//
//	GASLINK_SESSION_STORE="file"  # memory, file, redis
//	GASLINK_SESSION_FILE="$HOME/.config/gaslink/session.yaml"
//	GASLINK_REDIS_URL="redis://localhost:6379/0"
//	GASLINK_REDIS_DB="0"
//
// Plan cache and reminders:
//
//	GASLINK_PLAN_CACHE_TTL="5m"
//	GASLINK_PLAN_CACHE_SIZE="256"
//	GASLINK_WATCH_SCHEDULE="@every 15m"
//
// Observability:
//
//	GASLINK_LOG_LEVEL="info"
//	GASLINK_METRICS_ENABLED="true"
//	GASLINK_OTEL_ENABLED="false"
//	GASLINK_OTEL_ENDPOINT="localhost:4317"
//
// # Usage
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
package config
