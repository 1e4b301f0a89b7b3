package constants

import "time"

const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
)

const (
	DBConnectionTimeout   = 30 * time.Second
	DBHealthCheckTimeout  = 5 * time.Second
	DBConnMaxLifetime     = 1 * time.Hour
	DBConnMaxIdleTime     = 30 * time.Minute
	DBMaintenanceInterval = 1 * time.Hour
)

const (
	MailSendTimeout       = 10 * time.Second
	RedisOperationTimeout = 2 * time.Second
)

const (
	SecondsPerDay      = 24 * 60 * 60
	CACHEControlMaxAge = 300 // in seconds
)
