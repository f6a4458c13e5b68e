package main

import "time"

type Config struct {
	ConnectionBufferSize      int64         `env:"CONNECTION_BUFFER_SIZE,default=32768"`
	NumberOfWorkers           int           `env:"NUMBER_OF_WORKERS,required=true"`
	ModerationCharReplacement string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
	DefaultPageSize           int           `env:"DEFAULT_PAGE_SIZE,default=20"`
	MaxPageSize               int           `env:"MAX_PAGE_SIZE,default=100"`
	MaxContentLength          int           `env:"MAX_CONTENT_LENGTH,default=2000"`
	SinkTimeout               time.Duration `env:"SINK_TIMEOUT,required=true"`
	LiveCoalesceWindow        time.Duration `env:"LIVE_COALESCE_WINDOW,default=50ms"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,required=true"`
	AuthTokenDuration         time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	JWTSecret                 string        `env:"JWT_SECRET,required=true"`
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel                  string        `env:"LOG_LEVEL,required=true"`
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=8080"`
	WSPort                    int           `env:"WS_PORT,default=8081"`
	MetricsPort               int           `env:"METRICS_PORT,default=9090"`
	GeneralRoomName           string        `env:"GENERAL_ROOM_NAME,default=General"`
}
