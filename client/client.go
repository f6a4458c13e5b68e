package main

import (
	v1 "chat-feed/contracts/chat/v1"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

var errUsage = errors.New("usage: client <register|login|rooms|user|send|delete|history|watch> [flags]")

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `envconfig:"CHAT_SERVER_ADDR" default:"localhost:8080"`
	Token         string `envconfig:"CHAT_TOKEN"`
	Room          string `envconfig:"CHAT_ROOM"`
	PageSize      int    `envconfig:"CHAT_PAGE_SIZE" default:"20"`
	Colours       bool   `envconfig:"CHAT_COLOURS" default:"true"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"ERROR"`
}

type app struct {
	config Config
	log    *slog.Logger
	chat   v1.ChatServiceClient
	auth   v1.AuthServiceClient
	out    *renderer
}

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run(args []string) (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if len(args) == 0 {
		return exitConfig, errUsage
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := grpc.NewClient(config.ServerAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to server at %s: %w", config.ServerAddress, err)
	}
	defer func() { _ = conn.Close() }()

	a := &app{
		config: config,
		log:    log,
		chat:   v1.NewChatServiceClient(conn),
		auth:   v1.NewAuthServiceClient(conn),
		out:    newRenderer(os.Stdout, config.Colours),
	}
	if config.Token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+config.Token)
	}

	command, ok := a.commands()[args[0]]
	if !ok {
		return exitConfig, errUsage
	}
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	execute := command(flags)
	if err := flags.Parse(args[1:]); err != nil {
		return exitConfig, err
	}
	if err := execute(ctx); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}
