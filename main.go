package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"taskboard/connection"
	"taskboard/services"
)

func main() {
	issueToken := flag.String("issue-token", "", "print an API access token for the named client and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of tokens printed by -issue-token")
	flag.Parse()

	cfg, err := connection.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if *issueToken != "" {
		if cfg.JWTSecret == "" {
			logger.Error("JWT_SECRET_KEY must be set to issue tokens")
			os.Exit(1)
		}
		token, err := services.CreateAccessToken(cfg.JWTSecret, *issueToken, *tokenTTL)
		if err != nil {
			logger.Error("failed to create access token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	if err := connection.StartServer(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
