package main

import (
	"context"
	"strings"
	"time"

	"github.com/jrsteele09/go-rdp-session/server"
	"github.com/jrsteele09/go-rdp-session/session"
	"github.com/rs/zerolog/log"
)

const (
	mockUsername = "mock-user@example.com"
	mockPassword = "mock-password"
	mockAppKey   = "mock-app-key"
)

// startMockPlatform runs an in-process platform that accepts creds. Blank
// credentials are filled with mock defaults. env is passed to the platform.
func startMockPlatform(env string, creds *session.Credentials) (string, func(), error) {
	if creds.Username == "" {
		creds.Username = mockUsername
	}
	if creds.Password == "" {
		creds.Password = mockPassword
	}
	if creds.ClientID == "" {
		creds.ClientID = mockAppKey
	}

	platform, err := server.New(server.Repos{}, server.WithLogger(log.Logger), server.WithEnv(env))
	if err != nil {
		return "", nil, err
	}
	if err := platform.AddUser(creds.Username, creds.Password); err != nil {
		return "", nil, err
	}
	if err := platform.AddClient(creds.ClientID, creds.ClientSecret, strings.Fields(creds.Scope)...); err != nil {
		return "", nil, err
	}

	baseURL, err := platform.Start("127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := platform.Shutdown(ctx); err != nil {
			log.Err(err).Msg("Failed to stop mock platform")
		}
	}
	return baseURL, stop, nil
}
