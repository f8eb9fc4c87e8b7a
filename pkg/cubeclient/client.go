// Package cubeclient constructs connected CUBE clients from configuration.
// It wires the HTTP transport, authentication, optional caching, and
// collection link discovery, and returns the cube.Client interface.
package cubeclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fnndsc/cube-client/internal/client"
	cubehttp "github.com/fnndsc/cube-client/internal/http"
	"github.com/fnndsc/cube-client/pkg/cube"
)

// New creates a connected CUBE client. See cube.Config for the
// authentication precedence.
func New(ctx context.Context, config *cube.Config) (cube.Client, error) {
	if config == nil {
		return nil, cube.ErrConfigRequired
	}

	address, err := NormalizeAddress(config.Address)
	if err != nil {
		return nil, err
	}

	token := config.Token
	if token == "" && config.Username != "" {
		token, err = Authenticate(ctx, address, config.Username, config.Password)
		if err != nil {
			return nil, err
		}
	}

	transport, err := newTransport(address, token, config)
	if err != nil {
		return nil, err
	}

	return client.Connect(ctx, transport, config.Username)
}

func newTransport(address, token string, config *cube.Config) (*cubehttp.Client, error) {
	opts := []cubehttp.Option{}

	if config.Logger != nil {
		opts = append(opts, cubehttp.WithLogger(config.Logger), cubehttp.WithDebug(config.Debug))
	}

	if config.RetryMax > 0 {
		opts = append(opts, cubehttp.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, cubehttp.WithTimeout(config.HTTPTimeout))
	}

	if config.UserAgent != "" {
		opts = append(opts, cubehttp.WithUserAgent(config.UserAgent))
	}

	if config.Cache != nil {
		cache, err := cube.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("configuring cache: %w", err)
		}

		opts = append(opts, cubehttp.WithCache(cache, config.Cache.EntryTTL()))
	}

	return cubehttp.NewClient(address, token, opts...), nil
}

// Authenticate exchanges a username and password for a CUBE token.
func Authenticate(ctx context.Context, address, username, password string) (string, error) {
	address, err := NormalizeAddress(address)
	if err != nil {
		return "", err
	}

	transport := cubehttp.NewClient(address, "")

	var resp cube.AuthTokenResponse

	err = transport.PostJSON(ctx, address+"auth-token/", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("obtaining token for %q: %w", username, err)
	}

	return resp.Token, nil
}

// NormalizeAddress adds a scheme when missing and ensures the trailing
// slash CUBE URLs carry.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", cube.ErrAddressRequired
	}

	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		address = "https://" + address
	}

	if !strings.Contains(address, "/api/v") {
		return "", fmt.Errorf("%w: %q does not look like a CUBE API URL", cube.ErrInvalidAddress, address)
	}

	if !strings.HasSuffix(address, "/") {
		address += "/"
	}

	return address, nil
}
