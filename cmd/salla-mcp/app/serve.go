// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/toolhive-core/env"

	"github.com/stacklok/salla-mcp/pkg/authserver/consent"
	"github.com/stacklok/salla-mcp/pkg/authserver/metrics"
	"github.com/stacklok/salla-mcp/pkg/authserver/server"
	servercrypto "github.com/stacklok/salla-mcp/pkg/authserver/server/crypto"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/handlers"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/keys"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/registration"
	"github.com/stacklok/salla-mcp/pkg/authserver/state"
	"github.com/stacklok/salla-mcp/pkg/authserver/storage"
	"github.com/stacklok/salla-mcp/pkg/authserver/upstream"
	"github.com/stacklok/salla-mcp/pkg/config"
	"github.com/stacklok/salla-mcp/pkg/logger"
	mcpserver "github.com/stacklok/salla-mcp/pkg/mcp/server"
	"github.com/stacklok/salla-mcp/pkg/networking"
	"github.com/stacklok/salla-mcp/pkg/salla"
	"github.com/stacklok/salla-mcp/pkg/tools"
)

const (
	defaultGracefulTimeout = 30 * time.Second
	storageCheckTimeout    = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Salla MCP server",
		Long: `Start the Salla MCP server together with its OAuth authorization server.

Configuration is read from the environment and from an optional .env file.
SALLA_AUTH_URL, SALLA_TOKEN_URL, SALLA_BASE_URL, SALLA_CLIENT_ID,
SALLA_CLIENT_SECRET and COOKIE_ENCRYPTION_KEY are required. Flags override
the matching environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.Load(&env.OSReader{})
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", config.DefaultDotEnvFile, "Path of an optional .env file")
	cmd.Flags().String(config.FlagHost, "", "Host to listen on (MCP_HOST, default localhost)")
	cmd.Flags().String(config.FlagPort, "", "Port to listen on (MCP_PORT, default 8787)")
	cmd.Flags().String(config.FlagIssuer, "", "Public base URL of this server (MCP_ISSUER)")
	cmd.Flags().String(config.FlagStorage, "", "Storage backend: memory or redis (STORAGE_TYPE)")
	cmd.Flags().String(config.FlagRedisAddr, "", "Redis address for redis storage (REDIS_ADDR)")

	for _, name := range []string{
		config.FlagHost, config.FlagPort, config.FlagIssuer, config.FlagStorage, config.FlagRedisAddr,
	} {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			logger.Errorw("failed to bind flag", "flag", name, "error", err)
		}
	}

	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.storage.Close(); err != nil {
			logger.Warnw("failed to close storage", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(app.server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultGracefulTimeout)
		defer cancel()
		if err := app.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shut down: %w", err)
		}
		logger.Info("server shutdown complete")
		return nil
	})

	return g.Wait()
}

// application is the assembled server and the resources it owns.
type application struct {
	server  *mcpserver.Server
	storage storage.Storage
}

// buildServer wires the authorization server, the Salla client and the MCP
// transports from cfg. The caller closes the returned storage.
func buildServer(ctx context.Context, cfg config.Config) (_ *application, retErr error) {
	stor, err := storage.New(ctx, cfg.StorageBackendConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = stor.Close()
		}
	}()

	healthCtx, cancel := context.WithTimeout(ctx, storageCheckTimeout)
	defer cancel()
	if err := stor.Health(healthCtx); err != nil {
		return nil, fmt.Errorf("storage is not reachable: %w", err)
	}

	authConfig, err := newAuthorizationServerConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	provider := server.NewProvider(authConfig, stor)

	httpClient, err := networking.NewHttpClientBuilder().
		WithCABundle(cfg.Upstream.CABundle).
		WithPrivateIPs(cfg.Upstream.AllowPrivateIPs).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create upstream HTTP client: %w", err)
	}

	upstreamIDP, err := upstream.NewSallaProvider(cfg.UpstreamProviderConfig(), upstream.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}

	var codecOpts []state.Option
	if cfg.StateSigningKey != "" {
		codecOpts = append(codecOpts, state.WithSigningKey([]byte(cfg.StateSigningKey)))
	} else {
		logger.Warn("STATE_SIGNING_KEY is not set; authorization state is not signed")
	}
	codec := state.NewCodec(codecOpts...)

	var consentOpts []consent.Option
	if strings.HasPrefix(cfg.Issuer, "http://") {
		consentOpts = append(consentOpts, consent.WithInsecureCookies())
	}
	consentStore, err := consent.NewStore(cfg.CookieEncryptionKey, codec, consentOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create consent store: %w", err)
	}

	m := metrics.New(metrics.Config{IncludeRuntimeMetrics: true})
	handler := handlers.NewHandler(provider, authConfig, stor, upstreamIDP, codec, consentStore,
		handlers.WithMetrics(m),
		handlers.WithResource(cfg.Issuer+mcpserver.StreamablePath),
	)

	registry := tools.NewRegistry(
		salla.NewClient(cfg.Salla.APIURL, salla.WithHTTPClient(httpClient)),
		tools.WithMetrics(m),
	)

	srv, err := mcpserver.New(&mcpserver.Config{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Issuer:       cfg.Issuer,
		Introspector: provider,
		Props:        stor,
		Tools:        registry,
		Metrics:      m.Handler(),
		AuthRoutes: func(r chi.Router) {
			handler.OAuthRoutes(r)
			handler.WellKnownRoutes(r)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}

	return &application{server: srv, storage: stor}, nil
}

func newAuthorizationServerConfig(ctx context.Context, cfg config.Config) (*server.AuthorizationServerConfig, error) {
	keyProvider, err := keys.NewProviderFromConfig(cfg.KeysConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to load signing keys: %w", err)
	}
	signingKey, err := keyProvider.SigningKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	secrets, err := servercrypto.LoadHMACSecrets(cfg.HMACSecretFiles)
	if err != nil {
		return nil, err
	}
	if secrets == nil {
		if secrets, err = servercrypto.DeriveHMACSecrets(cfg.CookieEncryptionKey); err != nil {
			return nil, err
		}
	}

	authConfig, err := server.NewAuthorizationServerConfig(&server.AuthorizationServerParams{
		Issuer:              cfg.Issuer,
		HMACSecrets:         secrets,
		SigningKeyID:        signingKey.KeyID,
		SigningKeyAlgorithm: signingKey.Algorithm,
		SigningKey:          signingKey.Key,
		AllowedAudiences:    []string{cfg.Issuer + mcpserver.StreamablePath},
		ScopesSupported:     registration.DefaultScopes,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid authorization server configuration: %w", err)
	}

	// The published set also carries the fallback keys.
	jwks, err := keys.JWKS(ctx, keyProvider)
	if err != nil {
		return nil, err
	}
	if len(jwks.Keys) == 0 {
		return nil, errors.New("no public signing keys available")
	}
	authConfig.SigningJWKS = jwks

	return authConfig, nil
}
