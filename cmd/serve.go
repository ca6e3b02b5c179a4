package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rhaphazard/browserid/internal/api"
	"github.com/rhaphazard/browserid/internal/audit"
	"github.com/rhaphazard/browserid/internal/config"
	"github.com/rhaphazard/browserid/internal/keys"
	"github.com/rhaphazard/browserid/internal/policy"
	"github.com/rhaphazard/browserid/internal/resolver"
	"github.com/rhaphazard/browserid/internal/service"
	"github.com/rhaphazard/browserid/internal/verifier"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verifier server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if addr == "" {
			addr = cfg.Server.Addr
		}

		// the host key is a startup requirement: refuse to serve without it
		hostKey, err := keys.LoadPublicKeyPEM(cfg.Keys.Public)
		if err != nil {
			return fmt.Errorf("loading host public key: %w", err)
		}

		log.Info().Str("host", cfg.Host).Bool("allow_primaries", cfg.Trust.AllowPrimaries).
			Msg("Initializing key resolvers...")
		registry, err := resolver.Build(cfg.Resolvers, cfg.Host, hostKey, cfg.Trust.AllowPrimaries)
		if err != nil {
			return fmt.Errorf("building resolver registry: %w", err)
		}

		pol, err := policy.Compile(cfg.Policy.Expr)
		if err != nil {
			return fmt.Errorf("compiling acceptance policy: %w", err)
		}

		auditor, err := audit.FromConfig(cfg.Audit)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		defer func() {
			_ = auditor.Close()
		}()

		svc := service.NewVerifyService(verifier.New(cfg.Host, registry), pol, auditor)
		srv := api.NewServer(svc)

		server := &http.Server{
			Addr:    addr,
			Handler: srv.Routes(),
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "address to listen on (overrides config)")
}
