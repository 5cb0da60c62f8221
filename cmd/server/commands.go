package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medipay/internal/middleware"
	"medipay/internal/models"
	"medipay/internal/repositories"
	"medipay/internal/routes"
	"medipay/internal/utils"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.db != nil {
		if err := repositories.Migrate(rt.db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if rt.cfg.JWTSecret == "" {
		rt.log.Warn().Msg("JWT_SECRET is empty, every authenticated request will be rejected")
	}

	app := routes.NewApp(routes.AppConfig{
		CORSOrigins: rt.cfg.Origins(),
		AccessLog:   !rt.cfg.IsProduction(),
		RateLimit:   30,
		Log:         rt.log,
	})
	routes.SetupRoutes(app, routes.Services{
		Referral: rt.referrals,
		Wallet:   rt.wallets,
		Payout:   rt.payouts,
		Auth:     middleware.NewAuthMiddleware(rt.cfg.JWTSecret, rt.log),
		Health:   rt.healthChecks(),
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + rt.cfg.Port
		rt.log.Info().Str("addr", addr).Msg("starting server")
		errCh <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	rt.log.Info().Msg("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		rt.log.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	rt.log.Info().Msg("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(context.Background())
			if err != nil {
				return err
			}
			defer rt.close()
			if rt.db == nil {
				return errors.New("migrate needs STORE_DRIVER=postgres")
			}
			if err := repositories.Migrate(rt.db); err != nil {
				return err
			}
			rt.log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Replay every wallet's transaction log and report drift",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(context.Background())
			if err != nil {
				return err
			}
			defer rt.close()

			report, err := rt.wallets.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if !report.OK() {
				return fmt.Errorf("%d of %d wallets drifted from their log", len(report.Drift), report.WalletsChecked)
			}
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load hospitals from a JSON file into the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var hospitals []models.Hospital
			if err := json.Unmarshal(raw, &hospitals); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}

			rt, err := bootstrap(context.Background())
			if err != nil {
				return err
			}
			defer rt.close()

			for i := range hospitals {
				if err := rt.hospitals.Register(cmd.Context(), &hospitals[i]); err != nil {
					return fmt.Errorf("hospital %q: %w", hospitals[i].ID, err)
				}
			}
			rt.log.Info().Int("count", len(hospitals)).Msg("hospitals seeded")
			return nil
		},
	}
	cmd.Flags().String("file", "hospitals.json", "JSON array of hospitals")
	return cmd
}

// tokenCmd issues an access token signed with JWT_SECRET, for local testing
// and for bootstrapping the first admin.
func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			user, _ := cmd.Flags().GetString("user")
			role, _ := cmd.Flags().GetString("role")
			hospitalID, _ := cmd.Flags().GetString("hospital")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			switch role {
			case models.RolePatient, models.RoleAdmin:
			case models.RoleHospital:
				if hospitalID == "" {
					return errors.New("--hospital is required for the hospital role")
				}
			default:
				return fmt.Errorf("unknown role %q", role)
			}

			tok, err := utils.GenerateToken(cfg.JWTSecret, models.UserClaims{
				UserID:     user,
				Role:       role,
				HospitalID: hospitalID,
			}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().String("user", "admin", "user id placed in the token")
	cmd.Flags().String("role", models.RoleAdmin, "patient, hospital or admin")
	cmd.Flags().String("hospital", "", "hospital id for the hospital role")
	cmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	return cmd
}
