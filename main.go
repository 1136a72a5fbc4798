package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"dhaba/bot"
	"dhaba/config"
	"dhaba/db"
	"dhaba/services"
	"dhaba/web"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dhaba",
		Short:         "Dilli Da Dhaba website and menu backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd(), hashPasswordCmd())
	return root
}

// app holds what every subcommand needs: config, logger and an open store.
type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *db.DB
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	d, err := db.Open(ctx, cfg.DB.URL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	return &app{cfg: cfg, log: log, db: d}, nil
}

func (a *app) close() {
	a.db.Close()
	_ = a.log.Sync()
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var zc zap.Config
	switch cfg.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown LOG_FORMAT %q: want console or json", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// fail prints err for the operator and returns it so cobra exits non-zero.
func fail(err error) error {
	fmt.Fprintln(os.Stderr, "error:", err)
	return err
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and, when configured, the Telegram moderation bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx)
			if err != nil {
				return fail(err)
			}
			defer a.close()
			if err := a.serve(ctx); err != nil {
				return fail(err)
			}
			return nil
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	if a.cfg.DB.AutoMigrate {
		if err := db.NewMigrator(a.db, a.log).Up(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	catalog := services.NewCatalogService(a.db, a.log)
	reviews := services.NewReviewService(a.db, a.log)

	srv, err := web.NewServer(a.cfg, a.db, catalog, reviews, a.log)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	if a.cfg.Telegram.Enabled() {
		b, err := bot.New(a.cfg.Telegram, catalog, reviews, a.log.Named("bot"))
		if err != nil {
			return err
		}
		reviews.SetNotifier(b)
		g.Go(func() error { return b.Run(ctx) })
	} else {
		a.log.Info("Telegram bot disabled, set TELEGRAM_TOKEN and TELEGRAM_STAFF_CHAT_ID to enable")
	}
	g.Go(func() error { return srv.ListenAndServe(ctx) })
	return g.Wait()
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply embedded database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return fail(err)
			}
			defer a.close()

			m := db.NewMigrator(a.db, a.log)
			if err := m.Up(ctx); err != nil {
				return fail(fmt.Errorf("migrate: %w", err))
			}
			v, err := m.Version(ctx)
			if err != nil {
				return fail(err)
			}
			fmt.Printf("Schema is at version %d.\n", v)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Replace the catalog with the built-in restaurant menu",
		Long: "Deletes every menu item and category and inserts the built-in menu in one transaction.\n" +
			"Row counts are verified before commit; any mismatch rolls everything back.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds := services.DefaultMenu()
			if dryRun {
				printPreview(services.PreviewDataset(ds))
				return nil
			}

			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return fail(err)
			}
			defer a.close()

			seeder := services.NewSeeder(a.db, a.log)
			if a.cfg.Telegram.Enabled() {
				b, err := bot.New(a.cfg.Telegram, services.NewCatalogService(a.db, a.log), services.NewReviewService(a.db, a.log), a.log.Named("bot"))
				if err != nil {
					a.log.Warn("Reseed notification disabled", zap.Error(err))
				} else {
					seeder.SetNotifier(b)
					defer b.Close()
				}
			}

			fmt.Println("Seeding menu...")
			res, err := seeder.Reseed(ctx, ds)
			if err != nil {
				printSeedFailure(err)
				return err
			}
			printSeedResult(res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be inserted without touching the database")
	return cmd
}

func printPreview(p services.SeedPreview) {
	fmt.Println("Dry run, nothing will be written.")
	for _, g := range p.Groups {
		fmt.Printf("  [%2d] %-28s %3d items\n", g.DisplayOrder, g.Category, g.Items)
	}
	fmt.Printf("Would create %d categories and %d menu items.\n", p.Categories, p.Items)
}

func printSeedResult(res *services.SeedResult) {
	fmt.Printf("Deleted %d menu items and %d categories.\n", res.DeletedItems, res.DeletedCategories)
	for _, g := range res.Inserted {
		fmt.Printf("  Created %-28s with %3d items\n", g.Category, g.Items)
	}
	fmt.Printf("Verified %d categories and %d menu items.\n", res.Categories, res.Items)
	fmt.Printf("Done in %s.\n", res.Duration.Round(time.Millisecond))
}

// printSeedFailure lists every verification mismatch on its own line.
func printSeedFailure(err error) {
	fmt.Fprintln(os.Stderr, "Seeding failed, no changes were committed.")
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			fmt.Fprintln(os.Stderr, "  -", e)
		}
		return
	}
	fmt.Fprintln(os.Stderr, "  -", err)
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [plain]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH; generates a password when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var plain string
			if len(args) == 1 {
				plain = args[0]
			} else {
				generated, err := services.GenerateSecurePassword()
				if err != nil {
					return fail(err)
				}
				plain = generated
				fmt.Println("Generated password:", plain)
			}
			hash, err := services.HashAdminPassword(plain)
			if err != nil {
				return fail(err)
			}
			fmt.Println(hash)
			return nil
		},
	}
}
