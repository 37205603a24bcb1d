package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/logging"
	"github.com/yukikurage/project-management-api/internal/mail"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/security"
	"github.com/yukikurage/project-management-api/internal/server"
	"github.com/yukikurage/project-management-api/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var (
	cfg *config.Config
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Project management API",
	Long:  `An HTTP API for projects and tasks with session login, password reset and dashboard indicators.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env file is fine; the environment may already be set.
		_ = godotenv.Load()
		cfg = config.Load()
		log = logging.New(cfg)
		return nil
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}
		gin.SetMode(cfg.GinMode)

		db, err := database.Connect(cfg, log)
		if err != nil {
			return err
		}
		if err := database.Migrate(db, log); err != nil {
			return err
		}

		mongoClient, err := database.ConnectMongo(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer disconnectMongo(mongoClient)

		store, err := server.NewSessionStore(cfg)
		if err != nil {
			return err
		}

		router := server.NewRouter(server.Dependencies{
			Config:       cfg,
			Logger:       log,
			DB:           db,
			Indicators:   repository.NewIndicatorRepository(mongoClient.Database(cfg.MongoDB)),
			Mailer:       mail.New(cfg, log),
			SessionStore: store,
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.WithField("port", cfg.Port).Info("Server starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
		}

		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		log.Info("Server shutdown complete")
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(cfg, log)
		if err != nil {
			return err
		}
		return database.Migrate(db, log)
	},
}

var superuserFlags struct {
	username string
	email    string
	password string
}

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a superuser account",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := superuserFlags.password
		if password == "" {
			password = os.Getenv("SUPERUSER_PASSWORD")
		}

		db, err := openMigrated()
		if err != nil {
			return err
		}

		userService := services.NewUserService(
			repository.NewUserRepository(db),
			security.NewPasswordManager(cfg.BcryptCost),
		)
		user, err := userService.CreateUser(services.CreateUserInput{
			Username:    superuserFlags.username,
			Email:       superuserFlags.email,
			Password:    password,
			IsStaff:     true,
			IsSuperuser: true,
		})
		if err != nil {
			return fmt.Errorf("create superuser: %w", err)
		}

		log.WithFields(logrus.Fields{
			"user_id":  user.ID,
			"username": user.Username,
		}).Info("Superuser created")
		return nil
	},
}

var syncIndicatorsCmd = &cobra.Command{
	Use:   "sync-indicators",
	Short: "Recompute dashboard indicators from the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMigrated()
		if err != nil {
			return err
		}

		mongoClient, err := database.ConnectMongo(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer disconnectMongo(mongoClient)

		dashboard := services.NewDashboardService(
			repository.NewIndicatorRepository(mongoClient.Database(cfg.MongoDB)),
			repository.NewUserRepository(db),
			repository.NewProjectRepository(db),
			repository.NewTaskRepository(db),
			log,
		)
		values, err := dashboard.SyncIndicators(cmd.Context())
		if err != nil {
			return err
		}

		fields := logrus.Fields{}
		for name, value := range values {
			fields[name] = value
		}
		log.WithFields(fields).Info("Dashboard indicators synced")
		return nil
	},
}

func openMigrated() (*gorm.DB, error) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func disconnectMongo(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.WithError(err).Warn("failed to disconnect from mongo")
	}
}

func init() {
	createSuperuserCmd.Flags().StringVar(&superuserFlags.username, "username", "", "username of the new superuser")
	createSuperuserCmd.Flags().StringVar(&superuserFlags.email, "email", "", "email of the new superuser")
	createSuperuserCmd.Flags().StringVar(&superuserFlags.password, "password", "", "password (defaults to $SUPERUSER_PASSWORD)")
	_ = createSuperuserCmd.MarkFlagRequired("username")
	_ = createSuperuserCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createSuperuserCmd)
	rootCmd.AddCommand(syncIndicatorsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
