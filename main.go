package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aTrapDeer/portfolio-cms/internal/auth"
	"github.com/aTrapDeer/portfolio-cms/internal/config"
	"github.com/aTrapDeer/portfolio-cms/internal/db"
	"github.com/aTrapDeer/portfolio-cms/internal/repository"
	"github.com/aTrapDeer/portfolio-cms/internal/storage"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
}

func main() {
	seedFile := flag.String("seed", "", "upsert projects and honors from a YAML file, then exit")
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations, then exit")
	flag.Parse()

	cfg := config.Load()

	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	if *migrateOnly {
		log.Println("Migrations applied")
		return
	}
	if *seedFile != "" {
		if err := seed(conn, *seedFile); err != nil {
			log.Fatalf("seed: %v", err)
		}
		return
	}

	store, err := storage.NewLocal(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		log.Fatalf("upload store: %v", err)
	}
	app, err := NewApp(cfg, conn, store)
	if err != nil {
		log.Fatalf("init app: %v", err)
	}
	ensureAdmin(app.users, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Portfolio backend running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	app.Close()
	log.Println("Server stopped gracefully")
}

// ensureAdmin creates or promotes the configured admin account.
func ensureAdmin(users *repository.Users, cfg config.Config) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set. Create the admin user manually or through a secure setup process.")
		return
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("admin password: %v", err)
	}
	created, err := users.EnsureAdmin(context.Background(), strings.ToLower(cfg.AdminEmail), cfg.AdminName, hash)
	if err != nil {
		log.Fatalf("ensure admin: %v", err)
	}
	if created {
		log.Printf("Admin user %s created", cfg.AdminEmail)
	}
}

func seed(conn *gorm.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	res, err := db.Seed(context.Background(), f, repository.NewProjects(conn), repository.NewHonors(conn))
	if err != nil {
		return err
	}
	log.Printf("Seeded %d projects and %d honors from %s", res.Projects, res.Honors, path)
	return nil
}
