// Command stub runs the in-memory shortener API server for local
// development of the dashboard.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/ebelousov/linkdash/internal/logger"
	"github.com/ebelousov/linkdash/internal/stub"
)

func main() {
	var (
		addr       string
		baseURL    string
		setupDone  bool
		adminEmail string
		adminPass  string
	)

	flag.StringVar(&addr, "a", "localhost:8080", "listen address")
	flag.StringVar(&baseURL, "base-url", "http://localhost:8080", "reported base URL")
	flag.BoolVar(&setupDone, "setup-done", true, "report first-run setup as complete")
	flag.StringVar(&adminEmail, "admin-email", "admin@example.com", "seeded admin email")
	flag.StringVar(&adminPass, "admin-password", "admin12345!", "seeded admin password")
	flag.Parse()

	zapLogger, err := logger.New("info")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	server := stub.New(stub.Options{
		BaseURL:             baseURL,
		SetupDone:           setupDone,
		AllowRegistering:    true,
		MinPasswordStrength: 2,
	}, zapLogger)
	admin := server.AddUser("admin", adminEmail, adminPass, true)

	zapLogger.Info("stub server listening",
		zap.String("addr", addr),
		zap.String("admin", admin.Email),
	)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}
