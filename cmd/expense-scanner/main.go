package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/expense-scanner/internal/expense"
	"github.com/zombor/expense-scanner/internal/extraction"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// Load a local .env before ff's env-var pass, if one exists
	godotenv.Load()

	fs := ff.NewFlagSet("expense-scanner")
	var (
		port           = fs.IntLong("port", 8080, "HTTP server port")
		backendURL     = fs.StringLong("backend-url", "", "Extraction backend base URL (required)")
		backendTimeout = fs.IntLong("backend-timeout", 120, "Extraction backend timeout in seconds (0 disables)")
		storeType      = fs.StringLong("store", "bolt", "Document store type: 'bolt' or 'dir'")
		dbPath         = fs.StringLong("db", "expense-scanner.db", "Database file path (bolt store)")
		storagePath    = fs.StringLong("storage", "./documents", "Storage directory path (dir store)")
		authUser       = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass       = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("EXPENSE_SCANNER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if *backendURL == "" {
		slog.Error("Extraction backend URL is required. Set --backend-url flag or EXPENSE_SCANNER_BACKEND_URL environment variable")
		os.Exit(1)
	}

	// Initialize extraction client
	slog.Info("Initializing extraction client...", "backend", *backendURL)
	client, err := extraction.NewClient(*backendURL, time.Duration(*backendTimeout)*time.Second)
	if err != nil {
		slog.Error("Failed to initialize extraction client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	// Initialize document store based on type
	var store expense.DocumentStore
	switch *storeType {
	case "bolt":
		slog.Info("Initializing document store...", "db", *dbPath)
		store, err = expense.NewBoltStore(*dbPath)
		if err != nil {
			slog.Error("Failed to initialize document store", "error", err)
			os.Exit(1)
		}
	case "dir":
		slog.Info("Initializing document store...", "directory", *storagePath)
		store, err = expense.NewDirStore(*storagePath)
		if err != nil {
			slog.Error("Failed to initialize document store", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid store type", "type", *storeType, "valid", "bolt or dir")
		os.Exit(1)
	}
	defer store.Close()

	// Initialize service
	service := expense.NewService(client, store)

	// Initialize server
	basicAuth := expense.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := expense.NewServer(service, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
