// ABOUTME: Entry point for the dropnest dashboard backend
// ABOUTME: Serves the picture-login gateway, file drop, notes, and vault

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/crypto/bcrypt"

	"github.com/dropnest/dropnest/internal/auth"
	"github.com/dropnest/dropnest/internal/config"
	"github.com/dropnest/dropnest/internal/records"
	"github.com/dropnest/dropnest/internal/server"
	"github.com/dropnest/dropnest/internal/storage"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
     _                                 _
  __| |_ __ ___  _ __  _ __   ___  ___| |_
 / _' | '__/ _ \| '_ \| '_ \ / _ \/ __| __|
| (_| | | | (_) | |_) | | | |  __/\__ \ |_
 \__,_|_|  \___/| .__/|_| |_|\___||___/\__|
                |_|
`

// getConfigPath returns the path to the dropnest config file.
// Priority: DROPNEST_CONFIG env var > ./dropnest.yaml > ~/.config/dropnest/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("DROPNEST_CONFIG"); envPath != "" {
		return envPath
	}

	if _, err := os.Stat("dropnest.yaml"); err == nil {
		return "dropnest.yaml"
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "dropnest.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "dropnest", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: dropnest <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve             Start the dashboard backend")
		fmt.Println("  init              Create a starter config file")
		fmt.Println("  hash [password]   Print a bcrypt hash for the admin password")
		fmt.Println("  health            Check backend health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "hash":
		err = runHash()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:  %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:    %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Data:    %s\n", cfg.Storage.DataDir)
	green.Print("    ▶ ")
	fmt.Printf("Uploads: %s\n", cfg.Storage.UploadDir)
	if cfg.Auth.AdminPasswordHash == "" {
		yellow.Print("    ▶ ")
		fmt.Println("Admin:   disabled (no admin_password_hash configured)")
	}
	fmt.Println()

	logger.Info("starting dropnest",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
	)

	// Failing to create the data or upload directories is the only fatal
	// startup condition besides config errors.
	minter, err := auth.NewTokenMinter([]byte(cfg.Auth.TokenSecret))
	if err != nil {
		return fmt.Errorf("creating token minter: %w", err)
	}
	sessions := auth.NewSessionStore(minter)

	files, err := storage.NewFileStore(cfg.Storage.UploadDir)
	if err != nil {
		return fmt.Errorf("creating file store: %w", err)
	}
	notes, err := records.NewStore(filepath.Join(cfg.Storage.DataDir, "notes.json"))
	if err != nil {
		return fmt.Errorf("creating notes store: %w", err)
	}
	vault, err := records.NewStore(filepath.Join(cfg.Storage.DataDir, "passwords.json"))
	if err != nil {
		return fmt.Errorf("creating vault store: %w", err)
	}

	srv := server.New(cfg, logger, sessions, files, notes, vault)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

// runInit writes a starter config with a random token secret. The picture
// sequence is left for the user to choose; the file documents the format.
func runInit() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists at %s", configPath)
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("generating token secret: %w", err)
	}
	tokenSecret := base64.StdEncoding.EncodeToString(secretBytes)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configContent := fmt.Sprintf(`# dropnest configuration
# Generated by dropnest init

server:
  http_addr: "localhost:8080"

storage:
  data_dir: "data"
  upload_dir: "data/uploads"

auth:
  # Ordered grid-cell indices forming the picture password.
  image_sequence: [2, 6, 4, 8]
  # Generate with: dropnest hash
  admin_password_hash: ""
  token_secret: "%s"
  login_max_attempts: 5
  admin_max_attempts: 5

logging:
  level: "info"
  format: "text"
`, tokenSecret)

	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("Config written to %s\n", configPath)
	fmt.Println("Edit auth.image_sequence before first use.")
	return nil
}

// runHash prints a bcrypt hash of the admin password for the config file.
// The password is taken from the command line or, preferably, from stdin so
// it stays out of shell history.
func runHash() error {
	var password string
	if len(os.Args) > 2 {
		password = os.Args[2]
	} else {
		fmt.Print("Admin password: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	fmt.Println(string(hash))
	return nil
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}
