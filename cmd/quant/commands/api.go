package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-picker/backend/internal/api"
	"github.com/wonny/aegis-picker/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 브리프 → 랭킹된 후보 목록 엔드포인트 제공
- 실행 기록 조회 (DATABASE_URL 설정 시)

Endpoints:
  GET  /health               - Health check
  POST /api/v1/candidates    - 후보 발굴 + 랭킹
  GET  /api/v1/timeframes    - 허용 기간 목록
  GET  /api/v1/runs          - 최근 실행 기록

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Aegis Picker API Server ===")

	// 1. Shared resources (config, logger, refdata, cache, run log, pipeline)
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	log := a.log

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 2. Create handlers
	candidateHandler := handlers.NewCandidateHandler(a.pipeline, cfg.Pipeline.RequestTimeout, log.Module("api"))

	var runsHandler *handlers.RunsHandler
	if a.runs != nil {
		runsHandler = handlers.NewRunsHandler(a.runs, log.Module("api"))
	}

	// 3. Create router
	router := api.NewRouter(candidateHandler, runsHandler, log.Module("api"))

	// 4. Create server
	server := api.New(cfg, log, router)

	// 5. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/v1/candidates")
	fmt.Println("  GET  /api/v1/timeframes")
	if runsHandler != nil {
		fmt.Println("  GET  /api/v1/runs")
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
