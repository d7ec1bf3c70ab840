package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/Jackiech6/voice-rag/internal/answer"
	"github.com/Jackiech6/voice-rag/internal/api"
	"github.com/Jackiech6/voice-rag/internal/cache"
	"github.com/Jackiech6/voice-rag/internal/config"
	"github.com/Jackiech6/voice-rag/internal/document"
	"github.com/Jackiech6/voice-rag/internal/ingest"
	"github.com/Jackiech6/voice-rag/internal/llm"
	"github.com/Jackiech6/voice-rag/internal/retrieval"
	"github.com/Jackiech6/voice-rag/internal/storage"
	"github.com/Jackiech6/voice-rag/internal/transcribe"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the voicerag server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		mcpStdio, _ := cmd.Flags().GetBool("mcp")
		return runServer(mcpStdio)
	},
}

func init() {
	serveCmd.Flags().Bool("mcp", false, "also serve MCP tools over stdio")
}

func runServer(mcpStdio bool) error {
	fmt.Fprintf(os.Stderr, "voicerag version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	tokenizer, err := document.NewCL100KTokenizer()
	if err != nil {
		return fmt.Errorf("loading tokenizer: %w", err)
	}
	chunker, err := document.NewChunker(tokenizer, cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("configuring chunker: %w", err)
	}

	client := llm.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey)
	queryCache := cache.New(100, time.Hour)
	embedder := retrieval.NewEmbedder(client, cfg.OpenAI.EmbedModel, queryCache)
	index := retrieval.NewSQLiteIndex(store.DB())

	answerSvc := answer.NewService(embedder, index, client, cfg.OpenAI.ChatModel,
		cfg.Retrieval.TopK, float32(cfg.Retrieval.SimilarityThreshold), slog.Default())
	transcribeSvc := transcribe.NewService(client, cfg.OpenAI.TranscribeModel)
	pipeline := ingest.NewPipeline(store, index, embedder, chunker, slog.Default())

	uploadDir := filepath.Join(cfg.Storage.DataDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}

	deps := api.Deps{
		Answer:     answerSvc,
		Transcribe: transcribeSvc,
		Pipeline:   pipeline,
		Store:      store,
		UploadDir:  uploadDir,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewHandler(deps, cfg.Server.Token),
	}

	if mcpStdio {
		mcpSrv := api.NewMCPServer(deps)
		stdioSrv := server.NewStdioServer(mcpSrv)
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
		}()
		slog.Info("MCP server started (stdio transport)")
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "voicerag listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
