package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jackiech6/voice-rag/internal/config"
)

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question grounded on the ingested documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.postJSON(cmd.Context(), "/query", map[string]string{"question": question})
		if err != nil {
			return err
		}

		var result struct {
			State     string `json:"state"`
			Answer    string `json:"answer"`
			Citations []struct {
				Number  int    `json:"number"`
				ChunkID string `json:"chunk_id"`
				Title   string `json:"title"`
				Page    int    `json:"page"`
			} `json:"citations"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, result.Answer)
		if len(result.Citations) > 0 {
			fmt.Fprintln(os.Stdout)
			fmt.Fprintln(os.Stdout, "Sources:")
			for _, c := range result.Citations {
				fmt.Fprintf(os.Stdout, "  [%d] %s, page %d\n", c.Number, c.Title, c.Page)
			}
		}
		if result.State != "answered" {
			printWarning("state: %s", result.State)
		}
		return nil
	},
}

// --- ingest ---

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest a PDF, text, or markdown file into the knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.postFile(cmd.Context(), "/documents/upload", args[0], map[string]string{"title": title})
		if err != nil {
			return err
		}

		var result struct {
			DocumentID    int64  `json:"document_id"`
			Title         string `json:"title"`
			ChunkCount    int    `json:"chunk_count"`
			AlreadyExists bool   `json:"already_exists"`
			Warning       string `json:"warning"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if result.AlreadyExists {
			printWarning("Already ingested as document %d (%s)", result.DocumentID, result.Title)
			return nil
		}
		printSuccess("Ingested document %d (%s), %d chunks", result.DocumentID, result.Title, result.ChunkCount)
		if result.Warning != "" {
			printWarning("%s", result.Warning)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("title", "", "custom title for the document")
}

// --- docs ---

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage ingested documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/documents")
		if err != nil {
			return err
		}

		var result struct {
			Documents []struct {
				ID         int64  `json:"id"`
				Title      string `json:"title"`
				CreatedAt  string `json:"created_at"`
				ChunkCount int    `json:"chunk_count"`
			} `json:"documents"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Documents) == 0 {
			fmt.Fprintln(os.Stdout, "No documents ingested yet.")
			return nil
		}
		for _, d := range result.Documents {
			fmt.Fprintf(os.Stdout, "%6d  %-40s  %3d chunks  %s\n", d.ID, d.Title, d.ChunkCount, d.CreatedAt)
		}
		return nil
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document and its chunks and vectors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/documents/"+args[0])
		if err != nil {
			return err
		}

		var result struct {
			DocumentID     int64  `json:"document_id"`
			ChunksDeleted  int    `json:"chunks_deleted"`
			VectorsDeleted int    `json:"vectors_deleted"`
			Warning        string `json:"warning"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Deleted document %d (%d chunks, %d vectors)", result.DocumentID, result.ChunksDeleted, result.VectorsDeleted)
		if result.Warning != "" {
			printWarning("%s", result.Warning)
		}
		return nil
	},
}

func init() {
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsDeleteCmd)
}

// --- transcribe ---

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio-file>",
	Short: "Transcribe an audio file to text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("language")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.postFile(cmd.Context(), "/transcribe", args[0], map[string]string{"language": language})
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, result["text"])
		return nil
	},
}

func init() {
	transcribeCmd.Flags().String("language", "", "ISO-639-1 language hint (e.g. en)")
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show voicerag system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			printError("config error: %v", err)
			return nil
		}

		serverURL := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
		client := &http.Client{Timeout: 2 * time.Second}

		resp, err := client.Get(serverURL + "/health")
		if err != nil {
			printStatus("Server", "stopped")
		} else {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				printStatus("Server", "running on port %d", cfg.Server.Port)
			} else {
				printStatus("Server", "error (HTTP %d)", resp.StatusCode)
			}
		}

		printStatus("Embed model", "%s", cfg.OpenAI.EmbedModel)
		printStatus("Chat model", "%s", cfg.OpenAI.ChatModel)
		printStatus("Transcribe model", "%s", cfg.OpenAI.TranscribeModel)
		printStatus("Data dir", "%s", cfg.Storage.DataDir)
		return nil
	},
}
