package chatgpdune

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and backend health",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Ollama:  %s (llm=%s, embed=%s)\n",
			cfg.Ollama.BaseURL, cfg.Ollama.LLMModel, cfg.Ollama.EmbeddingModel)
		fmt.Printf("Qdrant:  %s (collection=%s, dim=%d)\n",
			cfg.Qdrant.URL, cfg.Qdrant.Collection, cfg.Qdrant.VectorDim)
		fmt.Printf("Gate:    min_chunk_chars=%d overlap_threshold=%.2f top_k=%d\n",
			cfg.Gate.MinChunkChars, cfg.Gate.OverlapThreshold, cfg.Gate.TopK)

		svc, err := buildServices(cfg)
		if err != nil {
			fmt.Printf("Backend: unavailable (%v)\n", err)
			return nil
		}
		defer svc.Close()

		health := svc.processor.Health(context.Background())
		fmt.Printf("Backend: %s", health.Status)
		if health.Detail != "" {
			fmt.Printf(" (%s)", health.Detail)
		}
		fmt.Println()

		return nil
	},
}
