package chatgpdune

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sortphy/chatgpdune/internal/domain"
)

var (
	chunkSize int
	overlap   int
	recursive bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file/directory]",
	Short: "Import lore documents into the vector database",
	Long: `Chunk document content, embed it and store it in the Qdrant collection.
Supports plain-text files (.txt, .md).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		svc, err := buildServices(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		if chunkSize == 0 {
			chunkSize = cfg.Chunker.ChunkSize
		}
		if overlap == 0 {
			overlap = cfg.Chunker.Overlap
		}

		files, err := collectFiles(path, recursive)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no ingestable files found at %s", path)
		}

		ctx := context.Background()
		total := 0
		for _, file := range files {
			resp, err := svc.processor.Ingest(ctx, domain.IngestRequest{
				FilePath:  file,
				ChunkSize: chunkSize,
				Overlap:   overlap,
			})
			if err != nil {
				return fmt.Errorf("failed to ingest %s: %w", file, err)
			}
			fmt.Printf("✓ %s: %d chunks\n", file, resp.ChunkCount)
			total += resp.ChunkCount
		}

		fmt.Printf("Ingested %d files, %d chunks\n", len(files), total)
		return nil
	},
}

func collectFiles(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if p != path && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".txt", ".md", ".markdown":
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func init() {
	ingestCmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "chunk size in characters (overrides config)")
	ingestCmd.Flags().IntVar(&overlap, "overlap", 0, "chunk overlap in characters (overrides config)")
	ingestCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "walk directories recursively")
}
