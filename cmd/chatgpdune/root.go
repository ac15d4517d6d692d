// Package chatgpdune contains the CLI commands of the ChatGPDune service.
package chatgpdune

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sortphy/chatgpdune/internal/config"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	version = "dev"
)

var RootCmd = &cobra.Command{
	Use:   "chatgpdune",
	Short: "ChatGPDune - Dune universe RAG chatbot",
	Long: `ChatGPDune is a retrieval-augmented chatbot for the Dune universe by
Frank Herbert. It retrieves lore chunks from a Qdrant vector index, gates
them for relevance, and answers through a locally hosted Ollama model.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if verbose {
			cfg.Server.LogLevel = "debug"
		}

		return nil
	},
}

func Execute() error {
	return RootCmd.Execute()
}

// GetRootCmd returns the root cobra command.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// SetVersion sets the CLI version reported by --version.
func SetVersion(v string) {
	version = v
	RootCmd.Version = v
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(ingestCmd)
	RootCmd.AddCommand(queryCmd)
	RootCmd.AddCommand(resetCmd)
	RootCmd.AddCommand(statusCmd)
}
