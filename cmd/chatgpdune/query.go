package chatgpdune

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sortphy/chatgpdune/internal/domain"
)

var (
	noRAG       bool
	queryModel  string
	showSources bool
	interactive bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask the chatbot a question",
	Long: `Ask a one-shot question, or start an interactive session with -i.
Retrieval is on by default; --no-rag queries the bare model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildServices(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		if interactive {
			return runInteractive(svc)
		}

		if len(args) == 0 {
			return fmt.Errorf("provide a question or use --interactive")
		}

		return ask(svc, strings.Join(args, " "))
	},
}

func ask(svc *services, question string) error {
	useRAG := !noRAG
	resp, err := svc.processor.Chat(context.Background(), domain.ChatRequest{
		Text:   question,
		UseRAG: &useRAG,
		Model:  queryModel,
	})
	if err != nil {
		return err
	}

	fmt.Println(resp.Reply)

	if showSources && resp.SourcesUsed > 0 {
		fmt.Printf("\nSources (%d used):\n", resp.SourcesUsed)
		for _, src := range resp.Sources {
			fmt.Printf("  - %s (score %.3f)\n", src.Source, src.Score)
		}
	}

	return nil
}

func runInteractive(svc *services) error {
	fmt.Println("ChatGPDune interactive mode. Type 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		if err := ask(svc, question); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		fmt.Println()
	}

	return scanner.Err()
}

func init() {
	queryCmd.Flags().BoolVar(&noRAG, "no-rag", false, "skip retrieval and query the bare model")
	queryCmd.Flags().StringVarP(&queryModel, "model", "m", "", "model to use (defaults to configured model)")
	queryCmd.Flags().BoolVarP(&showSources, "sources", "s", false, "show retrieved sources")
	queryCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "interactive question loop")
}
