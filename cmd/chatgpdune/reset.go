package chatgpdune

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the vector collection",
	Long:  `Drop and recreate the Qdrant collection, removing all ingested lore.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetForce {
			fmt.Printf("This will delete all data in collection %q. Continue? [y/N] ", cfg.Qdrant.Collection)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		svc, err := buildServices(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.store.Reset(context.Background()); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		fmt.Printf("Collection %q cleared.\n", cfg.Qdrant.Collection)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "skip confirmation")
}
