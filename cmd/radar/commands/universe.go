package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Resolve e lista o universo de tickers",
	Long: `Resolve o universo de ações da B3 (brapi com fallback para o
snapshot CSV) e lista os tickers normalizados.

Example:
  go run ./cmd/radar universe`,
	RunE: runUniverse,
}

func init() {
	rootCmd.AddCommand(universeCmd)
}

func runUniverse(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	universe, err := a.pipeline.Universe(cmd.Context())
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}

	fmt.Printf("universe: %d tickers (source: %s, resolved: %s)\n\n",
		universe.Count(), universe.Source, universe.ResolvedAt.Format("2006-01-02 15:04:05"))

	for _, ticker := range universe.Tickers {
		fmt.Println(ticker)
	}

	return nil
}
