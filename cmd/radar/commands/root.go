package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "Radar B3 - screener de momentum para ações da B3",
	Long: `Radar B3

Screener de momentum: resolve o universo de ações da B3, busca o
histórico de preços em lotes e ranqueia os papéis pelo retorno na
janela configurada.

Usage:
  go run ./cmd/radar [command]

Examples:
  go run ./cmd/radar scan
  go run ./cmd/radar scan --weeks 26 --min-return 50
  go run ./cmd/radar api
  go run ./cmd/radar universe`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
