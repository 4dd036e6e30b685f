package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mourafe/radarb3/internal/contracts"
	"github.com/mourafe/radarb3/internal/report"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Executa o screener de momentum",
	Long: `Executa o pipeline completo: universo → preços → retornos → ranking.

Imprime a tabela ranqueada no terminal; com --csv grava também o
arquivo CSV do resultado.

Example:
  go run ./cmd/radar scan
  go run ./cmd/radar scan --weeks 26 --min-return 50
  go run ./cmd/radar scan --csv out/
  go run ./cmd/radar scan --refresh`,
	RunE: runScan,
}

var (
	scanWeeks     int
	scanMinReturn float64
	scanBatchSize int
	scanCSVDir    string
	scanRefresh   bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntVar(&scanWeeks, "weeks", contracts.DefaultWeeks, "janela de retorno em semanas (4-52)")
	scanCmd.Flags().Float64Var(&scanMinReturn, "min-return", contracts.DefaultMinReturn, "retorno mínimo em % (0-1000)")
	scanCmd.Flags().IntVar(&scanBatchSize, "batch-size", contracts.DefaultBatchSize, "tickers por requisição (50-300)")
	scanCmd.Flags().StringVar(&scanCSVDir, "csv", "", "diretório para gravar o CSV do resultado")
	scanCmd.Flags().BoolVar(&scanRefresh, "refresh", false, "limpa os caches antes de executar")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	if scanRefresh {
		if err := a.pipeline.ForceRefresh(ctx); err != nil {
			return fmt.Errorf("refresh caches: %w", err)
		}
	}

	params := contracts.Params{
		Weeks:        scanWeeks,
		MinReturnPct: scanMinReturn,
		BatchSize:    scanBatchSize,
	}.Clamped()

	result, err := a.pipeline.Run(ctx, params)
	if err != nil {
		return fmt.Errorf("run scan: %w", err)
	}

	report.RenderTable(os.Stdout, result)

	if scanCSVDir != "" {
		if err := writeCSVFile(scanCSVDir, result); err != nil {
			return err
		}
	}

	return nil
}

func writeCSVFile(dir string, result *contracts.ScanResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create csv dir: %w", err)
	}

	path := filepath.Join(dir, report.Filename(result.Params))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := report.WriteCSV(f, result.Rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	fmt.Printf("\nCSV gravado em %s\n", path)
	return nil
}
