package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Aegis Picker - 후보 종목 발굴 및 성과 랭킹",
	Long: `Aegis Picker Unified CLI

투자 브리프(섹터, 포커스, 기간)를 받아 미국 주식 후보를 발굴하고
기간 성과 기준으로 랭킹합니다.
universe → sector filter → pre-rank → enrich → rank 순서로 실행.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant screen --sectors Semiconductor --focus growth --timeframe 1Y
  go run ./cmd/quant api
  go run ./cmd/quant scheduler start
  go run ./cmd/quant refdata validate ./refdata.yaml
  go run ./cmd/quant db check`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug log level)")
}
