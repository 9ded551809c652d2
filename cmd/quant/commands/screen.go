package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-picker/backend/internal/brain"
	"github.com/wonny/aegis-picker/backend/internal/contracts"
)

// screenCmd runs one brief through the pipeline from the command line
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "브리프 한 건 실행 (후보 발굴 + 랭킹)",
	Long: `투자 브리프 한 건을 파이프라인으로 실행하고 랭킹 결과를 출력합니다.

Focus 텍스트가 정렬 방향을 결정합니다:
  growth / best / momentum   → best-to-worst (내림차순)
  decline / worst / fallen   → worst-to-best (오름차순)

Example:
  go run ./cmd/quant screen --sectors Semiconductor --focus "best growth" --timeframe 1Y
  go run ./cmd/quant screen --sectors "Cloud Software" --focus "worst performers" --timeframe 3M
  go run ./cmd/quant screen --sectors Fintech --metric volatility --json`,
	RunE: runScreen,
}

var (
	screenSectors   []string
	screenFocus     string
	screenMetric    string
	screenRisk      string
	screenTimeframe string
	screenMaxStocks int
	screenMinPrice  float64
	screenMaxPrice  float64
	screenAmount    float64
	screenTop       int
	screenJSON      bool
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringSliceVar(&screenSectors, "sectors", nil, "섹터 라벨 (comma separated)")
	screenCmd.Flags().StringVar(&screenFocus, "focus", "growth", "포커스 텍스트 (growth, decline, ...)")
	screenCmd.Flags().StringVar(&screenMetric, "metric", "performance", "랭킹 지표 (performance|volatility|volume)")
	screenCmd.Flags().StringVar(&screenRisk, "risk", "", "리스크 수준 (low|moderate|high, 참고용)")
	screenCmd.Flags().StringVar(&screenTimeframe, "timeframe", "1Y", "기간 (1M|3M|6M|1Y|3Y|5Y)")
	screenCmd.Flags().IntVar(&screenMaxStocks, "max-stocks", 10, "선택기가 고를 최대 종목 수")
	screenCmd.Flags().Float64Var(&screenMinPrice, "min-price", 0, "최소 가격 (참고용)")
	screenCmd.Flags().Float64Var(&screenMaxPrice, "max-price", 0, "최대 가격 (참고용)")
	screenCmd.Flags().Float64Var(&screenAmount, "amount", 0, "총 투자 금액")
	screenCmd.Flags().IntVar(&screenTop, "top", 25, "출력할 행 수 (0 = 전체)")
	screenCmd.Flags().BoolVar(&screenJSON, "json", false, "JSON 출력 (selection handoff 형식)")
}

func runScreen(cmd *cobra.Command, args []string) error {
	criteria := contracts.InvestmentCriteria{
		Sectors:   screenSectors,
		Focus:     screenFocus,
		Metric:    screenMetric,
		RiskLevel: contracts.RiskLevel(screenRisk),
		Timeframe: contracts.Timeframe(screenTimeframe),
		MaxStocks: screenMaxStocks,
	}
	if cmd.Flags().Changed("min-price") {
		criteria.MinPrice = &screenMinPrice
	}
	if cmd.Flags().Changed("max-price") {
		criteria.MaxPrice = &screenMaxPrice
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Pipeline.RequestTimeout)
	defer cancel()

	result, err := a.pipeline.Run(ctx, brain.Request{
		Criteria:    criteria,
		TotalAmount: screenAmount,
	})
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if screenJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		return outageErr(result)
	}

	PrintRunSummary(result)

	if result.Outcome == brain.OutcomeEmpty {
		if err := outageErr(result); err != nil {
			PrintError("Market data provider unavailable for every candidate. Try again later.")
			return err
		}
		PrintWarning(fmt.Sprintf("No candidates after %s stage. Try broader sectors or a different timeframe.", result.EmptyStage))
		return nil
	}

	PrintCandidates(result.Selection.Candidates, screenTop)

	if len(result.Failures) > 0 && verbose {
		fmt.Println()
		fmt.Println("Dropped during enrichment:")
		items := make([]string, 0, len(result.Failures))
		for _, f := range result.Failures {
			items = append(items, fmt.Sprintf("%s (%s)", f.Symbol, f.Reason))
		}
		PrintList(items)
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("%d candidates ranked", len(result.Selection.Candidates)))
	return nil
}

// outageErr turns an empty run caused by a provider outage into a non-zero exit
func outageErr(result *brain.Result) error {
	if result.Outcome != brain.OutcomeEmpty || !result.Retryable {
		return nil
	}
	return fmt.Errorf("%w: every bar fetch failed", contracts.ErrUpstreamUnavailable)
}
