package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-picker/backend/internal/refdata"
)

// refdataCmd groups reference data commands
var refdataCmd = &cobra.Command{
	Use:   "refdata",
	Short: "섹터 규칙/참조 데이터 관리",
	Long: `섹터 분류 규칙, well-known 목록, 구조적 제외 규칙을 검증하고 표시합니다.
경로를 생략하면 REFDATA_PATH, 그것도 없으면 내장 기본값을 사용합니다.

Example:
  go run ./cmd/quant refdata validate ./refdata.yaml
  go run ./cmd/quant refdata show`,
}

var (
	refdataValidateCmd = &cobra.Command{
		Use:   "validate [path]",
		Short: "참조 데이터 파일 검증",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRefDataValidate,
	}

	refdataShowCmd = &cobra.Command{
		Use:   "show [path]",
		Short: "섹터 규칙 표시",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRefDataShow,
	}
)

func init() {
	rootCmd.AddCommand(refdataCmd)
	refdataCmd.AddCommand(refdataValidateCmd)
	refdataCmd.AddCommand(refdataShowCmd)
}

// loadRefData resolves the path argument, REFDATA_PATH, then the embedded default
func loadRefData(args []string) (*refdata.RefData, string, error) {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return nil, "", err
		}
		path = cfg.RefDataPath
	}

	rd, err := refdata.Load(path)
	if path == "" {
		path = "(embedded default)"
	}
	return rd, path, err
}

func runRefDataValidate(cmd *cobra.Command, args []string) error {
	rd, path, err := loadRefData(args)
	if err != nil {
		PrintError(fmt.Sprintf("%s: %v", path, err))
		return err
	}

	PrintSuccess(fmt.Sprintf("%s is valid", path))
	PrintKeyValue("Version", rd.Version, 12)
	PrintKeyValue("Rules", strconv.Itoa(len(rd.SectorRules)), 12)
	PrintKeyValue("Well-known", strconv.Itoa(len(rd.WellKnown)), 12)
	return nil
}

func runRefDataShow(cmd *cobra.Command, args []string) error {
	rd, path, err := loadRefData(args)
	if err != nil {
		return err
	}

	PrintDoubleSeparator()
	fmt.Printf("  Reference data %s (%s)\n", rd.Version, path)
	PrintDoubleSeparator()

	// 순서 = 우선순위 (first match wins)
	for i, rule := range rd.SectorRules {
		fmt.Printf("%d. %s\n", i+1, rule.Tag)
		PrintKeyValue("Triggers", strings.Join(rule.Triggers, ", "), 9)
		PrintKeyValue("Keywords", strings.Join(rule.Keywords, ", "), 9)
		PrintKeyValue("Symbols", strings.Join(rule.Symbols, ", "), 9)
		PrintSeparator()
	}

	fmt.Println("Structural exclusions:")
	ex := rd.Exclusions
	PrintKeyValue("Max symbol length", strconv.Itoa(ex.MaxSymbolLength), 18)
	PrintKeyValue("Symbol chars", strconv.Quote(ex.SymbolChars), 18)
	PrintKeyValue("Fund patterns", strings.Join(ex.FundNamePatterns, ", "), 18)
	fmt.Println()
	fmt.Printf("Well-known (%d): %s\n", len(rd.WellKnown), strings.Join(rd.WellKnown, " "))
	return nil
}
