package commands

import (
	"fmt"
	"strconv"

	"github.com/wonny/aegis-picker/backend/internal/brain"
	"github.com/wonny/aegis-picker/backend/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	for i := 0; i < totalWidth; i++ {
		fmt.Print("─")
	}
	fmt.Println()
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// PrintRunSummary prints the counts and policy of a pipeline run
func PrintRunSummary(result *brain.Result) {
	sel := result.Selection

	PrintDoubleSeparator()
	fmt.Printf("  Run %s\n", result.RunID)
	PrintSeparator()
	PrintKeyValue("Outcome", string(result.Outcome), 12)
	if result.EmptyStage != "" {
		PrintKeyValue("Empty at", string(result.EmptyStage), 12)
	}
	sector := sel.SectorTag
	if sector == "" {
		sector = "(none)"
	}
	if result.Fallback {
		sector += " [fallback]"
	}
	PrintKeyValue("Sector", sector, 12)
	PrintKeyValue("Window", fmt.Sprintf("%s ~ %s (%s)",
		sel.Window.Start.Format("2006-01-02"), sel.Window.End.Format("2006-01-02"), sel.Window.Resolution), 12)
	PrintKeyValue("Policy", fmt.Sprintf("%s by %s, %s", sel.Policy.Focus, sel.Policy.MetricKey, sel.DirectionNote), 12)
	PrintKeyValue("Universe", strconv.Itoa(sel.UniverseSize), 12)
	PrintKeyValue("Filtered", strconv.Itoa(sel.FilteredCount), 12)
	PrintKeyValue("Processed", strconv.Itoa(sel.ProcessedCount), 12)
	PrintKeyValue("Enriched", strconv.Itoa(len(sel.Candidates)), 12)
	PrintKeyValue("Dropped", strconv.Itoa(sel.DroppedCount), 12)
	PrintKeyValue("Duration", result.Duration.String(), 12)
	PrintKeyValue("RefData", sel.RefDataVersion, 12)
	PrintSeparator()
}

// PrintCandidates prints the ranked list, at most limit rows (0 = all)
func PrintCandidates(candidates []contracts.EnrichedCandidate, limit int) {
	columns := []string{"#", "SYMBOL", "NAME", "PRICE", "RETURN%", "VOL%", "AVG VOLUME"}
	widths := []int{4, 8, 28, 10, 9, 7, 14}
	PrintTableHeader(columns, widths)

	for i, c := range candidates {
		if limit > 0 && i >= limit {
			fmt.Printf("   ... %d more\n", len(candidates)-limit)
			break
		}
		PrintTableRow([]string{
			strconv.Itoa(i + 1),
			c.Symbol,
			truncate(c.Name, widths[2]),
			fmt.Sprintf("%.2f", c.Price),
			fmt.Sprintf("%+.2f", c.PeriodReturnPct),
			fmt.Sprintf("%.2f", c.VolatilityPct),
			fmt.Sprintf("%.0f", c.AverageVolume),
		}, widths)
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
