package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-picker/backend/internal/scheduler"
	"github.com/wonny/aegis-picker/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "저장된 브리프 스케줄러",
	Long: `저장된 브리프(BRIEFS_PATH)를 cron 스케줄로 실행합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 저장된 브리프 목록
  run     - 특정 브리프 즉시 실행
  status  - 최근 실행 기록 (DATABASE_URL 설정 시)

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler list
  go run ./cmd/quant scheduler run semis_weekly`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 briefs 파일의 모든 브리프를 스케줄합니다.

브리프 파일 형식 (YAML, 6-field cron with seconds):
  briefs:
    - name: semis_weekly
      schedule: "0 0 17 * * FRI"
      total_amount: 10000
      criteria:
        sectors: [Semiconductor]
        focus: best growth
        timeframe: 1Y
        max_stocks: 5

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "저장된 브리프 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [brief_name]",
		Short: "특정 브리프 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "최근 실행 기록 조회",
		RunE:  showStatus,
	}
)

var statusLimit int

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)

	schedulerStatusCmd.Flags().IntVar(&statusLimit, "limit", 20, "조회할 실행 기록 수")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Aegis Picker Scheduler ===")
	fmt.Println()

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	printJobStats(sched.GetJobStats())
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	briefs, err := jobs.LoadBriefs(cfg.BriefsPath)
	if err != nil {
		return err
	}

	fmt.Printf("Saved briefs (%s):\n\n", cfg.BriefsPath)
	columns := []string{"NAME", "SCHEDULE", "SECTORS", "FOCUS", "TIMEFRAME"}
	widths := []int{20, 18, 28, 18, 9}
	PrintTableHeader(columns, widths)
	for _, b := range briefs {
		PrintTableRow([]string{
			b.Name,
			b.Schedule,
			truncate(strings.Join(b.Criteria.Sectors, ", "), widths[2]),
			truncate(b.Criteria.Focus, widths[3]),
			b.Criteria.Timeframe,
		}, widths)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	if !strings.HasPrefix(jobName, "brief:") {
		jobName = "brief:" + jobName
	}

	fmt.Printf("Running job: %s\n", jobName)

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer sched.Stop()

	result, err := sched.RunNow(jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %d attempt(s): %s", jobName, result.Attempts, result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}

	PrintSuccess(fmt.Sprintf("%s completed in %s", jobName, result.Duration.Round(time.Millisecond)))
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.runs == nil {
		PrintWarning("DATABASE_URL is not set; no run log to show")
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	runs, err := a.runs.ListRecent(ctx, statusLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	fmt.Println("Recent runs:")
	fmt.Println()
	columns := []string{"STARTED", "OUTCOME", "SECTOR", "DIRECTION", "ENRICHED", "TOP"}
	widths := []int{19, 8, 14, 10, 8, 30}
	PrintTableHeader(columns, widths)
	for _, r := range runs {
		PrintTableRow([]string{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Outcome,
			r.SectorTag,
			r.Direction,
			strconv.Itoa(r.EnrichedCount),
			truncate(strings.Join(r.TopSymbols, ","), widths[5]),
		}, widths)
	}

	return nil
}

func printJobStats(stats map[string]scheduler.JobStats) {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nJob Statistics:")
	for _, name := range names {
		stat := stats[name]
		fmt.Printf("📊 %s\n", name)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d (success %d, failure %d)\n", stat.TotalRuns, stat.SuccessCount, stat.FailureCount)
		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		if stat.LastError != "" {
			fmt.Printf("   Last Error: %s\n", stat.LastError)
		}
	}
}

// initScheduler registers one job per saved brief
func initScheduler(a *app) (*scheduler.Scheduler, error) {
	briefs, err := jobs.LoadBriefs(a.cfg.BriefsPath)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(a.log.Module("scheduler")).
		WithJobTimeout(a.cfg.Pipeline.RequestTimeout)

	for _, brief := range briefs {
		job := jobs.NewBriefJob(brief, a.pipeline, a.log.Module("jobs"))
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	a.log.WithField("jobs", len(briefs)).Info("Scheduler initialized")
	return sched, nil
}
