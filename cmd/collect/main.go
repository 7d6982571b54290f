package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/LJTian/MedAIRadar/internal/config"
	"github.com/LJTian/MedAIRadar/internal/export"
	"github.com/LJTian/MedAIRadar/internal/pipeline"
	"github.com/LJTian/MedAIRadar/internal/processor"
	"github.com/LJTian/MedAIRadar/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	collectDays    int
	collectCSV     string
	collectArchive bool
)

// 一个仅执行一次采集任务的命令行入口：适合手动触发采集
var rootCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run the AI-in-medicine news pipeline once",
	Long:  "Fetches every registered feed plus the arXiv query, normalizes and tags the records, then prints a summary. Optionally writes CSV and archives the run.",
	RunE:  runCollect,
}

func init() {
	rootCmd.Flags().IntVarP(&collectDays, "days", "d", 0, "Recency window in days (default NEWS_DAYS)")
	rootCmd.Flags().StringVarP(&collectCSV, "csv", "o", "", "Write records to this CSV file")
	rootCmd.Flags().BoolVar(&collectArchive, "archive", false, "Archive the run to POSTGRES_DSN")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCollect(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	days := collectDays
	if days <= 0 {
		days = cfg.NewsDays
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records := pipeline.NewFromConfig(cfg).News(ctx, days)
	printSummary(cmd, days, records)

	if collectCSV != "" {
		if err := writeCSVFile(collectCSV, records); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(records), collectCSV)
	}

	if collectArchive {
		if cfg.PostgresDSN == "" {
			return fmt.Errorf("--archive requires POSTGRES_DSN")
		}
		store, err := storage.NewStore(cfg.PostgresDSN, "")
		if err != nil {
			return fmt.Errorf("init store: %w", err)
		}
		run, err := store.SaveRun(ctx, days, records)
		if err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "archived run %s (%d records)\n", run.ID, run.Records)
	}
	return nil
}

func printSummary(cmd *cobra.Command, days int, records []processor.Record) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "collected %d records from the last %d days\n", len(records), days)
	if len(records) == 0 {
		return
	}

	bySource := make(map[string]int)
	byTopic := make(map[string]int)
	for _, r := range records {
		bySource[r.Source]++
		for t, ok := range r.Topics {
			if ok {
				byTopic[t]++
			}
		}
	}

	fmt.Fprintln(out, "by source:")
	for _, s := range config.Sources() {
		if n := bySource[s]; n > 0 {
			fmt.Fprintf(out, "  %-28s %d\n", s, n)
		}
	}
	fmt.Fprintln(out, "by topic:")
	for _, t := range processor.TopicNames() {
		fmt.Fprintf(out, "  %-28s %d\n", t, byTopic[t])
	}
	fmt.Fprintf(out, "newest: %s  oldest: %s\n",
		records[0].Date.Format("2006-01-02"), records[len(records)-1].Date.Format("2006-01-02"))
}

func writeCSVFile(path string, records []processor.Record) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.WriteCSV(f, records); err != nil {
		_ = f.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}
