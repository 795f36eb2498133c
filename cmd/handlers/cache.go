package handlers

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"briefdeck/internal/config"
	"briefdeck/internal/logger"
	"briefdeck/internal/store"
)

// NewCacheCmd creates the cache management command
func NewCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the model response cache and conversion history",
		Long:  `Inspect, clean, and manage the SQLite store holding cached model responses and past conversions.`,
	}

	cacheCmd.AddCommand(newCacheStatsCmd())
	cacheCmd.AddCommand(newCacheClearCmd())
	cacheCmd.AddCommand(newCacheCleanupCmd())
	cacheCmd.AddCommand(newCacheHistoryCmd())

	return cacheCmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics and storage information",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runCacheStats(); err != nil {
				logger.Error("Failed to get cache stats", err)
				os.Exit(1)
			}
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached model responses",
		Long:  `Remove all cached model responses. Conversion history is kept.`,
		Run: func(cmd *cobra.Command, args []string) {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if err := runCacheClear(confirm); err != nil {
				logger.Error("Failed to clear cache", err)
				os.Exit(1)
			}
		},
	}

	clearCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	return clearCmd
}

func newCacheCleanupCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove cached model responses older than a given age",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runCacheCleanup(olderThan); err != nil {
				logger.Error("Failed to clean up cache", err)
				os.Exit(1)
			}
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Maximum age of kept responses")
	return cmd
}

func newCacheHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent conversions",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runCacheHistory(limit); err != nil {
				logger.Error("Failed to list conversions", err)
				os.Exit(1)
			}
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of conversions to show")
	return cmd
}

func openStore() (*store.Store, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cacheStore, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize cache store: %w", err)
	}
	closeFn := func() {
		if err := cacheStore.Close(); err != nil {
			logger.Error("Failed to close cache store", err)
		}
	}
	return cacheStore, closeFn, nil
}

func runCacheStats() error {
	fmt.Println("📊 Cache Statistics")
	fmt.Println("==================")

	cacheStore, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	stats, err := cacheStore.GetCacheStats()
	if err != nil {
		return fmt.Errorf("failed to get cache statistics: %w", err)
	}

	fmt.Printf("📄 Conversions recorded: %d\n", stats.ConversionCount)
	fmt.Printf("🤖 Model responses cached: %d\n", stats.ResponseCount)
	fmt.Printf("💾 Cache size: %.2f MB\n", float64(stats.CacheSize)/1024/1024)
	fmt.Printf("📅 Last updated: %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))

	return nil
}

func runCacheClear(confirm bool) error {
	if !confirm {
		fmt.Print("⚠️  This will remove all cached model responses. Continue? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" && response != "yes" {
			fmt.Println("Cache clear cancelled")
			return nil
		}
	}

	fmt.Println("🗑️  Clearing cache...")

	cacheStore, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := cacheStore.ClearCache(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Println("✅ Cache cleared successfully")
	return nil
}

func runCacheCleanup(olderThan time.Duration) error {
	cacheStore, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	n, err := cacheStore.CleanupOldCache(olderThan)
	if err != nil {
		return err
	}
	fmt.Printf("🧹 Removed %d response(s) older than %s\n", n, olderThan)
	return nil
}

func runCacheHistory(limit int) error {
	cacheStore, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	conversions, err := cacheStore.ListConversions(limit)
	if err != nil {
		return err
	}
	if len(conversions) == 0 {
		fmt.Println("No conversions recorded yet")
		return nil
	}
	for _, c := range conversions {
		status := "preview only"
		if c.DownloadURL != "" {
			status = fmt.Sprintf("%d slides", c.SlideCount)
		}
		fmt.Printf("%s  %-16s  %-40s  %s\n",
			c.CreatedAt.Local().Format("2006-01-02 15:04"), c.PresentationID, c.SourceName, status)
	}
	return nil
}
