package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ngocvo/rollcall/internal/config"
	"github.com/ngocvo/rollcall/internal/identity"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "Show the portrait bucket map",
	Long: `Scan the portrait directory and print each person bucket with its
photo count. Both layouts are merged: a subdirectory per person, and loose
image files named after the person.`,
	RunE: runBuckets,
}

func init() {
	rootCmd.AddCommand(bucketsCmd)
}

func runBuckets(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	buckets, err := identity.ScanBuckets(cfg.Portraits.Dir, cfg.Symbols.IsImageFile)
	if err != nil {
		return err
	}

	stats := buckets.Stats()
	fmt.Printf("%d persons, %d portrait photos in %s\n", stats.Persons, stats.Photos, cfg.Portraits.Dir)
	for _, person := range buckets.Persons() {
		fmt.Printf("  %-30s %d\n", person, len(buckets[person]))
	}
	return nil
}
