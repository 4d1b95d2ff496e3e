package main

import (
	"context"
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/discochess/openingtree/internal/publish"
	"github.com/discochess/openingtree/internal/sink/disksink"
)

var publishCmd = &cobra.Command{
	Use:   "publish DESTINATION",
	Short: "Upload a built dataset to GCS",
	Long: `Upload a locally built dataset to Google Cloud Storage. Batch files
go up first and the summary strictly last, so readers never mistake a
half-published dataset for a complete one.

Examples:
  openingtree publish gs://my-bucket/openings
  openingtree publish --data-dir ./data gs://my-bucket/openings/2024`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	dir := viper.GetString("data-dir")

	m, err := disksink.ReadManifest(dir)
	if err != nil {
		return fmt.Errorf("not a built dataset: %w", err)
	}

	u, err := publish.NewGCSUploader(ctx, args[0])
	if err != nil {
		return err
	}
	defer u.Close()

	bar := pb.Full.Start(m.BatchCount)
	bar.Set("prefix", "publish ")
	err = u.Upload(ctx, dir, func(uploaded, total int) {
		bar.SetTotal(int64(total))
		bar.SetCurrent(int64(uploaded))
	})
	bar.Finish()
	if err != nil {
		return err
	}

	fmt.Printf("Published %d documents (%d batches) to %s\n", m.DocumentCount, m.BatchCount, args[0])
	return nil
}
