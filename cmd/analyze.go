package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// analyzeCmd computes the capture curve from the flows cache alone, without
// touching the engine.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute the capture curve from cached flows",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := loadConfig(cmd)

		report, err := newPipeline(cfg).AnalyzeCached()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		emit(cfg, report)
	},
}
