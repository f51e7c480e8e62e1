package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rainfallCmd runs the synthesis stage alone, producing the SWMM rain file.
var rainfallCmd = &cobra.Command{
	Use:   "rainfall",
	Short: "Generate the synthetic rainfall series only",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := loadConfig(cmd)

		p := newPipeline(cfg)
		stats, err := p.GenerateRainfall()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("rainfall written to %s (%.0f mm over %d years, %d storms)",
			p.RainPath(), stats.TotalDepthMM, stats.Years, stats.StormCount)
	},
}
