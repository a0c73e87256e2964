package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stegasoo/stegasoo/pkg/stego"
)

var analyzeFlags struct {
	Original string
	Stego    string
	Heatmap  string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare a carrier with its stego image (MSE/PSNR + heatmap)",
	Run: func(cmd *cobra.Command, args []string) {
		result, err := stego.Analyze(analyzeFlags.Original, analyzeFlags.Stego)
		if err != nil {
			log.Fatal().Err(err).Msg("Analysis failed")
		}
		if err := os.WriteFile(analyzeFlags.Heatmap, result.Heatmap, 0644); err != nil {
			log.Fatal().Err(err).Msg("Failed to write heatmap")
		}
		log.Info().
			Float64("mse", result.MSE).
			Float64("psnr_db", result.PSNR).
			Str("heatmap", analyzeFlags.Heatmap).
			Msg("Analysis complete")
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeFlags.Original, "original", "a", "", "Path to original image (required)")
	analyzeCmd.MarkFlagRequired("original")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.Stego, "stego", "b", "", "Path to stego image (required)")
	analyzeCmd.MarkFlagRequired("stego")
	analyzeCmd.Flags().StringVarP(&analyzeFlags.Heatmap, "heatmap", "o", "heatmap.png", "Output path for the difference heatmap")
}
