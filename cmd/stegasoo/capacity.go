package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stegasoo/stegasoo/pkg/stego"
)

var capacityImage string

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Report how many payload bytes an image can carry per mode",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(capacityImage)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read image")
		}
		lsb, err := stego.Capacity(data, stego.ModeLSB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to compute LSB capacity")
		}
		dct, err := stego.Capacity(data, stego.ModeDCT)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to compute DCT capacity")
		}
		log.Info().Int("lsb_bytes", lsb).Int("dct_bytes", dct).Str("image", capacityImage).Msg("Capacity")
	},
}

func init() {
	rootCmd.AddCommand(capacityCmd)
	capacityCmd.Flags().StringVarP(&capacityImage, "image-path", "i", "", "Path to image (required)")
	capacityCmd.MarkFlagRequired("image-path")
}
