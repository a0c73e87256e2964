package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stegasoo/stegasoo/pkg/stego"
)

var infoImage string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show stego header metadata without credentials",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(infoImage)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read image")
		}
		info, err := stego.Inspect(data)
		if err != nil {
			log.Fatal().Err(err).Msg("No readable stego header")
		}
		log.Info().
			Str("mode", info.Mode.String()).
			Uint8("version", info.Version).
			Int("payload_bytes", info.PayloadSize).
			Msg("Stego header")
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringVarP(&infoImage, "image-path", "i", "", "Path to stego image (required)")
	infoCmd.MarkFlagRequired("image-path")
}
