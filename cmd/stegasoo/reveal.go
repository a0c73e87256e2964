package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stegasoo/stegasoo/pkg/stego"
)

var (
	revealCreds credFlags
	revealFlags struct {
		Image string
		Out   string
		Mode  string
	}
)

var revealCmd = &cobra.Command{
	Use:   "reveal",
	Short: "Reveal a payload hidden in a stego image",
	Run: func(cmd *cobra.Command, args []string) {
		digest, creds, kdf, err := revealCreds.resolve()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve credentials")
		}

		data, err := os.ReadFile(revealFlags.Image)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read stego image")
		}

		opts := stego.ExtractOptions{KDF: kdf}
		switch revealFlags.Mode {
		case "auto":
		case "lsb":
			opts.Mode = stego.ModeLSB
		case "dct":
			opts.Mode = stego.ModeDCT
		default:
			log.Fatal().Str("mode", revealFlags.Mode).Msg("mode must be auto, lsb, or dct")
		}

		packed, err := stego.Extract(data, digest, creds, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to reveal payload")
		}
		payload, err := stego.UnpackPayload(packed)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to unpack payload")
		}

		out := revealFlags.Out
		if out == "" && payload.Filename != "" {
			out = payload.Filename
		}
		if out != "" {
			if err := os.WriteFile(out, payload.Data, 0644); err != nil {
				log.Fatal().Err(err).Msg("Failed to write output")
			}
			log.Info().Str("output", out).Int("bytes", len(payload.Data)).Msg("Revealed payload")
			return
		}
		fmt.Println(string(payload.Data))
	},
}

func init() {
	rootCmd.AddCommand(revealCmd)
	revealCreds.register(revealCmd)

	revealCmd.Flags().StringVarP(&revealFlags.Image, "image-path", "i", "", "Path to stego image (required)")
	revealCmd.MarkFlagRequired("image-path")
	revealCmd.Flags().StringVarP(&revealFlags.Out, "output", "o", "", "Write the payload to this path instead of stdout")
	revealCmd.Flags().StringVarP(&revealFlags.Mode, "mode", "s", "auto", "Force interpretation: auto, lsb, dct")
}
