package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/stegasoo/stegasoo/pkg/stego"
)

var (
	concealCreds credFlags
	concealFlags struct {
		Image    string
		Msg      string
		File     string
		Out      string
		Mode     string
		Strategy string
		Quality  int
		Compress bool
	}
)

var concealCmd = &cobra.Command{
	Use:   "conceal",
	Short: "Conceal an encrypted payload in a carrier image",
	Run: func(cmd *cobra.Command, args []string) {
		if concealFlags.Msg != "" && concealFlags.File != "" {
			log.Fatal().Msg("message and file flags cannot both be provided")
		}
		if concealFlags.Msg == "" && concealFlags.File == "" {
			log.Fatal().Msg("either a message or a file is required")
		}

		digest, creds, kdf, err := concealCreds.resolve()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to resolve credentials")
		}

		payload := stego.Payload{Data: []byte(concealFlags.Msg)}
		if concealFlags.File != "" {
			data, err := os.ReadFile(concealFlags.File)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to read input file")
			}
			payload = stego.Payload{Filename: filepath.Base(concealFlags.File), Data: data}
		}
		packed, err := stego.PackPayload(payload, concealFlags.Compress)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to pack payload")
		}

		carrier, err := os.ReadFile(concealFlags.Image)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read carrier image")
		}

		opts := stego.EmbedOptions{
			JPEGQuality: concealFlags.Quality,
			KDF:         kdf,
		}
		switch concealFlags.Mode {
		case "lsb":
			opts.Mode = stego.ModeLSB
		case "dct":
			opts.Mode = stego.ModeDCT
		case "auto":
		default:
			log.Fatal().Str("mode", concealFlags.Mode).Msg("mode must be auto, lsb, or dct")
		}
		switch concealFlags.Strategy {
		case "auto":
		case "recompute":
			opts.Strategy = stego.StrategyRecompute
		case "direct":
			opts.Strategy = stego.StrategyDirect
		default:
			log.Fatal().Str("strategy", concealFlags.Strategy).Msg("strategy must be auto, recompute, or direct")
		}

		var bar *progressbar.ProgressBar
		opts.Progress = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions64(int64(total),
					progressbar.OptionSetDescription("encoding"),
					progressbar.OptionSetWriter(os.Stderr))
			}
			bar.Set(done)
		}

		out, err := stego.Embed(carrier, packed, digest, creds, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to conceal payload")
		}

		if concealFlags.Out == "" {
			if err := os.MkdirAll("output", 0755); err != nil {
				log.Fatal().Err(err).Msg("Failed to create default output directory")
			}
			concealFlags.Out = filepath.Join("output", "hidden.png")
		} else if err := os.MkdirAll(filepath.Dir(concealFlags.Out), 0755); err != nil {
			log.Fatal().Err(err).Msg("Failed to create output directory")
		}
		if err := os.WriteFile(concealFlags.Out, out, 0644); err != nil {
			log.Fatal().Err(err).Msg("Failed to write stego image")
		}
		log.Info().Str("output", concealFlags.Out).Int("payload", len(packed)).Msg("Concealed payload")
	},
}

func init() {
	rootCmd.AddCommand(concealCmd)
	concealCreds.register(concealCmd)

	concealCmd.Flags().StringVarP(&concealFlags.Image, "image-path", "i", "", "Path to carrier image (required)")
	concealCmd.MarkFlagRequired("image-path")
	concealCmd.Flags().StringVarP(&concealFlags.Msg, "message", "m", "", "Message to conceal")
	concealCmd.Flags().StringVarP(&concealFlags.File, "file", "f", "", "Path to file to conceal (overrides message)")
	concealCmd.Flags().StringVarP(&concealFlags.Out, "output", "o", "", "Output path for the stego image")
	concealCmd.Flags().StringVarP(&concealFlags.Mode, "mode", "s", "auto", "Embedding mode: auto, lsb, dct")
	concealCmd.Flags().StringVar(&concealFlags.Strategy, "dct-strategy", "auto", "DCT strategy: auto, recompute, direct")
	concealCmd.Flags().IntVarP(&concealFlags.Quality, "jpeg-quality", "q", 0, "Emit JPEG at this quality for recomputed DCT (0 = PNG)")
	concealCmd.Flags().BoolVarP(&concealFlags.Compress, "compress", "z", true, "Compress data before embedding to save space")
}
