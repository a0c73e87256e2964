package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stegasoo/stegasoo/pkg/stego"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage RSA second-factor keys",
}

var keysGenFlags struct {
	Bits   int
	OutDir string
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an RSA key pair for the second factor",
	Run: func(cmd *cobra.Command, args []string) {
		if keysGenFlags.Bits < 2048 {
			log.Fatal().Msg("key size must be at least 2048 bits")
		}
		if err := stego.GenerateRSAKeys(keysGenFlags.Bits, keysGenFlags.OutDir); err != nil {
			log.Fatal().Err(err).Msg("Failed to generate keys")
		}
		log.Info().Str("dir", keysGenFlags.OutDir).Int("bits", keysGenFlags.Bits).Msg("Key pair written")
	},
}

var keysVerifyFlags struct {
	PrivateKey string
	PublicKey  string
}

var keysVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that a private key's challenge signature matches a public key",
	Run: func(cmd *cobra.Command, args []string) {
		sig, err := stego.SignChallenge(keysVerifyFlags.PrivateKey)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to sign challenge")
		}
		if err := stego.VerifyChallenge(keysVerifyFlags.PublicKey, sig); err != nil {
			log.Error().Err(err).Msg("Signature does not verify")
			os.Exit(1)
		}
		log.Info().Msg("Key pair verified")
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysGenerateCmd)
	keysCmd.AddCommand(keysVerifyCmd)

	keysGenerateCmd.Flags().IntVarP(&keysGenFlags.Bits, "bits", "b", 2048, "RSA key size in bits")
	keysGenerateCmd.Flags().StringVarP(&keysGenFlags.OutDir, "out-dir", "o", ".", "Directory for private.pem and public.pem")

	keysVerifyCmd.Flags().StringVarP(&keysVerifyFlags.PrivateKey, "private", "k", "", "Path to private key (required)")
	keysVerifyCmd.MarkFlagRequired("private")
	keysVerifyCmd.Flags().StringVarP(&keysVerifyFlags.PublicKey, "public", "u", "", "Path to public key (required)")
	keysVerifyCmd.MarkFlagRequired("public")
}
