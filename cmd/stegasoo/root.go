package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stegasoo/stegasoo/pkg/stego"
)

// Global flags
var (
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "stegasoo",
	Short: "Hide encrypted payloads in images",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// credFlags are the authentication inputs shared by conceal and reveal.
type credFlags struct {
	Ref        string
	Pass       string
	PIN        string
	KeyPath    string
	ChannelKey string
	Fallback   bool
}

func (f *credFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Ref, "reference", "r", "", "Path to the shared reference photo (required)")
	cmd.MarkFlagRequired("reference")
	cmd.Flags().StringVarP(&f.Pass, "passphrase", "p", "", "Passphrase (required)")
	cmd.MarkFlagRequired("passphrase")
	cmd.Flags().StringVar(&f.PIN, "pin", "", "Numeric PIN second factor")
	cmd.Flags().StringVarP(&f.KeyPath, "key-path", "k", "", "Path to RSA private key used as second factor")
	cmd.Flags().StringVar(&f.ChannelKey, "channel-key", "", "Channel key (hyphenated base32)")
	cmd.Flags().BoolVar(&f.Fallback, "kdf-fallback", false, "Use the iterated-HMAC KDF instead of Argon2id")
}

func (f *credFlags) resolve() (stego.ReferenceDigest, stego.Credentials, stego.KDFPrimitive, error) {
	var creds stego.Credentials
	creds.Passphrase = f.Pass
	creds.PIN = f.PIN

	if creds.PIN != "" && f.KeyPath != "" {
		return stego.ReferenceDigest{}, creds, 0, fmt.Errorf("pin and key-path cannot both be provided")
	}
	if f.KeyPath != "" {
		sig, err := stego.SignChallenge(f.KeyPath)
		if err != nil {
			return stego.ReferenceDigest{}, creds, 0, err
		}
		creds.RSASignature = sig
	}
	if f.ChannelKey != "" {
		key, err := stego.ParseChannelKey(f.ChannelKey)
		if err != nil {
			return stego.ReferenceDigest{}, creds, 0, err
		}
		creds.ChannelKey = key
	}

	refBytes, err := os.ReadFile(f.Ref)
	if err != nil {
		return stego.ReferenceDigest{}, creds, 0, err
	}
	digest, err := stego.ComputeDigest(refBytes)
	if err != nil {
		return stego.ReferenceDigest{}, creds, 0, err
	}

	kdf := stego.KDFArgon2id
	if f.Fallback {
		kdf = stego.KDFPBKDF2
	}
	return digest, creds, kdf, nil
}
