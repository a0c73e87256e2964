package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stegasoo/stegasoo/pkg/stego"
)

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Manage channel keys",
}

var channelNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a fresh 256-bit channel key",
	Run: func(cmd *cobra.Command, args []string) {
		key, err := stego.NewChannelKey()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to generate channel key")
		}
		formatted, err := stego.FormatChannelKey(key)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to format channel key")
		}
		fmt.Println(formatted)
	},
}

func init() {
	rootCmd.AddCommand(channelCmd)
	channelCmd.AddCommand(channelNewCmd)
}
