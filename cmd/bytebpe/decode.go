package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bytebpe/internal/pkg/bytebpe/config"
)

func (a *app) newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [ids...]",
		Short: "Convert token ids back into text",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := a.loadTokenizer(cmd.Context())
			if err != nil {
				return err
			}

			input, err := config.ReadText(cmd.Flags(), args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			ids, err := parseIDs(input)
			if err != nil {
				return err
			}

			text, err := tok.Decode(ids)
			if err != nil {
				return fmt.Errorf("failed to decode: %w", err)
			}
			log.Debug().Int("tokens", len(ids)).Int("bytes", len(text)).Msg("Decoded ids")

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprint(out, text); err != nil {
				return err
			}
			if !strings.HasSuffix(text, "\n") {
				_, err = fmt.Fprintln(out)
			}
			return err
		},
	}
	config.RegisterInputFlags(cmd.Flags())
	return cmd
}
