package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bytebpe/internal/pkg/bytebpe/bpe"
	"bytebpe/internal/pkg/bytebpe/config"
)

func (a *app) newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Convert text into token ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := a.loadTokenizer(cmd.Context())
			if err != nil {
				return err
			}

			text, err := config.ReadText(cmd.Flags(), args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			text = a.cfg.Preprocessor().Process(text)

			ids := tok.Encode(text)
			log.Debug().
				Str("text", truncateText(text, 50)).
				Int("bytes", len(text)).
				Int("tokens", len(ids)).
				Msg("Encoded text")

			_, err = fmt.Fprintln(cmd.OutOrStdout(), formatIDs(ids))
			return err
		},
	}
	config.RegisterInputFlags(cmd.Flags())
	return cmd
}

func formatIDs(ids []bpe.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}

// parseIDs accepts ids separated by whitespace or commas, optionally wrapped
// in brackets.
func parseIDs(s string) ([]bpe.ID, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', ',', '[', ']':
			return true
		}
		return false
	})
	ids := make([]bpe.ID, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid token id %q", f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
