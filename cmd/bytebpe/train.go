package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bytebpe/internal/pkg/bytebpe/bpe"
	"bytebpe/internal/pkg/bytebpe/config"
	"bytebpe/internal/pkg/bytebpe/store"
)

func (a *app) newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train [text]",
		Short: "Learn merges from a text corpus and store the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			text, err := config.ReadText(cmd.Flags(), args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			text = a.cfg.Preprocessor().Process(text)

			tok, err := bpe.New(a.tokenizerOptions())
			if err != nil {
				return err
			}

			log.Info().
				Int("bytes", len(text)).
				Int("vocab_size", a.cfg.VocabSize).
				Msg("Training tokenizer...")
			startTime := time.Now()

			stats, err := tok.Train(ctx, text, a.cfg.VocabSize)
			if err != nil {
				return fmt.Errorf("failed to train tokenizer: %w", err)
			}

			log.Info().
				Dur("elapsed", time.Since(startTime)).
				Int("original_length", stats.OriginalLength).
				Int("final_length", stats.FinalLength).
				Str("compression", fmt.Sprintf("%.2fx", stats.CompressionRatio())).
				Int("merges", stats.MergesPerformed).
				Msg("Training complete")
			if stats.Exhausted {
				log.Warn().
					Int("requested", stats.MergesRequested).
					Int("performed", stats.MergesPerformed).
					Int("vocab_size", tok.VocabSize()).
					Msg("Ran out of pairs before reaching the requested vocabulary size")
			}

			model, err := store.FromTokenizer(tok)
			if err != nil {
				return err
			}
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Save(ctx, model); err != nil {
				return fmt.Errorf("failed to save model: %w", err)
			}

			log.Info().
				Str("driver", a.cfg.StoreDriver).
				Str("output", a.cfg.StorePath).
				Msg("Model saved successfully")
			return nil
		},
	}
	config.RegisterTrainFlags(cmd.Flags())
	config.RegisterInputFlags(cmd.Flags())
	return cmd
}
