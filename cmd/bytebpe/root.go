package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"bytebpe/internal/pkg/bytebpe/bpe"
	"bytebpe/internal/pkg/bytebpe/config"
	"bytebpe/internal/pkg/bytebpe/store"
)

type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "bytebpe",
		Short:         "Train and run byte-level BPE tokenizers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to parse configuration: %w", err)
			}
			if err := setupLogging(cfg); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			a.cfg = cfg

			log.Debug().
				Str("store_driver", cfg.StoreDriver).
				Str("store_path", cfg.StorePath).
				Str("normalize", cfg.Normalize).
				Int("cache_size", cfg.CacheSize).
				Msg("Configuration loaded")
			return nil
		},
	}
	config.RegisterGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		a.newTrainCmd(),
		a.newEncodeCmd(),
		a.newDecodeCmd(),
		a.newInspectCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "bytebpe %s\n", Version)
			return err
		},
	}
}

func (a *app) tokenizerOptions() bpe.Options {
	logger := log.Logger
	return bpe.Options{
		CacheSize:    a.cfg.CacheSize,
		MinFrequency: a.cfg.MinFrequency,
		Workers:      a.cfg.Workers,
		Logger:       &logger,
	}
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	s, err := store.Open(ctx, a.cfg.StoreDriver, a.cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open model store: %w", err)
	}
	return s, nil
}

func (a *app) loadTokenizer(ctx context.Context) (*bpe.Tokenizer, error) {
	s, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	model, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	tok, err := model.Tokenizer(a.tokenizerOptions())
	if err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", a.cfg.StorePath, err)
	}

	log.Debug().
		Str("model", a.cfg.StorePath).
		Int("vocab_size", tok.VocabSize()).
		Int("merges", tok.NumMerges()).
		Msg("Model loaded")
	return tok, nil
}
