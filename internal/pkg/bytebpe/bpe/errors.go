package bpe

import "errors"

var (
	ErrInvalidVocabSize  = errors.New("vocab size must be greater than 256")
	ErrUnknownID         = errors.New("unknown token id")
	ErrDuplicateID       = errors.New("token id already in vocabulary")
	ErrDuplicatePairOrID = errors.New("pair or id already recorded in merge table")
	ErrAlreadyTrained    = errors.New("tokenizer already holds merges")
	ErrInvalidMerge      = errors.New("invalid merge")
)
