package preprocess

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type Mode string

const (
	ModeNone Mode = "none"
	ModeNFC  Mode = "nfc"
	ModeNFKC Mode = "nfkc"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Preprocessor prepares text before it is trained on or encoded. The same
// settings must be used for training and encoding.
type Preprocessor struct {
	mode               Mode
	collapseWhitespace bool
}

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeNone:
		return ModeNone, nil
	case ModeNFC, ModeNFKC:
		return m, nil
	default:
		return "", fmt.Errorf("unknown normalization mode %q (want none, nfc or nfkc)", s)
	}
}

func NewPreprocessor(mode Mode, collapseWhitespace bool) *Preprocessor {
	return &Preprocessor{
		mode:               mode,
		collapseWhitespace: collapseWhitespace,
	}
}

func (p *Preprocessor) Process(text string) string {
	switch p.mode {
	case ModeNFC:
		text = norm.NFC.String(text)
	case ModeNFKC:
		text = norm.NFKC.String(text)
	}
	if p.collapseWhitespace {
		text = whitespaceRe.ReplaceAllString(text, " ")
	}
	return text
}
