package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"bytebpe/internal/pkg/bytebpe/config"
)

func (a *app) newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [text]",
		Short: "Show the learned merges, or how a text is split into tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := a.loadTokenizer(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			text, _ := cmd.Flags().GetString("text")
			file, _ := cmd.Flags().GetString("file")
			if text != "" || file != "" || len(args) > 0 {
				input, err := config.ReadText(cmd.Flags(), args, cmd.InOrStdin())
				if err != nil {
					return err
				}
				ids := tok.Encode(a.cfg.Preprocessor().Process(input))
				pieces, err := tok.DecodeTokens(ids)
				if err != nil {
					return err
				}

				table := newTable(cmd, []string{"POS", "ID", "TOKEN"})
				for i, id := range ids {
					table.Append([]string{strconv.Itoa(i), strconv.Itoa(id), strconv.Quote(pieces[i])})
				}
				table.Render()
				return nil
			}

			limit, _ := cmd.Flags().GetInt("limit")
			merges := tok.Merges()
			fmt.Fprintf(out, "vocab size: %d\nmerges: %d\n\n", tok.VocabSize(), len(merges))
			if limit > 0 && limit < len(merges) {
				merges = merges[:limit]
			}

			table := newTable(cmd, []string{"RANK", "ID", "PAIR", "BYTES"})
			for rank, m := range merges {
				b, err := tok.TokenBytes(m.ID)
				if err != nil {
					return err
				}
				table.Append([]string{
					strconv.Itoa(rank),
					strconv.Itoa(m.ID),
					m.Pair.String(),
					printable(b),
				})
			}
			table.Render()
			return nil
		},
	}
	config.RegisterInputFlags(cmd.Flags())
	cmd.Flags().Int("limit", 20, "Number of merges to list (0 lists all)")
	return cmd
}

func newTable(cmd *cobra.Command, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoFormatHeaders(false)
	return table
}

// printable escapes control and non-ASCII bytes so partial UTF-8 sequences
// stay readable.
func printable(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for _, c := range b {
		switch {
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c >= 32 && c < 127:
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, `\x%02x`, c)
		}
	}
	return sb.String()
}
