package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ragchat/internal/parser"
)

func newAskCmd() *cobra.Command {
	var (
		filePath string
		query    string
	)
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "One-shot question from the terminal, optionally against a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if query == "" {
				return fmt.Errorf("--query is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctrl, err := buildController(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s := ctrl.Create()
			defer ctrl.Delete(s.ID)

			if filePath != "" {
				doc, err := parser.ExtractFile(filePath)
				if err != nil {
					return err
				}
				count, err := ctrl.LoadDocument(ctx, s, doc)
				if err != nil {
					return err
				}
				log.Info().Str("document", doc.Name).Int("passages", count).Msg("document indexed")
			}

			answer, err := ctrl.Ask(ctx, s, query)
			if err != nil {
				return err
			}
			defer answer.Close()

			for {
				frag, err := answer.Recv()
				if errors.Is(err, io.EOF) {
					fmt.Println()
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Print(frag)
			}
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "Path to the document file")
	cmd.Flags().StringVar(&query, "query", "", "Question to ask")
	return cmd
}
