package main

import (
	"github.com/spf13/cobra"

	"clipsight/internal/extract"
	"clipsight/internal/timeline"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var purposeFlag string
	var strict bool

	cmd := &cobra.Command{
		Use:   "extract <document>",
		Short: "Build a purpose-specific context object from a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			purpose, err := extract.ParsePurpose(purposeFlag)
			if err != nil {
				return err
			}
			extractor, err := ctx.newExtractor(strict)
			if err != nil {
				return err
			}
			doc, err := timeline.Load(args[0])
			if err != nil {
				return err
			}
			contextObj, err := extractor.Extract(doc, purpose)
			if err != nil {
				return err
			}
			return writeJSON(cmd, contextObj)
		},
	}

	cmd.Flags().StringVarP(&purposeFlag, "purpose", "p", string(extract.PurposeSummary), "Extraction purpose")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject structurally invalid documents")
	return cmd
}
