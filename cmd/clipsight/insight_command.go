package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipsight/internal/extract"
	"clipsight/internal/services/llm"
	"clipsight/internal/timeline"
)

func newInsightCommand(ctx *commandContext) *cobra.Command {
	var purposeFlag string
	var strict bool
	var save bool

	cmd := &cobra.Command{
		Use:   "insight <document>",
		Short: "Extract a context object and send it to the LLM for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("no LLM API key configured; set llm.api_key, CLIPSIGHT_LLM_API_KEY, or OPENROUTER_API_KEY")
			}

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

			client := llm.NewClient(cfg.LLM)
			insight, err := client.AnalyzeContext(cmd.Context(), purpose, contextObj)
			if err != nil {
				return err
			}

			if save {
				store, err := ctx.openStore()
				if err != nil {
					return err
				}
				defer store.Close()
				if _, err := store.SaveInsight(cmd.Context(), doc.VideoID, string(purpose), insight.Model, insight.Payload); err != nil {
					return err
				}
			}
			return writeJSON(cmd, insight)
		},
	}

	cmd.Flags().StringVarP(&purposeFlag, "purpose", "p", string(extract.PurposeSummary), "Extraction purpose")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject structurally invalid documents")
	cmd.Flags().BoolVar(&save, "save", true, "Store the insight in the report database")
	return cmd
}
