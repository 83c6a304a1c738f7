package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vrsandeep/docscan/internal/classify"
	"github.com/vrsandeep/docscan/internal/extract"
	"github.com/vrsandeep/docscan/internal/models"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <text-file>",
	Short: "Classify already recognized text and extract its fields",
	Long:  "Classify the OCR text in a file and run the regex extractor for its category. No OCR is performed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read text: %w", err)
	}

	result, err := classifyText(cmd.Context(), string(text))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func classifyText(ctx context.Context, text string) (models.Fields, error) {
	r := extract.NewRegistry()
	extract.RegisterRegex(r)

	category := classify.Category(text)
	fields := models.Fields{}
	if fn, ok := r.Lookup(category); ok {
		extracted, err := fn(ctx, extract.Input{Text: text})
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", category, err)
		}
		fields = extracted
	}
	fields[models.FieldCategory] = string(category)
	return fields, nil
}
