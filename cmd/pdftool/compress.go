package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Vovarama1992/pdf_tools/internal/pdf"
)

var compressCmd = &cobra.Command{
	Use:   "compress <file.pdf>",
	Short: "Rescale pages and re-save a PDF",
	Long: `Compress shrinks page geometry according to --quality (low, medium, high)
and re-serializes the document. Embedded images are not re-encoded, so the
output is not guaranteed to be smaller than the input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := pdf.ParseQuality(viper.GetString("quality"))
		if err != nil {
			return err
		}

		inputs, err := readInputs(args)
		if err != nil {
			return err
		}

		out, err := newService().Compress(cmd.Context(), inputs[0], q)
		if err != nil {
			return err
		}
		return writeOutputs(outputsOf(out))
	},
}

func init() {
	compressCmd.Flags().String("quality", string(pdf.QualityMedium), "low, medium or high")
	_ = viper.BindPFlag("quality", compressCmd.Flags().Lookup("quality"))

	rootCmd.AddCommand(compressCmd)
}

func outputsOf(o *pdf.Output) []pdf.Output {
	return []pdf.Output{*o}
}
