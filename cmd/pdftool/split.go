package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vovarama1992/pdf_tools/internal/pages"
	"github.com/Vovarama1992/pdf_tools/internal/pdf"
)

var splitCmd = &cobra.Command{
	Use:   "split <file.pdf>",
	Short: "Extract page ranges into separate PDF files",
	Long: `Split writes one PDF per range, in the order the ranges are given.
Ranges are 1-based and inclusive: --ranges "1-3, 5". Overlapping ranges are
allowed. With --individual every page becomes its own file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		individual, _ := cmd.Flags().GetBool("individual")
		spec, _ := cmd.Flags().GetString("ranges")
		if !individual && spec == "" {
			return fmt.Errorf("either --ranges or --individual is required")
		}

		inputs, err := readInputs(args)
		if err != nil {
			return err
		}

		var outs []pdf.Output
		if individual {
			outs, err = newService().SplitIndividual(cmd.Context(), inputs[0])
		} else {
			var ranges []pages.PageRange
			if ranges, err = pages.ParseRanges(spec); err != nil {
				return err
			}
			outs, err = newService().Split(cmd.Context(), inputs[0], ranges)
		}
		if err != nil {
			return err
		}
		return writeOutputs(outs)
	},
}

func init() {
	splitCmd.Flags().String("ranges", "", `page ranges, e.g. "1-3, 5"`)
	splitCmd.Flags().Bool("individual", false, "write every page as a separate file")

	rootCmd.AddCommand(splitCmd)
}
