package main

import (
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <a.pdf> <b.pdf> [more.pdf...]",
	Short: "Concatenate PDF files in the given order",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := readInputs(args)
		if err != nil {
			return err
		}

		out, err := newService().Merge(cmd.Context(), inputs)
		if err != nil {
			return err
		}
		return writeOutputs(outputsOf(out))
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
