package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.pdf>...",
	Short: "Print the page count of each file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := readInputs(args)
		if err != nil {
			return err
		}

		svc := newService()
		for i, in := range inputs {
			n, err := svc.PageCount(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%d pages\n", args[i], n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
