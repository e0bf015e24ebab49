// Package main is the entry point for the pdftool CLI: merge, split and
// compress PDF files on the local disk with the same engine the server uses.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Vovarama1992/pdf_tools/internal/pdf"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "pdftool",
	Short: "Merge, split and compress PDF files",
	Long: `pdftool runs the pdf_tools operations against local files.

Settings can come from flags, from PDFTOOL_* environment variables or from
a pdftool.yaml config file (./ or ~/.config/pdftool/).`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of pdftool",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pdftool %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdftool.yaml or ~/.config/pdftool/pdftool.yaml)")
	rootCmd.PersistentFlags().String("out-dir", ".", "directory for generated files")
	_ = viper.BindPFlag("out_dir", rootCmd.PersistentFlags().Lookup("out-dir"))

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdftool")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdftool"))
		}
	}

	viper.SetEnvPrefix("PDFTOOL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newService() *pdf.PDFService {
	return pdf.NewPDFService(pdf.NewPdfcpuEngine())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
