package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Vovarama1992/pdf_tools/internal/pdf"
)

func readInputs(paths []string) ([]pdf.Input, error) {
	inputs := make([]pdf.Input, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, pdf.Input{Name: filepath.Base(p), Data: data})
	}
	return inputs, nil
}

// writeOutputs пишет результаты в out_dir и печатает по строке на файл.
func writeOutputs(outs []pdf.Output) error {
	dir := viper.GetString("out_dir")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, o := range outs {
		path := filepath.Join(dir, o.FileName)
		if err := os.WriteFile(path, o.Data, 0o644); err != nil {
			return err
		}
		fmt.Printf("%s\t%d pages\t%s\n", path, o.Pages, humanize.Bytes(uint64(len(o.Data))))
	}
	return nil
}
