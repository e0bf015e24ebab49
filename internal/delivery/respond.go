package delivery

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Vovarama1992/pdf_tools/internal/pdf"
)

type storedFile struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Pages int    `json:"pages"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDownload: один результат — сам PDF, несколько — zip в исходном порядке.
func writeDownload(w http.ResponseWriter, archiveName string, outputs []pdf.Output) error {
	if len(outputs) == 1 {
		o := outputs[0]
		w.Header().Set("Content-Type", pdfMimeType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", o.FileName))
		w.Header().Set("Content-Length", strconv.Itoa(len(o.Data)))
		w.Header().Set("X-Page-Count", strconv.Itoa(o.Pages))
		_, err := w.Write(o.Data)
		return err
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archiveName))

	zw := zip.NewWriter(w)
	for _, o := range outputs {
		f, err := zw.Create(o.FileName)
		if err != nil {
			return err
		}
		if _, err := f.Write(o.Data); err != nil {
			return err
		}
	}
	return zw.Close()
}
