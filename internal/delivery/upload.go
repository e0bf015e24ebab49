package delivery

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/Vovarama1992/pdf_tools/internal/pdf"
)

const (
	multipartMemory = 32 << 20
	pdfMimeType     = "application/pdf"
)

var (
	ErrNotPDF = errors.New("only PDF files are accepted")
	ErrNoFile = errors.New("no PDF file provided")
)

// readPDFs читает файлы поля field в порядке, в котором их прислал клиент.
func readPDFs(r *http.Request, field string) ([]pdf.Input, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, ErrNoFile
	}

	headers := r.MultipartForm.File[field]
	inputs := make([]pdf.Input, 0, len(headers))

	for _, fh := range headers {
		in, err := readPDF(fh)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func readPDF(fh *multipart.FileHeader) (pdf.Input, error) {
	mediaType, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil || mediaType != pdfMimeType {
		return pdf.Input{}, fmt.Errorf("%w: %q has type %q", ErrNotPDF, fh.Filename, fh.Header.Get("Content-Type"))
	}

	f, err := fh.Open()
	if err != nil {
		return pdf.Input{}, fmt.Errorf("open %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return pdf.Input{}, fmt.Errorf("read %q: %w", fh.Filename, err)
	}

	// MIME от клиента мало, смотрим сигнатуру
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return pdf.Input{}, fmt.Errorf("%w: %q does not start with a PDF header", ErrNotPDF, fh.Filename)
	}

	return pdf.Input{Name: fh.Filename, Data: data}, nil
}

func inputNames(inputs []pdf.Input) []string {
	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}
	return names
}
