package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/pdf_tools/internal/error_notificator"
	"github.com/Vovarama1992/pdf_tools/internal/pages"
	"github.com/Vovarama1992/pdf_tools/internal/pdf"
	"github.com/Vovarama1992/pdf_tools/internal/ports"
)

const (
	deliveryDownload = "download"
	deliveryStorage  = "storage"
)

type PDFHandler struct {
	pdfService *pdf.PDFService
	s3Service  ports.S3Service      // nil — хранилище не настроено
	history    ports.HistoryService // nil — без БД
	notifier   error_notificator.Notificator
	log        *logger.ZapLogger
	maxUpload  int64
}

func NewPDFHandler(
	pdfService *pdf.PDFService,
	s3Service ports.S3Service,
	history ports.HistoryService,
	notifier error_notificator.Notificator,
	log *logger.ZapLogger,
	maxUpload int64,
) *PDFHandler {
	return &PDFHandler{
		pdfService: pdfService,
		s3Service:  s3Service,
		history:    history,
		notifier:   notifier,
		log:        log,
		maxUpload:  maxUpload,
	}
}

func (h *PDFHandler) Merge(w http.ResponseWriter, r *http.Request) {
	inputs, mode, ok := h.parse(w, r, "files")
	if !ok {
		return
	}

	out, err := h.pdfService.Merge(r.Context(), inputs)
	if err != nil {
		h.fail(w, r, "merge", err)
		return
	}

	h.deliver(w, r, "merge", mode, inputs, []pdf.Output{*out})
}

func (h *PDFHandler) Split(w http.ResponseWriter, r *http.Request) {
	inputs, mode, ok := h.parse(w, r, "file")
	if !ok {
		return
	}
	if len(inputs) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one PDF file expected")
		return
	}

	var (
		outs []pdf.Output
		err  error
	)
	if r.FormValue("mode") == "individual" {
		outs, err = h.pdfService.SplitIndividual(r.Context(), inputs[0])
	} else {
		var ranges []pages.PageRange
		ranges, err = pages.ParseRanges(r.FormValue("ranges"))
		if err == nil {
			outs, err = h.pdfService.Split(r.Context(), inputs[0], ranges)
		}
	}
	if err != nil {
		h.fail(w, r, "split", err)
		return
	}

	h.deliver(w, r, "split", mode, inputs, outs)
}

func (h *PDFHandler) Compress(w http.ResponseWriter, r *http.Request) {
	inputs, mode, ok := h.parse(w, r, "file")
	if !ok {
		return
	}
	if len(inputs) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one PDF file expected")
		return
	}

	q, err := pdf.ParseQuality(r.FormValue("quality"))
	if err != nil {
		h.fail(w, r, "compress", err)
		return
	}

	out, err := h.pdfService.Compress(r.Context(), inputs[0], q)
	if err != nil {
		h.fail(w, r, "compress", err)
		return
	}

	h.deliver(w, r, "compress", mode, inputs, []pdf.Output{*out})
}

// Inspect отдаёт число страниц, чтобы UI мог подставить границы диапазонов.
func (h *PDFHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	inputs, _, ok := h.parse(w, r, "file")
	if !ok {
		return
	}
	if len(inputs) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one PDF file expected")
		return
	}

	n, err := h.pdfService.PageCount(r.Context(), inputs[0])
	if err != nil {
		h.fail(w, r, "inspect", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"name": inputs[0].Name, "pages": n})
}

// parse: лимит тела, multipart, файлы и режим выдачи. false — ответ уже записан.
func (h *PDFHandler) parse(w http.ResponseWriter, r *http.Request, field string) ([]pdf.Input, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", h.maxUpload))
			return nil, "", false
		}
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Error: err})
		writeError(w, http.StatusBadRequest, "invalid multipart: "+err.Error())
		return nil, "", false
	}
	mode := r.FormValue("delivery")
	switch mode {
	case "", deliveryDownload:
		mode = deliveryDownload
	case deliveryStorage:
		if h.s3Service == nil {
			writeError(w, http.StatusServiceUnavailable, "storage delivery is not configured")
			return nil, "", false
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown delivery %q (want download or storage)", mode))
		return nil, "", false
	}

	inputs, err := readPDFs(r, field)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "rejected upload", Error: err})
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, "", false
	}

	return inputs, mode, true
}

func (h *PDFHandler) deliver(w http.ResponseWriter, r *http.Request, op, mode string, inputs []pdf.Input, outs []pdf.Output) {
	if mode == deliveryDownload {
		archive := fmt.Sprintf("%s-%d.zip", op, time.Now().Unix())
		if err := writeDownload(w, archive, outs); err != nil {
			h.log.Log(logger.LogEntry{Level: "warn", Message: "download write failed", Error: err})
		}
		return
	}

	files := make([]storedFile, 0, len(outs))
	urls := make([]string, 0, len(outs))
	for _, o := range outs {
		url, err := h.s3Service.SavePDF(r.Context(), op, bytes.NewReader(o.Data), int64(len(o.Data)), o.FileName)
		if err != nil {
			h.log.Log(logger.LogEntry{Level: "error", Message: "failed to store " + o.FileName, Error: err})
			writeError(w, http.StatusBadGateway, "failed to store result: "+err.Error())
			return
		}
		files = append(files, storedFile{Name: o.FileName, URL: url, Pages: o.Pages})
		urls = append(urls, url)
	}

	resp := map[string]any{"files": files}
	if h.history != nil {
		// история вторична, её сбой не ломает ответ
		if id, err := h.history.Record(r.Context(), op, inputNames(inputs), urls); err == nil {
			resp["operation_id"] = id
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// notify: сбой канала уведомлений только логируем, ответ клиенту уже определён.
func (h *PDFHandler) notify(ctx context.Context, op string, err error) {
	if nErr := h.notifier.Notify(ctx, err, "operation="+op); nErr != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: op + ": notify failed", Error: nErr})
	}
}

// fail раскладывает ошибку по классам: ввод пользователя, библиотека, прочее.
func (h *PDFHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var engErr *pdf.EngineError

	switch {
	case errors.Is(err, pages.ErrInvalidRange),
		errors.Is(err, pages.ErrNoRanges),
		errors.Is(err, pages.ErrInvalidSyntax),
		errors.Is(err, pdf.ErrTooFewFiles),
		errors.Is(err, pdf.ErrUnknownQuality):
		h.log.Log(logger.LogEntry{Level: "warn", Message: op + ": bad request", Error: err})
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.As(err, &engErr):
		h.log.Log(logger.LogEntry{Level: "error", Message: op + ": pdf processing failed", Error: err})
		h.notify(r.Context(), op, err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, context.Canceled):
		h.log.Log(logger.LogEntry{Level: "warn", Message: op + ": client went away", Error: err})

	default:
		h.log.Log(logger.LogEntry{Level: "error", Message: op + ": internal error", Error: err})
		h.notify(r.Context(), op, err)
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}
