package delivery

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Vovarama1992/pdf_tools/internal/pdf"
	"github.com/Vovarama1992/pdf_tools/internal/pdf/pdftest"
	"github.com/Vovarama1992/pdf_tools/internal/ports"
)

// fakeEngine считает страницы по объектам /Type /Page и на выход пишет
// настоящий PDF с нужным числом страниц.
type fakeEngine struct{}

type fakeDoc struct {
	name  string
	pages int
}

func (d *fakeDoc) Name() string   { return d.name }
func (d *fakeDoc) PageCount() int { return d.pages }

func (fakeEngine) Load(_ context.Context, name string, data []byte) (pdf.Document, error) {
	if bytes.Contains(data, []byte("BROKEN")) {
		return nil, &pdf.EngineError{Op: "load", Name: name, Err: errors.New("malformed xref")}
	}
	return &fakeDoc{name: name, pages: bytes.Count(data, []byte("/Type /Page "))}, nil
}

func (fakeEngine) Merge(_ context.Context, docs []pdf.Document, w io.Writer) error {
	total := 0
	for _, d := range docs {
		total += d.PageCount()
	}
	_, err := w.Write(pdftest.Document(total))
	return err
}

func (fakeEngine) Extract(_ context.Context, _ pdf.Document, pageNumbers []int, w io.Writer) error {
	_, err := w.Write(pdftest.Document(len(pageNumbers)))
	return err
}

func (fakeEngine) Compress(_ context.Context, doc pdf.Document, _ float64, w io.Writer) error {
	_, err := w.Write(pdftest.Document(doc.PageCount()))
	return err
}

type fakeStorage struct {
	saved []string
	err   error
}

func (f *fakeStorage) ObjectKey(operation, filename string) string { return operation + "/" + filename }

func (f *fakeStorage) SavePDF(_ context.Context, operation string, _ io.Reader, _ int64, filename string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, filename)
	return "https://cdn.example.com/" + operation + "/" + filename, nil
}

func (f *fakeStorage) Sweep(context.Context, time.Duration) (int, error) { return 0, nil }

type fakeHistory struct {
	kinds []string
}

func (f *fakeHistory) Record(_ context.Context, kind string, _, _ []string) (string, error) {
	f.kinds = append(f.kinds, kind)
	return "op-1", nil
}

func (f *fakeHistory) ListRecent(context.Context, int) ([]ports.Operation, error) {
	return []ports.Operation{{ID: "op-1", Kind: "merge"}}, nil
}

func (f *fakeHistory) Prune(context.Context, time.Duration) (int64, error) { return 0, nil }

type nopNotifier struct {
	calls int
	err   error
}

func (n *nopNotifier) Notify(context.Context, error, string) error {
	n.calls++
	return n.err
}

type testEnv struct {
	router   http.Handler
	storage  *fakeStorage
	history  *fakeHistory
	notifier *nopNotifier
	guard    *InFlightGuard
	logs     *observer.ObservedLogs
}

func newTestEnv(t *testing.T, withStorage bool) *testEnv {
	t.Helper()

	env := &testEnv{
		history:  &fakeHistory{},
		notifier: &nopNotifier{},
		guard:    NewInFlightGuard(),
	}

	var storage ports.S3Service
	if withStorage {
		env.storage = &fakeStorage{}
		storage = env.storage
	}

	core, logs := observer.New(zap.DebugLevel)
	env.logs = logs
	zl := logger.NewZapLogger(zap.New(core).Sugar())
	h := NewPDFHandler(pdf.NewPDFService(fakeEngine{}), storage, env.history, env.notifier, zl, 1<<20)

	r := chi.NewRouter()
	RegisterRoutes(r, h, NewHistoryHandler(env.history, zl), env.guard, 0)
	env.router = r
	return env
}

type part struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func pdfPart(field, name string, pages int) part {
	return part{field: field, filename: name, contentType: "application/pdf", data: pdftest.Document(pages)}
}

func newUpload(t *testing.T, path string, fields map[string]string, parts ...part) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, p := range parts {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.filename))
		hdr.Set("Content-Type", p.contentType)
		pw, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = pw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestMerge_Download(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, newUpload(t, "/api/pdf/merge", nil,
		pdfPart("files", "a.pdf", 2), pdfPart("files", "b.pdf", 3)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "5", rec.Header().Get("X-Page-Count"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "merged-")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestMerge_SingleFileRejected(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, newUpload(t, "/api/pdf/merge", nil, pdfPart("files", "a.pdf", 2)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "at least 2")
}

func TestMerge_BrokenFileAbortsWholeMerge(t *testing.T) {
	env := newTestEnv(t, false)

	broken := part{field: "files", filename: "bad.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4 BROKEN")}
	rec := serve(env, newUpload(t, "/api/pdf/merge", nil, pdfPart("files", "a.pdf", 2), broken))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, errorBody(t, rec), "bad.pdf")
	assert.Equal(t, 1, env.notifier.calls)
}

func TestMerge_NotifyFailureIsLogged(t *testing.T) {
	env := newTestEnv(t, false)
	env.notifier.err = errors.New("telegram down")

	broken := part{field: "files", filename: "bad.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4 BROKEN")}
	rec := serve(env, newUpload(t, "/api/pdf/merge", nil, pdfPart("files", "a.pdf", 2), broken))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	entries := env.logs.FilterMessage("merge: notify failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "telegram down", entries[0].ContextMap()["error"])
}

func TestUpload_RejectsNonPDF(t *testing.T) {
	tests := []struct {
		name string
		p    part
	}{
		{"wrong mime", part{field: "file", filename: "a.png", contentType: "image/png", data: []byte("\x89PNG")}},
		{"pdf mime, not pdf bytes", part{field: "file", filename: "a.pdf", contentType: "application/pdf", data: []byte("hello")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, false)
			rec := serve(env, newUpload(t, "/api/pdf/compress", nil, tt.p))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, errorBody(t, rec), "only PDF files are accepted")
		})
	}
}

func TestUpload_MissingFile(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, newUpload(t, "/api/pdf/split", map[string]string{"ranges": "1"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrNoFile.Error(), errorBody(t, rec))
}

func TestUpload_TooLarge(t *testing.T) {
	env := newTestEnv(t, false)

	big := part{field: "file", filename: "big.pdf", contentType: "application/pdf",
		data: append([]byte("%PDF"), bytes.Repeat([]byte("x"), 2<<20)...)}
	rec := serve(env, newUpload(t, "/api/pdf/compress", nil, big))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSplit_RangesToZip(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, newUpload(t, "/api/pdf/split", map[string]string{"ranges": "1-2, 4"},
		pdfPart("file", "doc.pdf", 5)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Contains(t, zr.File[0].Name, "split-1-1-2-")
	assert.Contains(t, zr.File[1].Name, "split-2-page-4-")
}

func TestSplit_RepeatedRangesKeepEveryZipEntry(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, newUpload(t, "/api/pdf/split", map[string]string{"ranges": "1-2,1-2"},
		pdfPart("file", "doc.pdf", 5)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.NotEqual(t, zr.File[0].Name, zr.File[1].Name)
}

func TestSplit_SingleRangeIsPlainPDF(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, newUpload(t, "/api/pdf/split", map[string]string{"ranges": "2-3"},
		pdfPart("file", "doc.pdf", 5)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "2", rec.Header().Get("X-Page-Count"))
}

func TestSplit_InvalidRanges(t *testing.T) {
	tests := []struct {
		ranges  string
		wantMsg string
	}{
		{"3-2", "start page is after end page"},
		{"1-6", "document has 5 pages"},
		{"abc", "invalid page specification"},
		{"", "invalid page specification"},
	}

	for _, tt := range tests {
		t.Run(tt.ranges, func(t *testing.T) {
			env := newTestEnv(t, false)
			rec := serve(env, newUpload(t, "/api/pdf/split", map[string]string{"ranges": tt.ranges},
				pdfPart("file", "doc.pdf", 5)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, errorBody(t, rec), tt.wantMsg)
		})
	}
}

func TestSplit_Individual(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, newUpload(t, "/api/pdf/split", map[string]string{"mode": "individual"},
		pdfPart("file", "doc.pdf", 3)))

	require.Equal(t, http.StatusOK, rec.Code)
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)
	for i, f := range zr.File {
		assert.Contains(t, f.Name, fmt.Sprintf("split-%d-page-%d-", i+1, i+1))
	}
}

func TestSplit_TwoFilesRejected(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, newUpload(t, "/api/pdf/split", map[string]string{"ranges": "1"},
		pdfPart("file", "a.pdf", 2), pdfPart("file", "b.pdf", 2)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompress(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, newUpload(t, "/api/pdf/compress", map[string]string{"quality": "low"},
		pdfPart("file", "doc.pdf", 4)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "4", rec.Header().Get("X-Page-Count"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "compressed-")
}

func TestCompress_UnknownQuality(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, newUpload(t, "/api/pdf/compress", map[string]string{"quality": "ultra"},
		pdfPart("file", "doc.pdf", 1)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInspect(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, newUpload(t, "/api/pdf/inspect", nil, pdfPart("file", "doc.pdf", 7)))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Name  string `json:"name"`
		Pages int    `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "doc.pdf", body.Name)
	assert.Equal(t, 7, body.Pages)
}

func TestStorageDelivery(t *testing.T) {
	env := newTestEnv(t, true)

	rec := serve(env, newUpload(t, "/api/pdf/split", map[string]string{"ranges": "1,2", "delivery": "storage"},
		pdfPart("file", "doc.pdf", 2)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Files       []storedFile `json:"files"`
		OperationID string       `json:"operation_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Files, 2)
	assert.Contains(t, body.Files[0].URL, "https://cdn.example.com/split/split-1-page-1-")
	assert.Equal(t, 1, body.Files[1].Pages)
	assert.Equal(t, "op-1", body.OperationID)
	assert.Equal(t, []string{"split"}, env.history.kinds)
	assert.Len(t, env.storage.saved, 2)
}

func TestStorageDelivery_UploadFailure(t *testing.T) {
	env := newTestEnv(t, true)
	env.storage.err = errors.New("bucket unavailable")

	rec := serve(env, newUpload(t, "/api/pdf/compress", map[string]string{"delivery": "storage"},
		pdfPart("file", "doc.pdf", 1)))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, env.history.kinds)
}

func TestStorageDelivery_NotConfigured(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, newUpload(t, "/api/pdf/compress", map[string]string{"delivery": "storage"},
		pdfPart("file", "doc.pdf", 1)))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownDelivery(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, newUpload(t, "/api/pdf/compress", map[string]string{"delivery": "email"},
		pdfPart("file", "doc.pdf", 1)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInFlightGuard_RejectsSecondOperation(t *testing.T) {
	env := newTestEnv(t, false)
	require.True(t, env.guard.acquire("id:client-1"))

	req := newUpload(t, "/api/pdf/compress", nil, pdfPart("file", "doc.pdf", 1))
	req.Header.Set(clientIDHeader, "client-1")
	rec := serve(env, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// другой клиент не блокируется
	req = newUpload(t, "/api/pdf/compress", nil, pdfPart("file", "doc.pdf", 1))
	req.Header.Set(clientIDHeader, "client-2")
	assert.Equal(t, http.StatusOK, serve(env, req).Code)

	env.guard.release("id:client-1")
	req = newUpload(t, "/api/pdf/compress", nil, pdfPart("file", "doc.pdf", 1))
	req.Header.Set(clientIDHeader, "client-1")
	assert.Equal(t, http.StatusOK, serve(env, req).Code)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "ip:10.0.0.1", clientKey(req))

	req.Header.Set(clientIDHeader, "abc")
	assert.Equal(t, "id:abc", clientKey(req))
}

func TestHistoryList(t *testing.T) {
	env := newTestEnv(t, false)

	rec := serve(env, httptest.NewRequest(http.MethodGet, "/api/history?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var ops []ports.Operation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ops))
	require.Len(t, ops, 1)
	assert.Equal(t, "merge", ops[0].Kind)

	rec = serve(env, httptest.NewRequest(http.MethodGet, "/api/history?limit=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
