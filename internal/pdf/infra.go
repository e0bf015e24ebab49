package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/dustin/go-humanize"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

type pdfcpuDocument struct {
	name string
	data []byte
	ctx  *model.Context
}

func (d *pdfcpuDocument) Name() string   { return d.name }
func (d *pdfcpuDocument) PageCount() int { return d.ctx.PageCount }

type PdfcpuEngine struct{}

func NewPdfcpuEngine() *PdfcpuEngine {
	// без ~/.config/pdfcpu, всё в памяти
	api.DisableConfigDir()
	return &PdfcpuEngine{}
}

// pdfcpu пишет в Configuration (Cmd и т.п.), поэтому на каждый вызов — своя.
func (e *PdfcpuEngine) conf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func (e *PdfcpuEngine) Load(ctx context.Context, name string, data []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pctx, err := api.ReadContext(bytes.NewReader(data), e.conf())
	if err != nil {
		return nil, &EngineError{Op: "load", Name: name, Err: err}
	}
	if err := api.ValidateContext(pctx); err != nil {
		return nil, &EngineError{Op: "validate", Name: name, Err: err}
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return nil, &EngineError{Op: "load", Name: name, Err: err}
	}

	log.Printf("[pdf] loaded %q: %d pages, %s", name, pctx.PageCount, humanize.Bytes(uint64(len(data))))

	return &pdfcpuDocument{name: name, data: data, ctx: pctx}, nil
}

func (e *PdfcpuEngine) Merge(ctx context.Context, docs []Document, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rsc := make([]io.ReadSeeker, 0, len(docs))
	for _, d := range docs {
		pd, err := asPdfcpu(d)
		if err != nil {
			return err
		}
		rsc = append(rsc, bytes.NewReader(pd.data))
	}

	if err := api.MergeRaw(rsc, w, false, e.conf()); err != nil {
		return &EngineError{Op: "merge", Err: err}
	}
	return nil
}

func (e *PdfcpuEngine) Extract(ctx context.Context, doc Document, pageNumbers []int, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pd, err := asPdfcpu(doc)
	if err != nil {
		return err
	}

	out, err := pdfcpu.ExtractPages(pd.ctx, pageNumbers, false)
	if err != nil {
		return &EngineError{Op: "extract", Name: pd.name, Err: err}
	}
	if err := api.WriteContext(out, w); err != nil {
		return &EngineError{Op: "write", Name: pd.name, Err: err}
	}
	return nil
}

// Compress: scale < 1 уменьшает геометрию страниц, потом optimize.
// scale == 1 геометрию не меняет, для high делаем только optimize.
func (e *PdfcpuEngine) Compress(ctx context.Context, doc Document, scale float64, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pd, err := asPdfcpu(doc)
	if err != nil {
		return err
	}

	src := pd.data
	if scale > 0 && scale < 1 {
		res, err := pdfcpu.ParseResizeConfig(fmt.Sprintf("scale:%.2f", scale), types.POINTS)
		if err != nil {
			return &EngineError{Op: "compress", Name: pd.name, Err: err}
		}

		var resized bytes.Buffer
		if err := api.Resize(bytes.NewReader(src), &resized, nil, res, e.conf()); err != nil {
			return &EngineError{Op: "resize", Name: pd.name, Err: err}
		}
		src = resized.Bytes()
	}

	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(src), &out, e.conf()); err != nil {
		return &EngineError{Op: "optimize", Name: pd.name, Err: err}
	}

	log.Printf("[pdf] compressed %q: %s -> %s (scale %.2f)",
		pd.name, humanize.Bytes(uint64(len(pd.data))), humanize.Bytes(uint64(out.Len())), scale)

	_, err = w.Write(out.Bytes())
	return err
}

func asPdfcpu(d Document) (*pdfcpuDocument, error) {
	pd, ok := d.(*pdfcpuDocument)
	if !ok {
		return nil, fmt.Errorf("pdf: document %q was not loaded by pdfcpu engine", d.Name())
	}
	return pd, nil
}
