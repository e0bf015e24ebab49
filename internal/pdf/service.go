package pdf

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/Vovarama1992/pdf_tools/internal/pages"
)

type PDFService struct {
	engine PDFEngine
	now    func() time.Time
}

func NewPDFService(e PDFEngine) *PDFService {
	return &PDFService{engine: e, now: time.Now}
}

func (s *PDFService) PageCount(ctx context.Context, in Input) (int, error) {
	doc, err := s.engine.Load(ctx, in.Name, in.Data)
	if err != nil {
		return 0, err
	}
	return doc.PageCount(), nil
}

// Merge склеивает файлы в порядке входа. Если хоть один не открылся — отменяем всё.
func (s *PDFService) Merge(ctx context.Context, inputs []Input) (*Output, error) {
	if len(inputs) < 2 {
		return nil, ErrTooFewFiles
	}

	docs := make([]Document, 0, len(inputs))
	total := 0
	for _, in := range inputs {
		doc, err := s.engine.Load(ctx, in.Name, in.Data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
		total += doc.PageCount()
	}

	var buf bytes.Buffer
	if err := s.engine.Merge(ctx, docs, &buf); err != nil {
		return nil, err
	}

	return &Output{
		FileName: fmt.Sprintf("merged-%d.pdf", s.now().Unix()),
		Data:     buf.Bytes(),
		Pages:    total,
	}, nil
}

// Split — по одному выходному PDF на каждый диапазон, порядок как на входе.
func (s *PDFService) Split(ctx context.Context, in Input, ranges []pages.PageRange) ([]Output, error) {
	doc, err := s.engine.Load(ctx, in.Name, in.Data)
	if err != nil {
		return nil, err
	}

	valid, err := pages.ValidateRanges(doc.PageCount(), ranges)
	if err != nil {
		return nil, err
	}

	return s.extractAll(ctx, doc, valid)
}

func (s *PDFService) SplitIndividual(ctx context.Context, in Input) ([]Output, error) {
	doc, err := s.engine.Load(ctx, in.Name, in.Data)
	if err != nil {
		return nil, err
	}

	valid, err := pages.ValidateRanges(doc.PageCount(), pages.IndividualPages(doc.PageCount()))
	if err != nil {
		return nil, err
	}

	return s.extractAll(ctx, doc, valid)
}

func (s *PDFService) extractAll(ctx context.Context, doc Document, ranges []pages.PageRange) ([]Output, error) {
	ts := s.now().Unix()
	outputs := make([]Output, 0, len(ranges))

	for i, r := range ranges {
		var buf bytes.Buffer
		if err := s.engine.Extract(ctx, doc, pages.PageNumbers(r), &buf); err != nil {
			return nil, err
		}
		outputs = append(outputs, Output{
			FileName: splitFileName(i+1, r, ts),
			Data:     buf.Bytes(),
			Pages:    r.Len(),
		})
	}

	return outputs, nil
}

// splitFileName: номер диапазона в имени, иначе повторные диапазоны
// ("1-2,1-2") дают одинаковые файлы и затирают друг друга в zip и на диске.
func splitFileName(n int, r pages.PageRange, ts int64) string {
	if r.Start == r.End {
		return fmt.Sprintf("split-%d-page-%d-%d.pdf", n, r.Start, ts)
	}
	return fmt.Sprintf("split-%d-%d-%d-%d.pdf", n, r.Start, r.End, ts)
}

// Compress масштабирует страницы и пересохраняет. Уменьшение размера не гарантировано:
// встроенные картинки не перекодируются.
func (s *PDFService) Compress(ctx context.Context, in Input, q Quality) (*Output, error) {
	doc, err := s.engine.Load(ctx, in.Name, in.Data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.engine.Compress(ctx, doc, q.Scale(), &buf); err != nil {
		return nil, err
	}

	return &Output{
		FileName: fmt.Sprintf("compressed-%d.pdf", s.now().Unix()),
		Data:     buf.Bytes(),
		Pages:    doc.PageCount(),
	}, nil
}
