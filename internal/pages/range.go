package pages

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange = errors.New("invalid page range")
	ErrNoRanges     = errors.New("no page ranges specified")
)

// PageRange — диапазон страниц, 1-based, обе границы включительно.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r PageRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Len — сколько страниц покрывает диапазон (0 для невалидного).
func (r PageRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// InvalidRangeError описывает конкретный плохой диапазон и реальное число страниц.
type InvalidRangeError struct {
	Index      int // позиция диапазона во входном списке, с 1
	Range      PageRange
	TotalPages int
	Reason     string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid page range #%d (%d-%d): %s, document has %d pages",
		e.Index, e.Range.Start, e.Range.End, e.Reason, e.TotalPages)
}

func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// ValidateRanges проверяет каждый диапазон против числа страниц документа.
// Порядок сохраняется, пересечения допустимы и ничего не склеивается.
func ValidateRanges(totalPages int, ranges []PageRange) ([]PageRange, error) {
	if len(ranges) == 0 {
		return nil, ErrNoRanges
	}

	out := make([]PageRange, 0, len(ranges))
	for i, r := range ranges {
		if reason := checkRange(totalPages, r); reason != "" {
			return nil, &InvalidRangeError{
				Index:      i + 1,
				Range:      r,
				TotalPages: totalPages,
				Reason:     reason,
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func checkRange(totalPages int, r PageRange) string {
	switch {
	case r.Start < 1:
		return "start page must be at least 1"
	case r.Start > r.End:
		return "start page is after end page"
	case r.End > totalPages:
		return "end page exceeds page count"
	}
	return ""
}

// IndividualPages — режим "каждая страница отдельно": (1,1), (2,2) ... (n,n).
func IndividualPages(totalPages int) []PageRange {
	out := make([]PageRange, 0, max(totalPages, 0))
	for i := 1; i <= totalPages; i++ {
		out = append(out, PageRange{Start: i, End: i})
	}
	return out
}

// ResolvePageIndices раскрывает диапазон в zero-based индексы [Start-1 .. End-1].
func ResolvePageIndices(r PageRange) []int {
	idx := make([]int, 0, r.Len())
	for i := r.Start; i <= r.End; i++ {
		idx = append(idx, i-1)
	}
	return idx
}

// PageNumbers — то же самое, но 1-based (pdfcpu адресует страницы с единицы).
func PageNumbers(r PageRange) []int {
	idx := ResolvePageIndices(r)
	for i := range idx {
		idx[i]++
	}
	return idx
}
