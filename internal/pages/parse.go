package pages

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var ErrInvalidSyntax = errors.New("invalid page specification")

// ParseRanges разбирает пользовательский ввод вида "1, 3-5, 7".
// Пробелы допустимы только вокруг чисел: "1 3" — ошибка, а не страница 13.
// Границы здесь не проверяются, это делает ValidateRanges.
func ParseRanges(spec string) ([]PageRange, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSyntax)
	}

	parts := strings.Split(spec, ",")
	ranges := make([]PageRange, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty item in %q", ErrInvalidSyntax, spec)
		}

		bounds := strings.Split(part, "-")
		switch len(bounds) {
		case 1:
			n, err := parsePage(bounds[0])
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, PageRange{Start: n, End: n})
		case 2:
			start, err := parsePage(bounds[0])
			if err != nil {
				return nil, err
			}
			end, err := parsePage(bounds[1])
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, PageRange{Start: start, End: end})
		default:
			return nil, fmt.Errorf("%w: bad range %q", ErrInvalidSyntax, part)
		}
	}

	return ranges, nil
}

func parsePage(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: missing page number", ErrInvalidSyntax)
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return 0, fmt.Errorf("%w: whitespace inside page number %q", ErrInvalidSyntax, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad page number %q", ErrInvalidSyntax, s)
	}
	return n, nil
}
