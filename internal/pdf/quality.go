package pdf

import (
	"fmt"
	"strings"
)

type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// пресеты масштаба страниц для сжатия
var qualityScale = map[Quality]float64{
	QualityLow:    0.5,
	QualityMedium: 0.75,
	QualityHigh:   1.0,
}

// ParseQuality — пустая строка значит medium.
func ParseQuality(s string) (Quality, error) {
	q := Quality(strings.ToLower(strings.TrimSpace(s)))
	if q == "" {
		return QualityMedium, nil
	}
	if _, ok := qualityScale[q]; !ok {
		return "", fmt.Errorf("%w: %q (want low, medium or high)", ErrUnknownQuality, s)
	}
	return q, nil
}

func (q Quality) Scale() float64 {
	if sc, ok := qualityScale[q]; ok {
		return sc
	}
	return qualityScale[QualityMedium]
}
