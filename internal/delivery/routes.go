package delivery

import (
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

func RegisterRoutes(
	r chi.Router,
	hPDF *PDFHandler,
	hHistory *HistoryHandler, // nil — история выключена
	guard *InFlightGuard,
	ratePerMin int,
) {
	// --- операции над PDF ---
	r.Route("/api/pdf", func(pr chi.Router) {
		pr.Use(httputil.RecoverMiddleware)
		if ratePerMin > 0 {
			pr.Use(httprate.LimitByIP(ratePerMin, time.Minute))
		}
		pr.Use(guard.Middleware)

		pr.Post("/merge", hPDF.Merge)
		pr.Post("/split", hPDF.Split)
		pr.Post("/compress", hPDF.Compress)
		pr.Post("/inspect", hPDF.Inspect)
	})

	// --- история ---
	if hHistory != nil {
		r.With(httputil.RecoverMiddleware).Get("/api/history", hHistory.List)
	}
}
