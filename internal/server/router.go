package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mjaworski/window-offers/internal/auth"
	"github.com/mjaworski/window-offers/internal/catalog"
	"github.com/mjaworski/window-offers/internal/handlers"
	"github.com/mjaworski/window-offers/internal/httpx"
	"github.com/mjaworski/window-offers/internal/render"
	"github.com/mjaworski/window-offers/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	cat := catalog.NewRepository(db)
	offerSvc := services.NewOfferService(db, log)
	invoiceSvc := services.NewInvoiceService(db, cat, log)
	docs := services.NewDocumentResolver(cat)
	renderer := render.NewHTMLRenderer()
	userSvc := auth.NewUserService(db)

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "degraded", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Session endpoints
	ah := handlers.NewAuthHandler(db, userSvc)
	mux.HandleFunc("/login", post(ah.Login))
	mux.HandleFunc("/logout", post(ah.Logout))

	// Offers
	oh := handlers.NewOfferHandler(db, offerSvc, docs, renderer)
	mux.HandleFunc("/offers", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			oh.List(w, r)
		case http.MethodPost:
			oh.Create(w, r)
		default:
			methodNotAllowed(w, "GET,POST")
		}
	})
	mux.HandleFunc("/offers/get", get(oh.Get))
	mux.HandleFunc("/offers/update", post(oh.Update))
	mux.HandleFunc("/offers/delete", post(oh.Delete))
	mux.HandleFunc("/offers/document", get(oh.Document))

	// Invoices
	ih := handlers.NewInvoiceHandler(db, invoiceSvc, offerSvc, docs, renderer)
	mux.HandleFunc("/invoices", post(ih.Create))
	mux.HandleFunc("/invoices/get", get(ih.Get))
	mux.HandleFunc("/invoices/for-offer", get(ih.ListForOffer))
	mux.HandleFunc("/invoices/delete", post(ih.Delete))
	mux.HandleFunc("/invoices/document", get(ih.Document))

	// Catalog
	ch := handlers.NewOptionHandler(db, cat)
	mux.HandleFunc("/options", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ch.List(w, r)
		case http.MethodPost:
			ch.Create(w, r)
		default:
			methodNotAllowed(w, "GET,POST")
		}
	})
	mux.HandleFunc("/options/categories", get(ch.Categories))
	mux.HandleFunc("/options/get", get(ch.Get))
	mux.HandleFunc("/options/update", post(ch.Update))
	mux.HandleFunc("/options/delete", post(ch.Delete))
	mux.HandleFunc("/options/import", post(ch.Import))

	// Users
	uh := handlers.NewUserHandler(db, userSvc)
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			uh.List(w, r)
		case http.MethodPost:
			uh.Create(w, r)
		default:
			methodNotAllowed(w, "GET,POST")
		}
	})
	mux.HandleFunc("/users/me", get(uh.Me))
	mux.HandleFunc("/users/get", get(uh.Get))
	mux.HandleFunc("/users/update", post(uh.Update))
	mux.HandleFunc("/users/password", post(uh.ChangePassword))

	return auth.Middleware(withRecover(withLogging(mux, log)))
}

func get(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, "GET")
			return
		}
		h(w, r)
	}
}

func post(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, "POST")
			return
		}
		h(w, r)
	}
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

func withLogging(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
