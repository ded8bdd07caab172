package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/curametric/wound-api/internal/auth"
	"github.com/curametric/wound-api/internal/care"
	"github.com/curametric/wound-api/internal/ftpstore"
	"github.com/curametric/wound-api/internal/handlers"
	"github.com/curametric/wound-api/internal/records"
	"github.com/curametric/wound-api/models"
)

func main() {
	// Initialize environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded:", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Chi
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// OAUTH (browser flow)
	callbackURL := os.Getenv("GOOGLE_CALLBACK_URL")
	if callbackURL == "" {
		callbackURL = "http://localhost:3000/auth/google/callback"
	}
	goth.UseProviders(google.New(os.Getenv("GOOGLE_KEY"), os.Getenv("GOOGLE_SECRET"), callbackURL))

	// Session store
	secretKey := os.Getenv("SECRET_KEY")
	maxAge := 86400 * 30
	isProd := os.Getenv("ENV") == "production"
	store := sessions.NewCookieStore([]byte(secretKey))
	store.MaxAge(maxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = isProd
	gothic.Store = store

	// Database connection
	dsn := os.Getenv("DSN")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate models
	if err := db.AutoMigrate(&models.User{}, &models.Patient{}, &models.Wound{}, &models.WoundCare{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}

	// Remote media store
	ftpPort, _ := strconv.Atoi(os.Getenv("FTP_PORT"))
	mediaStore := ftpstore.New(ftpstore.Config{
		Host:        os.Getenv("FTP_HOST"),
		Port:        ftpPort,
		User:        os.Getenv("FTP_USER"),
		Password:    os.Getenv("FTP_PASS"),
		RootDir:     os.Getenv("FTP_MEDIA_PATH"),
		BaseURL:     os.Getenv("FTP_BASE_URL"),
		DialTimeout: 15 * time.Second,
	}, logger)

	// Core services
	guard := care.NewGuard(mediaStore, logger)
	patientSvc := records.NewPatientService(db)
	woundSvc := records.NewWoundService(db)
	woundCareSvc := records.NewWoundCareService(db, guard)

	// Identity
	bridge := auth.NewBridge(db, &auth.GoogleVerifier{ClientID: os.Getenv("GOOGLE_CLIENT_ID_WEB")})
	issuer := auth.NewIssuer([]byte(secretKey), 24*time.Hour)

	// User auth
	r.Post("/google-login", func(w http.ResponseWriter, r *http.Request) {
		handlers.GoogleLoginHandler(w, r, bridge, issuer)
	})
	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		handlers.UserLoginHandler(w, r, bridge)
	})
	r.Post("/logout/{provider}", func(w http.ResponseWriter, r *http.Request) {
		gothic.Logout(w, r)
	})
	r.Post("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		if gothUser, err := gothic.CompleteUserAuth(w, r); err == nil {
			log.Println("user already authenticated:", gothUser.Email)
			http.Redirect(w, r, "/api/profile", http.StatusTemporaryRedirect)
		} else {
			gothic.BeginAuthHandler(w, r)
		}
	})
	r.Post("/register", func(w http.ResponseWriter, r *http.Request) {
		handlers.RegisterUserHandler(w, r, db)
	})

	// Available API routes for authenticated users
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.UserMiddleware(issuer))
		r.Use(httprate.Limit(
			60,
			1*time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		))

		r.Get("/profile", func(w http.ResponseWriter, r *http.Request) {
			handlers.GetUserHandler(w, r, db)
		})

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				handlers.ListPatientsHandler(w, r, patientSvc)
			})
			r.Post("/", func(w http.ResponseWriter, r *http.Request) {
				handlers.CreatePatientHandler(w, r, patientSvc)
			})
			r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
				handlers.GetPatientHandler(w, r, patientSvc)
			})
			r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
				handlers.UpdatePatientHandler(w, r, patientSvc)
			})
			r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
				handlers.DeletePatientHandler(w, r, patientSvc)
			})
		})

		r.Route("/wounds", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				handlers.ListWoundsHandler(w, r, woundSvc)
			})
			r.Post("/", func(w http.ResponseWriter, r *http.Request) {
				handlers.CreateWoundHandler(w, r, woundSvc)
			})
			r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
				handlers.GetWoundHandler(w, r, woundSvc)
			})
			r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
				handlers.UpdateWoundHandler(w, r, woundSvc)
			})
			r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
				handlers.DeleteWoundHandler(w, r, woundSvc)
			})
		})

		r.Route("/woundcares", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				handlers.ListWoundCaresHandler(w, r, woundCareSvc)
			})
			r.Post("/", func(w http.ResponseWriter, r *http.Request) {
				handlers.CreateWoundCareHandler(w, r, woundCareSvc)
			})
			r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
				handlers.GetWoundCareHandler(w, r, woundCareSvc)
			})
			r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
				handlers.UpdateWoundCareHandler(w, r, woundCareSvc)
			})
			r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
				handlers.DeleteWoundCareHandler(w, r, woundCareSvc)
			})
		})

		r.Post("/upload-wound-photo", func(w http.ResponseWriter, r *http.Request) {
			handlers.UploadWoundPhotoHandler(w, r, db, mediaStore)
		})
	})

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":3000"
	}
	log.Println("Starting API server on", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
