package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/urbanluxe/urbanluxe/internal/auth"
	"github.com/urbanluxe/urbanluxe/internal/config"
	"github.com/urbanluxe/urbanluxe/internal/handlers"
	"github.com/urbanluxe/urbanluxe/internal/middleware"
	"github.com/urbanluxe/urbanluxe/internal/presence"
	"github.com/urbanluxe/urbanluxe/internal/store/sqlstore"
	"github.com/urbanluxe/urbanluxe/internal/ws"
)

func main() {
	// A missing .env just means everything comes from the environment.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}
	auth.SecretKey = []byte(cfg.JWTSecret)

	store, err := sqlstore.New(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		slog.Error("open database", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// The registry lives for the lifetime of the relay process; clients
	// re-identify after a restart.
	registry := presence.NewRegistry()
	hub := ws.NewHub(registry, cfg.ClientOrigin)

	authHandler := &handlers.AuthHandler{Store: store}
	chatHandler := &handlers.ChatHandler{Store: store, Hub: hub}

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")

	chats := api.PathPrefix("/chats").Subrouter()
	chats.Use(middleware.AuthMiddleware)
	chats.HandleFunc("", chatHandler.GetChats).Methods("GET")
	chats.HandleFunc("", chatHandler.CreateChat).Methods("POST")
	chats.HandleFunc("/read/{id}", chatHandler.ReadChat).Methods("PUT")
	chats.HandleFunc("/{id}", chatHandler.GetChat).Methods("GET")

	messages := api.PathPrefix("/messages").Subrouter()
	messages.Use(middleware.AuthMiddleware)
	messages.HandleFunc("/{id}", chatHandler.SendMessage).Methods("POST")

	users := api.PathPrefix("/users").Subrouter()
	users.Use(middleware.AuthMiddleware)
	users.HandleFunc("/notification", chatHandler.Notification).Methods("GET")

	// WebSocket endpoint; the user identifies in-band after connecting.
	r.HandleFunc("/ws", hub.ServeWS)

	// Serve the client bundle.
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, cfg.StaticDir+"/index.html")
	})
	r.PathPrefix("/").Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Disable caching for CSS and JS files in development
		if strings.HasSuffix(r.URL.Path, ".css") || strings.HasSuffix(r.URL.Path, ".js") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}
		http.FileServer(http.Dir(cfg.StaticDir)).ServeHTTP(w, r)
	}))

	slog.Info("starting server", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
