package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/imroc/req/v3"
	"github.com/rs/zerolog"

	"github.com/askupi/insights/pkg/chat"
	"github.com/askupi/insights/pkg/dispatcher"
	"github.com/askupi/insights/pkg/history"
	"github.com/askupi/insights/pkg/intake"
	"github.com/askupi/insights/pkg/normalizer"
	"github.com/askupi/insights/pkg/printer"
	"github.com/askupi/insights/pkg/processor"
	"github.com/askupi/insights/pkg/storage"
)

var apiKey string

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	store := newStore()
	prn := printer.NewPrinter()

	processorSvc := processor.NewProcessor(&processor.Config{
		Intake:        intake.NewIntake(maxFileSize()),
		Dispatcher:    dispatcher.NewDispatcher(os.Getenv("AI_BASE_URL"), req.DefaultClient()),
		Normalizer:    normalizer.NewNormalizer(),
		History:       history.NewLedger(store),
		Conversations: chat.NewLedger(store, prn),
	})

	handle := NewHandler(processorSvc, store)
	apiKey = os.Getenv("API_KEY")

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if apiKey != "" && apiKey != req.URL.Query().Get("api_key") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, req.WithContext(logger.WithContext(req.Context())))
		})
	})

	r.HandleFunc("/api/analyze", handle.Analyze).Methods(http.MethodPost)
	r.HandleFunc("/api/history", handle.History).Methods(http.MethodGet)
	r.HandleFunc("/api/history/{id}", handle.HistoryEntry).Methods(http.MethodGet)
	r.HandleFunc("/api/history/{id}", handle.DeleteHistory).Methods(http.MethodDelete)
	r.HandleFunc("/api/conversations", handle.Conversations).Methods(http.MethodGet)
	r.HandleFunc("/api/conversations/{id}", handle.Conversation).Methods(http.MethodGet)
	r.HandleFunc("/api/conversations/{id}", handle.DeleteConversation).Methods(http.MethodDelete)
	r.HandleFunc("/api/conversations/{id}/messages", handle.SendMessage).Methods(http.MethodPost)
	r.HandleFunc("/api/storage", handle.StorageInfo).Methods(http.MethodGet)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("FUNCTIONS_CUSTOMHANDLER_PORT"); ok {
		listenAddr = ":" + val
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         listenAddr,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	panic(srv.ListenAndServe())
}

func newStore() storage.Store {
	path := os.Getenv("STORAGE_PATH")

	switch os.Getenv("STORAGE_BACKEND") {
	case "sqlite":
		if path == "" {
			path = "askupi.db"
		}

		store, err := storage.NewSQLite(path)
		if err != nil {
			panic(err)
		}

		return store
	default:
		if path == "" {
			path = "data"
		}

		return storage.NewFile(path)
	}
}

func maxFileSize() int64 {
	val, err := strconv.ParseInt(os.Getenv("MAX_FILE_SIZE"), 10, 64)
	if err != nil {
		return 0
	}

	return val
}
