package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"harvest-go-srv/internal/catalog"
	"harvest-go-srv/internal/database"
	"harvest-go-srv/internal/harvest"
	"harvest-go-srv/internal/inference"
	"harvest-go-srv/internal/matcher"
	"harvest-go-srv/internal/models"
	"harvest-go-srv/internal/parser"
	"harvest-go-srv/internal/reconciler"
	"harvest-go-srv/internal/tags"
)

/* =========================
   Recovery Middleware
   ========================= */

func RecoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC: %v\n%s", err, debug.Stack())
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

/* =========================
   Types
   ========================= */

type HarvestRequest struct {
	Directory    string `json:"directory"`
	PlaylistName string `json:"playlist_name"`
	UserID       string `json:"user_id"`
}

/* =========================
   SSE Helpers
   ========================= */

func setupSSE(w http.ResponseWriter) (http.Flusher, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming unsupported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	return flusher, nil
}

func sendEvent(w http.ResponseWriter, flusher http.Flusher, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		log.Println("SSE marshal error:", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", b)
	flusher.Flush()
}

/* =========================
   Handler
   ========================= */

type server struct {
	catalog  *catalog.Client
	matcher  *matcher.Matcher
	inferrer *inference.Adapter
	auditDir string
	workers  int
}

func (s *server) handleHarvest(w http.ResponseWriter, r *http.Request) {
	/* =========================
	   CORS Preflight
	   ========================= */

	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx := r.Context()

	earlyFail := func(msg string, code int) {
		http.Error(w, msg, code)
	}

	/* =========================
	   Parse Request (NO SSE YET)
	   ========================= */

	var (
		descriptors  []models.SongDescriptor
		playlistName string
		userID       string
	)

	contentType := r.Header.Get("Content-Type")

	// ---------- CSV (multipart) ----------
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			earlyFail("Invalid multipart form", http.StatusBadRequest)
			return
		}

		playlistName = strings.TrimSpace(r.FormValue("playlist_name"))
		userID = strings.TrimSpace(r.FormValue("user_id"))

		var err error
		descriptors, _, err = parser.ParseCSV(r)
		if err != nil {
			earlyFail("CSV parse failed: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		// ---------- JSON (local directory scan) ----------
		var req HarvestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			earlyFail("Invalid JSON body", http.StatusBadRequest)
			return
		}

		playlistName = strings.TrimSpace(req.PlaylistName)
		userID = strings.TrimSpace(req.UserID)

		if req.Directory == "" {
			earlyFail("Missing directory", http.StatusBadRequest)
			return
		}

		var err error
		descriptors, err = tags.HarvestDirectory(req.Directory)
		if err != nil {
			earlyFail("Directory scan failed: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	if playlistName == "" {
		earlyFail("Missing playlist_name", http.StatusBadRequest)
		return
	}

	if len(descriptors) == 0 {
		earlyFail("No songs found", http.StatusBadRequest)
		return
	}

	if userID == "" {
		id, err := s.catalog.CurrentUserID(ctx)
		if err != nil {
			earlyFail("Could not resolve user: "+err.Error(), http.StatusUnauthorized)
			return
		}
		userID = id
	}

	/* =========================
	   SSE Setup (SAFE POINT)
	   ========================= */

	flusher, err := setupSSE(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	send := func(v any) { sendEvent(w, flusher, v) }

	send(map[string]any{
		"status": "harvesting",
		"total":  len(descriptors),
	})

	/* =========================
	   Pipeline (request-scoped)
	   ========================= */

	var rec *reconciler.Reconciler
	if s.workers > 1 {
		rec = reconciler.NewParallel(s.matcher, s.workers)
	} else {
		rec = reconciler.New(s.matcher)
	}
	rec.OnOutcome = func(index int, d models.NormalizedDescriptor, outcome models.MatchOutcome) {
		send(map[string]any{
			"status":  "processing",
			"index":   index + 1,
			"track":   d.Label(),
			"outcome": outcome,
		})
	}

	runner := harvest.NewRunner(s.catalog, s.inferrer, rec, s.auditDir)

	report, err := runner.Run(ctx, harvest.Request{
		UserID:       userID,
		PlaylistName: playlistName,
		Descriptors:  descriptors,
	})
	if err != nil {
		payload := map[string]any{
			"status":  "error",
			"message": err.Error(),
		}
		if report != nil {
			// batch write stopped partway, report what landed
			payload["report"] = report
		}
		send(payload)
		return
	}

	/* =========================
	   Final
	   ========================= */

	send(map[string]any{
		"status": "complete",
		"report": report,
	})
}

/* =========================
   Main
   ========================= */

func main() {
	_ = godotenv.Load()

	// 1. Validate Environment Variables (Fail fast)
	spotifyID := os.Getenv("SPOTIFY_ID")
	spotifySecret := os.Getenv("SPOTIFY_SECRET")
	if spotifyID == "" || spotifySecret == "" {
		log.Fatal("CRITICAL: SPOTIFY_ID and SPOTIFY_SECRET must be set in environment")
	}
	openaiKey := os.Getenv("OPENAI_API_KEY")
	if openaiKey == "" {
		log.Fatal("CRITICAL: OPENAI_API_KEY must be set in environment")
	}

	callTimeout := 30 * time.Second
	if v := os.Getenv("HARVEST_CALL_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			callTimeout = time.Duration(secs) * time.Second
		}
	}

	workers := 1
	if v := os.Getenv("HARVEST_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workers = n
		}
	}

	// 2. Database Setup
	dbPath := "./data/registry.db"
	_ = os.MkdirAll(filepath.Dir(dbPath), 0755)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	if err := database.InitDatabase(db); err != nil {
		log.Fatalf("Failed to init DB schema: %v", err)
	}

	// 3. Initialize Long-Lived Spotify Client
	ctx := context.Background()
	config := &clientcredentials.Config{
		ClientID:     spotifyID,
		ClientSecret: spotifySecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := config.Client(ctx)
	httpClient.Timeout = callTimeout
	spotifyClient := spotify.New(httpClient)

	// 4. Wire the pipeline
	catalogClient := catalog.NewClient(spotifyClient)
	srv := &server{
		catalog:  catalogClient,
		matcher:  matcher.New(catalogClient, db),
		inferrer: inference.NewAdapter(inference.NewClient(openaiKey, callTimeout)),
		auditDir: envOr("HARVEST_AUDIT_DIR", "./data/audit"),
		workers:  workers,
	}

	// 5. Routing
	http.HandleFunc("/api/v1/harvest", RecoveryMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodOptions {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		srv.handleHarvest(w, r)
	}))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Harvest engine listening on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
