// Package main is the entry point for the café simulation server.
// It only handles dependency injection and server initialization.
// NO simulation logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pyro-Cryo/kons-simulator/internal/domain/patron"
	"github.com/Pyro-Cryo/kons-simulator/internal/engine"
	"github.com/Pyro-Cryo/kons-simulator/internal/events"
	"github.com/Pyro-Cryo/kons-simulator/internal/infra/storage"
	"github.com/Pyro-Cryo/kons-simulator/internal/network"
	"github.com/Pyro-Cryo/kons-simulator/internal/platform/logger"
	"github.com/Pyro-Cryo/kons-simulator/internal/platform/metrics"
	"github.com/gorilla/websocket"
)

// SQLitePersisterAdapter translates domain events to storage events.
type SQLitePersisterAdapter struct {
	repo *storage.SQLiteEventRepository
}

func (a *SQLitePersisterAdapter) Append(event events.Event) error {
	started := time.Now()

	// Payloads are stored as raw JSON: some event types carry objects,
	// others bare strings or numbers.
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		metrics.Get().RecordEventWrite(time.Since(started), err)
		return err
	}

	storedEvent := storage.StoredEvent{
		ID:          event.ID,
		Timestamp:   event.Timestamp,
		VirtualTime: event.VirtualTime,
		EventType:   string(event.Type),
		SubjectID:   event.SubjectID,
		Payload:     payloadBytes,
	}
	err = a.repo.Append(context.Background(), storedEvent)
	metrics.Get().RecordEventWrite(time.Since(started), err)
	return err
}

func seedPatrons(eng *engine.Engine, appLogger *logger.Logger) {
	starters := []struct {
		id, name  string
		archetype patron.Archetype
	}{
		{"P001", "Siri", patron.ArchetypeRegular},
		{"P002", "Love", patron.ArchetypeFreeloader},
		{"P003", "Ebba", patron.ArchetypeStressed},
		{"P004", "Hampus", patron.ArchetypeVolunteer},
	}
	for _, s := range starters {
		if _, err := eng.AddPatron(s.id, s.name, s.archetype); err != nil {
			appLogger.Error("Failed to seed patron %s: %v", s.id, err)
		}
	}
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "kons.db", "SQLite database path")
	tickRate := flag.Duration("tick", time.Second, "real-time interval between engine ticks")
	fastForward := flag.Float64("ff", 60, "virtual time speed-up factor")
	flag.Parse()

	log.Println("[KONS-SERVER] Initializing café simulation server...")

	appLogger := logger.New()

	appLogger.Info("Initializing SQLite database %q...", *dbPath)
	db, err := storage.InitSQLite(*dbPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: %v", err)
		os.Exit(1)
	}
	eventRepo := storage.NewSQLiteEventRepository(db)
	eventPersister := &SQLitePersisterAdapter{repo: eventRepo}

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewEventLog(eventPersister)

	appLogger.Info("Bootstrapping Engine...")
	eng, err := engine.New(eventLog, appLogger, engine.Config{
		TickRate:      *tickRate,
		MillisPerUnit: engine.DefaultConfig().MillisPerUnit,
		FastForward:   *fastForward,
	})
	if err != nil {
		appLogger.Error("Failed to build engine: %v", err)
		os.Exit(1)
	}

	seedPatrons(eng, appLogger)
	if err := eng.ScheduleRecurringNoise("espresso grinder", 4, 5, 45); err != nil {
		appLogger.Error("Failed to schedule ambience: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(appLogger, eventLog)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	inspector := network.NewInspector(eventLog)

	// State sinks run on the engine loop; the heavy parts (DB writes,
	// broadcast fan-out) happen on their own goroutines with copies.
	snapRepo := storage.NewSQLiteSnapshotRepository(db)
	eng.AddStateSink(inspector.Update, 1)
	eng.AddStateSink(func(states []engine.PatronState) {
		go hub.BroadcastState(states)
	}, 1)
	eng.AddStateSink(func(states []engine.PatronState) {
		go func() {
			for _, s := range states {
				snap := storage.PatronSnapshot{
					PatronID:    s.ID,
					Name:        s.Name,
					Archetype:   s.Archetype,
					Fullness:    s.Fullness,
					Energy:      s.Energy,
					Mood:        s.Mood,
					StomachLoad: s.StomachLoad,
					VirtualTime: s.VirtualTime,
				}
				if err := snapRepo.Upsert(ctx, snap); err != nil {
					appLogger.Error("Snapshot upsert for %s: %v", s.ID, err)
				}
			}
		}()
	}, 5)

	go eng.Run(ctx)

	// API routes
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger)
	})
	http.HandleFunc("/api/patrons", inspector.HandlePatrons)
	http.HandleFunc("/api/patrons/", inspector.HandlePatrons)
	http.HandleFunc("/api/events", inspector.HandleEvents)
	http.HandleFunc("/metrics", metrics.Handler())
	http.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())

	go func() {
		log.Printf("[KONS-SERVER] HTTP API & WS server listening on %s", *addr)
		if err := http.ListenAndServe(*addr, nil); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[KONS-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[KONS-SERVER] Shutting down...")
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow cross-origin requests for the dev frontend
	},
}

// serveWs handles websocket requests from the peer.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection: %v", err)
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
