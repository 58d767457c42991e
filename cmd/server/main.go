package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tractorhub/shengji/internal/rpc"
	"github.com/tractorhub/shengji/internal/session"
	"github.com/tractorhub/shengji/internal/snapshot"
	"github.com/tractorhub/shengji/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Rooms are access-controlled by knowing the room key
	},
}

func main() {
	log.Println("Starting Tractor room server...")

	snapshotPath := getEnvOrDefault("SNAPSHOT_PATH", "./state/snapshot.json")
	headerPath := os.Getenv("HEADER_MESSAGES_PATH")
	port := getEnvOrDefault("PORT", "5338")
	interval := durationEnv("SNAPSHOT_INTERVAL_SECONDS", 5*time.Minute)

	st := session.NewRoomStore()
	if n, err := snapshot.Restore(st, snapshotPath); err != nil {
		log.Printf("Warning: failed to restore snapshot: %v", err)
	} else if n > 0 {
		log.Printf("Restored %d rooms from %s", n, snapshotPath)
	}

	handler := &session.Handler{
		Store:          st,
		HeaderMessages: loadHeaderMessages(headerPath),
		Encode: func(m models.Outbound) ([]byte, error) {
			return json.Marshal(m)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snapshotDone := make(chan struct{})
	go func() {
		defer close(snapshotDone)
		snapshot.Run(ctx, st, snapshotPath, interval)
	}()

	r := gin.Default()
	rpc.SetupRouter(r)
	r.GET("/api/v1/stream", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Failed to upgrade websocket: %v", err)
			return
		}
		go handler.Run(&wsConn{conn: conn})
	})
	r.GET("/api/v1/stats", func(c *gin.Context) {
		numStates, subscribers := st.Stats()
		c.JSON(http.StatusOK, gin.H{
			"rooms":          numStates,
			"subscribers":    subscribers,
			"states_created": st.GetStatesCreated(),
		})
	})
	r.Static("/app", "./public")

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		log.Printf("Room server running on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down: flushing snapshot...")
	stop()
	<-snapshotDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
	}
	log.Println("Goodbye")
}

// wsConn adapts a gorilla websocket connection to the session transport.
type wsConn struct {
	conn *websocket.Conn
}

func (w *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := w.conn.ReadMessage()
	return data, err
}

func (w *wsConn) WriteMessage(data []byte) error {
	_ = w.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) Close() error { return w.conn.Close() }

// loadHeaderMessages reads the optional banner-messages file: a JSON
// array of strings shown to every connection on join.
func loadHeaderMessages(path string) []string {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: failed to read header messages: %v", err)
		return nil
	}
	var messages []string
	if err := json.Unmarshal(data, &messages); err != nil {
		log.Printf("Warning: failed to parse header messages: %v", err)
		return nil
	}
	return messages
}

// getEnvOrDefault returns the env var value or a safe default for
// non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	secs, err := strconv.Atoi(val)
	if err != nil || secs <= 0 {
		log.Printf("Warning: invalid %s=%q, using %s", key, val, fallback)
		return fallback
	}
	return time.Duration(secs) * time.Second
}
