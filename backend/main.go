package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// StatusResponse is the full game view sent on /api/status and pushed
// over the websocket after every change. Board values are -1 white,
// 0 empty, 1 black, rows indexed by y.
type StatusResponse struct {
	Board        [][]int  `json:"board"`
	NextPlayer   int      `json:"next_player"`
	Mode         string   `json:"mode"`
	LegalMoves   []Move   `json:"legal_moves"`
	Notation     []string `json:"notation"`
	MovesText    string   `json:"moves_text"`
	LastMove     *Move    `json:"last_move,omitempty"`
	LastFlips    []Move   `json:"last_flips"`
	BlackCount   int      `json:"black_count"`
	WhiteCount   int      `json:"white_count"`
	BlackPercent int      `json:"black_percent"`
	MustPass     bool     `json:"must_pass"`
	PassStreak   int      `json:"pass_streak"`
	GameOver     bool     `json:"game_over"`
	Winner       int      `json:"winner"`
	Draw         bool     `json:"draw"`
	AiThinking   bool     `json:"ai_thinking"`
	CanUndo      bool     `json:"can_undo"`
	CanRedo      bool     `json:"can_redo"`
}

type newGameRequest struct {
	Mode         string       `json:"mode"`
	BlackWeights *EvalWeights `json:"black_weights,omitempty"`
	WhiteWeights *EvalWeights `json:"white_weights,omitempty"`
}

type stepsRequest struct {
	Steps int `json:"steps"`
}

type hintResponse struct {
	Move     *Move  `json:"move"`
	Notation string `json:"notation,omitempty"`
}

func main() {
	configPath := os.Getenv("OTHELLO_CONFIG")
	if configPath == "" {
		configPath = "othello_config.json"
	}
	if err := LoadConfigFile(configPath); err != nil {
		log.Printf("[backend] config load failed: %v", err)
	}
	if addr := os.Getenv("OTHELLO_ADDR"); addr != "" {
		config := GetConfig()
		config.HTTPAddr = addr
		UpdateConfig(config)
	}
	config := GetConfig()

	controller := NewGameController(ModePVP)
	if config.AutosaveEnabled {
		controller.RestoreFromDisk(config.SavePath)
	}

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx.Done())

	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if controller.Tick() && hub.HasClients() {
					hub.BroadcastStatus(controllerStatus(controller))
				}
			}
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controllerStatus(controller))
	})

	r.Post("/api/new", func(w http.ResponseWriter, r *http.Request) {
		var payload newGameRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid payload"))
			return
		}
		mode := GameMode(payload.Mode)
		if payload.Mode == "" {
			mode = controller.Snapshot().State.Mode
		}
		if err := controller.NewGame(mode, payload.BlackWeights, payload.WhiteWeights); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		status := controllerStatus(controller)
		hub.BroadcastStatus(status)
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/api/mode", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Mode         string       `json:"mode"`
			BlackWeights *EvalWeights `json:"black_weights,omitempty"`
			WhiteWeights *EvalWeights `json:"white_weights,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid payload"))
			return
		}
		if err := controller.SetMode(GameMode(payload.Mode), payload.BlackWeights, payload.WhiteWeights); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		status := controllerStatus(controller)
		hub.BroadcastStatus(status)
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload Move
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid payload"))
			return
		}
		if err := controller.ApplyHumanMove(payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		status := controllerStatus(controller)
		hub.BroadcastStatus(status)
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/api/pass", func(w http.ResponseWriter, r *http.Request) {
		if err := controller.PassTurn(); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		status := controllerStatus(controller)
		hub.BroadcastStatus(status)
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/api/undo", func(w http.ResponseWriter, r *http.Request) {
		steps := decodeSteps(r)
		controller.Undo(steps)
		status := controllerStatus(controller)
		hub.BroadcastStatus(status)
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/api/redo", func(w http.ResponseWriter, r *http.Request) {
		steps := decodeSteps(r)
		controller.Redo(steps)
		status := controllerStatus(controller)
		hub.BroadcastStatus(status)
		writeJSON(w, http.StatusOK, status)
	})

	r.Get("/api/hint", func(w http.ResponseWriter, r *http.Request) {
		move, ok := controller.Hint()
		if !ok {
			writeJSON(w, http.StatusOK, hintResponse{})
			return
		}
		writeJSON(w, http.StatusOK, hintResponse{Move: &move, Notation: move.Notation()})
	})

	r.Get("/api/legal-moves", func(w http.ResponseWriter, r *http.Request) {
		moves := controller.Snapshot().LegalMoves
		if moves == nil {
			moves = []Move{}
		}
		writeJSON(w, http.StatusOK, map[string][]Move{"moves": moves})
	})

	r.Get("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Post("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		// Decode onto the current config so partial updates keep the
		// rest of the settings intact.
		config := GetConfig()
		if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid payload"))
			return
		}
		UpdateConfig(config)
		controller.CancelSearches()
		if err := SaveConfigFile(configPath); err != nil {
			log.Printf("[backend] config save failed: %v", err)
		}
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Get("/api/cache/tt", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, controller.CacheStats())
	})

	r.Post("/api/cache/tt/clear", func(w http.ResponseWriter, r *http.Request) {
		controller.ClearCaches()
		writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
	})

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWS(hub, controller, w, r)
	})

	server := &http.Server{
		Addr:    config.HTTPAddr,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Printf("[backend] listening on %s", config.HTTPAddr)
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Printf("[backend] shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Printf("[backend] server error: %v", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[backend] graceful shutdown failed: %v", err)
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Printf("[backend] forced close failed: %v", closeErr)
		}
	}

	cancel()
	controller.CancelSearches()
	if runErr != nil {
		log.Printf("[backend] exiting after server error: %v", runErr)
	}
}

func serveWS(hub *Hub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.Register(client)
	log.Printf("[ws] client connected")

	client.enqueue(mustMarshal(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))}))

	go func() {
		defer conn.Close()
		if err := writeWS(conn, client.send); err != nil {
			return
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Unregister(client)
			log.Printf("[ws] client disconnected")
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.enqueue(mustMarshal(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))}))
		}
	}
}

func controllerStatus(controller *GameController) StatusResponse {
	snap := controller.Snapshot()
	black, white := snap.State.Board.Counts()
	status := StatusResponse{
		Board:        boardToRows(snap.State.Board),
		NextPlayer:   int(snap.State.ToMove),
		Mode:         string(snap.State.Mode),
		LegalMoves:   snap.LegalMoves,
		Notation:     snap.State.Notation,
		MovesText:    snap.MovesText,
		LastFlips:    snap.State.LastFlips,
		BlackCount:   black,
		WhiteCount:   white,
		BlackPercent: stoneSharePercent(black, white),
		MustPass:     snap.MustPass,
		PassStreak:   snap.State.PassStreak,
		GameOver:     snap.GameOver,
		AiThinking:   snap.AiThinking,
		CanUndo:      snap.CanUndo,
		CanRedo:      snap.CanRedo,
	}
	if status.LegalMoves == nil {
		status.LegalMoves = []Move{}
	}
	if status.Notation == nil {
		status.Notation = []string{}
	}
	if status.LastFlips == nil {
		status.LastFlips = []Move{}
	}
	if snap.State.HasLastMove {
		m := snap.State.LastMove
		status.LastMove = &m
	}
	if snap.GameOver {
		status.Draw = !snap.HasWinner
		if snap.HasWinner {
			status.Winner = int(snap.Winner)
		}
	}
	return status
}

func boardToRows(board Board) [][]int {
	rows := make([][]int, BoardSize)
	for y := 0; y < BoardSize; y++ {
		rows[y] = make([]int, BoardSize)
		for x := 0; x < BoardSize; x++ {
			rows[y][x] = int(board.At(x, y))
		}
	}
	return rows
}

// stoneSharePercent is Black's share of the stones on the board, the
// number behind the evaluation bar in the clients. An empty board reads
// as even.
func stoneSharePercent(black, white int) int {
	total := black + white
	if total == 0 {
		return 50
	}
	return clamp((100*black+total/2)/total, 0, 100)
}

func decodeSteps(r *http.Request) int {
	var payload stepsRequest
	if r.Body == nil {
		return 0
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return 0
	}
	return payload.Steps
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
