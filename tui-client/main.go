package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/rivo/tview"
	"golang.org/x/sync/errgroup"
)

// Terminal client for the Othello backend. The board and keybindings run
// locally; every action is an API call and the shown position always
// comes from the server, either over the websocket stream or from the
// response to an action.

type moveDTO struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type statusFrame struct {
	Board        [][]int   `json:"board"`
	NextPlayer   int       `json:"next_player"`
	Mode         string    `json:"mode"`
	LegalMoves   []moveDTO `json:"legal_moves"`
	MovesText    string    `json:"moves_text"`
	LastMove     *moveDTO  `json:"last_move"`
	LastFlips    []moveDTO `json:"last_flips"`
	BlackCount   int       `json:"black_count"`
	WhiteCount   int       `json:"white_count"`
	BlackPercent int       `json:"black_percent"`
	MustPass     bool      `json:"must_pass"`
	GameOver     bool      `json:"game_over"`
	Winner       int       `json:"winner"`
	Draw         bool      `json:"draw"`
	AiThinking   bool      `json:"ai_thinking"`
	CanUndo      bool      `json:"can_undo"`
	CanRedo      bool      `json:"can_redo"`
}

type hintFrame struct {
	Move     *moveDTO `json:"move"`
	Notation string   `json:"notation"`
}

type wsFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

var spinners = []string{"|", "/", "-", "\\"}

var modeCycle = []string{"pvp", "ai_white", "ai_black", "ai_vs_ai"}

type client struct {
	baseURL string
	http    *http.Client

	app   *tview.Application
	board *tview.Table
	side  *tview.TextView
	flex  *tview.Flex

	mu            sync.Mutex
	latest        statusFrame
	haveStatus    bool
	hint          *hintFrame
	message       string
	spin          int
	gameOverShown bool
}

func main() {
	c := &client{
		baseURL: getenv("OTHELLO_BACKEND", "http://localhost:8080"),
		http:    &http.Client{Timeout: 15 * time.Second},
		app:     tview.NewApplication(),
	}
	c.buildLayout()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	g := errgroup.Group{}
	g.Go(func() error {
		defer cancel()
		return c.app.Run()
	})
	g.Go(func() error {
		<-ctx.Done()
		c.app.Stop()
		return nil
	})
	g.Go(func() error {
		c.streamStatus(ctx)
		return nil
	})
	g.Go(func() error {
		c.runSpinner(ctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "tui-client: %v\n", err)
		os.Exit(1)
	}
}

func (c *client) buildLayout() {
	c.board = tview.NewTable()
	c.board.SetSelectable(true, true)
	c.board.SetBorder(true)
	c.board.SetBorders(true)
	c.board.SetTitleAlign(tview.AlignLeft)
	c.board.SetTitleColor(tcell.ColorGreen)
	c.board.SetBorderColor(tcell.ColorGreen)
	c.board.SetTitle(" Othello - connecting ")
	c.board.Select(3, 3)

	c.side = tview.NewTextView()
	c.side.SetBorder(true)
	c.side.SetTitle("Game")

	c.flex = tview.NewFlex().
		AddItem(c.board, 0, 1, true).
		AddItem(c.side, 42, 1, false)

	c.board.SetSelectedFunc(func(row, column int) {
		c.postAction("/api/move", moveDTO{X: column, Y: row})
	})

	c.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() != tcell.KeyRune {
			return event
		}
		switch event.Rune() {
		case 'q':
			c.app.Stop()
			return nil
		case 'n':
			c.postAction("/api/new", map[string]string{"mode": c.currentMode()})
			return nil
		case 'm':
			c.postAction("/api/mode", map[string]string{"mode": nextMode(c.currentMode())})
			return nil
		case 'p':
			c.postAction("/api/pass", map[string]string{})
			return nil
		case 'u':
			c.postAction("/api/undo", map[string]int{"steps": 0})
			return nil
		case 'r':
			c.postAction("/api/redo", map[string]int{"steps": 0})
			return nil
		case 'h':
			c.requestHint()
			return nil
		}
		return event
	})

	c.app.SetRoot(c.flex, true)
}

// streamStatus keeps a websocket to the backend open and feeds incoming
// status frames into the view, reconnecting with a short backoff. The
// first snapshot is fetched over plain HTTP so the board shows up even
// while the socket is still dialing.
func (c *client) streamStatus(ctx context.Context) {
	var initial statusFrame
	if err := c.getJSON("/api/status", &initial); err == nil {
		c.applyStatus(initial)
	} else {
		c.setMessage(fmt.Sprintf("backend unreachable: %v", err))
		c.redraw()
	}

	wsTarget, err := wsURL(c.baseURL)
	if err != nil {
		c.setMessage(fmt.Sprintf("bad backend url: %v", err))
		c.redraw()
		return
	}
	for ctx.Err() == nil {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsTarget, nil)
		if err != nil {
			if !sleepWithContext(ctx, time.Second) {
				return
			}
			continue
		}
		c.readFrames(ctx, conn)
		if !sleepWithContext(ctx, time.Second) {
			return
		}
	}
}

func (c *client) readFrames(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
			conn.Close()
		}
	}()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame wsFrame
		if err := json.Unmarshal(raw, &frame); err != nil || frame.Type != "status" {
			continue
		}
		var status statusFrame
		if err := json.Unmarshal(frame.Payload, &status); err != nil {
			continue
		}
		c.applyStatus(status)
	}
}

// runSpinner animates the title while the server reports a running
// search. Redraws are queued so they happen on the UI goroutine.
func (c *client) runSpinner(ctx context.Context) {
	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			thinking := c.haveStatus && c.latest.AiThinking
			if thinking {
				c.spin++
			}
			c.mu.Unlock()
			if thinking {
				c.redraw()
			}
		}
	}
}

func (c *client) applyStatus(status statusFrame) {
	c.mu.Lock()
	wasOver := c.haveStatus && c.latest.GameOver
	c.latest = status
	c.haveStatus = true
	c.hint = nil
	if !status.GameOver {
		c.gameOverShown = false
	}
	showModal := status.GameOver && !wasOver && !c.gameOverShown
	if showModal {
		c.gameOverShown = true
	}
	c.mu.Unlock()

	if showModal {
		c.showGameOverModal(status)
		return
	}
	c.redraw()
}

func (c *client) showGameOverModal(status statusFrame) {
	result := "Draw!"
	if !status.Draw {
		result = fmt.Sprintf("%s wins!", playerName(status.Winner))
	}
	text := fmt.Sprintf("Game Over\n%s\nBlack: %d\nWhite: %d", result, status.BlackCount, status.WhiteCount)
	c.app.QueueUpdateDraw(func() {
		modal := tview.NewModal().
			SetText(text).
			AddButtons([]string{"New Game", "Close"}).
			SetDoneFunc(func(buttonIndex int, buttonLabel string) {
				if buttonLabel == "New Game" {
					c.postAction("/api/new", map[string]string{"mode": c.currentMode()})
				}
				c.app.SetRoot(c.flex, true).SetFocus(c.board)
				c.render()
			})
		c.app.SetRoot(modal, false).SetFocus(modal)
	})
}

func (c *client) redraw() {
	c.app.QueueUpdateDraw(c.render)
}

// render repaints both widgets from the latest snapshot. Must run on
// the UI goroutine.
func (c *client) render() {
	c.mu.Lock()
	status := c.latest
	have := c.haveStatus
	hint := c.hint
	message := c.message
	spinner := spinners[c.spin%len(spinners)]
	c.mu.Unlock()
	if !have {
		return
	}

	legal := make(map[moveDTO]bool, len(status.LegalMoves))
	for _, m := range status.LegalMoves {
		legal[m] = true
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			stone := 0
			if y < len(status.Board) && x < len(status.Board[y]) {
				stone = status.Board[y][x]
			}
			cell := tview.NewTableCell(pieceSymbol(stone))
			cell.SetAlign(tview.AlignCenter)
			if stone == 0 && legal[moveDTO{X: x, Y: y}] {
				cell = tview.NewTableCell("· ")
				cell.SetAlign(tview.AlignCenter)
				cell.SetTextColor(tcell.ColorGreen)
			}
			if hint != nil && hint.Move != nil && hint.Move.X == x && hint.Move.Y == y {
				cell = tview.NewTableCell("· ")
				cell.SetAlign(tview.AlignCenter)
				cell.SetTextColor(tcell.ColorYellow)
			}
			if status.LastMove != nil && status.LastMove.X == x && status.LastMove.Y == y {
				cell.SetBackgroundColor(tcell.ColorDarkGreen)
			}
			c.board.SetCell(y, x, cell)
		}
	}

	title := fmt.Sprintf(" Othello - %s to move ", playerName(status.NextPlayer))
	switch {
	case status.GameOver && status.Draw:
		title = " Othello - game over, draw "
	case status.GameOver:
		title = fmt.Sprintf(" Othello - game over, %s wins ", playerName(status.Winner))
	case status.AiThinking:
		title = fmt.Sprintf(" Othello - %s to move %s ", playerName(status.NextPlayer), spinner)
	}
	c.board.SetTitle(title)

	var b strings.Builder
	fmt.Fprintf(&b, "Black ⚫  %d\n", status.BlackCount)
	fmt.Fprintf(&b, "White ⚪  %d\n", status.WhiteCount)
	fmt.Fprintf(&b, "Share    %d%% black\n\n", status.BlackPercent)
	fmt.Fprintf(&b, "Mode     %s\n", modeLabel(status.Mode))
	fmt.Fprintf(&b, "Turn     %s%s\n", playerName(status.NextPlayer), seatLabel(status.Mode, status.NextPlayer))
	if status.MustPass {
		fmt.Fprintf(&b, "         %s must pass\n", playerName(status.NextPlayer))
	}
	if hint != nil && hint.Move != nil {
		fmt.Fprintf(&b, "Hint     %s\n", hint.Notation)
	}
	if status.MovesText != "" {
		fmt.Fprintf(&b, "Moves    %s\n", tailText(status.MovesText, 72))
	}
	b.WriteString("\n")
	b.WriteString("arrows + enter  play\n")
	b.WriteString("n new   m mode  p pass\n")
	b.WriteString("u undo  r redo  h hint\n")
	b.WriteString("q quit\n")
	if message != "" {
		fmt.Fprintf(&b, "\n%s\n", message)
	}
	c.side.SetText(b.String())
}

// postAction fires the request off the UI goroutine and applies the
// status the backend returns, so the board updates even when the
// websocket is down.
func (c *client) postAction(path string, payload any) {
	go func() {
		var status statusFrame
		if err := c.postJSON(path, payload, &status); err != nil {
			c.setMessage(trimError(err))
			c.redraw()
			return
		}
		c.setMessage("")
		c.applyStatus(status)
	}()
}

func (c *client) requestHint() {
	go func() {
		var hint hintFrame
		if err := c.getJSON("/api/hint", &hint); err != nil {
			c.setMessage(trimError(err))
			c.redraw()
			return
		}
		c.mu.Lock()
		if hint.Move == nil {
			c.message = "no hint available"
		} else {
			c.hint = &hint
			c.message = ""
		}
		c.mu.Unlock()
		c.redraw()
	}()
}

func (c *client) setMessage(message string) {
	c.mu.Lock()
	c.message = message
	c.mu.Unlock()
}

func (c *client) currentMode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.haveStatus || c.latest.Mode == "" {
		return "pvp"
	}
	return c.latest.Mode
}

func (c *client) getJSON(path string, out any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("GET %s -> %d: %s", path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) postJSON(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("POST %s -> %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func pieceSymbol(stone int) string {
	switch stone {
	case 1:
		return " ⚫ "
	case -1:
		return " ⚪ "
	default:
		return "    "
	}
}

func playerName(player int) string {
	if player == -1 {
		return "White"
	}
	return "Black"
}

func modeLabel(mode string) string {
	switch mode {
	case "ai_white":
		return "you play Black"
	case "ai_black":
		return "you play White"
	case "ai_vs_ai":
		return "AI vs AI"
	default:
		return "human vs human"
	}
}

func seatLabel(mode string, player int) string {
	aiSeat := false
	switch mode {
	case "ai_white":
		aiSeat = player == -1
	case "ai_black":
		aiSeat = player == 1
	case "ai_vs_ai":
		aiSeat = true
	}
	if aiSeat {
		return " (AI)"
	}
	return ""
}

func nextMode(mode string) string {
	for i, m := range modeCycle {
		if m == mode {
			return modeCycle[(i+1)%len(modeCycle)]
		}
	}
	return modeCycle[0]
}

func tailText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return "…" + text[len(text)-max:]
}

func trimError(err error) string {
	msg := err.Error()
	if len(msg) > 120 {
		msg = msg[:120]
	}
	return msg
}

func wsURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	return u.String(), nil
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
