package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"
)

// The trainer evolves evaluation weights by playing the backend against
// itself: a population of weight sets plays round-robin games from shared
// random openings, Elo ranks them, and the top set challenges the
// current champion over a validation suite before being promoted.

type phaseWeights struct {
	Positional float64 `json:"positional"`
	Corner     float64 `json:"corner"`
	Mobility   float64 `json:"mobility"`
	Frontier   float64 `json:"frontier"`
	Danger     float64 `json:"danger"`
	Material   float64 `json:"material"`
}

type evalWeights struct {
	Early phaseWeights `json:"early"`
	Mid   phaseWeights `json:"mid"`
	Late  phaseWeights `json:"late"`
}

type moveDTO struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type statusResponse struct {
	Mode       string   `json:"mode"`
	GameOver   bool     `json:"game_over"`
	Winner     int      `json:"winner"`
	Draw       bool     `json:"draw"`
	Notation   []string `json:"notation"`
	BlackCount int      `json:"black_count"`
	WhiteCount int      `json:"white_count"`
}

type legalMovesResponse struct {
	Moves []moveDTO `json:"moves"`
}

type contender struct {
	ID      string
	Weights evalWeights
	Elo     float64
}

type trainerMatch struct {
	BlackID      string `json:"black_id"`
	WhiteID      string `json:"white_id"`
	OpeningIndex int    `json:"opening_index"`
	Stage        string `json:"stage"`
}

type trainerStanding struct {
	ID  string  `json:"id"`
	Elo float64 `json:"elo"`
}

type trainerStatus struct {
	Running             bool    `json:"running"`
	Phase               string  `json:"phase"`
	Message             string  `json:"message"`
	StartedAt           string  `json:"started_at"`
	UpdatedAt           string  `json:"updated_at"`
	Generation          int     `json:"generation"`
	GamesPlayed         int     `json:"games_played"`
	PopulationSize      int     `json:"population_size"`
	LastValidationRate  float64 `json:"last_validation_rate"`
	ValidationThreshold float64 `json:"validation_threshold"`
	TrainingOpenings    int     `json:"training_openings"`
	RoundMatchesTotal   int     `json:"round_matches_total"`
	EtaSeconds          int     `json:"eta_seconds"`

	CurrentMatch  *trainerMatch     `json:"current_match,omitempty"`
	TopContenders []trainerStanding `json:"top_contenders,omitempty"`
	Champion      evalWeights       `json:"champion_weights"`
	Challenger    evalWeights       `json:"challenger_weights"`
}

type trainer struct {
	client       *http.Client
	baseURL      string
	pollInterval time.Duration
	apiAddr      string
	logDir       string

	mutationStrength   float64
	gameTimeout        time.Duration
	aiDepth            int
	aiTimeBudgetMs     int
	populationSize     int
	eliteCount         int
	trainingOpenings   int
	validationOpenings int
	openingPlies       int
	eloK               float64
	validationPassRate float64

	savedConfig map[string]any

	statusMu  sync.RWMutex
	status    trainerStatus
	jobMu     sync.Mutex
	jobCancel context.CancelFunc
	jobDone   chan struct{}
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	t := &trainer{
		client:       &http.Client{Timeout: 10 * time.Second},
		baseURL:      getenv("BACKEND_URL", "http://localhost:8080"),
		pollInterval: time.Duration(getenvInt("POLL_INTERVAL_MS", 250)) * time.Millisecond,
		apiAddr:      getenv("TRAINER_API_ADDR", ":8090"),
		logDir:       getenv("TRAINER_LOG_DIR", "logs"),

		mutationStrength:   getenvFloat("TRAINER_MUTATION_STRENGTH", 0.08),
		gameTimeout:        time.Duration(getenvInt("TRAINER_GAME_TIMEOUT_SEC", 300)) * time.Second,
		aiDepth:            getenvInt("TRAINER_AI_DEPTH", 4),
		aiTimeBudgetMs:     getenvInt("TRAINER_AI_TIME_BUDGET_MS", 500),
		populationSize:     getenvInt("TRAINER_POPULATION_SIZE", 6),
		eliteCount:         getenvInt("TRAINER_ELITE_COUNT", 2),
		trainingOpenings:   getenvInt("TRAINER_TRAINING_OPENINGS", 4),
		validationOpenings: getenvInt("TRAINER_VALIDATION_OPENINGS", 4),
		openingPlies:       getenvInt("TRAINER_OPENING_PLIES", 4),
		eloK:               getenvFloat("TRAINER_ELO_K", 20),
		validationPassRate: getenvFloat("TRAINER_VALIDATION_PASS_RATE", 0.55),
	}
	if t.populationSize < 4 {
		t.populationSize = 4
	}
	if t.eliteCount < 1 {
		t.eliteCount = 1
	}
	if t.eliteCount >= t.populationSize {
		t.eliteCount = t.populationSize - 1
	}
	if t.validationPassRate <= 0 || t.validationPassRate > 1 {
		t.validationPassRate = 0.55
	}
	now := time.Now().UTC().Format(time.RFC3339)
	t.status = trainerStatus{Phase: "idle", Message: "service ready", StartedAt: now, UpdatedAt: now}

	log.Info().
		Str("backend", t.baseURL).
		Str("api", t.apiAddr).
		Int("population", t.populationSize).
		Int("opening-plies", t.openingPlies).
		Msg("trainer-started")

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if autostart := getenv("TRAINER_AUTOSTART", "1"); autostart == "1" || autostart == "true" || autostart == "yes" {
		if err := t.startTraining(); err != nil {
			log.Error().Err(err).Msg("autostart-failed")
		}
	}

	g := errgroup.Group{}
	g.Go(func() error { return t.serveStatusAPI(sigCtx) })
	g.Go(func() error {
		<-sigCtx.Done()
		_ = t.stopTraining("shutdown")
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("trainer-exit")
	}
	log.Info().Msg("trainer-stopped")
}

// serveStatusAPI exposes training progress and start/stop control on a
// small side server, so a dashboard can watch a long run.
func (t *trainer) serveStatusAPI(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/trainer/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "running": t.getStatus().Running})
	})
	mux.HandleFunc("/api/trainer/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	mux.HandleFunc("/api/trainer/start", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		if err := t.startTraining(); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, t.getStatus())
	})
	mux.HandleFunc("/api/trainer/stop", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		if err := t.stopTraining("requested via api"); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, t.getStatus())
	})

	server := &http.Server{Addr: t.apiAddr, Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (t *trainer) getStatus() trainerStatus {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	return t.status
}

func (t *trainer) updateStatus(mutator func(*trainerStatus)) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	mutator(&t.status)
	t.status.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

func (t *trainer) startTraining() error {
	t.jobMu.Lock()
	defer t.jobMu.Unlock()
	if t.jobCancel != nil {
		return fmt.Errorf("training already running")
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.jobCancel = cancel
	t.jobDone = done
	t.updateStatus(func(s *trainerStatus) {
		s.Running = true
		s.Phase = "starting"
		s.Message = "training starting"
		s.GamesPlayed = 0
	})
	go func() {
		defer close(done)
		if err := t.waitBackendReady(ctx); err != nil {
			t.updateStatus(func(s *trainerStatus) {
				s.Phase = "error"
				s.Message = err.Error()
			})
		} else if err := t.runTraining(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("training-failed")
			t.updateStatus(func(s *trainerStatus) {
				s.Phase = "error"
				s.Message = err.Error()
			})
		}
		t.updateStatus(func(s *trainerStatus) {
			s.Running = false
			if s.Phase != "error" {
				s.Phase = "idle"
				s.Message = "service ready"
			}
		})
		t.jobMu.Lock()
		t.jobCancel = nil
		t.jobDone = nil
		t.jobMu.Unlock()
	}()
	return nil
}

func (t *trainer) stopTraining(reason string) error {
	t.jobMu.Lock()
	cancel := t.jobCancel
	done := t.jobDone
	t.jobMu.Unlock()
	if cancel == nil {
		return fmt.Errorf("no running training job")
	}
	log.Info().Str("reason", reason).Msg("stopping-training")
	cancel()
	if done != nil {
		<-done
	}
	return nil
}

func (t *trainer) runTraining(ctx context.Context) error {
	if err := t.applyConfigOverride(); err != nil {
		return err
	}
	var finalChampion *evalWeights
	defer func() {
		if err := t.restoreConfig(finalChampion); err != nil {
			log.Error().Err(err).Msg("config-restore-failed")
		}
	}()

	base, err := t.getBaseWeights()
	if err != nil {
		return err
	}
	trainOpenings, err := t.buildOpeningSuite(ctx, t.trainingOpenings)
	if err != nil {
		return err
	}
	valOpenings, err := t.buildOpeningSuite(ctx, t.validationOpenings)
	if err != nil {
		return err
	}

	champion := contender{ID: "champion", Weights: base, Elo: 1500}
	population := t.initializePopulation(base)
	_ = t.persistWeights("champion_weights.json", champion.Weights)

	t.updateStatus(func(s *trainerStatus) {
		s.Phase = "running"
		s.Message = "weight training running"
		s.Generation = 0
		s.PopulationSize = t.populationSize
		s.ValidationThreshold = t.validationPassRate
		s.TrainingOpenings = t.trainingOpenings
		s.Champion = champion.Weights
		s.TopContenders = toStandings(population, 8)
	})

	for generation := 1; ; generation++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		roundTotal := (len(population) * (len(population) - 1) / 2) * len(trainOpenings)
		roundStart := time.Now()
		t.updateStatus(func(s *trainerStatus) {
			s.Generation = generation
			s.GamesPlayed = 0
			s.RoundMatchesTotal = roundTotal
			s.EtaSeconds = 0
		})

		games, err := t.runPopulationRound(ctx, population, trainOpenings, generation, roundStart, roundTotal)
		if err != nil {
			return err
		}
		sortContendersByElo(population)
		best := population[0]

		promoted := false
		if best.Weights != champion.Weights {
			points, total, err := t.runValidation(ctx, best.Weights, champion.Weights, valOpenings)
			if err != nil {
				return err
			}
			rate := 0.0
			if total > 0 {
				rate = points / total
			}
			t.updateStatus(func(s *trainerStatus) { s.LastValidationRate = rate })
			if rate >= t.validationPassRate {
				champion = contender{ID: fmt.Sprintf("champion-g%d", generation), Weights: best.Weights, Elo: 1500}
				promoted = true
			}
			log.Info().
				Int("generation", generation).
				Float64("validation-rate", rate).
				Bool("promoted", promoted).
				Msg("validation-complete")
		}

		w := champion.Weights
		finalChampion = &w
		_ = t.persistWeights("champion_weights.json", champion.Weights)
		t.updateStatus(func(s *trainerStatus) {
			s.GamesPlayed = games
			s.CurrentMatch = nil
			s.EtaSeconds = 0
			s.Champion = champion.Weights
			if len(population) > 1 {
				s.Challenger = population[1].Weights
			}
			s.TopContenders = toStandings(population, 8)
		})
		log.Info().Int("generation", generation).Int("games", games).Bool("promoted", promoted).Msg("generation-complete")
		population = t.nextGeneration(champion.Weights, population)
	}
}

func (t *trainer) runPopulationRound(ctx context.Context, population []contender, openings [][]moveDTO, generation int, roundStart time.Time, roundTotal int) (int, error) {
	games := 0
	for i := 0; i < len(population); i++ {
		for j := i + 1; j < len(population); j++ {
			for openingIdx, opening := range openings {
				if ctx.Err() != nil {
					return games, ctx.Err()
				}
				t.updateStatus(func(s *trainerStatus) {
					s.CurrentMatch = &trainerMatch{
						BlackID:      population[i].ID,
						WhiteID:      population[j].ID,
						OpeningIndex: openingIdx,
						Stage:        "population",
					}
				})
				result, err := t.playHeadToHead(ctx, population[i].Weights, population[j].Weights, opening)
				if err != nil {
					return games, err
				}
				updateElo(&population[i], &population[j], result, t.eloK)
				games++

				ranked := make([]contender, len(population))
				copy(ranked, population)
				sortContendersByElo(ranked)
				t.updateStatus(func(s *trainerStatus) {
					s.GamesPlayed = games
					s.TopContenders = toStandings(ranked, 8)
					if roundTotal > 0 && games > 0 {
						avgSec := time.Since(roundStart).Seconds() / float64(games)
						remaining := roundTotal - games
						if remaining < 0 {
							remaining = 0
						}
						s.EtaSeconds = int(math.Round(avgSec * float64(remaining)))
					}
				})
				if games == 1 || games%5 == 0 {
					log.Info().
						Int("generation", generation).
						Int("game", games).
						Str("black", population[i].ID).
						Str("white", population[j].ID).
						Float64("result", result).
						Msg("match-played")
				}
			}
		}
	}
	return games, nil
}

func (t *trainer) runValidation(ctx context.Context, candidate, champion evalWeights, openings [][]moveDTO) (float64, float64, error) {
	points := 0.0
	total := 0.0
	for _, opening := range openings {
		if ctx.Err() != nil {
			return points, total, ctx.Err()
		}
		result, err := t.playHeadToHead(ctx, candidate, champion, opening)
		if err != nil {
			return points, total, err
		}
		points += result
		total += 1.0
	}
	return points, total, nil
}

// playHeadToHead plays one paired match from the given opening, each
// side taking Black once, and returns first's score in [0, 1].
func (t *trainer) playHeadToHead(ctx context.Context, first, second evalWeights, opening []moveDTO) (float64, error) {
	points := 0.0
	for _, firstBlack := range []bool{true, false} {
		black, white := first, second
		if !firstBlack {
			black, white = second, first
		}
		status, err := t.playConfiguredGame(ctx, black, white, opening)
		if err != nil {
			return 0, err
		}
		switch {
		case status.Winner == 1 && firstBlack:
			points += 1.0
		case status.Winner == -1 && !firstBlack:
			points += 1.0
		case status.Draw:
			points += 0.5
		}
	}
	return points / 2.0, nil
}

// playConfiguredGame replays the opening on a fresh board, seats the two
// weight sets, and polls until the game ends.
func (t *trainer) playConfiguredGame(ctx context.Context, black, white evalWeights, opening []moveDTO) (statusResponse, error) {
	if err := t.replayOpening(opening); err != nil {
		return statusResponse{}, err
	}
	if err := t.postJSON("/api/mode", map[string]any{
		"mode":          "ai_vs_ai",
		"black_weights": black,
		"white_weights": white,
	}, nil); err != nil {
		return statusResponse{}, err
	}
	deadline := time.Now().Add(t.gameTimeout)
	for {
		if ctx.Err() != nil {
			return statusResponse{}, ctx.Err()
		}
		status, err := t.fetchStatus()
		if err != nil {
			return statusResponse{}, err
		}
		if status.GameOver {
			return status, nil
		}
		if t.gameTimeout > 0 && time.Now().After(deadline) {
			// A fresh pvp game cancels the stalled AI match.
			_ = t.postJSON("/api/new", map[string]any{"mode": "pvp"}, nil)
			return statusResponse{}, fmt.Errorf("game timeout after %s", t.gameTimeout)
		}
		if !sleepWithContext(ctx, t.pollInterval) {
			return statusResponse{}, ctx.Err()
		}
	}
}

// buildOpeningSuite samples shared openings by playing random legal
// moves on the backend. Replaying the same moves is always legal again,
// so a suite built once serves every pairing in the round.
func (t *trainer) buildOpeningSuite(ctx context.Context, count int) ([][]moveDTO, error) {
	suite := make([][]moveDTO, 0, count)
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		opening, err := t.sampleOpening()
		if err != nil {
			return nil, err
		}
		suite = append(suite, opening)
	}
	return suite, nil
}

func (t *trainer) sampleOpening() ([]moveDTO, error) {
	if err := t.postJSON("/api/new", map[string]any{"mode": "pvp"}, nil); err != nil {
		return nil, err
	}
	opening := make([]moveDTO, 0, t.openingPlies)
	for len(opening) < t.openingPlies {
		var legal legalMovesResponse
		if err := t.getJSON("/api/legal-moves", &legal); err != nil {
			return nil, err
		}
		if len(legal.Moves) == 0 {
			break
		}
		move := legal.Moves[frand.Intn(len(legal.Moves))]
		if err := t.postJSON("/api/move", move, nil); err != nil {
			return nil, err
		}
		opening = append(opening, move)
	}
	return opening, nil
}

func (t *trainer) replayOpening(opening []moveDTO) error {
	if err := t.postJSON("/api/new", map[string]any{"mode": "pvp"}, nil); err != nil {
		return err
	}
	for _, move := range opening {
		if err := t.postJSON("/api/move", move, nil); err != nil {
			return err
		}
	}
	return nil
}

func (t *trainer) initializePopulation(seed evalWeights) []contender {
	pop := make([]contender, 0, t.populationSize)
	pop = append(pop, contender{ID: "p0", Weights: seed, Elo: 1500})
	for i := 1; i < t.populationSize; i++ {
		pop = append(pop, contender{
			ID:      fmt.Sprintf("p%d", i),
			Weights: t.mutateWeights(seed),
			Elo:     1500,
		})
	}
	return pop
}

func (t *trainer) nextGeneration(champion evalWeights, ranked []contender) []contender {
	next := make([]contender, 0, t.populationSize)
	next = append(next, contender{ID: "p0", Weights: champion, Elo: 1500})
	for i := 0; i < len(ranked) && len(next) < t.populationSize && i < t.eliteCount+1; i++ {
		if ranked[i].Weights == champion {
			continue
		}
		next = append(next, contender{
			ID:      fmt.Sprintf("elite-%d", i),
			Weights: ranked[i].Weights,
			Elo:     1500,
		})
	}
	parentPool := ranked
	if len(parentPool) > t.eliteCount+1 {
		parentPool = parentPool[:t.eliteCount+1]
	}
	for len(next) < t.populationSize {
		parent := parentPool[frand.Intn(len(parentPool))]
		next = append(next, contender{
			ID:      fmt.Sprintf("mut-%d", len(next)),
			Weights: t.mutateWeights(parent.Weights),
			Elo:     1500,
		})
	}
	return next
}

// mutateWeights jitters every coefficient by the mutation strength, both
// multiplicatively and additively so zero-valued genes can still wake
// up. Negative coefficients would invert a signal, so the floor is 0.
func (t *trainer) mutateWeights(base evalWeights) evalWeights {
	mutate := func(v float64) float64 {
		factor := 1 + (frand.Float64()*2-1)*t.mutationStrength
		next := v*factor + (frand.Float64()*2-1)*t.mutationStrength
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return v
		}
		return math.Max(0, next)
	}
	mutatePhase := func(p *phaseWeights) {
		p.Positional = mutate(p.Positional)
		p.Corner = mutate(p.Corner)
		p.Mobility = mutate(p.Mobility)
		p.Frontier = mutate(p.Frontier)
		p.Danger = mutate(p.Danger)
		p.Material = mutate(p.Material)
	}
	out := base
	mutatePhase(&out.Early)
	mutatePhase(&out.Mid)
	mutatePhase(&out.Late)
	return out
}

func toStandings(list []contender, limit int) []trainerStanding {
	out := make([]trainerStanding, 0, limit)
	for i := 0; i < len(list) && i < limit; i++ {
		out = append(out, trainerStanding{ID: list[i].ID, Elo: list[i].Elo})
	}
	return out
}

func sortContendersByElo(list []contender) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Elo > list[j].Elo })
}

func updateElo(a, b *contender, resultForA, k float64) {
	expA := 1.0 / (1.0 + math.Pow(10, (b.Elo-a.Elo)/400.0))
	expB := 1.0 / (1.0 + math.Pow(10, (a.Elo-b.Elo)/400.0))
	a.Elo += k * (resultForA - expA)
	b.Elo += k * ((1.0 - resultForA) - expB)
}

// applyConfigOverride snapshots the backend settings and switches them
// to fast training values: shallow fixed depth, no think-time padding,
// no pass banner, no autosave churn.
func (t *trainer) applyConfigOverride() error {
	var cfg map[string]any
	if err := t.getJSON("/api/settings", &cfg); err != nil {
		return err
	}
	t.savedConfig = cfg
	return t.postJSON("/api/settings", map[string]any{
		"ai_depth":           t.aiDepth,
		"ai_time_budget_ms":  t.aiTimeBudgetMs,
		"ai_min_think_ms":    0,
		"auto_pass_delay_ms": 0,
		"autosave_enabled":   false,
	}, nil)
}

// restoreConfig puts the snapshotted settings back and, when training
// produced a champion, leaves its weights installed as the new defaults.
func (t *trainer) restoreConfig(champion *evalWeights) error {
	if t.savedConfig != nil {
		if err := t.postJSON("/api/settings", t.savedConfig, nil); err != nil {
			return err
		}
	}
	if champion != nil {
		log.Info().Msg("installing-champion-weights")
		return t.postJSON("/api/settings", map[string]any{"weights": champion}, nil)
	}
	return nil
}

func (t *trainer) getBaseWeights() (evalWeights, error) {
	var cfg struct {
		Weights evalWeights `json:"weights"`
	}
	if err := t.getJSON("/api/settings", &cfg); err != nil {
		return evalWeights{}, err
	}
	if saved, err := t.readWeightsFile("champion_weights.json"); err == nil {
		return saved, nil
	}
	return cfg.Weights, nil
}

func (t *trainer) persistWeights(name string, weights evalWeights) error {
	if err := os.MkdirAll(t.logDir, 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(weights, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	path := filepath.Join(t.logDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (t *trainer) readWeightsFile(name string) (evalWeights, error) {
	raw, err := os.ReadFile(filepath.Join(t.logDir, name))
	if err != nil {
		return evalWeights{}, err
	}
	var weights evalWeights
	if err := json.Unmarshal(raw, &weights); err != nil {
		return evalWeights{}, err
	}
	return weights, nil
}

func (t *trainer) waitBackendReady(ctx context.Context) error {
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := t.ping(); err == nil {
			return nil
		}
		if !sleepWithContext(ctx, time.Second) {
			return ctx.Err()
		}
	}
	return fmt.Errorf("backend not ready after 60s")
}

func (t *trainer) ping() error {
	resp, err := t.client.Get(t.baseURL + "/api/ping")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping status %d", resp.StatusCode)
	}
	return nil
}

func (t *trainer) fetchStatus() (statusResponse, error) {
	var status statusResponse
	if err := t.getJSON("/api/status", &status); err != nil {
		return statusResponse{}, err
	}
	return status, nil
}

func (t *trainer) getJSON(path string, out any) error {
	resp, err := t.client.Get(t.baseURL + path)
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

func (t *trainer) postJSON(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := t.client.Post(t.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("POST %s -> %d: %s", path, resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
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

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed int
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getenvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed float64
	if _, err := fmt.Sscanf(value, "%f", &parsed); err != nil {
		return fallback
	}
	return parsed
}
