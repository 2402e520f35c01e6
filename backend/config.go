package main

import (
	"encoding/json"
	"os"
	"sync"
)

type Config struct {
	HTTPAddr        string `json:"http_addr"`
	SavePath        string `json:"save_path"`
	AutosaveEnabled bool   `json:"autosave_enabled"`

	AiDepth          int  `json:"ai_depth"`
	AiTimeBudgetMs   int  `json:"ai_time_budget_ms"`
	AiMinThinkMs     int  `json:"ai_min_think_ms"`
	HintDepth        int  `json:"hint_depth"`
	AutoPassDelayMs  int  `json:"auto_pass_delay_ms"`
	AiLogSearchStats bool `json:"ai_log_search_stats"`

	Weights EvalWeights `json:"weights"`
}

// PhaseWeights are the evaluation coefficients for one stretch of the
// game. One set exists per phase; the evaluator blends them by game
// progress.
type PhaseWeights struct {
	Positional float64 `json:"positional"`
	Corner     float64 `json:"corner"`
	Mobility   float64 `json:"mobility"`
	Frontier   float64 `json:"frontier"`
	Danger     float64 `json:"danger"`
	Material   float64 `json:"material"`
}

type EvalWeights struct {
	Early PhaseWeights `json:"early"`
	Mid   PhaseWeights `json:"mid"`
	Late  PhaseWeights `json:"late"`
}

func DefaultEvalWeights() EvalWeights {
	return EvalWeights{
		// Openings are about shape, not stones: mobility and corner
		// safety dominate, material is nearly flat.
		Early: PhaseWeights{Positional: 1.0, Corner: 8.0, Mobility: 8.0, Frontier: 0.0, Danger: 4.0, Material: 0.5},
		Mid:   PhaseWeights{Positional: 0.5, Corner: 9.0, Mobility: 10.0, Frontier: 6.0, Danger: 6.0, Material: 2.0},

		// The endgame is counting. Everything else fades.
		Late: PhaseWeights{Positional: 0.2, Corner: 10.0, Mobility: 2.0, Frontier: 2.0, Danger: 1.0, Material: 12.0},
	}
}

func DefaultConfig() Config {
	return Config{
		HTTPAddr:        ":8080",
		SavePath:        "othello_save.json",
		AutosaveEnabled: true,

		// Search effort (primary strength/latency lever)
		AiDepth:        7,
		AiTimeBudgetMs: 2000,
		AiMinThinkMs:   350, // instant endgame replies still read as deliberate
		HintDepth:      5,

		// The stuck side shows a banner this long before auto-passing
		AutoPassDelayMs: 750,

		AiLogSearchStats: false, // turn ON temporarily to tune; noisy

		Weights: DefaultEvalWeights(),
	}
}

// Sanitize clamps the tunables into working ranges and fills in anything
// missing. Every settings update and every config loaded from disk goes
// through here.
func (c Config) Sanitize() Config {
	defaults := DefaultConfig()
	c.AiDepth = clamp(c.AiDepth, 1, 20)
	c.AiTimeBudgetMs = clamp(c.AiTimeBudgetMs, 0, 600_000)
	c.AiMinThinkMs = clamp(c.AiMinThinkMs, 0, 10_000)
	c.HintDepth = clamp(c.HintDepth, 1, 12)
	c.AutoPassDelayMs = clamp(c.AutoPassDelayMs, 0, 10_000)
	if c.HTTPAddr == "" {
		c.HTTPAddr = defaults.HTTPAddr
	}
	if c.SavePath == "" {
		c.SavePath = defaults.SavePath
	}
	if c.Weights == (EvalWeights{}) {
		c.Weights = defaults.Weights
	}
	return c
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func UpdateConfig(config Config) {
	configStore.Update(config.Sanitize())
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) {
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
}

// LoadConfigFile overlays settings from a JSON file onto the defaults.
// A missing file is not an error; the defaults stand.
func LoadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	config := DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return err
	}
	configStore.Update(config.Sanitize())
	return nil
}

func SaveConfigFile(path string) error {
	data, err := json.MarshalIndent(GetConfig(), "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
