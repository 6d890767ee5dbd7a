package experiment

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/gocrawler/agent/random"
	"github.com/samuelfneumann/gocrawler/environment/envconfig"
	"github.com/samuelfneumann/gocrawler/experiment/tracker"
	"github.com/samuelfneumann/gocrawler/experiment/trackers"
)

const (
	cutoff   = 50
	maxSteps = 300
)

func newConfig() Config {
	return Config{
		Type:      OnlineExp,
		MaxSteps:  maxSteps,
		EnvConf:   envconfig.NewConfig(envconfig.Crawler, envconfig.Walk, cutoff, 0.99),
		AgentConf: random.NewConfigList([]float64{-1}, []float64{1}),
	}
}

func TestOnline(t *testing.T) {
	returns := trackers.NewReturn(filepath.Join(t.TempDir(), "return.bin"))
	lengths := trackers.NewEpisodeLength(
		filepath.Join(t.TempDir(), "length.bin"))

	exp, err := newConfig().CreateExp(0, 7, []tracker.Tracker{returns})
	if err != nil {
		t.Fatal(err)
	}
	exp.Register(lengths)

	if err := exp.Run(); err != nil {
		t.Fatal(err)
	}
	if steps := exp.(*Online).Steps(); steps != maxSteps {
		t.Errorf("steps: \n\twant(%v) \n\thave(%v)", maxSteps, steps)
	}

	// Every episode lasts at most cutoff steps, so at least
	// maxSteps / cutoff episodes finish
	l := lengths.Lengths()
	if len(l) < maxSteps/cutoff {
		t.Errorf("finished episodes: \n\twant(>= %v) \n\thave(%v)",
			maxSteps/cutoff, len(l))
	}
	if len(l) != len(returns.Returns()) {
		t.Errorf("tracked %v lengths but %v returns", len(l),
			len(returns.Returns()))
	}

	total := 0
	for _, length := range l {
		if length < 1 || length > cutoff {
			t.Errorf("episode length %v outside [1, %v]", length, cutoff)
		}
		total += length
	}
	if total > maxSteps {
		t.Errorf("total episode length %v exceeds max steps %v", total,
			maxSteps)
	}

	if err := exp.Save(); err != nil {
		t.Fatal(err)
	}
}

func TestOnlineDeterministic(t *testing.T) {
	run := func() []float64 {
		returns := trackers.NewReturn("")
		exp, err := newConfig().CreateExp(0, 11, []tracker.Tracker{returns})
		if err != nil {
			t.Fatal(err)
		}
		if err := exp.Run(); err != nil {
			t.Fatal(err)
		}
		return returns.Returns()
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("episodes differ with equal seeds: %v, %v", len(first),
			len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("return %v differs with equal seeds: %v, %v", i,
				first[i], second[i])
		}
	}
}

func TestLoadConfig(t *testing.T) {
	data, err := json.Marshal(newConfig())
	if err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(filename)
	if err != nil {
		t.Fatal(err)
	}
	if c.Type != OnlineExp || c.MaxSteps != maxSteps {
		t.Errorf("loaded config: \n\twant(%v, %v) \n\thave(%v, %v)",
			OnlineExp, maxSteps, c.Type, c.MaxSteps)
	}
	if c.EnvConf.EpisodeCutoff != cutoff {
		t.Errorf("episode cutoff: \n\twant(%v) \n\thave(%v)", cutoff,
			c.EnvConf.EpisodeCutoff)
	}
	if want := (random.Config{Low: -1, High: 1}); c.AgentConf.At(0) != want {
		t.Errorf("agent config: \n\twant(%v) \n\thave(%v)", want,
			c.AgentConf.At(0))
	}

	if _, err := c.CreateExp(0, 1, nil); err != nil {
		t.Errorf("createExp from loaded config: %v", err)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("loadConfig: expected error for missing file")
	}
}

func TestCreateExpErrors(t *testing.T) {
	tests := map[string]func(*Config){
		"type":      func(c *Config) { c.Type = "Offline" },
		"max steps": func(c *Config) { c.MaxSteps = 0 },
		"env":       func(c *Config) { c.EnvConf.Task = "Run" },
		"agent": func(c *Config) {
			c.AgentConf = random.NewConfigList([]float64{1}, []float64{-1})
		},
	}

	for name, modify := range tests {
		t.Run(name, func(t *testing.T) {
			c := newConfig()
			modify(&c)
			if _, err := c.CreateExp(0, 0, nil); err == nil {
				t.Errorf("createExp: expected error")
			}
		})
	}
}
