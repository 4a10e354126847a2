// Package modelio decodes model definitions from YAML (ambient, outside
// the core engine's contract — spec §4, C9) and persists finished
// trajectories (C10). Field tags follow
// miretskiy-rollingstone/integration/gensim.go's RocksDBConfig
// convention of a `yaml` tag per field.
package modelio

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/BorisVSchmid/SimInf/internal/engine"
	"github.com/BorisVSchmid/SimInf/internal/models"
)

// SparseConfig is the YAML shape of one compressed-column sparse matrix
// (spec §3).
type SparseConfig struct {
	Rows   int       `yaml:"rows"`
	Cols   int       `yaml:"cols"`
	Ir     []int     `yaml:"ir"`
	Jc     []int     `yaml:"jc"`
	Values []float64 `yaml:"values"`
}

func (s SparseConfig) toIntSparse() engine.Sparse {
	values := make([]int, len(s.Values))
	for i, v := range s.Values {
		values[i] = int(v)
	}
	return engine.NewIntSparse(s.Rows, s.Cols, s.Ir, s.Jc, values)
}

// EventsConfig is the YAML shape of the scheduled-event record (spec §3
// "Event record"). Event is one of "exit", "enter", "internal_transfer",
// "external_transfer"; Node/Dest are one-based on the wire, matching
// spec.md §3's boundary convention, and are rebased to zero-based by the
// event splitter.
type EventsConfig struct {
	Event      []string  `yaml:"event"`
	Time       []int     `yaml:"time"`
	Node       []int     `yaml:"node"`
	Dest       []int     `yaml:"dest"`
	N          []int     `yaml:"n"`
	Proportion []float64 `yaml:"proportion"`
	Select     []int     `yaml:"select"`
	Shift      []int     `yaml:"shift"`
}

var eventKindByName = map[string]engine.EventKind{
	"exit":              engine.Exit,
	"enter":             engine.Enter,
	"internal_transfer": engine.InternalTransfer,
	"external_transfer": engine.ExternalTransfer,
}

// ToEventRecord decodes the event kinds. Node/Dest/Select/Shift are left
// one-based exactly as read from the wire — engine.Split is the sole
// place that rebases all four to zero-based (spec §4.3), so this must
// not subtract 1 itself or every E1/E2 event would be rebased twice.
func (e EventsConfig) ToEventRecord() (*engine.EventRecord, error) {
	kinds := make([]engine.EventKind, len(e.Event))
	for i, name := range e.Event {
		k, ok := eventKindByName[name]
		if !ok {
			return nil, fmt.Errorf("modelio: unknown event kind %q at index %d", name, i)
		}
		kinds[i] = k
	}

	return &engine.EventRecord{
		Event:      kinds,
		Time:       e.Time,
		Node:       e.Node,
		Dest:       e.Dest,
		N:          e.N,
		Proportion: e.Proportion,
		Select:     e.Select,
		Shift:      e.Shift,
	}, nil
}

// ModelConfig is the YAML model definition a run loads: dimensions,
// initial state, sparse descriptors, and run parameters. The large flat
// arrays (u0, ldata, gdata) stay plain YAML sequences; propensity
// functions and the post-step hook are never part of the file — they are
// registered in Go by name (see internal/models) and looked up after
// decoding (spec §6 "Config format").
type ModelConfig struct {
	Dims struct {
		Nn   int `yaml:"nn"`
		Nc   int `yaml:"nc"`
		Nt   int `yaml:"nt"`
		Nd   int `yaml:"nd"`
		Nld  int `yaml:"nld"`
		Tlen int `yaml:"tlen"`
	} `yaml:"dims"`

	U0    []int     `yaml:"u0"`
	V0    []float64 `yaml:"v0"`
	Ldata []float64 `yaml:"ldata"`
	Gdata []float64 `yaml:"gdata"`

	S SparseConfig `yaml:"s"`
	G SparseConfig `yaml:"g"`
	E SparseConfig `yaml:"e"`
	N SparseConfig `yaml:"n"`

	Events EventsConfig `yaml:"events"`

	Tspan []float64 `yaml:"tspan"`

	Model string `yaml:"model"` // name registered in internal/models

	Run struct {
		Seed      uint64 `yaml:"seed"`
		Nthread   int    `yaml:"nthread"`
		Verbosity int    `yaml:"verbosity"`
	} `yaml:"run"`
}

// Load decodes a ModelConfig from path, applying SIMINF_SEED/
// SIMINF_THREADS/SIMINF_VERBOSE environment overrides loaded through
// godotenv first (spec §6 "Config format").
func Load(path string) (*ModelConfig, error) {
	_ = godotenv.Load() // optional: missing .env is not an error

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modelio: read %s: %w", path, err)
	}

	var cfg ModelConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("modelio: decode %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *ModelConfig) {
	if v, ok := os.LookupEnv("SIMINF_SEED"); ok {
		var seed uint64
		if _, err := fmt.Sscanf(v, "%d", &seed); err == nil {
			cfg.Run.Seed = seed
		}
	}
	if v, ok := os.LookupEnv("SIMINF_THREADS"); ok {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.Run.Nthread = n
		}
	}
	if v, ok := os.LookupEnv("SIMINF_VERBOSE"); ok {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			cfg.Run.Verbosity = n
		}
	}
}

// ToDims returns the engine.Dims this config describes.
func (c *ModelConfig) ToDims() engine.Dims {
	return engine.Dims{
		Nn: c.Dims.Nn, Nc: c.Dims.Nc, Nt: c.Dims.Nt,
		Nd: c.Dims.Nd, Nld: c.Dims.Nld, Tlen: c.Dims.Tlen,
	}
}

// BuildModel assembles an *engine.Model from the decoded sparse
// descriptors and Gdata, plus the propensity table and post-step hook
// registered under c.Model in internal/models — the core engine never
// depends on a concrete disease model (spec §4.1).
func (c *ModelConfig) BuildModel() (*engine.Model, error) {
	callbacks, err := models.Lookup(c.Model)
	if err != nil {
		return nil, err
	}

	return &engine.Model{
		Dims:   c.ToDims(),
		S:      c.S.toIntSparse(),
		G:      c.G.toIntSparse(),
		E:      c.E.toIntSparse(),
		N:      c.N.toIntSparse(),
		TrFun:  callbacks.TrFun,
		PtsFun: callbacks.PtsFun,
		Gdata:  c.Gdata,
	}, nil
}

// BuildState assembles the initial *engine.State from the decoded u0/v0/
// ldata.
func (c *ModelConfig) BuildState() *engine.State {
	return engine.NewState(c.ToDims(), c.U0, c.V0, c.Ldata)
}
