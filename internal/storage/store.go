package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/cascadesim/internal/cascade"
	"github.com/san-kum/cascadesim/internal/graph"
)

const (
	metadataFile = "metadata.json"
	roundsFile   = "rounds.csv"
	topologyFile = "topology.yaml"
)

var roundsHeader = []string{"round", "status", "alive", "iterations", "max_node", "overloaded", "k", "beta_delta"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Alpha      float64            `json:"alpha"`
	Plan       string             `json:"plan"`
	Steps      []string           `json:"steps"`
	Topology   string             `json:"topology"`
	Nodes      int                `json:"nodes"`
	Edges      int                `json:"edges"`
	Status     string             `json:"status"`
	Rounds     int                `json:"rounds"`
	Iterations int                `json:"iterations"`
	Metrics    map[string]float64 `json:"metrics"`
}

// RoundRow is one line of rounds.csv. MaxNode is -1 when no node was
// removed as the maximum; K and BetaDelta are only set when Has* is true.
type RoundRow struct {
	Round        int
	Status       string
	Alive        int
	Iterations   int
	MaxNode      int
	Overloaded   []uint32
	K            float64
	HasK         bool
	BetaDelta    float64
	HasBetaDelta bool
}

// NewRoundRow converts a pipeline report. Reports for a status reached
// without running steps carry no removal and produce a row without K.
func NewRoundRow(r cascade.RoundReport) RoundRow {
	row := RoundRow{
		Round:        r.Round,
		Status:       r.Status.String(),
		Alive:        r.Alive,
		Iterations:   r.Iterations,
		MaxNode:      -1,
		K:            r.K,
		HasK:         r.HasK,
		BetaDelta:    r.BetaDelta,
		HasBetaDelta: r.HasBetaDelta,
	}
	if r.Removal.Max.Valid() {
		row.MaxNode = r.Removal.Max.Idx()
	}
	for _, n := range r.Removal.Overloaded {
		row.Overloaded = append(row.Overloaded, uint32(n))
	}
	return row
}

// Save writes a run directory holding the metadata, the per-round log and
// the initial topology, and returns the run id.
func (s *Store) Save(meta RunMetadata, desc graph.Desc, rows []RoundRow) (string, error) {
	name := meta.Name
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := graph.SaveDesc(filepath.Join(runDir, topologyFile), desc); err != nil {
		return "", err
	}
	if err := writeRounds(filepath.Join(runDir, roundsFile), rows); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRounds(path string, rows []RoundRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(roundsHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (r RoundRow) record() []string {
	ids := make([]string, len(r.Overloaded))
	for i, n := range r.Overloaded {
		ids[i] = strconv.FormatUint(uint64(n), 10)
	}
	k, beta := "", ""
	if r.HasK {
		k = strconv.FormatFloat(r.K, 'g', -1, 64)
	}
	if r.HasBetaDelta {
		beta = strconv.FormatFloat(r.BetaDelta, 'g', -1, 64)
	}
	return []string{
		strconv.Itoa(r.Round),
		r.Status,
		strconv.Itoa(r.Alive),
		strconv.Itoa(r.Iterations),
		strconv.Itoa(r.MaxNode),
		strings.Join(ids, " "),
		k,
		beta,
	}
}

// List returns every run with readable metadata, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// TopologyPath is the topology description saved with a run.
func (s *Store) TopologyPath(runID string) string {
	return filepath.Join(s.baseDir, runID, topologyFile)
}

func (s *Store) LoadTopology(runID string) (graph.Desc, error) {
	return graph.LoadDesc(s.TopologyPath(runID))
}

func (s *Store) LoadRounds(runID string) ([]RoundRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, roundsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(roundsHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []RoundRow{}, nil
	}

	rows := make([]RoundRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", roundsFile, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(rec []string) (RoundRow, error) {
	var row RoundRow
	var err error

	if row.Round, err = strconv.Atoi(rec[0]); err != nil {
		return row, err
	}
	row.Status = rec[1]
	if row.Alive, err = strconv.Atoi(rec[2]); err != nil {
		return row, err
	}
	if row.Iterations, err = strconv.Atoi(rec[3]); err != nil {
		return row, err
	}
	if row.MaxNode, err = strconv.Atoi(rec[4]); err != nil {
		return row, err
	}
	for _, f := range strings.Fields(rec[5]) {
		n, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return row, err
		}
		row.Overloaded = append(row.Overloaded, uint32(n))
	}
	if rec[6] != "" {
		if row.K, err = strconv.ParseFloat(rec[6], 64); err != nil {
			return row, err
		}
		row.HasK = true
	}
	if rec[7] != "" {
		if row.BetaDelta, err = strconv.ParseFloat(rec[7], 64); err != nil {
			return row, err
		}
		row.HasBetaDelta = true
	}
	return row, nil
}
