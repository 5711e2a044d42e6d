package medical

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed medical_data.json
var rawDataset []byte

// Record is one entry of the bundled reference dataset. The dataset is loaded
// once at process start and held read-only for the process lifetime.
type Record struct {
	ID           int      `json:"id"`
	Disease      string   `json:"disease"`
	Description  string   `json:"description"`
	Department   string   `json:"department"`
	UrgencyLevel string   `json:"urgency_level"`
	Symptoms     []string `json:"symptoms"`
}

// Dataset holds the validated reference records plus the precomputed
// symptom vocabulary.
type Dataset struct {
	records  []Record
	symptoms []string
}

// Load decodes and validates the embedded reference dataset.
func Load() (*Dataset, error) {
	return loadFrom(rawDataset)
}

func loadFrom(raw []byte) (*Dataset, error) {
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode medical dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("medical dataset is empty")
	}

	seen := make(map[string]bool)
	for i := range records {
		r := &records[i]
		if r.Disease == "" {
			return nil, fmt.Errorf("record %d: disease is required", r.ID)
		}
		if len(r.Symptoms) == 0 {
			return nil, fmt.Errorf("record %d (%s): at least one symptom is required", r.ID, r.Disease)
		}
		for j, s := range r.Symptoms {
			s = strings.ToLower(strings.TrimSpace(s))
			if s == "" {
				return nil, fmt.Errorf("record %d (%s): blank symptom", r.ID, r.Disease)
			}
			r.Symptoms[j] = s
			seen[s] = true
		}
	}

	symptoms := make([]string, 0, len(seen))
	for s := range seen {
		symptoms = append(symptoms, s)
	}
	sort.Strings(symptoms)

	return &Dataset{records: records, symptoms: symptoms}, nil
}

// All returns every reference record.
func (d *Dataset) All() []Record {
	return d.records
}

// AllSymptoms returns the deduplicated, lexicographically sorted symptom
// vocabulary across all records.
func (d *Dataset) AllSymptoms() []string {
	return d.symptoms
}
