package present

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Manifest is the provenance record written next to exported results. It
// captures what went in and what the summaries were computed over, so a
// result file can be traced back to its inputs.
type Manifest struct {
	CreatedAt time.Time `yaml:"created_at"`

	Inputs struct {
		Areas        string `yaml:"areas"`
		Zones        string `yaml:"zones"`
		Observations string `yaml:"observations"`
	} `yaml:"inputs"`

	Parameters struct {
		State     string   `yaml:"state,omitempty"`
		County    string   `yaml:"county,omitempty"`
		Year      int      `yaml:"year"`
		Fields    []string `yaml:"fields"`
		TargetCRS string   `yaml:"target_crs"`
	} `yaml:"parameters"`

	Counts struct {
		AreasFiltered        int `yaml:"areas_filtered"`
		ObservationsFiltered int `yaml:"observations_filtered"`
		AreaJoined           int `yaml:"area_joined"`
		ObsJoined            int `yaml:"obs_joined"`
	} `yaml:"counts"`

	// Percentages in each summary are shares of the joined record total,
	// so a table's percent column sums to 100.
	PercentBasis string `yaml:"percent_basis"`
}

// WriteManifest writes m as YAML.
func WriteManifest(w io.Writer, m Manifest) error {
	if m.PercentBasis == "" {
		m.PercentBasis = "joined records"
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return eris.Wrap(err, "manifest: encode")
	}
	return eris.Wrap(enc.Close(), "manifest: close encoder")
}
