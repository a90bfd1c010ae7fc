package pipeline

import (
	"path/filepath"

	"github.com/pchp/asthma-etl/asthma/constants"
	"github.com/pchp/asthma-etl/asthma/ingest"
	"github.com/pchp/asthma-etl/asthma/member"
	"github.com/pchp/asthma-etl/conf"
	"github.com/pkg/errors"
)

// Config holds the run options read from the environment.
type Config struct {
	// StrictMemberIDs drops records with alphanumeric member ids.
	StrictMemberIDs bool `conf:"ASTHMA_STRICT_MEMBER_IDS" conf_default:"true"`
	// ValidateSchema checks every input against its reference schema before
	// reading it. Only parquet inputs can be validated.
	ValidateSchema     bool   `conf:"ASTHMA_VALIDATE_SCHEMA" conf_default:"true"`
	SchemaDir          string `conf:"ASTHMA_SCHEMA_DIR" conf_default:"schemas"`
	ClaimSchemaFile    string `conf:"ASTHMA_CLAIM_SCHEMA_FILE" conf_default:"claims_schema.json"`
	PharmacySchemaFile string `conf:"ASTHMA_PHARMACY_SCHEMA_FILE" conf_default:"pharmacy_schema.json"`

	ControllerMatchCutoff int `conf:"ASTHMA_CONTROLLER_MATCH_CUTOFF" conf_default:"100"`
	MatchWorkers          int `conf:"ASTHMA_MATCH_WORKERS" conf_default:"4"`
	ClassifyWorkers       int `conf:"ASTHMA_CLASSIFY_WORKERS" conf_default:"4"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := conf.Checkout(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to load pipeline config")
	}
	if cfg.ControllerMatchCutoff < 0 || cfg.ControllerMatchCutoff > 100 {
		return Config{}, errors.Errorf("controller match cutoff %d outside 0..100", cfg.ControllerMatchCutoff)
	}
	return cfg, nil
}

// References maps each file kind to its reference schema.
func (cfg Config) References() ingest.References {
	return ingest.References{
		constants.KindClaim:    filepath.Join(cfg.SchemaDir, cfg.ClaimSchemaFile),
		constants.KindPharmacy: filepath.Join(cfg.SchemaDir, cfg.PharmacySchemaFile),
	}
}

func (cfg Config) memberMode() member.Mode {
	if cfg.StrictMemberIDs {
		return member.Strict
	}
	return member.Permissive
}
