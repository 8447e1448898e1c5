package vqleval

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/deepvis/vqleval/internal/dbfile"
	"github.com/deepvis/vqleval/internal/extract"
	"github.com/deepvis/vqleval/internal/textmatch"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is one decoded element of an input JSON array.
type Record map[string]any

// Field returns the named field as a string. Non-string values are
// formatted; a missing field yields "".
func (r Record) Field(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ParseFailure is a sample excluded because one of its statements did not
// parse.
type ParseFailure struct {
	Index int    `json:"index"`
	DBID  string `json:"db_id"`
	// Side is "predicted" or "reference".
	Side   string `json:"side"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Unbound is a sample excluded because its database could not be found.
type Unbound struct {
	Index  int    `json:"index"`
	DBID   string `json:"db_id"`
	Reason string `json:"reason"`
}

// Dataset is the evaluable part of a pair of input files.
type Dataset struct {
	// Records is the number of index-aligned record pairs.
	Records int `json:"records"`
	// Unextracted counts pairs where either statement could not be located.
	Unextracted int `json:"unextracted"`

	Samples       []Sample           `json:"samples"`
	TextScores    []textmatch.Scores `json:"text_scores"`
	ParseFailures []ParseFailure     `json:"parse_failures"`
	Unbound       []Unbound          `json:"unbound"`
}

// ReadRecords decodes a JSON array of objects from path.
func ReadRecords(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening dataset")
	}
	defer f.Close()

	var records []Record
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return records, nil
}

// LoadDataset reads the response and ground-truth files named by cfg and
// builds the dataset.
func LoadDataset(cfg Config, logger log.Logger) (*Dataset, error) {
	responses, err := ReadRecords(cfg.ResponsesFile)
	if err != nil {
		return nil, err
	}
	truths, err := ReadRecords(cfg.GroundTruthFile)
	if err != nil {
		return nil, err
	}
	return BuildDataset(responses, truths, cfg, logger), nil
}

// BuildDataset pairs responses and truths by index. For every pair it
// extracts both statements, scores them as text, parses and lowers them and
// binds the pair to its database file. Pairs failing any step are recorded
// and left out of Samples.
func BuildDataset(responses, truths []Record, cfg Config, logger log.Logger) *Dataset {
	cfg = cfg.NormalizedCopy()
	logger = orNop(logger)

	n := len(responses)
	if len(truths) != n {
		level.Warn(logger).Log("msg", "record counts differ, pairing the common prefix", "responses", len(responses), "ground_truth", len(truths))
		n = min(n, len(truths))
	}

	ds := &Dataset{Records: n}
	for i := 0; i < n; i++ {
		pred, ok := extract.LastStatement(responses[i].Field(cfg.ResponseField))
		if !ok {
			ds.Unextracted++
			level.Debug(logger).Log("msg", "no statement in response", "index", i)
			continue
		}
		ref, ok := extract.AfterMarker(truths[i].Field(cfg.GroundTruthField), cfg.ReferenceMarker)
		if !ok {
			ds.Unextracted++
			level.Debug(logger).Log("msg", "no reference statement", "index", i)
			continue
		}
		ds.TextScores = append(ds.TextScores, textmatch.Score(pred, ref))

		dbID := truths[i].Field(cfg.DBIDField)
		predSide, err := ParseSide(pred)
		if err != nil {
			ds.addParseFailure(logger, i, dbID, "predicted", pred, err)
			continue
		}
		refSide, err := ParseSide(ref)
		if err != nil {
			ds.addParseFailure(logger, i, dbID, "reference", ref, err)
			continue
		}

		path, err := dbfile.Find(cfg.DatabaseDir, dbID, cfg.DatabaseExt)
		if err != nil {
			level.Warn(logger).Log("msg", "database not found", "index", i, "db_id", dbID, "err", err)
			ds.Unbound = append(ds.Unbound, Unbound{Index: i, DBID: dbID, Reason: err.Error()})
			continue
		}

		ds.Samples = append(ds.Samples, Sample{
			Index:     i,
			DBID:      dbID,
			DBPath:    path,
			Predicted: predSide,
			Reference: refSide,
		})
	}
	return ds
}

func (ds *Dataset) addParseFailure(logger log.Logger, index int, dbID, side, text string, err error) {
	level.Warn(logger).Log("msg", "statement did not parse", "index", index, "db_id", dbID, "side", side, "err", err)
	ds.ParseFailures = append(ds.ParseFailures, ParseFailure{
		Index:  index,
		DBID:   dbID,
		Side:   side,
		Text:   text,
		Reason: err.Error(),
	})
}
