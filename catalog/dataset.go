package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-auto-catalog/model"
)

// Dataset is the catalog exchange document. Its keys follow the flat-file
// format earlier catalog versions persisted to disk, so those files import
// unchanged.
type Dataset struct {
	Cities      []DatasetCity       `json:"cities" yaml:"cities" msgpack:"cities"`
	AutoMarkets []DatasetAutoMarket `json:"automarkets" yaml:"automarkets" msgpack:"automarkets"`
	Autos       []DatasetAuto       `json:"autos" yaml:"autos" msgpack:"autos"`
}

type DatasetCity struct {
	ID   int64  `json:"pk_city" yaml:"pk_city" msgpack:"pk_city"`
	Name string `json:"name" yaml:"name" msgpack:"name"`
}

type DatasetAutoMarket struct {
	ID     int64  `json:"pk_automarket" yaml:"pk_automarket" msgpack:"pk_automarket"`
	Name   string `json:"name" yaml:"name" msgpack:"name"`
	CityID int64  `json:"fk_city" yaml:"fk_city" msgpack:"fk_city"`
}

type DatasetAuto struct {
	ID            int64   `json:"pk_auto" yaml:"pk_auto" msgpack:"pk_auto"`
	Name          string  `json:"name" yaml:"name" msgpack:"name"`
	AutoMarketID  int64   `json:"fk_automarket" yaml:"fk_automarket" msgpack:"fk_automarket"`
	Price         float64 `json:"price" yaml:"price" msgpack:"price"`
	YearOfRelease string  `json:"year_of_release" yaml:"year_of_release" msgpack:"year_of_release"`
}

// Dataset encodings accepted by EncodeDataset.
const (
	FormatYAML    = "yaml"
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// DecodeDataset reads a YAML or JSON dataset and checks every release date
// parses. Malformed input is KindInvalidInput.
func DecodeDataset(r io.Reader) (*Dataset, error) {
	const op = "decode dataset"

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, invalidInput(op, err)
	}

	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, invalidInput(op, err)
	}

	for _, a := range ds.Autos {
		if _, err := model.ParseDate(a.YearOfRelease); err != nil {
			return nil, invalidInput(op, fmt.Errorf("auto %d: %w", a.ID, err))
		}
	}
	return &ds, nil
}

// EncodeDataset writes ds to w in the given format.
func EncodeDataset(w io.Writer, ds *Dataset, format string) error {
	switch strings.ToLower(format) {
	case FormatYAML, "yml", "":
		data, err := yaml.Marshal(ds)
		if err != nil {
			return fmt.Errorf("encode dataset: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(ds)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(ds)
	default:
		return invalidInput("encode dataset", fmt.Errorf("unknown format %q", format))
	}
}

// Entities converts the dataset rows into model values.
func (ds *Dataset) Entities() ([]model.City, []model.AutoMarket, []model.Auto, error) {
	cities := make([]model.City, 0, len(ds.Cities))
	for _, c := range ds.Cities {
		cities = append(cities, model.NewCity(c.ID, c.Name))
	}

	markets := make([]model.AutoMarket, 0, len(ds.AutoMarkets))
	for _, m := range ds.AutoMarkets {
		markets = append(markets, model.NewAutoMarket(m.ID, m.Name, m.CityID))
	}

	autos := make([]model.Auto, 0, len(ds.Autos))
	for _, a := range ds.Autos {
		released, err := model.ParseDate(a.YearOfRelease)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("auto %d: %w", a.ID, err)
		}
		autos = append(autos, model.NewAuto(a.ID, a.Name, a.AutoMarketID, a.Price, released))
	}
	return cities, markets, autos, nil
}

// ImportSummary counts what Import did.
type ImportSummary struct {
	Added   Counts
	Skipped Counts
}

// Import inserts every dataset entity through the regular mutation path:
// cities first, then markets, then autos. Entities whose key is already
// stored are skipped. Import stops at the first error; entities added
// before it stay added.
func (s *Store) Import(ctx context.Context, ds *Dataset) (ImportSummary, error) {
	var sum ImportSummary

	cities, markets, autos, err := ds.Entities()
	if err != nil {
		return sum, invalidInput("import", err)
	}

	tally := func(res AddResult, added, skipped *int) {
		if res == Added {
			*added++
		} else if res == AlreadyExists {
			*skipped++
		}
	}

	for _, c := range cities {
		res, err := s.AddCity(ctx, c)
		if err != nil {
			return sum, err
		}
		tally(res, &sum.Added.Cities, &sum.Skipped.Cities)
	}
	for _, m := range markets {
		res, err := s.AddAutoMarket(ctx, m)
		if err != nil {
			return sum, err
		}
		tally(res, &sum.Added.AutoMarkets, &sum.Skipped.AutoMarkets)
	}
	for _, a := range autos {
		res, err := s.AddAuto(ctx, a)
		if err != nil {
			return sum, err
		}
		tally(res, &sum.Added.Autos, &sum.Skipped.Autos)
	}
	return sum, nil
}

// Dataset snapshots the mirror.
func (s *Store) Dataset() *Dataset {
	ds := &Dataset{
		Cities:      []DatasetCity{},
		AutoMarkets: []DatasetAutoMarket{},
		Autos:       []DatasetAuto{},
	}
	for _, c := range s.Cities() {
		ds.Cities = append(ds.Cities, DatasetCity{ID: c.ID, Name: c.Name})
	}
	for _, m := range s.AutoMarkets() {
		ds.AutoMarkets = append(ds.AutoMarkets, DatasetAutoMarket{ID: m.ID, Name: m.Name, CityID: m.CityID})
	}
	for _, a := range s.Autos() {
		ds.Autos = append(ds.Autos, DatasetAuto{
			ID:            a.ID,
			Name:          a.Name,
			AutoMarketID:  a.AutoMarketID,
			Price:         a.Price,
			YearOfRelease: model.FormatDate(a.YearOfRelease),
		})
	}
	return ds
}
