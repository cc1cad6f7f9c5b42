// Package testsupport holds helpers shared by the module's tests: fixture
// and golden files, and throwaway catalog database locations.
package testsupport

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-auto-catalog/model"
)

var update = flag.Bool("update", false, "rewrite golden files with actual output")

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// WriteGolden writes test output to a golden file.
func WriteGolden(t *testing.T, path string, data []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write golden file to %s: %v", path, err)
	}
}

// CompareWithGolden compares actual with the golden file at path. Run the
// tests with -update to rewrite it.
func CompareWithGolden(t *testing.T, path string, actual []byte) {
	t.Helper()

	if *update {
		WriteGolden(t, path, actual)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch for %s:\nExpected:\n%s\nActual:\n%s", path, expected, actual)
	}
}

// TempLocation returns a SQLite database path inside a directory removed
// when the test ends. The file itself does not exist yet.
func TempLocation(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "catalog.db")
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}

// Date parses an ISO date or fails the test.
func Date(t testing.TB, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

// Sample is the small catalog most tests start from: one city with one
// market selling one sedan, as well as a second city, market and two autos.
type Sample struct {
	Cities      []model.City
	AutoMarkets []model.AutoMarket
	Autos       []model.Auto
}

// NewSample builds the shared sample catalog.
func NewSample(t testing.TB) Sample {
	t.Helper()
	return Sample{
		Cities: []model.City{
			model.NewCity(1, "Metropolis"),
			model.NewCity(2, "Gotham"),
		},
		AutoMarkets: []model.AutoMarket{
			model.NewAutoMarket(10, "CarWorld", 1),
			model.NewAutoMarket(20, "Wayne Motors", 2),
		},
		Autos: []model.Auto{
			model.NewAuto(100, "Sedan X", 10, 20000, Date(t, "2020-01-01")),
			model.NewAuto(200, "Coupe Y", 20, 15000, Date(t, "2019-06-15")),
			model.NewAuto(201, "Hatch Z", 20, 15000, Date(t, "2021-03-02")),
		},
	}
}
