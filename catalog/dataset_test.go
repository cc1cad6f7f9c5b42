package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-auto-catalog/pkg/testsupport"
)

func decodeFixture(t *testing.T, name string) *Dataset {
	t.Helper()
	f, err := os.Open(testsupport.FixturePath(name))
	require.NoError(t, err)
	defer f.Close()

	ds, err := DecodeDataset(f)
	require.NoError(t, err)
	return ds
}

func TestDecodeDataset_LegacyJSON(t *testing.T) {
	ds := decodeFixture(t, "legacy.json")

	require.Len(t, ds.Cities, 2)
	require.Len(t, ds.AutoMarkets, 2)
	require.Len(t, ds.Autos, 3)
	assert.Equal(t, DatasetAutoMarket{ID: 20, Name: "Wayne Motors", CityID: 2}, ds.AutoMarkets[1])
	assert.Equal(t, DatasetAuto{
		ID:            200,
		Name:          "Coupe Y",
		AutoMarketID:  20,
		Price:         15000,
		YearOfRelease: "2019-06-15",
	}, ds.Autos[1])
}

func TestDecodeDataset_YAML(t *testing.T) {
	ds := decodeFixture(t, "catalog.yaml")

	assert.Equal(t, []DatasetCity{{ID: 1, Name: "Metropolis"}}, ds.Cities)
	require.Len(t, ds.Autos, 1)
	assert.Equal(t, 20000.0, ds.Autos[0].Price)
}

func TestDecodeDataset_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad date":   `{"autos": [{"pk_auto": 1, "name": "A", "fk_automarket": 1, "price": 1, "year_of_release": "01/02/2020"}]}`,
		"bad syntax": "cities: [",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			ds, err := DecodeDataset(strings.NewReader(input))
			assert.Nil(t, ds)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestEncodeDataset_Formats(t *testing.T) {
	s := newSeededStore(t)
	want := s.Dataset()

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeDataset(&buf, want, "yml"))

		got, err := DecodeDataset(&buf)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeDataset(&buf, want, FormatJSON))

		var got Dataset
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, want, &got)
		assert.Contains(t, buf.String(), `"pk_auto": 100`)
	})

	t.Run("msgpack", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, EncodeDataset(&buf, want, FormatMsgpack))

		var got Dataset
		require.NoError(t, msgpack.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, want, &got)
	})

	t.Run("unknown", func(t *testing.T) {
		err := EncodeDataset(&bytes.Buffer{}, want, "xml")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, newFakeBackend())
	require.NoError(t, err)

	ds := decodeFixture(t, "legacy.json")

	sum, err := s.Import(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, Counts{Cities: 2, AutoMarkets: 2, Autos: 3}, sum.Added)
	assert.Equal(t, Counts{}, sum.Skipped)

	sum, err = s.Import(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, Counts{}, sum.Added)
	assert.Equal(t, Counts{Cities: 2, AutoMarkets: 2, Autos: 3}, sum.Skipped)

	assert.Equal(t, ds, s.Dataset())
}

func TestImport_StopsAtFirstError(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, newFakeBackend())
	require.NoError(t, err)

	ds := &Dataset{
		Cities: []DatasetCity{{ID: 1, Name: "Metropolis"}},
		Autos: []DatasetAuto{
			{ID: 1, Name: "Negative", AutoMarketID: 10, Price: -1, YearOfRelease: "2020-01-01"},
			{ID: 2, Name: "Fine", AutoMarketID: 10, Price: 1, YearOfRelease: "2020-01-01"},
		},
	}

	sum, err := s.Import(ctx, ds)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, Counts{Cities: 1}, sum.Added)
	assert.Equal(t, Counts{Cities: 1}, s.Counts())
}

func TestDataset_EmptyCatalog(t *testing.T) {
	s, err := New(context.Background(), newFakeBackend())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeDataset(&buf, s.Dataset(), FormatJSON))
	assert.JSONEq(t, `{"cities": [], "automarkets": [], "autos": []}`, buf.String())
}
