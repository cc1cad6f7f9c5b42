package sqlstore

import (
	"fmt"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-auto-catalog/model"
)

type cityRow struct {
	bun.BaseModel `bun:"table:Cities,alias:c"`

	ID   int64  `bun:"id,pk,type:bigint"`
	Name string `bun:"name,notnull"`
}

type autoMarketRow struct {
	bun.BaseModel `bun:"table:AutoMarkets,alias:m"`

	ID     int64  `bun:"id,pk,type:bigint"`
	Name   string `bun:"name,notnull"`
	CityID int64  `bun:"city_id,notnull"`
}

type autoRow struct {
	bun.BaseModel `bun:"table:Autos,alias:a"`

	ID            int64   `bun:"id,pk,type:bigint"`
	Name          string  `bun:"name,notnull"`
	AutoMarketID  int64   `bun:"automarket_id,notnull"`
	Price         float64 `bun:"price,notnull"`
	YearOfRelease string  `bun:"year_of_release,notnull"`
}

func cityToRow(c model.City) *cityRow {
	return &cityRow{ID: c.ID, Name: c.Name}
}

func cityFromRow(r *cityRow) (model.City, error) {
	return model.NewCity(r.ID, r.Name), nil
}

func autoMarketToRow(m model.AutoMarket) *autoMarketRow {
	return &autoMarketRow{ID: m.ID, Name: m.Name, CityID: m.CityID}
}

func autoMarketFromRow(r *autoMarketRow) (model.AutoMarket, error) {
	return model.NewAutoMarket(r.ID, r.Name, r.CityID), nil
}

func autoToRow(a model.Auto) *autoRow {
	return &autoRow{
		ID:            a.ID,
		Name:          a.Name,
		AutoMarketID:  a.AutoMarketID,
		Price:         a.Price,
		YearOfRelease: model.FormatDate(a.YearOfRelease),
	}
}

func autoFromRow(r *autoRow) (model.Auto, error) {
	released, err := model.ParseDate(r.YearOfRelease)
	if err != nil {
		return model.Auto{}, fmt.Errorf("auto %d: %w", r.ID, err)
	}
	return model.NewAuto(r.ID, r.Name, r.AutoMarketID, r.Price, released), nil
}
