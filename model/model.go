// Package model defines the catalog entities: cities, auto markets and the
// autos they list. Values are immutable once constructed; the catalog only
// ever inserts them.
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DateLayout is the ISO-8601 calendar date layout used for release dates
// at rest and in datasets.
const DateLayout = "2006-01-02"

// City is a place auto markets are located in.
type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AutoMarket is a dealership. CityID references City.ID but is not
// guaranteed to resolve.
type AutoMarket struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	CityID int64  `json:"city_id"`
}

// Auto is a vehicle listing offered by an auto market.
type Auto struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	AutoMarketID  int64     `json:"automarket_id"`
	Price         float64   `json:"price"`
	YearOfRelease time.Time `json:"year_of_release"`
}

// NewCity builds a City.
func NewCity(id int64, name string) City {
	return City{ID: id, Name: name}
}

// NewAutoMarket builds an AutoMarket located in the given city.
func NewAutoMarket(id int64, name string, cityID int64) AutoMarket {
	return AutoMarket{ID: id, Name: name, CityID: cityID}
}

// NewAuto builds an Auto. The release date is truncated to its calendar day
// in UTC, which is all the catalog persists.
func NewAuto(id int64, name string, autoMarketID int64, price float64, released time.Time) Auto {
	return Auto{
		ID:            id,
		Name:          name,
		AutoMarketID:  autoMarketID,
		Price:         price,
		YearOfRelease: calendarDay(released),
	}
}

// ParseDate parses an ISO-8601 calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func calendarDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Year returns the calendar year of the release date.
func (a Auto) Year() int {
	return a.YearOfRelease.Year()
}

// Validate checks the city has an identity and a name. Any non-zero ID is
// an identity; zero means unset.
func (c City) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Name, validation.Required, validation.By(notBlank)),
	)
}

// Validate checks the market has an identity and a name. CityID is a
// logical reference and is not checked here.
func (m AutoMarket) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.Required),
		validation.Field(&m.Name, validation.Required, validation.By(notBlank)),
	)
}

// Validate checks identity, name, price and release date.
func (a Auto) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.Name, validation.Required, validation.By(notBlank)),
		validation.Field(&a.Price, validation.Min(0.0), validation.By(finite)),
		validation.Field(&a.YearOfRelease, validation.Required),
	)
}

// Summary is the one-line listing form of a city.
func (c City) Summary() string {
	return fmt.Sprintf("%d. %s", c.ID, c.Name)
}

func (c City) String() string {
	return fmt.Sprintf("City(id=%d, name=%q)", c.ID, c.Name)
}

// Summary is the one-line listing form of an auto market.
func (m AutoMarket) Summary() string {
	return fmt.Sprintf("%d. %s", m.ID, m.Name)
}

func (m AutoMarket) String() string {
	return fmt.Sprintf("AutoMarket(id=%d, name=%q, city_id=%d)", m.ID, m.Name, m.CityID)
}

// Summary is the one-line listing form of an auto.
func (a Auto) Summary() string {
	return fmt.Sprintf("%d. %s (%d), %s", a.ID, a.Name, a.Year(), FormatPrice(a.Price))
}

func (a Auto) String() string {
	return fmt.Sprintf("%d. %s, market %d, %s, %s",
		a.ID, a.Name, a.AutoMarketID, FormatPrice(a.Price), FormatDate(a.YearOfRelease))
}

// FormatPrice renders a price with two decimals.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "cannot be blank")
	}
	return nil
}

func finite(value any) error {
	f, _ := value.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return validation.NewError("validation_not_finite", "must be a finite number")
	}
	return nil
}
