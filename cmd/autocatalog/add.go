package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-auto-catalog/catalog"
	"github.com/goliatone/go-auto-catalog/model"
)

func newAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a city, auto market or auto",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "city ID NAME",
			Short: "Add a city",
			Args:  exactArgs(2),
			RunE: a.withStore(func(ctx context.Context, store *catalog.Store, args []string) error {
				id, err := parseID("city id", args[0])
				if err != nil {
					return err
				}
				res, err := store.AddCity(ctx, model.NewCity(id, args[1]))
				return a.reportAdd("city", id, res, err)
			}),
		},
		&cobra.Command{
			Use:     "market ID NAME CITY_ID",
			Aliases: []string{"automarket"},
			Short:   "Add an auto market",
			Args:    exactArgs(3),
			RunE: a.withStore(func(ctx context.Context, store *catalog.Store, args []string) error {
				id, err := parseID("automarket id", args[0])
				if err != nil {
					return err
				}
				cityID, err := parseID("city id", args[2])
				if err != nil {
					return err
				}
				res, err := store.AddAutoMarket(ctx, model.NewAutoMarket(id, args[1], cityID))
				return a.reportAdd("automarket", id, res, err)
			}),
		},
		&cobra.Command{
			Use:   "auto ID NAME MARKET_ID PRICE RELEASE_DATE",
			Short: "Add an auto; RELEASE_DATE is YYYY-MM-DD",
			Args:  exactArgs(5),
			RunE: a.withStore(func(ctx context.Context, store *catalog.Store, args []string) error {
				id, err := parseID("auto id", args[0])
				if err != nil {
					return err
				}
				marketID, err := parseID("automarket id", args[2])
				if err != nil {
					return err
				}
				price, err := parsePrice("price", args[3])
				if err != nil {
					return err
				}
				released, err := parseDate(args[4])
				if err != nil {
					return err
				}
				res, err := store.AddAuto(ctx, model.NewAuto(id, args[1], marketID, price, released))
				return a.reportAdd("auto", id, res, err)
			}),
		},
	)
	return cmd
}

func (a *app) reportAdd(entity string, id int64, res catalog.AddResult, err error) error {
	if err != nil {
		return err
	}
	switch res {
	case catalog.AlreadyExists:
		fmt.Fprintf(a.out, "%s %d already exists, skipped\n", entity, id)
	default:
		fmt.Fprintf(a.out, "added %s %d\n", entity, id)
	}
	return nil
}
