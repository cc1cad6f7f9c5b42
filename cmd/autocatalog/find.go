package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-auto-catalog/catalog"
	"github.com/goliatone/go-auto-catalog/model"
)

func newFindCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find autos by city, auto market, price range or release year",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "city NAME",
			Short: "Autos sold in a city",
			Args:  exactArgs(1),
			RunE: a.withStore(func(ctx context.Context, store *catalog.Store, args []string) error {
				return a.printAutos(store.FindAutosByCity(ctx, args[0]))
			}),
		},
		&cobra.Command{
			Use:     "market NAME",
			Aliases: []string{"automarket"},
			Short:   "Autos offered by an auto market",
			Args:    exactArgs(1),
			RunE: a.withStore(func(ctx context.Context, store *catalog.Store, args []string) error {
				return a.printAutos(store.FindAutosByAutomarket(ctx, args[0]))
			}),
		},
		&cobra.Command{
			Use:   "price MIN MAX",
			Short: "Autos priced between MIN and MAX inclusive",
			Args:  exactArgs(2),
			RunE: a.withStore(func(ctx context.Context, store *catalog.Store, args []string) error {
				minPrice, err := parsePrice("min price", args[0])
				if err != nil {
					return err
				}
				maxPrice, err := parsePrice("max price", args[1])
				if err != nil {
					return err
				}
				return a.printAutos(store.FindAutosByPriceRange(ctx, minPrice, maxPrice))
			}),
		},
		&cobra.Command{
			Use:   "year YEAR",
			Short: "Autos released in YEAR",
			Args:  exactArgs(1),
			RunE: a.withStore(func(ctx context.Context, store *catalog.Store, args []string) error {
				year, err := catalog.ParseYear(args[0])
				if err != nil {
					return err
				}
				return a.printAutos(store.FindAutosByYear(ctx, year))
			}),
		},
	)
	return cmd
}

func (a *app) printAutos(autos []model.Auto, err error) error {
	if catalog.IsNotFound(err) {
		return a.noResults(err)
	}
	if err != nil {
		return err
	}
	for _, auto := range autos {
		fmt.Fprintln(a.out, auto.String())
	}
	return nil
}

func (a *app) printLines(lines []string, err error) error {
	if catalog.IsNotFound(err) {
		return a.noResults(err)
	}
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(a.out, line)
	}
	return nil
}

func (a *app) noResults(err error) error {
	a.logger.Debug("query matched nothing", zap.Error(err))
	fmt.Fprintln(a.out, "no results")
	return nil
}
