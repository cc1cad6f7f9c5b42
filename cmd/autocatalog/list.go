package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-auto-catalog/catalog"
)

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every city, auto market or auto",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:  "cities",
			Args: exactArgs(0),
			RunE: a.withStore(func(ctx context.Context, store *catalog.Store, _ []string) error {
				return a.printLines(store.ListAllCities(ctx))
			}),
		},
		&cobra.Command{
			Use:     "markets",
			Aliases: []string{"automarkets"},
			Args:    exactArgs(0),
			RunE: a.withStore(func(ctx context.Context, store *catalog.Store, _ []string) error {
				return a.printLines(store.ListAllAutomarkets(ctx))
			}),
		},
		&cobra.Command{
			Use:  "autos",
			Args: exactArgs(0),
			RunE: a.withStore(func(ctx context.Context, store *catalog.Store, _ []string) error {
				return a.printLines(store.ListAllAutos(ctx))
			}),
		},
	)
	return cmd
}
