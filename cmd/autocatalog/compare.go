package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-auto-catalog/catalog"
)

func newCompareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compare AUTO_ID AUTO_ID",
		Short: "Compare the prices of two autos",
		Args:  exactArgs(2),
		RunE: a.withStore(func(ctx context.Context, store *catalog.Store, args []string) error {
			idA, err := parseID("auto id", args[0])
			if err != nil {
				return err
			}
			idB, err := parseID("auto id", args[1])
			if err != nil {
				return err
			}

			cmp, err := store.CompareAutoPrices(ctx, idA, idB)
			if catalog.IsNotFound(err) {
				return a.noResults(err)
			}
			if err != nil {
				return err
			}

			switch cmp {
			case catalog.FirstCheaper:
				fmt.Fprintf(a.out, "auto %d is cheaper than auto %d\n", idA, idB)
			case catalog.SecondCheaper:
				fmt.Fprintf(a.out, "auto %d is cheaper than auto %d\n", idB, idA)
			default:
				fmt.Fprintf(a.out, "autos %d and %d cost the same\n", idA, idB)
			}
			return nil
		}),
	}
}
