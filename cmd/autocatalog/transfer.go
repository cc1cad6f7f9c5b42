package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-auto-catalog/catalog"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a YAML or JSON dataset",
		Long: `Import inserts every city, auto market and auto in FILE. Entities whose
id is already stored are skipped. The legacy flat-file layout (pk_city,
fk_city, ...) is accepted as is.`,
		Args: exactArgs(1),
		RunE: a.withStore(func(ctx context.Context, store *catalog.Store, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return &usageError{err: err}
			}
			defer f.Close()

			ds, err := catalog.DecodeDataset(f)
			if err != nil {
				return err
			}

			sum, err := store.Import(ctx, ds)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "cities: %d added, %d skipped\n", sum.Added.Cities, sum.Skipped.Cities)
			fmt.Fprintf(a.out, "automarkets: %d added, %d skipped\n", sum.Added.AutoMarkets, sum.Skipped.AutoMarkets)
			fmt.Fprintf(a.out, "autos: %d added, %d skipped\n", sum.Added.Autos, sum.Skipped.Autos)
			return nil
		}),
	}
}

func newExportCmd(a *app) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as YAML, JSON or msgpack",
		Args:  exactArgs(0),
		RunE: a.withStore(func(_ context.Context, store *catalog.Store, _ []string) (err error) {
			w := a.out
			if output != "" {
				f, ferr := os.Create(output)
				if ferr != nil {
					return ferr
				}
				defer func() {
					if cerr := f.Close(); err == nil {
						err = cerr
					}
				}()
				w = f
			}
			return catalog.EncodeDataset(w, store.Dataset(), format)
		}),
	}

	cmd.Flags().StringVarP(&format, "format", "f", catalog.FormatYAML, "yaml, json or msgpack")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}
