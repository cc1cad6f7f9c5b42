// Package catalog implements the dealership catalog: cities, the auto
// markets located in them and the autos those markets sell.
//
// # Overview
//
// A Store keeps an in-memory mirror of every collection in a relational
// backing store. The mirror is loaded once, when the Store is built, and is
// grown only after the backing store confirms a write. Queries never touch
// the backing store.
//
//	store, err := catalog.Open(ctx, "autocatalog.db",
//		catalog.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	_, _ = store.AddCity(ctx, model.NewCity(1, "Metropolis"))
//	autos, err := store.FindAutosByCity(ctx, "metropolis")
//
// # Writes
//
// AddCity, AddAutoMarket and AddAuto insert if absent. The primary key is
// looked up in the backing store; a hit returns AlreadyExists and changes
// nothing. A failed insert leaves the mirror untouched and the Store usable.
//
// References between entities are not checked unless WithReferentialChecks
// is given. Queries skip markets and autos whose references do not resolve.
//
// # Reads
//
// Name lookups are case-insensitive. Results keep insertion order and are
// copies owned by the caller. With WithCache, results are memoized under
// keys scoped to the Store and dropped after every successful write.
//
// # Errors
//
// Every failure is an *Error carrying a Kind. Match kinds with errors.Is
// against ErrStoreInit, ErrStoreWrite, ErrInvalidInput and ErrNotFound, or
// with KindOf. An empty result is KindNotFound, including the ListAll
// family on an empty catalog.
package catalog
