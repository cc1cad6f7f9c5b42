// Package di wires catalog stores to shared infrastructure: one query
// cache, one key serializer, one logger and one set of metrics, built once
// and reused by every store the container opens.
//
//	container, err := di.NewContainerWithDefaults(di.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	store, err := container.OpenCatalog(ctx, "autocatalog.db")
//
// Stores opened from the same container share the cache but never see
// each other's results; each store namespaces its keys.
package di
