// Package router implements the path-addressed value router.
//
// A path template such as /Record/User/${id}/${field} is compiled into
// a matcher that extracts named placeholder values and query parameters
// from concrete input paths. Handlers bind templates to read and write
// callbacks in an ordered registry, and the dispatcher routes reads to
// the first matching handler through a cache-aside gateway, fans writes
// out to every matching handler, and coerces results based on the type
// query parameter.
//
// # Usage
//
// Register handlers and dispatch:
//
//	d := router.NewDispatcher(gateway, logger)
//	d.RegisterRead("/System/${name}", readFn)
//	d.RegisterWrite("/System/${name}", writeFn)
//
//	value, found, err := d.Read(ctx, "/System/version")
//	err = d.Write(ctx, "/System/version", data)
package router
