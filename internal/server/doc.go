// Package server provides the HTTP surface of the router daemon: the
// config read/write endpoints, path listing, health, and metrics.
package server
