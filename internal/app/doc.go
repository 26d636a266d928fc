// Package app wires a vroute process together from its configuration: the
// logger, metrics registry, view source, route table, resolver and loader
// cache that the CLI and the server share.
package app
