// Package infra holds the technical adapters: the MQTT client, the
// metrics sinks and the persistence backends. Everything here depends
// only on interfaces declared under core.
package infra
