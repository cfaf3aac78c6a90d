// Package models defines the data shapes shared by the regkeeper stores,
// services and CLI: brand records served from the embedded SQLite store,
// invoice documents parsed from JSON files, and the edit-status overlay
// persisted for documents the user has changed.
package models
