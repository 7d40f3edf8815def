// Package client talks to the art gallery backend.
//
// # Overview
//
// The package provides:
//  1. The Client interface: list/create/delete works, like and pin toggles,
//     comments, admin login and a health ping.
//  2. HTTPClient, a net/http implementation that attaches the admin bearer
//     token from a TokenSource, decodes responses through the models
//     package and maps HTTP failures to sentinel errors.
//  3. Local state bootstrap (InitDatabase, RunMigrations, OpenPrefs) for the
//     CLI, backed by SQLite with embedded goose migrations or by Redis.
//
// # Error Handling
//
// Failures wrap the sentinels in the common package, so callers match with
// errors.Is: common.ErrValidation, common.ErrUnauthorized,
// common.ErrNotFound, common.ErrServer and common.ErrNetwork.
package client
