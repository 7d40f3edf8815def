// Package prefs implements persisted client-local state for artwall.
//
// Two backends satisfy Repository:
//
//   - SQLiteRepository: the default; a single "prefs" table in the local state
//     database created by the embedded goose migrations.
//   - RedisRepository: keys under a namespace prefix, for kiosk setups where
//     several terminals share one profile.
//
// Both backends follow the same contract: Set is an upsert, Get of a missing
// key yields (nil, nil), Delete of a missing key is not an error, and Clear
// removes every key of the repository and nothing else.
package prefs
