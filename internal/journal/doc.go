// Package journal records regeneration runs in a SQLite database so past
// identifier mappings can be inspected after the fact.
//
// The journal is an audit trail only. Regeneration never reads it back to
// derive identifiers, and journal failures never abort a run.
package journal
