// Package dtanalysis indexes the rows of a decision table so that editors can
// analyse them as the table changes.
//
// Every row is described by a RuleInspector, which turns the row's cells into
// index keys: one key per condition, action and attribute column (keyed by the
// column's UUID), plus keys for the row number, the row's identity and the
// roles of the columns it fills. The inspectors are held in a
// RuleInspectorCache, which indexes them in an index.KeyTreeMap so that
// questions such as "which rows test Age >= 18" or "which rows leave every
// action blank" are answered with ordered index lookups rather than scans.
//
// Typical use is as follows:
//
//  1. Describe the table's columns and load its rows into a Table (or use ParseTable)
//  2. Build a RuleInspectorCache, or open a Session, over the table
//  3. As the user edits the table, pass each edit to the cache
//  4. Query the index, subscribe to queries, or Check the table for
//     redundant and conflicting rows
//
// Edits and Consistency
//
// Edits are applied incrementally. A cell edit touches only the keys of the
// columns that changed; a failed edit is rejected before the index changes.
// Removing or inserting a row renumbers the rows after it.
//
// The cache is not safe for concurrent use. A Session owns one table and one
// cache and serializes all access to them, and is the way to share an editing
// session between goroutines.
//
// Column Types
//
// Each column has a Type: String, Int, Float, Bool, Timestamp, Enum or Any.
// Columns that do not declare a type are typed by an Oracle from their fact
// type and field. Cells that do not match the column's type are rejected with
// an error wrapping index.ErrTypeMismatch; they are never silently dropped.
package dtanalysis
