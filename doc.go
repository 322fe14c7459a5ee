// Package engine is the root of the columnar analytics engine module.
//
// The engine persists tabular datasets in a column-oriented binary file
// format (.col) and executes analytical queries against those files in
// vectorized batches. Files are split into row groups; each row group
// stores one page per column, encoded as PLAIN, RLE, DELTA or DICTIONARY
// data with per-page min/max statistics that enable predicate pushdown.
//
// The main entry points are:
//
//   - pkg/format: the Writer and Reader for .col files
//   - pkg/query: the Scanner and Executor for filtered, aggregated and
//     grouped scans
//   - cmd/colstore: the command-line interface
package engine
