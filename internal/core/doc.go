// Package core provides CSV previews, column type inference and dataset
// item imports.
//
// This package holds all domain logic independent of any UI or transport
// layer. It is used by the HTTP server, the command-line tool and tests
// without modification.
//
// # Architecture
//
// Every entry point drives the same row pipeline:
//
//  1. The source is wrapped with BOM skipping and UTF-8 sanitization.
//  2. A tokenizer splits it into records, stopping early when a row cap is set.
//  3. The pipeline treats the first record as the header, keeps preview
//     rows and per-column samples, and calls the optional [RowProcessor]
//     hooks.
//  4. Each column's samples are classified with [ClassifyValue] and
//     aggregated into one type by [InferColumnType].
//
// # Ingestion Modes
//
// [ParseClient] reads only the head of a file and caps preview rows, for
// fast interactive previews. [ParseServer] and [ParseServerStream] visit
// every row unless a cap is given, so row counts are exact and types
// reflect the whole file.
//
// # Imports
//
// [Importer] turns each row into a [DatasetItem] using an [ImportMapping]
// and writes items in batches through an [ItemWriter], keeping memory at
// O(batch size) regardless of file size. Cells are converted with
// [ParseValue]; several mapped columns become a record via [ParseColumns].
//
// [Service] applies the server's configured defaults and bounds concurrent
// full passes and imports with an [IngestLimiter].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE007: File errors (size, format, empty input, form)
//   - VAL001-VAL007: Validation errors (mapping, missing columns, parameters)
//   - UPL002-UPL005: Ingestion errors (cancelled, timeout, capacity)
//   - DB001-DB008: Item store errors
package core
