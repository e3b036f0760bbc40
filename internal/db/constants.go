package db

// sqliteTimeLayout matches the text SQLite's datetime() produces, so stored
// values compare correctly against datetime('now', ...).
const sqliteTimeLayout = "2006-01-02 15:04:05"

// maxBatchSize bounds the rows written per transaction.
const maxBatchSize = 500
