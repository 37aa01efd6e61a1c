// Package fiscal computes the tax situation of an investment portfolio from
// its transaction history. It is designed to be local-first and auditable:
// the ledger file is the single source of truth and every figure is
// recomputed from it on demand.
//
// The core functionalities include:
//   - Ledger Management: Recording buys, sells and fiscally neutral fund
//     transfers in an immutable, chronological record persisted as JSONL.
//   - Lot Accounting: A stateless replay engine that reconstructs per-security
//     acquisition lots and matches disposals against them under FIFO or LIFO.
//   - Fiscal Reporting: Yearly summaries of realized gains and losses, with
//     estimated tax under a progressive bracket table and advisory flagging
//     of losses caught by the two-month repurchase rule.
//   - Sale Simulation: Hypothetical disposals with their estimated tax,
//     computed against a snapshot and never recorded.
//
// This package serves as the foundational logic for the `fsc` command-line
// tool, ensuring that all operations are consistent and based on a single
// source of truth.
package fiscal
