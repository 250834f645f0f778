// Package budget holds the pure 50/30/20 arithmetic of the ledger: monthly
// aggregation, bucket targets, due-date alerts, month navigation and the
// savings box balance rules. Nothing in here touches the store.
package budget
