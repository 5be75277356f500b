// Package tree turns a finished crawl result into presentation views.
//
// The crawl records endpoints duplicate-tolerantly: overlapping extraction
// rules may emit the same href several times, and parent references can form
// cycles or point at URLs that were never fetched. This package resolves all
// of that after the fact, producing three shapes:
//
//   - Flatten: the raw endpoint sequence in discovery order
//   - BuildHierarchy: one level of parent → children grouping with summary counts
//   - Build: a deterministic, cycle-free, fully nested rooted tree
//
// All three are pure functions over the result; they never affect the crawl.
package tree
