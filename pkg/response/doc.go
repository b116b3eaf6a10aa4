// Package response turns a model answer into string field values.
//
// Answers are often wrapped in markdown fences, carry numbers or booleans
// where strings were asked for, or are not JSON at all. Parse tolerates all
// of that and degrades to an empty map instead of returning an error.
package response
