// Package dom is the document boundary the fill pipeline works against. It
// wraps golang.org/x/net/html nodes with the small surface form filling needs:
// control discrimination (input/textarea/select), attribute access, value and
// checked state, <label for> and ancestor-label lookup, and bubbling event
// dispatch so observers (tests, the browser adapter, reactive bridges) can see
// every write as an `input` followed by a `change` event.
//
// Elements are canonical per node: looking up the same node twice yields the
// same *Element, so callers can compare elements with ==.
//
// A Document is not safe for concurrent mutation. Use one document per fill.
package dom
