// Package fill writes extracted string values into form controls.
//
// Values pass a sentinel check ("n/a", "unknown", ...) before being coerced
// per control kind: checkboxes by truthiness, radios and selects by exact
// then substring matching against option values and labels, date-like
// inputs through NormalizeDate, and everything else verbatim. Every write
// dispatches bubbling input and change events so observers see it the way
// they would see a user edit.
package fill
