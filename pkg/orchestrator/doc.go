// Package orchestrator sequences a fill: describe the form, prompt the
// provider once, parse the answer and write the values.
//
// Both fill paths share one error policy. They return a Result and an error
// that is non-nil only when the provider call failed, the context ended or
// the call was misconfigured. Failed calls never write a field.
package orchestrator
