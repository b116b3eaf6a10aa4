// Package openapi describes OpenAPI operation request bodies as form fields so
// values can be extracted for an API call without an HTML form.
package openapi
