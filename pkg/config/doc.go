// Package config holds provider defaults and debug toggles.
//
// A Config is a plain value: build it with Default, overlay a file with Load
// or Parse and environment variables with FromEnv, then pass it to the
// constructors that need it.
package config
