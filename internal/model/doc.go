// Package model defines the data types shared across WebMark components.
//
// The types here are deliberately free of behavior beyond simple
// constructors and formatting helpers so that every other package can
// depend on them without import cycles.
package model
