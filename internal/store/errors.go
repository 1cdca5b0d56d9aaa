package store

import "errors"

// ErrNotFound is returned when a product number does not exist in the
// store, so HTTP handlers can respond with 404.
var ErrNotFound = errors.New("product not found")

// ErrConflict is returned when an update's expected revision no longer
// matches the row, meaning someone else edited it after the read.
var ErrConflict = errors.New("external update detected")
