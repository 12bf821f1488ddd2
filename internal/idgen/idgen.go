package idgen

import "github.com/google/uuid"

// NewFunc produces run identifiers. Tests may swap it for a deterministic
// generator.
var NewFunc = func() string { return uuid.New().String() }

// New returns a fresh run identifier.
func New() string { return NewFunc() }
