// Package testutil provides testing utilities for lanegrep.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating reproducible line corpora and for
// writing them to temporary files.
//
// # Random Corpora
//
//	rng := testutil.NewRNG(seed)
//	lines := rng.Lines(1000, 120, testutil.DefaultAlphabet)
//	rng.Plant(lines, []byte("needle"), 10)
//	data := testutil.Join(lines, true)
//
// # Files
//
//	path := testutil.WriteFile(t, "input.log", data)
package testutil
