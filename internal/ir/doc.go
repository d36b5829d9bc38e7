// Package ir provides the semantic types and literal values shared by the
// query decoder, the operator catalog and the predicate backend.
//
// This package contains value definitions only. Other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Semantic types form a closed set (Kind): STRING, NUMERIC, BOOLEAN, DATE
//   - NUMERIC values are arbitrary-precision decimals (apd), never floats
//   - DATE values are calendar dates with no time-of-day component
//   - STRING values are NFC-normalized at the decoding boundary
//   - A literal is decoded according to its declared Kind, not JSON's native
//     type: "70000" under NUMERIC is the number 70000
package ir
