// Package ctype realizes C type declarations into sized, laid-out types and
// converts raw memory of those types to and from cty values.
//
// # Type table
//
// A library's type table is a flat slice of Decl entries. Entries refer to
// each other by index: an array names its element index, a struct names the
// index of every field. A Realizer turns an index into a *Type on first use
// and memoizes the result, so every caller sees the same *Type for the same
// index. Failed realizations are not memoized.
//
// # Layout
//
// Sizes follow the LP64 data model (long and pointers are 8 bytes). Every
// primitive is naturally aligned, structs pad fields to their alignment and
// round their size up to the largest field alignment, as a C compiler does.
//
// # Conversion
//
// Codec maps memory to cty values:
//
//   - signed, unsigned and floating types become cty.Number
//   - _Bool becomes cty.Bool
//   - char becomes a one-character cty.String, char[N] a NUL-terminated one
//   - other arrays become cty.List, structs become cty.Object
//
// Encoding coerces the incoming value with cty's convert package and range
// checks it through gocty, so writing 300 into an unsigned char fails
// instead of wrapping.
package ctype
