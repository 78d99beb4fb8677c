// Package schema implements the context schema DSL: parsing, structural
// validation against the fixed meta-shape, compilation to a JSON Schema
// (draft 2020-12) document, a self-check for compiled output, and data
// validation against any compiled or directly supplied schema.
//
// Processing is split into two passes the way a compiler separates syntax
// from semantics. ValidateDocument is purely shape-level: key sets, node
// families, keyword types. Compile assumes a structurally valid document
// and performs the semantic work: reference resolution and cycle
// detection, bound ordering, type-checked defaults and enums, strictness
// inheritance. Compilation is pure; identical input yields byte-identical
// output, including the insertion order of properties and $defs.
package schema
