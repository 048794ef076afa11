// Package bfql lexes and parses the BFQL predicate query language.
//
// BFQL selects objects by the tag values attached to them:
//
//	library/title matches "whale" and has library/summary
//	book/pages > 100 or book/published < 2000-01-01
//
// Parse produces an AST of Or/And/Has/Missing/Compare nodes; Render turns
// an AST back into canonical query text. The literal grammar is a stable
// external format shared with saved queries, so changes to it are breaking.
package bfql
