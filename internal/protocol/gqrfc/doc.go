// Package gqrfc holds the versioned command catalogs for the GQ serial
// protocol family.
//
// Ownership boundary:
// - GQ-RFC1201, GQ-RFC1701 and GQ-RFC1801 revision tables
// - revision label registry and aliases
// - model string to catalog mapping
// - the identification probe catalog
package gqrfc
