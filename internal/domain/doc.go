// Package domain defines the core domain types for the chronodoc bitemporal
// document master.
//
// This package contains the value objects the storage engine moves around:
// identifiers, version-correction coordinates, document envelopes, and the
// portfolio tree payload.
//
// # Identity
//
// ObjectID names a document lineage and never changes once assigned. UniqueID
// adds a version marker on top of an ObjectID; an unversioned UniqueID means
// "the latest version as of query time" and is always resolved to a fully
// qualified id before being returned to a caller.
//
// # Bitemporality
//
// Every stored envelope carries two half-open intervals: the version interval
// (business-effective timeline, moved by update/remove/reinstate) and the
// correction interval (system timeline, moved by correct). VersionCorrection
// is the coordinate selecting exactly one envelope from the two axes.
//
// # Payload
//
// Portfolio is the opaque tree payload: a named root node, recursively nested
// child nodes, ordered position references per node, and a flat attribute map
// on the document. The engine validates tree shape but never interprets
// position semantics.
//
// # Design Principles
//
// - Immutable value objects where possible
// - No database or external dependencies
// - Typed, matchable error kinds instead of sentinel strings
package domain
