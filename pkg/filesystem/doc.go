// Package filesystem provides a cross-platform filesystem metadata and path
// resolution engine. Given a path, it produces a platform-independent
// description of the object on disk: its absolute and canonical forms, its
// type and link kind, timestamps, permissions, and a stable identity usable
// for equality comparisons. Metadata is fetched lazily, field by field, and
// cached in caller-owned records.
//
// Native queries are performed by a Backend, with one implementation compiled
// per platform family (POSIX and Windows). The Engine type orchestrates
// backends, link resolution, and canonicalization.
package filesystem
