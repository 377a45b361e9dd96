// Package simplesite provides the content layer of a small marketing site and
// its admin panel: a flat key/value content store, a project catalogue, image
// management over a pluggable object store, and the section resolver that
// turns stored content into the ordered list of home-page sections.
//
// # Content Model
//
// Every editable field on the site is a row in the content table, keyed by a
// well-known name such as "hero_title" or "service_2_image". Values are plain
// text, serialized rich-text JSON, image URLs, or (for "home_sections_order")
// a list of section ids. Keys are validated against the field registry at the
// write boundary; the read path never fails and falls back to static defaults.
//
// # Section Resolution
//
// Resolve is a pure function of the content map and the featured projects. It
// decides which sections have enough data to render, in which order, and what
// props each one receives. It never returns an error: malformed orders and
// missing content degrade to defaults so the public page always renders.
//
// Implementations of repositories (memory, Postgres, SQLite) and image stores
// (memory, filesystem, S3) live in subpackages.
package simplesite
