// Package sandbox is a local backend that speaks the same wire contract the
// ferry client expects.
//
// Items live in SQLite (modernc.org/sqlite, so no cgo) and carry a timestamp
// token that must be echoed back on update and delete; a stale token is
// answered with 409. Reads of a single item are served from a short-lived
// read cache when possible, and the response's source field says which tier
// answered. The key/value cache honours per-entry TTLs in seconds, uploads
// land in an in-memory bucket, and /health sits at the host root rather than
// under /api.
//
// Handler wraps the httprouter routes in permissive CORS plus optional
// latency and failure injection, which is what cmd/ferry-sandbox exposes as
// flags.
package sandbox
