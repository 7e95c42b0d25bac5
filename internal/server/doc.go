// Package server exposes a running engine over HTTP for browser clients.
//
// Commands are queued on the engine and answered with 202 Accepted plus the
// snapshot version current at submission. Clients read state with
// GET /api/v1/game or long-poll GET /api/v1/game/wait?since=<version>,
// which returns as soon as a newer snapshot is published.
package server
