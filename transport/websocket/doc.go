// Package websocket pushes finished traces to live board viewers.
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read and a
// write goroutine; the hub goroutine owns registration and fan-out.
//
// Message Protocol:
//
// Clients only listen. After a search on a watched board finishes the hub
// sends:
//
//	{"board": "grid1", "event": "trace_complete", "result": {...}}
//
// where result is the service TraceSummary. Searches of inline layouts are
// published under the board name "layout".
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("board"))
//	})
//
//	hub.BroadcastResult("grid1", summary)
//
// Slow clients whose send buffer fills up are disconnected rather than
// blocking the hub.
package websocket
