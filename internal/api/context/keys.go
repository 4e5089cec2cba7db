package context

type contextKey string

// Params carries the httprouter path parameters through the request
// context so handlers can stay plain http.HandlerFuncs.
const Params = contextKey("params")
