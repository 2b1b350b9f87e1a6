// Package api provides the HTTP client for the items/cache/files backend.
//
// # Overview
//
// Every call goes through a single request normalizer that reduces each
// possible outcome to a Result: the transport failed, the server answered
// with a non-2xx status, the body was not JSON, or the call succeeded. Calls
// never return a Go error and never panic; failures land in Result.Error.
//
// # Architecture
//
//   - client.go: Client construction, options and the normalizer (send)
//   - endpoints.go: the endpoint bindings layered on the normalizer
//   - result.go: the Result union
//   - types.go: wire types mirroring the backend's JSON
//   - value.go: Value, a tagged JSON union used for server-defined data
//
// # Client Usage
//
//	client, err := api.NewClient("http://localhost:8080/api")
//	if err != nil {
//		log.Fatalf("init client: %v", err)
//	}
//
//	res := client.CreateItem(ctx, "x1", api.Fields{"a": api.Int(1)})
//	if !res.OK() {
//		log.Printf("create failed: %s", res.Error)
//	}
//
// # Endpoints
//
//	POST   /items           {id, data}
//	GET    /items/{id}
//	GET    /items
//	PUT    /items/{id}      {timestamp, data}
//	DELETE /items/{id}      {timestamp}
//	POST   /cache           {key, value, ttl}
//	GET    /cache/{key}
//	DELETE /cache/{key}
//	GET    /files
//	POST   /upload          multipart, field "file"
//	GET    {root}/health
//
// The health endpoint lives at the host root: the first literal "/api" in
// the base URL is removed before "/health" is appended.
//
// # Error Handling
//
// The body is parsed as JSON before the status is inspected. A non-2xx
// response yields the body's "error" field or a fallback literal. A body that
// is not JSON yields the parse error even when the status was non-2xx.
// Transport and parse failures are also written to the diagnostic logger
// (see WithLogger).
package api
