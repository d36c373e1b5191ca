// Package spec embeds the OpenAPI description of the flight tracks API.
// The HTTP server serves it at /openapi.yaml.
package spec

import _ "embed"

// types.gen.go is not committed; regenerate it to diff the schemas against
// the hand-kept wire types in internal/handler/api.go.
//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen@v2.4.1 -generate types -package spec -o types.gen.go openapi.yaml

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
// Serving it from the binary means the spec and the running code are always in sync.
//
//go:embed openapi.yaml
var OpenAPI []byte
