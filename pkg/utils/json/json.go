// Package json is the JSON codec used across the blog API: request and
// response bodies, NDJSON chat events, websocket frames, and embedding
// cache entries. It uses sonic where supported (amd64/arm64) and the
// standard library elsewhere, so callers never branch on architecture.
package json

import (
	stdjson "encoding/json"
	"runtime"

	"github.com/bytedance/sonic"
)

var (
	// Marshal encodes v into JSON bytes.
	Marshal func(v interface{}) ([]byte, error)

	// Unmarshal decodes JSON bytes into v.
	Unmarshal func(data []byte, v interface{}) error
)

func init() {
	if runtime.GOARCH == "amd64" || runtime.GOARCH == "arm64" {
		Marshal = sonic.Marshal
		Unmarshal = sonic.Unmarshal
	} else {
		Marshal = stdjson.Marshal
		Unmarshal = stdjson.Unmarshal
	}
}
