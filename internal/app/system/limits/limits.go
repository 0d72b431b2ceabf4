// internal/app/system/limits/limits.go
package limits

// Request body size limits. These keep a single request from exhausting
// memory; uploads are limited separately while they stream to storage.
const (
	// MaxJSONBodySize is the largest JSON request body decoded.
	MaxJSONBodySize = 1 << 20 // 1 MB

	// MaxMultipartOverhead is the allowance for multipart headers and
	// non-file fields on top of the configured file size.
	MaxMultipartOverhead = 64 << 10 // 64 KB
)
