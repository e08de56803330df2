// internal/app/system/limits/limits.go
package limits

// Request body caps enforced by httpjson.DecodeLimit.
const (
	MaxJSONBody = 64 << 10 // 64 KB

	// MaxProfileBody covers profile setup and project payloads, which carry
	// free-text bio or description fields.
	MaxProfileBody = 256 << 10 // 256 KB
)

// MaxImages caps the image references stored on one organization.
const MaxImages = 20
