// Package entities provides core domain entities for the SDK.
// These are general-purpose types used across all SDK operations.
// Domain-specific types like Evidence belong in consuming applications (e.g., Reglet).
package entities
