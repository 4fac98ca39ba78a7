// Package secret resolves secret references in check parameters.
//
// A parameter value is first expanded with ExpandEnvStrict, then any
// reference with the prefix "secretref:" is handed to the named Provider:
//
//	secretref:env:DATABASE_URL
//	secretref:file:/run/secrets/redis_password
//	redis://:secretref:env:REDIS_PASSWORD@cache:6379/0
//
// A reference may be the whole value or embedded in a larger string.
// Resolved values must never be logged.
package secret
