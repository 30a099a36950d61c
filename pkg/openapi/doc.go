// Package openapi publishes the OpenAPI 3 description of the HTTP API and
// exposes the operations it declares.
package openapi
