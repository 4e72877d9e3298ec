// Package api adapts HTTP requests to the study service. It decodes and
// validates request bodies, maps service errors to status codes and safe
// messages, and writes JSON responses.
package api
