// Package client is a Go client for the desktop REST API, used by deskctl.
//
// Requests go through resty over a retryablehttp transport, so connection
// errors and 5xx answers are retried with backoff. A circuit breaker sits
// in front of every call and fails fast once the server looks down.
package client
