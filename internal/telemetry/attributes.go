// SPDX-License-Identifier: MIT

// Package telemetry provides OpenTelemetry tracing utilities for stbbridge.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Set-top box attributes
	BoxIDKey       = "stb.box_id"
	BoxProviderKey = "stb.provider"
	BoxCommandKey  = "stb.command"

	// Browse attributes
	BrowseContentTypeKey = "browse.content_type"
	BrowseContentIDKey   = "browse.content_id"
	BrowseChildrenKey    = "browse.children"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// BoxAttributes creates span attributes describing a set-top box command.
func BoxAttributes(boxID, provider, command string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if boxID != "" {
		attrs = append(attrs, attribute.String(BoxIDKey, boxID))
	}
	if provider != "" {
		attrs = append(attrs, attribute.String(BoxProviderKey, provider))
	}
	if command != "" {
		attrs = append(attrs, attribute.String(BoxCommandKey, command))
	}
	return attrs
}

// BrowseAttributes creates span attributes for a browse request.
func BrowseAttributes(contentType, contentID string, children int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(BrowseContentTypeKey, contentType),
		attribute.String(BrowseContentIDKey, contentID),
		attribute.Int(BrowseChildrenKey, children),
	}
}
