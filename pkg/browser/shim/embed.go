// Package shim embeds the page-side event forwarder script.
package shim

import (
	_ "embed"
	"errors"
	"strings"
)

//go:embed forwarder.js
var forwarderJS string

// placeholder is substituted with the name of the exposed emit binding.
const placeholder = "__EMIT_BINDING__"

// Forwarder returns the forwarder script bound to the given emit binding.
func Forwarder(bindingName string) (string, error) {
	if bindingName == "" {
		return "", errors.New("shim: binding name is required")
	}
	if !strings.Contains(forwarderJS, placeholder) {
		return "", errors.New("shim: forwarder template missing binding placeholder")
	}
	return strings.ReplaceAll(forwarderJS, placeholder, bindingName), nil
}
