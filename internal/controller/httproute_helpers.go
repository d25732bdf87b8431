package controller

import (
	"encoding/json"
	"strings"

	gatewayv1 "sigs.k8s.io/gateway-api/apis/v1"
)

// Contains reports whether s holds v.
func Contains(s []string, v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

// routeHostnames returns the route's hostnames lower-cased and without a
// trailing dot, in route order, without duplicates.
func routeHostnames(route *gatewayv1.HTTPRoute) []string {
	hostnames := make([]string, 0, len(route.Spec.Hostnames))
	for _, h := range route.Spec.Hostnames {
		name := strings.ToLower(strings.TrimSuffix(string(h), "."))
		if name == "" || Contains(hostnames, name) {
			continue
		}
		hostnames = append(hostnames, name)
	}
	return hostnames
}

// parseManagedHostnames decodes the managed-hostnames annotation. A missing
// or malformed annotation is treated as empty.
func parseManagedHostnames(val string) []string {
	if val == "" {
		return nil
	}
	var hostnames []string
	if err := json.Unmarshal([]byte(val), &hostnames); err != nil {
		return nil
	}
	return hostnames
}
