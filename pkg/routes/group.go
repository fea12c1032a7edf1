package routes

import "net/http"

// Group organizes routes under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", group)
	}
}

func registerGroup(mux *http.ServeMux, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		pattern := route.Method + " " + fullPrefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, child)
	}
}

// Describe returns every route in the groups as "METHOD /path" under base,
// in registration order.
func Describe(base string, groups ...Group) []string {
	var out []string
	for _, group := range groups {
		out = describeGroup(out, base, group)
	}
	return out
}

func describeGroup(out []string, parentPrefix string, group Group) []string {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		out = append(out, route.Method+" "+fullPrefix+route.Pattern)
	}
	for _, child := range group.Children {
		out = describeGroup(out, fullPrefix, child)
	}
	return out
}
