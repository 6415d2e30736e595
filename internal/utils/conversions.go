package utils

import "strings"

func ToStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}

// ScopeList normalises a scope claim, which may be a space separated string or a list.
func ScopeList(claim any) []string {
	switch v := claim.(type) {
	case string:
		return strings.Fields(v)
	case []any:
		return ToStringSlice(v)
	case []string:
		return v
	}
	return nil
}
