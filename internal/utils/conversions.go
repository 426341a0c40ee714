package utils

// ToStringSlice filters a decoded JSON array down to its string members,
// dropping anything else. Used for claim sets whose wire type is []any.
func ToStringSlice(slice []any) []string {
	stringSlice := make([]string, 0)
	for _, v := range slice {
		if s, ok := v.(string); ok {
			stringSlice = append(stringSlice, s)
		}
	}
	return stringSlice
}
