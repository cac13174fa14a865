package valueobjects

import "strings"

// ObjectKey builds the storage key protected/<namespace>/<name>
func ObjectKey(namespace, name string) string {
	return "protected/" + strings.Trim(namespace, "/") + "/" + strings.TrimLeft(name, "/")
}
