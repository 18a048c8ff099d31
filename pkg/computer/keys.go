package computer

import "strings"

// KeyName maps a key name from the model to the name the browser driver
// expects. Only enter and space need translating; other names pass through.
func KeyName(key string) string {
	switch strings.ToLower(key) {
	case "enter":
		return "Enter"
	case "space":
		return " "
	default:
		return key
	}
}
