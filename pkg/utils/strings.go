package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	slugInvalid = regexp.MustCompile("[^a-z0-9 _-]+")
	slugDashes  = regexp.MustCompile("[ _-]+")
)

// GenerateSlug converts a string into a URL-friendly slug.
// e.g. "Red Shirt (front)_v2" -> "red-shirt-front-v2"
func GenerateSlug(input string) string {
	s := strings.ToLower(input)
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ParseBool reads query flags such as ?refresh=true; anything unparseable is false.
func ParseBool(s string) bool {
	val, err := strconv.ParseBool(s)
	return err == nil && val
}
