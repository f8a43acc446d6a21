package model

import (
	"strings"
)

// TagName is the struct tag key read by ParseTag.
const TagName = "dbutils"

// Tag represents parsed dbutils tags
type Tag struct {
	Column string
	Omit   bool
}

// ParseTag parses the "dbutils" tag string.
//
//	`dbutils:"-"`            field is never mapped
//	`dbutils:"column:Name"`  read the field from column Name instead of the field name
//
// Keys are case-insensitive; values are kept verbatim because column matching
// is exact.
func ParseTag(tagStr string) *Tag {
	tag := &Tag{}
	tagStr = strings.TrimSpace(tagStr)
	if tagStr == "" {
		return tag
	}
	if tagStr == "-" {
		tag.Omit = true
		return tag
	}

	// Support space, semicolon, comma as separators
	parts := strings.FieldsFunc(tagStr, func(r rune) bool {
		return r == ' ' || r == ';' || r == ','
	})

	for _, part := range parts {
		kv := strings.SplitN(part, ":", 2)
		key := strings.ToLower(kv[0])
		var val string
		if len(kv) > 1 {
			val = kv[1]
		}

		switch key {
		case "column":
			tag.Column = val
		case "-":
			tag.Omit = true
		}
	}
	return tag
}
