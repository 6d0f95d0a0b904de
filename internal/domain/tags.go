package domain

import "strings"

// tagDelimiter joins category tag lists into a single wire string.
const tagDelimiter = "|"

// JoinTags encodes an ordered tag list as one delimiter-joined string,
// dropping empty entries.
func JoinTags(tags []string) string {
	kept := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag != "" {
			kept = append(kept, tag)
		}
	}
	return strings.Join(kept, tagDelimiter)
}

// SplitTags decodes a delimiter-joined tag string into an ordered list.
// An empty string yields an empty list.
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, tagDelimiter)
}
