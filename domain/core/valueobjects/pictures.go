package valueobjects

import (
	"regexp"
	"sort"
	"strconv"
)

var pictureRefPattern = regexp.MustCompile(`^(\d+)#(.+)$`)

// PictureRef is one "<index>#<filename>" entry of a pictures list
type PictureRef struct {
	Index int
	Name  string
}

// ParsePictureRef parses raw, reporting false for entries that do not match
func ParsePictureRef(raw string) (PictureRef, bool) {
	m := pictureRefPattern.FindStringSubmatch(raw)
	if m == nil {
		return PictureRef{}, false
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil {
		return PictureRef{}, false
	}
	return PictureRef{Index: idx, Name: m[2]}, true
}

func (p PictureRef) String() string {
	return strconv.Itoa(p.Index) + "#" + p.Name
}

// OrderPictureRefs drops malformed entries and stable-sorts the rest by index.
// The result is itself a valid input, and ordering it again is a no-op.
func OrderPictureRefs(pictures []string) []PictureRef {
	refs := make([]PictureRef, 0, len(pictures))
	for _, raw := range pictures {
		if ref, ok := ParsePictureRef(raw); ok {
			refs = append(refs, ref)
		}
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Index < refs[j].Index })
	return refs
}

// OrderPictures returns the ordered entries in their stored string form
func OrderPictures(pictures []string) []string {
	refs := OrderPictureRefs(pictures)
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}

// OrderedPictureNames returns the file names in display order
func OrderedPictureNames(pictures []string) []string {
	refs := OrderPictureRefs(pictures)
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.Name
	}
	return out
}

// CoverPicture returns the file name shown as a post's cover
func CoverPicture(pictures []string) (string, bool) {
	names := OrderedPictureNames(pictures)
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}
