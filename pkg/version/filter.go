package version

import "strings"

// Floating and meta tags that never participate in version resolution.
var floatingTags = map[string]struct{}{
	"latest": {},
	"stable": {},
	"master": {},
	"main":   {},
	"sts":    {},
	"beta":   {},
}

// Keywords identifying Windows platform builds, which are never update
// candidates on a Linux host.
var platformKeywords = []string{
	"windows",
	"nanoserver",
	"windowsltsc",
	"windowsservercore",
	"ltsc",
}

// IsCandidateTag reports whether a tag is a valid version candidate. Floating
// tags and tags without any digit are rejected; everything else is accepted,
// so uncommon version shapes still qualify as long as they carry a digit.
func IsCandidateTag(tag string) bool {
	lower := strings.ToLower(tag)
	if _, ok := floatingTags[lower]; ok {
		return false
	}
	return strings.ContainsAny(tag, "0123456789")
}

// IsPlatformExcluded reports whether a tag names a platform variant build.
func IsPlatformExcluded(tag string) bool {
	lower := strings.ToLower(tag)
	for _, keyword := range platformKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
