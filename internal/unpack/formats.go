package unpack

import (
	"regexp"
	"strconv"
	"strings"
)

// Extensions the external archiver understands. Detection is by file
// name only; the archiver itself rejects anything it cannot open.
var archiveExtensions = map[string]struct{}{
	"zip": {}, "rar": {}, "7z": {}, "tar": {}, "gz": {}, "tgz": {},
	"bz2": {}, "tbz2": {}, "xz": {}, "txz": {}, "zst": {}, "iso": {},
	"cab": {}, "arj": {}, "lzh": {}, "z": {}, "cpio": {}, "deb": {},
	"rpm": {}, "wim": {},
}

// Split-volume suffixes like name.7z.001 or name.z01.
var volumeSuffix = regexp.MustCompile(`^(z?\d{2,3})$`)

// Rar-style part segments like name.part2.rar.
var partSegment = regexp.MustCompile(`^part(\d+)$`)

func IsArchiveName(name string) bool {
	ext := lastExt(name)
	if ext == "" {
		return false
	}
	if _, ok := archiveExtensions[ext]; ok {
		return true
	}
	if volumeSuffix.MatchString(ext) {
		// part files only count when the preceding extension is an
		// archive one (name.7z.001) or the rar-style zNN form.
		rest := strings.TrimSuffix(name, "."+ext)
		inner := lastExt(rest)
		if _, ok := archiveExtensions[inner]; ok {
			return true
		}
		return strings.HasPrefix(ext, "z")
	}
	return false
}

// IsFirstVolume reports whether a multi-part name is the part the
// archiver should be pointed at. Covers the numeric forms
// (name.7z.001, name.z01) and the rar form (name.part1.rar).
func IsFirstVolume(name string) bool {
	ext := lastExt(name)
	switch ext {
	case "001", "z01":
		return true
	}

	rest := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "."+ext)
	seg := rest
	if i := strings.LastIndexByte(rest, '.'); i >= 0 {
		seg = rest[i+1:]
	}
	if m := partSegment.FindStringSubmatch(seg); m != nil {
		n, err := strconv.Atoi(m[1])
		return err == nil && n == 1
	}
	return false
}

func lastExt(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	i := strings.LastIndexByte(name, '.')
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return name[i+1:]
}
