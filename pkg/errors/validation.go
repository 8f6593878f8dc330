package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// residueCodeRegex matches PDB chemical component codes: one to five
// upper-case letters or digits.
var residueCodeRegex = regexp.MustCompile(`^[A-Z0-9]{1,5}$`)

// ValidateResidueCode validates a chemical component code such as "NAG".
func ValidateResidueCode(code string) error {
	if code == "" {
		return New(ErrCodeInvalidResidue, "residue code cannot be empty")
	}
	if !residueCodeRegex.MatchString(code) {
		return New(ErrCodeInvalidResidue, "invalid residue code: %q", code)
	}
	return nil
}

// ValidateResidueCodes validates each code in codes.
func ValidateResidueCodes(codes []string) error {
	for _, c := range codes {
		if err := ValidateResidueCode(c); err != nil {
			return err
		}
	}
	return nil
}

// ValidateChainID validates a chain identifier. PDB files use one character;
// up to four are accepted for converted mmCIF identifiers.
func ValidateChainID(id string) error {
	if id == "" || len(id) > 4 {
		return New(ErrCodeInvalidChain, "chain ID must be 1-4 characters: %q", id)
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return New(ErrCodeInvalidChain, "chain ID must be alphanumeric: %q", id)
		}
	}
	return nil
}

// ValidateAltLoc validates an alternate conformation tag. The empty tag
// selects the default conformation.
func ValidateAltLoc(tag string) error {
	if tag == "" {
		return nil
	}
	if len(tag) != 1 || tag == " " || unicode.IsControl(rune(tag[0])) {
		return New(ErrCodeInvalidAltLoc, "alternate location must be a single character: %q", tag)
	}
	return nil
}

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed ...string) error {
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateFilename validates an uploaded model filename.
// It ensures the filename is a simple basename without path components.
func ValidateFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidPath, "filename cannot be a hidden file")
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid characters")
		}
	}
	return nil
}

// ValidatePath validates a relative path, such as a cache key or a report
// path below a served directory.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a service URL against the accepted schemes, e.g.
// "redis", "rediss" or "mongodb".
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes %s", strings.Join(schemes, ", "))
}
