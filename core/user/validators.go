package user

import (
	"bufio"
	"compress/gzip"
	"io/fs"
	"log"
	"strings"
	"sync"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/juku/core"
)

const (
	passwordMinLength    = 8
	maxSimilarityRatio   = 0.7
	commonPasswordsAsset = "common-passwords.txt.gz"
)

var (
	assetsFS fs.FS

	commonPasswords map[string]struct{}
	pwdOnce         sync.Once
)

// SetAssetsFS registers the filesystem the common passwords list lives in.
func SetAssetsFS(fsys fs.FS) { assetsFS = fsys }

func loadCommonPasswords() {
	pwdOnce.Do(func() {
		commonPasswords = make(map[string]struct{})
		if assetsFS == nil {
			return
		}
		f, err := assetsFS.Open(commonPasswordsAsset)
		if err != nil {
			log.Printf("user.loadCommonPasswords: %v", err)
			return
		}
		defer f.Close()
		gz, err := gzip.NewReader(f)
		if err != nil {
			log.Printf("user.loadCommonPasswords: %v", err)
			return
		}
		defer gz.Close()
		scanner := bufio.NewScanner(gz)
		for scanner.Scan() {
			if pwd := strings.TrimSpace(scanner.Text()); pwd != "" {
				commonPasswords[pwd] = struct{}{}
			}
		}
	})
}

func isAllNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

// validatePassword enforces the password policy: a minimum length, not
// entirely numeric, not a commonly used password and not too similar to the
// user's own attributes.
func validatePassword(password string, attrs ...string) error {
	fieldErr := func(code, message string) error {
		return core.NewValidationError(core.NewFieldError(code, "password", message))
	}

	if len(password) < passwordMinLength {
		return fieldErr("password_too_short", "this password is too short, it must contain at least 8 characters")
	}
	if isAllNumeric(password) {
		return fieldErr("password_entirely_numeric", "this password is entirely numeric")
	}

	loadCommonPasswords()
	if _, found := commonPasswords[strings.ToLower(password)]; found {
		return fieldErr("password_too_common", "this password is too common")
	}

	lowerPwd := strings.ToLower(password)
	getRatio := func(attr string) float64 {
		if attr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(lowerPwd, ""), strings.Split(attr, "")).QuickRatio()
	}
	for _, attr := range attrs {
		attr = strings.ToLower(strings.TrimSpace(attr))
		for _, part := range strings.FieldsFunc(attr, func(r rune) bool { return r == '@' || r == '.' || r == ' ' || r == '-' || r == '_' }) {
			if getRatio(part) >= maxSimilarityRatio {
				return fieldErr("password_too_similar", "this password is too similar to your other details")
			}
		}
	}
	return nil
}
