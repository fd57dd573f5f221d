package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vx6Fid/envelopr/internal/errs"
)

const (
	maxUsernameLen = 64
	minPasswordLen = 8
	maxFileNameLen = 255
)

func normalizeUsername(s string) (string, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return "", fmt.Errorf("%w: empty username", errs.ErrValidation)
	case utf8.RuneCountInString(s) > maxUsernameLen:
		return "", fmt.Errorf("%w: username longer than %d characters", errs.ErrValidation, maxUsernameLen)
	}
	return s, nil
}

func checkPassword(p string) error {
	if utf8.RuneCountInString(p) < minPasswordLen {
		return fmt.Errorf("%w: password shorter than %d characters", errs.ErrValidation, minPasswordLen)
	}
	return nil
}

func normalizeFileName(s string) (string, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return "", fmt.Errorf("%w: empty file name", errs.ErrValidation)
	case utf8.RuneCountInString(s) > maxFileNameLen:
		return "", fmt.Errorf("%w: file name longer than %d characters", errs.ErrValidation, maxFileNameLen)
	}
	return s, nil
}
