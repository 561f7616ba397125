package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/dj8891/sonaric-desktop/internal/errors"
)

// NA marks a component whose version could not be determined.
const NA = "n/a"

const (
	// CLIVersionMarker precedes the version in `sonaric version` output.
	CLIVersionMarker = "CLI version:"
	cliVersionEnd    = ", "
)

// Info 组件版本信息
type Info struct {
	Current  string `json:"version"`
	Latest   string `json:"latest"`
	UpToDate bool   `json:"up_to_date"`
}

// Payload 汇总 launcher、daemon 与 GUI 的版本
type Payload struct {
	App    Info `json:"app"`
	Daemon Info `json:"daemon"`
	GUI    Info `json:"gui"`
}

// Unknown returns the zero-knowledge value: nothing known, nothing to update.
func Unknown() Info {
	return Info{Current: NA, Latest: NA, UpToDate: true}
}

// String renders "n/a", "X (up to date)" or "X (latest: Y)".
func (i Info) String() string {
	if i.Current == "" || i.Current == NA {
		return NA
	}
	if i.UpToDate || i.Latest == NA || i.Latest == "" {
		return fmt.Sprintf("%s (up to date)", i.Current)
	}
	return fmt.Sprintf("%s (latest: %s)", i.Current, i.Latest)
}

// ParseSemver trims whitespace and a leading "v" then parses strictly.
func ParseSemver(s string) (*semver.Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "v")
	v, err := semver.StrictNewVersion(raw)
	if err != nil {
		return nil, errors.ErrInvalidVersion.WithCause(fmt.Errorf("%q: %w", raw, err))
	}
	return v, nil
}

// ParseCLIVersion extracts the version between "CLI version:" and the next ", ".
func ParseCLIVersion(text string) (*semver.Version, error) {
	start := strings.Index(text, CLIVersionMarker)
	if start < 0 {
		return nil, errors.ErrVersionStartNotFound
	}
	rest := text[start+len(CLIVersionMarker):]

	end := strings.Index(rest, cliVersionEnd)
	if end < 0 {
		return nil, errors.ErrVersionEndNotFound
	}
	return ParseSemver(rest[:end])
}

// IsUpToDate reports whether latest is not newer than current.
func IsUpToDate(current, latest *semver.Version) bool {
	return !latest.GreaterThan(current)
}

// Compare 比较当前版本与最新版本
func Compare(current, latest *semver.Version) Info {
	return Info{
		Current:  current.String(),
		Latest:   latest.String(),
		UpToDate: IsUpToDate(current, latest),
	}
}
