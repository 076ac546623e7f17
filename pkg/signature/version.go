package signature

import (
	"errors"
	"fmt"

	semver "github.com/hashicorp/go-version"
)

// ErrTargetVersion is returned when the requested target version does not parse.
var ErrTargetVersion = errors.New("invalid target version")

// ValidateTarget checks a target version; empty is valid.
func ValidateTarget(target string) error {
	if target == "" {
		return nil
	}
	if _, err := semver.NewVersion(target); err != nil {
		return fmt.Errorf("%w %q: %v", ErrTargetVersion, target, err)
	}
	return nil
}

// Supports reports whether the signature applies to the target version.
// Signatures without a version range, or an empty target, always apply.
func (s *Signature) Supports(target string) (bool, error) {
	if s.Version == nil || target == "" {
		return true, nil
	}
	tv, err := semver.NewVersion(target)
	if err != nil {
		return false, fmt.Errorf("%w %q: %v", ErrTargetVersion, target, err)
	}
	if s.Version.Min != "" {
		minVer, err := semver.NewVersion(s.Version.Min)
		if err != nil {
			return false, fmt.Errorf("failed to convert signature min version into semver object: %v", err)
		}
		if tv.LessThan(minVer) {
			return false, nil
		}
	}
	if s.Version.Max != "" {
		maxVer, err := semver.NewVersion(s.Version.Max)
		if err != nil {
			return false, fmt.Errorf("failed to convert signature max version into semver object: %v", err)
		}
		if tv.GreaterThan(maxVer) {
			return false, nil
		}
	}
	return true, nil
}

// Validate checks that the version bounds parse.
func (v *Version) Validate() error {
	for _, s := range []string{v.Min, v.Max} {
		if s == "" {
			continue
		}
		if _, err := semver.NewVersion(s); err != nil {
			return fmt.Errorf("%w: version %q: %v", ErrInvalid, s, err)
		}
	}
	return nil
}
