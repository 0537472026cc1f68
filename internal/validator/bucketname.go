package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"s3simplified/internal/model"
)

// Bucket-name rule names, reported in model.Error.Rule.
const (
	RuleLength            = "length"
	RuleStartAlphanumeric = "start-alphanumeric"
	RuleEndAlphanumeric   = "end-alphanumeric"
	RuleNoDot             = "no-dot"
	RuleLowercase         = "lowercase"
	RuleNoUnderscore      = "no-underscore"
	RuleReservedSuffix    = "reserved-suffix"
	RuleReservedPrefix    = "reserved-prefix"
)

var (
	startsAlnum = regexp.MustCompile(`^[a-z0-9]`)
	endsAlnum   = regexp.MustCompile(`[a-z0-9]$`)

	reservedSuffixes = []string{"-s3alias", "--ol-s3"}
	reservedPrefixes = []string{"xn--"}
)

// Stricter than the S3 naming rules: dots are legal there but not here.
var bucketName = New(
	NewRule(RuleLength, func(s string) bool { return len(s) >= 3 && len(s) <= 63 }),
	NewRule(RuleStartAlphanumeric, startsAlnum.MatchString),
	NewRule(RuleEndAlphanumeric, endsAlnum.MatchString),
	NewRule(RuleNoDot, func(s string) bool { return !strings.Contains(s, ".") }),
	NewRule(RuleLowercase, func(s string) bool { return s == strings.ToLower(s) }),
	NewRule(RuleNoUnderscore, func(s string) bool { return !strings.Contains(s, "_") }),
	NewRule(RuleReservedSuffix, func(s string) bool {
		for _, suffix := range reservedSuffixes {
			if strings.HasSuffix(s, suffix) {
				return false
			}
		}
		return true
	}),
	NewRule(RuleReservedPrefix, func(s string) bool {
		for _, prefix := range reservedPrefixes {
			if strings.HasPrefix(s, prefix) {
				return false
			}
		}
		return true
	}),
)

// BucketName returns the shared bucket-name validator.
func BucketName() *Validator[string] {
	return bucketName
}

// ValidateBucketName returns a model.Error of kind InvalidName naming the
// first violated rule, or nil.
func ValidateBucketName(name string) error {
	if failed := bucketName.Violations(name); len(failed) > 0 {
		return model.InvalidName(name, failed[0])
	}
	return nil
}

// ValidateBucketNameAsync is ValidateBucketName with the rules evaluated
// concurrently.
func ValidateBucketNameAsync(ctx context.Context, name string) error {
	err := bucketName.ValidateAsync(ctx, name)
	var re *RuleError
	if errors.As(err, &re) {
		return model.InvalidName(name, re.Rule)
	}
	return err
}
