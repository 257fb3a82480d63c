package qsapi

import "strings"

// QuickSight ARNs look like
// arn:aws:quicksight:us-east-1:123456789012:dataset/abcd-1234.
// The asset ID is everything after the final slash and the owning account is
// the fifth colon-delimited segment.

// IDFromARN extracts the asset ID from an ARN.
func IDFromARN(arn string) string {
	return arn[strings.LastIndex(arn, "/")+1:]
}

// AccountIDFromARN extracts the owning account ID from an ARN. Returns ""
// when the string has too few segments to be an ARN.
func AccountIDFromARN(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) < 6 {
		return ""
	}
	return parts[4]
}

// ReplaceAccountID rewrites the account segment of an ARN.
func ReplaceAccountID(arn, accountID string) string {
	current := AccountIDFromARN(arn)
	if current == "" {
		return arn
	}
	return strings.Replace(arn, current, accountID, 1)
}
