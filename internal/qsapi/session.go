package qsapi

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// StaticCredentials carries explicit API credentials from configuration.
// When unset the default provider chain (shared config, environment, IMDS)
// applies.
type StaticCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Session is the scoped connection to one AWS account: the resolved SDK
// config plus the caller's account ID. One session is acquired per command
// invocation.
type Session struct {
	Config    aws.Config
	AccountID string
}

// STSAPI is the slice of the STS client used for identity resolution.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// NewSession resolves AWS credentials for the named shared-config profile and
// determines the caller's account ID.
func NewSession(ctx context.Context, profile, region string, creds StaticCredentials) (*Session, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if creds.AccessKeyID != "" && creds.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	accountID, err := CallerIdentityAccount(ctx, sts.NewFromConfig(cfg))
	if err != nil {
		return nil, err
	}

	return &Session{Config: cfg, AccountID: accountID}, nil
}

// CallerIdentityAccount returns the account ID of the current credentials.
func CallerIdentityAccount(ctx context.Context, api STSAPI) (string, error) {
	out, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to resolve caller identity: %w", err)
	}
	accountID := aws.ToString(out.Account)
	if accountID == "" {
		return "", fmt.Errorf("caller identity response carries no account ID")
	}
	return accountID, nil
}
