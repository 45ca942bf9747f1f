package lib

import (
	appconfig "clinic/src/config"
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"
)

var (
	awsCfg *aws.Config
	awsMu  sync.Mutex
)

// awsGetSdkConfig loads the default chain. When AWS_IAM_ROLE_ARN is set the
// role is assumed, and the cached provider assumes it again before the
// temporary credentials expire.
func awsGetSdkConfig(ctx context.Context) (*aws.Config, error) {
	awsMu.Lock()
	defer awsMu.Unlock()
	if awsCfg != nil {
		return awsCfg, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		GetLogger().Error("aws: error loading default config", zap.Error(err))
		return nil, err
	}
	if iamRole := appconfig.Get().AWSIAMRoleArn; iamRole != "" {
		cfg = awsWithAssumedRole(cfg, sts.NewFromConfig(cfg), iamRole)
	}
	awsCfg = &cfg
	return awsCfg, nil
}

func awsWithAssumedRole(cfg aws.Config, client stscreds.AssumeRoleAPIClient, iamRole string) aws.Config {
	provider := stscreds.NewAssumeRoleProvider(client, iamRole, func(o *stscreds.AssumeRoleOptions) {
		o.RoleSessionName = "clinic-api"
	})
	cfg.Credentials = aws.NewCredentialsCache(provider)
	return cfg
}

func AWSGetSQSClient(ctx context.Context) (*sqs.Client, error) {
	cfg, err := awsGetSdkConfig(ctx)
	if err != nil {
		return nil, err
	}
	return sqs.NewFromConfig(*cfg), nil
}

func AWSGetSNSClient(ctx context.Context) (*sns.Client, error) {
	cfg, err := awsGetSdkConfig(ctx)
	if err != nil {
		return nil, err
	}
	return sns.NewFromConfig(*cfg), nil
}

func AWSGetSESClient(ctx context.Context) (*ses.Client, error) {
	cfg, err := awsGetSdkConfig(ctx)
	if err != nil {
		return nil, err
	}
	return ses.NewFromConfig(*cfg), nil
}
