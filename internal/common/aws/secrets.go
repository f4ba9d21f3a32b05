// internal/common/aws/secrets.go
package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

var ErrEmptySecret = errors.New("SECRET_EMPTY")

type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsClient reads JSON key/value secrets holding connection settings.
type SecretsClient struct {
	client secretsAPI
}

func NewSecretsClient(ctx context.Context, region string) (*SecretsClient, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &SecretsClient{client: secretsmanager.NewFromConfig(cfg)}, nil
}

// GetSecretMap fetches name and flattens its JSON object into strings.
func (s *SecretsClient) GetSecretMap(ctx context.Context, name string) (map[string]string, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: awssdk.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("get secret %s: %w", name, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return nil, fmt.Errorf("secret %s: %w", name, ErrEmptySecret)
	}
	return parseSecretString(*out.SecretString)
}

// FetchSecret matches config.SecretFetcher.
func FetchSecret(ctx context.Context, name, region string) (map[string]string, error) {
	client, err := NewSecretsClient(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return client.GetSecretMap(ctx, name)
}

func parseSecretString(raw string) (map[string]string, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("secret is not a JSON object: %w", err)
	}

	values := make(map[string]string, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			values[k] = val
		case float64:
			values[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			values[k] = strconv.FormatBool(val)
		case nil:
			values[k] = ""
		default:
			encoded, err := json.Marshal(val)
			if err != nil {
				return nil, err
			}
			values[k] = string(encoded)
		}
	}
	return values, nil
}
