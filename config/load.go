package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Load reads a .env file when present, then the process environment, then
// overlays secrets from SSM Parameter Store when SSM_PARAMETER_PATH is set.
func Load(ctx context.Context) (map[string]string, error) {
	possiblePaths := []string{
		".env",
		filepath.Join("..", ".env"),
	}
	for _, envPath := range possiblePaths {
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded .env file")
			break
		}
	}

	cfg := New()

	path := GetString(cfg, "SSM_PARAMETER_PATH", "")
	if path == "" {
		return cfg, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(GetString(cfg, "AWS_REGION", "us-east-1")))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	params, err := LoadSSM(ctx, ssm.NewFromConfig(awsCfg), path)
	if err != nil {
		return nil, err
	}
	for k, v := range params {
		cfg[k] = v
	}
	log.Info().Int("count", len(params)).Str("path", path).Msg("Loaded parameters from SSM")
	return cfg, nil
}

// ParameterGetter is the subset of the SSM client used by LoadSSM.
type ParameterGetter interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSM fetches every decrypted parameter under path. The key of each entry
// is the last path segment, so /portfolio/prod/SESSION_SECRET becomes SESSION_SECRET.
func LoadSSM(ctx context.Context, client ParameterGetter, path string) (map[string]string, error) {
	out := make(map[string]string)
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(path),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("read SSM parameters under %s: %w", path, err)
		}
		for _, p := range page.Parameters {
			name := aws.ToString(p.Name)
			key := name[strings.LastIndex(name, "/")+1:]
			if key != "" {
				out[key] = aws.ToString(p.Value)
			}
		}
	}
	return out, nil
}
