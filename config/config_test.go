package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	cfg := map[string]string{
		"PORT":             "9090",
		"BAD_INT":          "nine",
		"SECURE":           "true",
		"TIMEOUT":          "15",
		"ACCEPTED_ORIGINS": "https://a.dev, ,https://b.dev",
		"EMPTY":            "",
	}

	assert.Equal(t, 9090, GetInt(cfg, "PORT", 8080))
	assert.Equal(t, 8080, GetInt(cfg, "BAD_INT", 8080))
	assert.Equal(t, 8080, GetInt(nil, "PORT", 8080))
	assert.True(t, GetBool(cfg, "SECURE", false))
	assert.True(t, GetBool(cfg, "MISSING", true))
	assert.Equal(t, 15*time.Second, GetSeconds(cfg, "TIMEOUT", time.Second))
	assert.Equal(t, time.Second, GetSeconds(cfg, "MISSING", time.Second))
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, GetList(cfg, "ACCEPTED_ORIGINS"))
	assert.Equal(t, "fallback", GetString(cfg, "EMPTY", "fallback"))
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("PORTFOLIO_TEST_KEY", "a=b")
	cfg := New()
	assert.Equal(t, "a=b", cfg["PORTFOLIO_TEST_KEY"])
}

type fakeSSM struct {
	pages [][]types.Parameter
	calls int
	err   error
}

func (f *fakeSSM) GetParametersByPath(_ context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &ssm.GetParametersByPathOutput{Parameters: f.pages[f.calls]}
	f.calls++
	if f.calls < len(f.pages) {
		out.NextToken = aws.String("next")
	}
	return out, nil
}

func TestLoadSSM(t *testing.T) {
	client := &fakeSSM{pages: [][]types.Parameter{
		{{Name: aws.String("/portfolio/prod/SESSION_SECRET"), Value: aws.String("s3cret")}},
		{{Name: aws.String("/portfolio/prod/GITHUB_TOKEN"), Value: aws.String("ghp_x")}},
	}}

	params, err := LoadSSM(context.Background(), client, "/portfolio/prod")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"SESSION_SECRET": "s3cret", "GITHUB_TOKEN": "ghp_x"}, params)
	assert.Equal(t, 2, client.calls)
}

func TestLoadSSMError(t *testing.T) {
	_, err := LoadSSM(context.Background(), &fakeSSM{err: errors.New("access denied")}, "/portfolio")
	assert.ErrorContains(t, err, "access denied")
}
