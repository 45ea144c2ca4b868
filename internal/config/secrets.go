package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

// GetSecretValue retrieves a secret from AWS Secrets Manager
func GetSecretValue(ctx context.Context, secretName, region string) (string, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return "", fmt.Errorf("unable to create AWS session: %w", err)
	}

	client := secretsmanager.New(sess)

	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}

	result, err := client.GetSecretValueWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve secret: %w", err)
	}

	// Secrets Manager can store secrets as SecretString or SecretBinary
	if result.SecretString == nil {
		return "", fmt.Errorf("secret is stored as binary, expected string")
	}

	return *result.SecretString, nil
}

// GetProcessorAPIKey resolves the API key for a payment rail. The environment
// variable takes precedence (local development); otherwise the key is fetched
// from Secrets Manager under stealth-money/<rail>-api-key.
func GetProcessorAPIKey(ctx context.Context, rail, region string) (string, error) {
	envKey := strings.ToUpper(rail) + "_API_KEY"
	if apiKey := getEnv(envKey, ""); apiKey != "" {
		return apiKey, nil
	}

	secretName := fmt.Sprintf("stealth-money/%s-api-key", strings.ToLower(rail))
	apiKey, err := GetSecretValue(ctx, secretName, region)
	if err != nil {
		return "", fmt.Errorf("failed to get %s API key: %w", rail, err)
	}

	return apiKey, nil
}
