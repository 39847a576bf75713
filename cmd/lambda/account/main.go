// Lambda entry point for account registration.
package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/radamanthiss/transaction-api/internal/handlers"
	"github.com/radamanthiss/transaction-api/internal/registrar"
	"github.com/radamanthiss/transaction-api/internal/store/dynamo"
)

func main() {
	accountsTable := os.Getenv("DYNAMODB_ACCOUNTS_TABLE_NAME")
	if accountsTable == "" {
		log.Fatal("DYNAMODB_ACCOUNTS_TABLE_NAME is required")
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("loading AWS config: %v", err)
	}

	accounts := dynamo.New(dynamodb.NewFromConfig(awsCfg), accountsTable, "")
	handler := handlers.NewAccountHandler(registrar.New(accounts))

	lambda.Start(handler.Handle)
}
