// Command sweeper runs the DynamoDB Streams cleanup handler as a Lambda.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/corkboard/corkboard/blob"
	"github.com/corkboard/corkboard/internal/config"
	"github.com/corkboard/corkboard/store"
	"github.com/corkboard/corkboard/stream"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("CORKBOARD_CONFIG"))
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		logger.Fatal("load aws config", zap.Error(err))
	}

	dynamo := dynamodb.NewFromConfig(awsCfg)
	s3Client := s3.NewFromConfig(awsCfg)

	st := store.New(dynamo, store.Config{Table: cfg.Table}, logger)
	signer := blob.NewSigner(s3.NewPresignClient(s3Client), s3Client, cfg.Bucket, cfg.URLTTL)

	sweeper := stream.NewSweeper(st, signer, logger)
	lambda.Start(sweeper.Handle)
}
