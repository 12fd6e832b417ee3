//go:build e2e

// Package e2e contains end-to-end tests against a real DynamoDB table.
// Run with: go test -tags=e2e -v ./e2e/...
//
// The test run creates its own table (pay-per-request, unique name) and
// deletes it afterwards. Set AWS_PROFILE/AWS_REGION as usual. Attachment and
// image tests additionally need CORKBOARD_E2E_BUCKET pointing at an existing
// bucket and are skipped without it.
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/corkboard/corkboard/blob"
	"github.com/corkboard/corkboard/internal/keys"
	"github.com/corkboard/corkboard/kanban"
	"github.com/corkboard/corkboard/store"
)

const tablePrefix = "corkboard-e2e"

var (
	tableName string
	ddbClient *dynamodb.Client
	testStore *store.Store
	svc       *kanban.Service
	bucket    string
)

func TestMain(m *testing.M) {
	tableName = fmt.Sprintf("%s-%s", tablePrefix, uuid.New().String()[:8])
	bucket = os.Getenv("CORKBOARD_E2E_BUCKET")
	fmt.Printf("Test table: %s\n", tableName)

	ctx := context.Background()
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		fmt.Printf("Failed to load AWS config: %v\n", err)
		os.Exit(1)
	}

	ddbClient = dynamodb.NewFromConfig(cfg)
	if err := createTable(ctx); err != nil {
		fmt.Printf("Failed to create table: %v\n", err)
		os.Exit(1)
	}

	testStore = store.New(ddbClient, store.Config{Table: tableName}, nil)

	s3Client := s3.NewFromConfig(cfg)
	signer := blob.NewSigner(s3.NewPresignClient(s3Client), s3Client, bucket, time.Minute)
	svc = kanban.NewService(testStore, signer, nil)

	code := m.Run()

	if err := deleteTable(ctx); err != nil {
		fmt.Printf("Warning: failed to delete table: %v\n", err)
	}
	os.Exit(code)
}

func createTable(ctx context.Context) error {
	stringAttr := func(name string) types.AttributeDefinition {
		return types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		}
	}
	projectAll := &types.Projection{ProjectionType: types.ProjectionTypeAll}

	_, err := ddbClient.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(tableName),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			stringAttr("pk"),
			stringAttr("sk"),
			stringAttr("email"),
			stringAttr("assignee"),
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(keys.UserBoardIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("sk"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("pk"), KeyType: types.KeyTypeRange},
				},
				Projection: projectAll,
			},
			{
				IndexName: aws.String(keys.EmailIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("email"), KeyType: types.KeyTypeHash},
				},
				Projection: projectAll,
			},
			{
				IndexName: aws.String(keys.AssigneeIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("assignee"), KeyType: types.KeyTypeHash},
				},
				Projection: projectAll,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", tableName, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(ddbClient)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	}, 2*time.Minute); err != nil {
		return fmt.Errorf("wait for table %s: %w", tableName, err)
	}
	return nil
}

func deleteTable(ctx context.Context) error {
	_, err := ddbClient.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: aws.String(tableName),
	})
	return err
}

func TestBoardScenario(t *testing.T) {
	ctx := context.Background()

	ann, err := svc.CreateUser(ctx, kanban.CreateUserInput{
		UID:   "e2e-ann",
		Email: "e2e-ann@example.com",
		Name:  "Ann",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err = svc.CreateUser(ctx, kanban.CreateUserInput{
		UID:   "e2e-bob",
		Email: "e2e-bob@example.com",
		Name:  "Bob",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	board, err := svc.CreateBoard(ctx, kanban.CreateBoardInput{
		Title:      "E2E Roadmap",
		Admin:      ann.UID,
		Visibility: kanban.VisibilityPrivate,
	})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}

	if _, err := svc.InviteUser(ctx, board.ID, "e2e-bob@example.com"); err != nil {
		t.Fatalf("invite: %v", err)
	}
	members, err := svc.GetBoardUsers(ctx, board.ID)
	if err != nil {
		t.Fatalf("board users: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	todo, err := svc.CreateList(ctx, board.ID, kanban.CreateListInput{Title: "Todo", Order: 0})
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	doing, err := svc.CreateList(ctx, board.ID, kanban.CreateListInput{Title: "Doing", Order: 1})
	if err != nil {
		t.Fatalf("create list: %v", err)
	}

	task, err := svc.CreateTask(ctx, board.ID, kanban.CreateTaskInput{
		ListID:   todo.ID,
		Title:    "Ship it",
		Assignee: "e2e-bob",
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	moved, err := svc.MoveTask(ctx, board.ID, task.ID, doing.ID, 0)
	if err != nil {
		t.Fatalf("move task: %v", err)
	}
	if moved.ListID != doing.ID {
		t.Fatalf("expected task in %s, got %s", doing.ID, moved.ListID)
	}

	assigned, err := svc.GetTasksByAssignee(ctx, "e2e-bob")
	if err != nil {
		t.Fatalf("tasks by assignee: %v", err)
	}
	if len(assigned) != 1 {
		t.Fatalf("expected 1 assigned task, got %d", len(assigned))
	}

	lists, err := svc.ReorderLists(ctx, board.ID, []string{doing.ID, todo.ID})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if lists[0].ID != doing.ID {
		t.Fatalf("expected %s first, got %s", doing.ID, lists[0].ID)
	}

	if err := svc.DeleteBoard(ctx, board.ID); err != nil {
		t.Fatalf("delete board: %v", err)
	}
	if _, err := testStore.Get(ctx, keys.Board(board.ID)); err != store.ErrNotFound {
		t.Fatalf("expected board gone, got %v", err)
	}
	boards, err := svc.GetUserBoards(ctx, "e2e-bob")
	if err != nil {
		t.Fatalf("user boards: %v", err)
	}
	if len(boards) != 0 {
		t.Fatalf("expected no boards after cascade, got %d", len(boards))
	}
}

func TestAttachmentScenario(t *testing.T) {
	if bucket == "" {
		t.Skip("CORKBOARD_E2E_BUCKET not set")
	}
	ctx := context.Background()

	ticket, err := svc.NewUploadURL(ctx, "notes.txt", "text/plain")
	if err != nil {
		t.Fatalf("upload url: %v", err)
	}
	if ticket.UploadURL == "" {
		t.Fatal("expected a presigned URL")
	}

	att, err := svc.CreateAttachment(ctx, kanban.CreateAttachmentInput{
		TaskID:      "e2e-task",
		ID:          ticket.FileID,
		FileName:    ticket.FileName,
		S3Key:       ticket.S3Key,
		ContentType: ticket.ContentType,
	})
	if err != nil {
		t.Fatalf("create attachment: %v", err)
	}
	if att.URL == "" {
		t.Fatal("expected a download URL")
	}

	if err := svc.DeleteAttachment(ctx, "e2e-task", att.ID); err != nil {
		t.Fatalf("delete attachment: %v", err)
	}
}
