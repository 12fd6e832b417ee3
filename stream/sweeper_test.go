package stream_test

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corkboard/corkboard/internal/dynamofake"
	"github.com/corkboard/corkboard/internal/keys"
	"github.com/corkboard/corkboard/store"
	"github.com/corkboard/corkboard/stream"
)

type recordingBlobs struct {
	removed []string
}

func (r *recordingBlobs) Remove(_ context.Context, key string) error {
	r.removed = append(r.removed, key)
	return nil
}

func newTestSweeper(t *testing.T) (*stream.Sweeper, *store.Store, *dynamofake.Client, *recordingBlobs) {
	t.Helper()
	client := dynamofake.New()
	st := store.New(client, store.DefaultConfig(), nil)
	blobs := &recordingBlobs{}
	return stream.NewSweeper(st, blobs, nil), st, client, blobs
}

func putKeyed(t *testing.T, st *store.Store, k keys.Key) {
	t.Helper()
	_, err := st.Put(context.Background(), store.Item{
		"pk": &types.AttributeValueMemberS{Value: k.PK},
		"sk": &types.AttributeValueMemberS{Value: k.SK},
	})
	require.NoError(t, err)
}

func removeEvent(pk, sk string, oldImage map[string]events.DynamoDBAttributeValue) events.DynamoDBEvent {
	return events.DynamoDBEvent{
		Records: []events.DynamoDBEventRecord{
			{
				EventID:   "evt-1",
				EventName: "REMOVE",
				Change: events.DynamoDBStreamRecord{
					Keys: map[string]events.DynamoDBAttributeValue{
						"pk": events.NewStringAttribute(pk),
						"sk": events.NewStringAttribute(sk),
					},
					OldImage: oldImage,
				},
			},
		},
	}
}

func TestSweepBoardRemoveDeletesSurvivingEdges(t *testing.T) {
	ctx := context.Background()
	sweeper, st, client, _ := newTestSweeper(t)

	putKeyed(t, st, keys.Membership("u1", "b1"))
	putKeyed(t, st, keys.Membership("u2", "b1"))
	putKeyed(t, st, keys.Membership("u1", "b2"))

	err := sweeper.Handle(ctx, removeEvent(keys.BoardRef("b1"), keys.Metadata, nil))
	require.NoError(t, err)

	assert.Equal(t, 1, client.Len())
	_, err = st.Get(ctx, keys.Membership("u1", "b2"))
	assert.NoError(t, err, "edges of other boards stay")
}

func TestSweepTaskRemoveDeletesAttachmentMetadata(t *testing.T) {
	ctx := context.Background()
	sweeper, st, client, _ := newTestSweeper(t)

	putKeyed(t, st, keys.Attachment("t1", "a1"))
	putKeyed(t, st, keys.Attachment("t1", "a2"))
	putKeyed(t, st, keys.Attachment("t2", "a3"))

	err := sweeper.Handle(ctx, removeEvent(keys.BoardRef("b1"), keys.TaskRef("t1"), nil))
	require.NoError(t, err)

	assert.Equal(t, 1, client.Len())
	_, err = st.Get(ctx, keys.Attachment("t2", "a3"))
	assert.NoError(t, err)
}

func TestSweepAttachmentRemoveDeletesObject(t *testing.T) {
	sweeper, _, _, blobs := newTestSweeper(t)

	err := sweeper.Handle(context.Background(), removeEvent(
		keys.TaskRef("t1"), keys.AttachmentPrefix+"a1",
		map[string]events.DynamoDBAttributeValue{
			"s3Key": events.NewStringAttribute("attachments/a1.pdf"),
		},
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"attachments/a1.pdf"}, blobs.removed)
}

func TestSweeperIgnoresOtherEvents(t *testing.T) {
	ctx := context.Background()
	sweeper, st, client, blobs := newTestSweeper(t)

	putKeyed(t, st, keys.Membership("u1", "b1"))

	event := removeEvent(keys.BoardRef("b1"), keys.Metadata, nil)
	event.Records[0].EventName = "MODIFY"
	require.NoError(t, sweeper.Handle(ctx, event))

	assert.Equal(t, 1, client.Len())
	assert.Empty(t, blobs.removed)
}

func TestSweeperClean(t *testing.T) {
	sweeper, _, _, _ := newTestSweeper(t)

	// No surviving edges: the usual case after a successful transaction.
	err := sweeper.Handle(context.Background(), removeEvent(keys.BoardRef("b1"), keys.Metadata, nil))
	assert.NoError(t, err)
}
