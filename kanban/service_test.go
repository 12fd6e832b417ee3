package kanban_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"

	"github.com/corkboard/corkboard/blob"
	"github.com/corkboard/corkboard/internal/dynamofake"
	"github.com/corkboard/corkboard/kanban"
	"github.com/corkboard/corkboard/store"
)

// fakePresign signs nothing; it fabricates stable URLs so tests can assert
// which object key an operation asked for.
type fakePresign struct{}

func (fakePresign) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{URL: "https://signed.test/get/" + *in.Key}, nil
}

func (fakePresign) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{URL: "https://signed.test/put/" + *in.Key}, nil
}

// fakeObjects records removed object keys.
type fakeObjects struct {
	removed []string
}

func (f *fakeObjects) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.removed = append(f.removed, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type harness struct {
	svc     *kanban.Service
	client  *dynamofake.Client
	store   *store.Store
	objects *fakeObjects
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	client := dynamofake.New()
	st := store.New(client, store.DefaultConfig(), nil)
	objects := &fakeObjects{}
	signer := blob.NewSigner(fakePresign{}, objects, "corkboard-files", 0)

	n := 0
	svc := kanban.NewService(st, signer, nil,
		kanban.WithClock(func() time.Time {
			return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		}),
		kanban.WithIDSource(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	return &harness{svc: svc, client: client, store: st, objects: objects}
}

// seedUser registers a user so board operations can hydrate it.
func (h *harness) seedUser(t *testing.T, uid, email, name string) *kanban.User {
	t.Helper()
	user, err := h.svc.CreateUser(context.Background(), kanban.CreateUserInput{
		UID:   uid,
		Email: email,
		Name:  name,
	})
	require.NoError(t, err)
	return user
}
