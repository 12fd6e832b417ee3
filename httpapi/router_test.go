package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corkboard/corkboard/blob"
	"github.com/corkboard/corkboard/httpapi"
	"github.com/corkboard/corkboard/internal/dynamofake"
	"github.com/corkboard/corkboard/kanban"
	"github.com/corkboard/corkboard/store"
)

type stubPresign struct{}

func (stubPresign) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{URL: "https://signed.test/get/" + *in.Key}, nil
}

func (stubPresign) PresignPutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	return &v4.PresignedHTTPRequest{URL: "https://signed.test/put/" + *in.Key}, nil
}

type stubObjects struct{}

func (stubObjects) DeleteObject(_ context.Context, _ *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return &s3.DeleteObjectOutput{}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := store.New(dynamofake.New(), store.DefaultConfig(), nil)
	signer := blob.NewSigner(stubPresign{}, stubObjects{}, "corkboard-files", 0)

	n := 0
	svc := kanban.NewService(st, signer, nil, kanban.WithIDSource(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))

	srv := httptest.NewServer(httpapi.NewRouter(svc, nil, nil).Setup())
	t.Cleanup(srv.Close)
	return srv
}

type apiResponse struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, method, url string, body interface{}) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	status, out := doJSON(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", out.Message)
}

func TestUserLifecycle(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/user", map[string]string{
		"uid":   "u1",
		"email": "ann@example.com",
		"name":  "Ann",
	})
	require.Equal(t, http.StatusCreated, status)

	status, out := doJSON(t, http.MethodGet, srv.URL+"/user?uid=u1", nil)
	require.Equal(t, http.StatusOK, status)
	var user struct {
		UID   string `json:"uid"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &user))
	assert.Equal(t, "u1", user.UID)

	status, out = doJSON(t, http.MethodGet, srv.URL+"/user?email=ann@example.com", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(out.Data, &user))
	assert.Equal(t, "ann@example.com", user.Email)
}

func TestCreateUserValidation(t *testing.T) {
	srv := newTestServer(t)

	// Missing email.
	status, _ := doJSON(t, http.MethodPost, srv.URL+"/user", map[string]string{
		"uid":  "u1",
		"name": "Ann",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Malformed email.
	status, _ = doJSON(t, http.MethodPost, srv.URL+"/user", map[string]string{
		"uid":   "u1",
		"email": "not-an-email",
		"name":  "Ann",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBoardRoutes(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/user", map[string]string{
		"uid":   "admin",
		"email": "ann@example.com",
		"name":  "Ann",
	})
	require.Equal(t, http.StatusCreated, status)

	status, out := doJSON(t, http.MethodPost, srv.URL+"/board", map[string]interface{}{
		"title":      "Roadmap",
		"admin":      "admin",
		"visibility": "private",
	})
	require.Equal(t, http.StatusCreated, status)
	var board struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &board))
	require.NotEmpty(t, board.ID)

	status, out = doJSON(t, http.MethodGet, srv.URL+"/board/"+board.ID, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(out.Data, &board))
	assert.Equal(t, "Roadmap", board.Title)

	status, out = doJSON(t, http.MethodPut, srv.URL+"/board/"+board.ID, map[string]string{
		"title": "Renamed",
	})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(out.Data, &board))
	assert.Equal(t, "Renamed", board.Title)

	status, out = doJSON(t, http.MethodGet, srv.URL+"/user/admin/boards", nil)
	require.Equal(t, http.StatusOK, status)
	var boards []json.RawMessage
	require.NoError(t, json.Unmarshal(out.Data, &boards))
	assert.Len(t, boards, 1)

	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/board/"+board.ID, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/board/"+board.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMissingBoardIs404(t *testing.T) {
	srv := newTestServer(t)

	status, out := doJSON(t, http.MethodGet, srv.URL+"/board/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not found", out.Message)
	assert.Equal(t, http.StatusNotFound, out.StatusCode)
}

func TestListAndTaskRoutes(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/user", map[string]string{
		"uid":   "admin",
		"email": "ann@example.com",
		"name":  "Ann",
	})
	require.Equal(t, http.StatusCreated, status)

	status, out := doJSON(t, http.MethodPost, srv.URL+"/board", map[string]string{
		"title": "B",
		"admin": "admin",
	})
	require.Equal(t, http.StatusCreated, status)
	var board struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &board))

	status, out = doJSON(t, http.MethodPost, srv.URL+"/board/"+board.ID+"/lists", map[string]interface{}{
		"title": "Todo",
		"order": 0,
	})
	require.Equal(t, http.StatusCreated, status)
	var list struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &list))

	status, out = doJSON(t, http.MethodPost, srv.URL+"/board/"+board.ID+"/tasks", map[string]interface{}{
		"listId": list.ID,
		"title":  "Write docs",
	})
	require.Equal(t, http.StatusCreated, status)
	var task struct {
		ID     string `json:"id"`
		ListID string `json:"listId"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &task))
	assert.Equal(t, list.ID, task.ListID)

	status, out = doJSON(t, http.MethodGet, srv.URL+"/board/"+board.ID+"/lists/"+list.ID+"/tasks", nil)
	require.Equal(t, http.StatusOK, status)
	var tasks []json.RawMessage
	require.NoError(t, json.Unmarshal(out.Data, &tasks))
	assert.Len(t, tasks, 1)

	status, out = doJSON(t, http.MethodPut, srv.URL+"/board/"+board.ID+"/tasks/"+task.ID+"/move", map[string]interface{}{
		"listId": "elsewhere",
		"order":  2,
	})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(out.Data, &task))
	assert.Equal(t, "elsewhere", task.ListID)
}

func TestClearTaskAssigneeRoute(t *testing.T) {
	srv := newTestServer(t)

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/user", map[string]string{
		"uid":   "admin",
		"email": "ann@example.com",
		"name":  "Ann",
	})
	require.Equal(t, http.StatusCreated, status)

	status, out := doJSON(t, http.MethodPost, srv.URL+"/board", map[string]string{
		"title": "B",
		"admin": "admin",
	})
	require.Equal(t, http.StatusCreated, status)
	var board struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &board))

	status, out = doJSON(t, http.MethodPost, srv.URL+"/board/"+board.ID+"/tasks", map[string]interface{}{
		"listId":   "l1",
		"title":    "Write docs",
		"assignee": "admin",
	})
	require.Equal(t, http.StatusCreated, status)
	var task struct {
		ID       string `json:"id"`
		Assignee string `json:"assignee"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &task))
	require.Equal(t, "admin", task.Assignee)

	// Clearing with an empty string unassigns rather than writing an empty
	// index key.
	status, out = doJSON(t, http.MethodPut, srv.URL+"/board/"+board.ID+"/tasks/"+task.ID, map[string]interface{}{
		"assignee": "",
	})
	require.Equal(t, http.StatusOK, status)
	// Decode into a fresh value: the cleared assignee is omitted from the
	// JSON, so unmarshalling into the reused struct would keep the old value.
	var cleared struct {
		Assignee string `json:"assignee"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &cleared))
	assert.Empty(t, cleared.Assignee)

	status, out = doJSON(t, http.MethodGet, srv.URL+"/user/admin/tasks", nil)
	require.Equal(t, http.StatusOK, status)
	var assigned []json.RawMessage
	require.NoError(t, json.Unmarshal(out.Data, &assigned))
	assert.Empty(t, assigned)
}

func TestUploadURLRoute(t *testing.T) {
	srv := newTestServer(t)

	status, out := doJSON(t, http.MethodPost, srv.URL+"/attachment/upload-url", map[string]string{
		"fileName":    "report.pdf",
		"contentType": "application/pdf",
	})
	require.Equal(t, http.StatusOK, status)
	var ticket struct {
		UploadURL string `json:"uploadUrl"`
		S3Key     string `json:"s3Key"`
	}
	require.NoError(t, json.Unmarshal(out.Data, &ticket))
	assert.Equal(t, "attachments/id-1.pdf", ticket.S3Key)
	assert.NotEmpty(t, ticket.UploadURL)
}
