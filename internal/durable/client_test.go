package durable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dealhound/dealhound/pkg/errors"
)

func TestClientWithoutCredentials(t *testing.T) {
	client, err := NewClient("", "")
	require.NoError(t, err)
	assert.False(t, client.Configured())

	ctx := context.Background()

	_, err = client.QueryByIDs(ctx, []string{"a"})
	assert.ErrorIs(t, err, apperrors.ErrNotConfigured)

	_, err = client.QueryRecent(ctx, 7, 100)
	assert.ErrorIs(t, err, apperrors.ErrNotConfigured)

	_, err = client.UpsertRecords(ctx, []Record{{ArticleID: "a"}})
	assert.ErrorIs(t, err, apperrors.ErrNotConfigured)

	err = client.DeleteOlderThan(ctx, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNotConfigured)
}

// fakeStoreServer emulates the PostgREST surface the client talks to.
type fakeStoreServer struct {
	*httptest.Server
	gets  int
	posts int

	failGets   map[int]bool // 1-based request index -> fail
	failBulk   bool         // fail POSTs carrying more than one record
	getRecords []Record
}

func newFakeStoreServer(t *testing.T) *fakeStoreServer {
	t.Helper()

	s := &fakeStoreServer{failGets: map[int]bool{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.Method {
		case http.MethodGet:
			s.gets++
			if s.failGets[s.gets] {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message":"boom"}`)
				return
			}
			if err := json.NewEncoder(w).Encode(s.getRecords); err != nil {
				t.Errorf("encode records: %v", err)
			}
		case http.MethodPost:
			s.posts++
			var batch []Record
			if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprint(w, `{"message":"bad payload"}`)
				return
			}
			if s.failBulk && len(batch) > 1 {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message":"bulk write rejected"}`)
				return
			}
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `[]`)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func newConfiguredClient(t *testing.T, server *fakeStoreServer) *Client {
	t.Helper()

	client, err := NewClient(server.URL, "service-key")
	require.NoError(t, err)
	require.True(t, client.Configured())
	return client
}

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%03d", i)
	}
	return ids
}

func TestQueryByIDsEmptySetSkipsNetwork(t *testing.T) {
	server := newFakeStoreServer(t)
	client := newConfiguredClient(t, server)

	records, err := client.QueryByIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, records)
	assert.Zero(t, server.gets)
}

func TestQueryByIDsSplitsLargeSets(t *testing.T) {
	server := newFakeStoreServer(t)
	server.getRecords = []Record{{ArticleID: "id-000", Category: "Gaming"}}
	client := newConfiguredClient(t, server)

	records, err := client.QueryByIDs(context.Background(), makeIDs(150))

	require.NoError(t, err)
	assert.Equal(t, 2, server.gets, "150 ids split into two sub-batches")
	assert.Len(t, records, 2)
}

func TestQueryByIDsSkipsFailingSubBatch(t *testing.T) {
	server := newFakeStoreServer(t)
	server.failGets[1] = true
	server.getRecords = []Record{{ArticleID: "id-100"}}
	client := newConfiguredClient(t, server)

	records, err := client.QueryByIDs(context.Background(), makeIDs(150))

	require.NoError(t, err, "a failing sub-batch is skipped, not fatal")
	assert.Equal(t, 2, server.gets)
	assert.Len(t, records, 1, "only the surviving sub-batch contributes")
}

func TestUpsertRecordsRetriesRecordByRecord(t *testing.T) {
	server := newFakeStoreServer(t)
	server.failBulk = true
	client := newConfiguredClient(t, server)

	records := []Record{
		{ArticleID: "a", Category: "Gaming"},
		{ArticleID: "b", Category: "Electronics"},
		{ArticleID: "c", Category: "Travel"},
	}

	persisted, err := client.UpsertRecords(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, 3, persisted)
	// One rejected bulk write plus one request per record.
	assert.Equal(t, 4, server.posts)
}

func TestUpsertRecordsBatchesWrites(t *testing.T) {
	server := newFakeStoreServer(t)
	client := newConfiguredClient(t, server)

	records := make([]Record, 120)
	for i := range records {
		records[i] = Record{ArticleID: fmt.Sprintf("id-%03d", i)}
	}

	persisted, err := client.UpsertRecords(context.Background(), records)

	require.NoError(t, err)
	assert.Equal(t, 120, persisted)
	assert.Equal(t, 3, server.posts, "120 records split into three write batches")
}

func TestChunk(t *testing.T) {
	assert.Nil(t, chunk[int](nil, 10))
	assert.Nil(t, chunk([]int{1}, 0))

	batches := chunk([]int{1, 2, 3, 4, 5}, 2)
	require.Len(t, batches, 3)
	assert.Equal(t, []int{1, 2}, batches[0])
	assert.Equal(t, []int{3, 4}, batches[1])
	assert.Equal(t, []int{5}, batches[2])
}
