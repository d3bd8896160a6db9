package graph

import (
	"errors"
	"io"
	"net"
	"net/url"
	"testing"

	driver "github.com/arangodb/go-driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obonovai/graphonauts/internal/tpch"
)

func mapNation(t *testing.T, fields ...string) tpch.Mapped {
	t.Helper()
	m, err := tpch.MapRow(tpch.MustLookup(tpch.Nation), fields)
	require.NoError(t, err)
	return m
}

func TestVertexDocuments(t *testing.T) {
	germany := mapNation(t, "7", "GERMANY", "3", "industrious")
	france := mapNation(t, "6", "FRANCE", "3", "quiet")

	docs := vertexDocuments([]tpch.VertexRecord{germany.Vertex, france.Vertex})
	require.Len(t, docs, 2)

	assert.Equal(t, "7", docs[0]["_key"])
	assert.Equal(t, "6", docs[1]["_key"])
	for k, v := range germany.Vertex.Properties {
		assert.Equal(t, v, docs[0][k], k)
	}
	assert.Equal(t, "GERMANY", docs[0]["name"])
	assert.Len(t, docs[0], len(germany.Vertex.Properties)+1)

	_, keyed := germany.Vertex.Properties["_key"]
	assert.False(t, keyed, "records are not modified")
}

func TestEdgeDocuments(t *testing.T) {
	germany := mapNation(t, "7", "GERMANY", "3", "industrious")
	require.Len(t, germany.Edges, 1)
	edge := germany.Edges[0]
	require.Equal(t, "nation_region", edge.Relationship)

	docs := edgeDocuments([]tpch.EdgeRecord{edge})
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "7-3", doc["_key"])
	assert.Equal(t, "nation/7", doc["_from"])
	assert.Equal(t, "region/3", doc["_to"])
	assert.Equal(t, edge.Properties["regionkey"], doc["regionkey"])
	assert.Len(t, doc, len(edge.Properties)+3)
}

func TestEdgeDocuments_DistinctKeysPerEndpointPair(t *testing.T) {
	a := mapNation(t, "7", "GERMANY", "3", "")
	b := mapNation(t, "6", "FRANCE", "3", "")

	docs := edgeDocuments([]tpch.EdgeRecord{a.Edges[0], b.Edges[0]})
	assert.NotEqual(t, docs[0]["_key"], docs[1]["_key"])

	again := edgeDocuments([]tpch.EdgeRecord{a.Edges[0]})
	assert.Equal(t, docs[0]["_key"], again[0]["_key"], "keys are deterministic")
}

func TestRejectedDocuments(t *testing.T) {
	assert.NoError(t, rejectedDocuments("nation", nil))
	assert.NoError(t, rejectedDocuments("nation", driver.ErrorSlice{nil, nil}))

	duplicate := driver.ArangoError{
		HasError:     true,
		Code:         409,
		ErrorNum:     1210,
		ErrorMessage: "unique constraint violated - in index primary of type primary over '_key'",
	}
	err := rejectedDocuments("nation", driver.ErrorSlice{nil, duplicate, nil})
	require.Error(t, err)
	assert.True(t, IsBatchWriteError(err))
	assert.False(t, IsConnectionError(err))
	assert.Contains(t, err.Error(), "1 of 3 documents rejected by nation")
	assert.Contains(t, err.Error(), "unique constraint violated")

	err = rejectedDocuments("nation", driver.ErrorSlice{duplicate, duplicate})
	assert.Contains(t, err.Error(), "2 of 2 documents rejected by nation")
}

func TestArangoConnectionLost(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"url", &url.Error{Op: "Post", URL: "http://127.0.0.1:1/_api/document/nation", Err: refused}, true},
		{"dial", refused, true},
		{"response", &driver.ResponseError{Err: io.EOF}, true},
		{"conflict", driver.ArangoError{HasError: true, Code: 409, ErrorNum: 1210}, false},
		{"unavailable", driver.ArangoError{HasError: true, Code: 503, ErrorNum: 503}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, arangoConnectionLost(tt.err))
		})
	}
}

func TestDriverError_Arango(t *testing.T) {
	lost := &url.Error{Op: "Post", URL: "http://127.0.0.1:1", Err: errors.New("connection refused")}
	err := driverError(lost, arangoConnectionLost, ErrCodeGraphBatchWriteFailed, "arangodb: insert 5 documents into region")
	assert.True(t, IsConnectionError(err))
	assert.False(t, IsBatchWriteError(err))

	conflict := driver.ArangoError{HasError: true, Code: 409, ErrorNum: 1210, ErrorMessage: "duplicate"}
	err = driverError(conflict, arangoConnectionLost, ErrCodeGraphBatchWriteFailed, "arangodb: insert 5 documents into region")
	assert.True(t, IsBatchWriteError(err))
	assert.False(t, IsConnectionError(err))
}
