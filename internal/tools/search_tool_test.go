package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	chunks []string
	err    error
	gotK   int
}

func (f *fakeIndex) Search(_ context.Context, _ string, k int) ([]string, error) {
	f.gotK = k
	return f.chunks, f.err
}

func TestSearchFormatsChunks(t *testing.T) {
	idx := &fakeIndex{chunks: []string{" PageRank scores pages by links. ", "BM25 ranks by term frequency."}}
	st := NewSearchTool(idx, 0)

	out, err := st.Search(context.Background(), SearchArgs{Query: "ranking"})
	require.NoError(t, err)
	assert.Equal(t, 5, idx.gotK)
	assert.Equal(t,
		"==================================================\n\n"+
			"📄 Chunk 1:\nPageRank scores pages by links.\n\n"+
			"📄 Chunk 2:\nBM25 ranks by term frequency.", out)
}

func TestSearchNoResults(t *testing.T) {
	st := NewSearchTool(&fakeIndex{}, 3)

	out, err := st.Search(context.Background(), SearchArgs{Query: "quantum gravity"})
	require.NoError(t, err)
	assert.Equal(t, "No relevant information found in course materials.", out)
}

func TestSearchIndexFailure(t *testing.T) {
	st := NewSearchTool(&fakeIndex{err: errors.New("pinecone: 503")}, 3)

	_, err := st.Search(context.Background(), SearchArgs{Query: "tf-idf"})
	assert.ErrorIs(t, err, ErrService)
	assert.Equal(t, "Error searching course materials: pinecone: 503", err.Error())
}
