package vectorindex

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docubot/internal/chunk"
)

type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Upload(_ context.Context, key string, data []byte) error {
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *memStore) Download(_ context.Context, key string) ([]byte, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s missing", key)
	}
	return data, nil
}

func (s *memStore) Remove(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.objects, key)
	}
	return nil
}

func (s *memStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.objects[key]
	return ok, nil
}

// hashEmbedder produces a small deterministic vector per text.
type hashEmbedder struct {
	calls int
}

func (e *hashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		var sum float32
		for _, r := range t {
			sum += float32(r)
		}
		out[i] = []float32{sum, float32(len(t)), 1}
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, fmt.Errorf("embedding service down")
}

func chunksOf(texts ...string) []chunk.Chunk {
	out := make([]chunk.Chunk, len(texts))
	for i, t := range texts {
		out[i] = chunk.Chunk{Text: t, Metadata: map[string]string{"source": "doc", "chunk_index": fmt.Sprint(i)}}
	}
	return out
}

func TestIndexAddCardinalityMismatch(t *testing.T) {
	idx := NewIndex()
	err := idx.Add([][]float32{{1, 0}}, nil)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestIndexAddDimensionMismatch(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Add([][]float32{{1, 0}}, []Record{{Text: "a"}}))
	err := idx.Add([][]float32{{1, 0, 0}}, []Record{{Text: "b"}})
	assert.Error(t, err)
}

func TestIndexSearchOrdersByCosine(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Add(
		[][]float32{{0, 1}, {1, 0}, {1, 1}},
		[]Record{{Text: "orthogonal"}, {Text: "exact"}, {Text: "diagonal"}},
	))

	hits := idx.Search([]float32{1, 0}, 2)

	require.Len(t, hits, 2)
	assert.Equal(t, "exact", hits[0].Record.Text)
	assert.Equal(t, "diagonal", hits[1].Record.Text)
}

func TestIndexSearchMMRPrefersDiversity(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Add(
		[][]float32{{1, 0.05}, {1, 0.06}, {0.5, 0.5}},
		[]Record{{Text: "best"}, {Text: "near-duplicate"}, {Text: "diverse"}},
	))

	hits := idx.SearchMMR([]float32{1, 0}, 2, 3, 0.3)

	require.Len(t, hits, 2)
	assert.Equal(t, "best", hits[0].Record.Text)
	assert.Equal(t, "diverse", hits[1].Record.Text,
		"the near-duplicate of the first hit must lose to the diverse candidate")
}

func TestManagerCreateOrAppendIsAdditive(t *testing.T) {
	m := NewManager(newMemStore(), &hashEmbedder{}, 10)
	ctx := context.Background()

	idx, err := m.CreateOrAppend(ctx, nil, chunksOf("alpha", "beta"))
	require.NoError(t, err)
	require.Equal(t, 2, idx.Len())

	firstVectors, _ := idx.Snapshot()

	idx, err = m.CreateOrAppend(ctx, idx, chunksOf("gamma"))
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	afterVectors, records := idx.Snapshot()
	assert.Equal(t, firstVectors, afterVectors[:2], "append must not disturb existing vectors")
	assert.Equal(t, "alpha", records[0].Text)
	assert.Equal(t, "gamma", records[2].Text)
}

func TestManagerEmbeddingFailureLeavesIndexUntouched(t *testing.T) {
	idx := NewIndex()
	require.NoError(t, idx.Add([][]float32{{1, 1, 1}}, []Record{{Text: "kept"}}))

	m := NewManager(newMemStore(), failingEmbedder{}, 10)
	_, err := m.CreateOrAppend(context.Background(), idx, chunksOf("new"))

	assert.Error(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestManagerBatchesEmbeddingCalls(t *testing.T) {
	embedder := &hashEmbedder{}
	m := NewManager(newMemStore(), embedder, 2)

	_, err := m.CreateOrAppend(context.Background(), nil, chunksOf("a", "b", "c", "d", "e"))

	require.NoError(t, err)
	assert.Equal(t, 3, embedder.calls)
}

func TestManagerPersistLoadRoundTrip(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, &hashEmbedder{}, 10)
	ctx := context.Background()

	idx, err := m.CreateOrAppend(ctx, nil, chunksOf("first chunk", "second chunk", "third chunk"))
	require.NoError(t, err)
	require.NoError(t, m.Persist(ctx, idx, "owner", "bot-1"))

	loaded, err := m.Load(ctx, "owner", "bot-1")
	require.NoError(t, err)
	require.Equal(t, idx.Len(), loaded.Len())

	wantVectors, wantRecords := idx.Snapshot()
	gotVectors, gotRecords := loaded.Snapshot()
	assert.Equal(t, wantVectors, gotVectors)
	assert.Equal(t, wantRecords, gotRecords)
}

func TestManagerPersistReplacesStalePair(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, &hashEmbedder{}, 10)
	ctx := context.Background()

	idx, err := m.CreateOrAppend(ctx, nil, chunksOf("v1"))
	require.NoError(t, err)
	require.NoError(t, m.Persist(ctx, idx, "owner", "bot-1"))

	idx, err = m.CreateOrAppend(ctx, idx, chunksOf("v2"))
	require.NoError(t, err)
	require.NoError(t, m.Persist(ctx, idx, "owner", "bot-1"))

	loaded, err := m.Load(ctx, "owner", "bot-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
}

func TestManagerLoadMissingArtifactIsNotFound(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, &hashEmbedder{}, 10)
	ctx := context.Background()

	_, err := m.Load(ctx, "owner", "bot-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// A half-present pair is equivalent to absent.
	idx, err := m.CreateOrAppend(ctx, nil, chunksOf("only"))
	require.NoError(t, err)
	require.NoError(t, m.Persist(ctx, idx, "owner", "bot-1"))
	vecKey, _ := artifactKeys("owner", "bot-1")
	require.NoError(t, store.Remove(ctx, vecKey))

	_, err = m.Load(ctx, "owner", "bot-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerLoadCorruptArtifacts(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, &hashEmbedder{}, 10)
	ctx := context.Background()

	vecKey, metaKey := artifactKeys("owner", "bot-1")
	require.NoError(t, store.Upload(ctx, vecKey, []byte("garbage")))
	require.NoError(t, store.Upload(ctx, metaKey, []byte("garbage")))

	_, err := m.Load(ctx, "owner", "bot-1")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestManagerHasIndex(t *testing.T) {
	store := newMemStore()
	m := NewManager(store, &hashEmbedder{}, 10)
	ctx := context.Background()

	ok, err := m.HasIndex(ctx, "owner", "bot-1")
	require.NoError(t, err)
	assert.False(t, ok)

	idx, err := m.CreateOrAppend(ctx, nil, chunksOf("x"))
	require.NoError(t, err)
	require.NoError(t, m.Persist(ctx, idx, "owner", "bot-1"))

	ok, err = m.HasIndex(ctx, "owner", "bot-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Delete(ctx, "owner", "bot-1"))
	ok, err = m.HasIndex(ctx, "owner", "bot-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCodecVectorRoundTrip(t *testing.T) {
	vectors := [][]float32{{1, 2, 3}, {4, 5, 6}}

	data, err := encodeVectors(vectors)
	require.NoError(t, err)
	decoded, err := decodeVectors(data)
	require.NoError(t, err)

	assert.Equal(t, vectors, decoded)
}

func TestCodecTruncatedVectors(t *testing.T) {
	data, err := encodeVectors([][]float32{{1, 2}, {3, 4}})
	require.NoError(t, err)

	_, err = decodeVectors(data[:len(data)-3])
	assert.ErrorIs(t, err, ErrCorrupt)
}
