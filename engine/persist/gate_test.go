package persist

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WessleyAI/lotscraper/engine/vehicle"
)

const threshold = 100

type memStore struct {
	docs      map[string]vehicle.Record
	insertErr error
	existsErr error
}

func newMemStore() *memStore { return &memStore{docs: make(map[string]vehicle.Record)} }

func (m *memStore) ExistsBySourceURL(_ context.Context, url string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.docs[url]
	return ok, nil
}

func (m *memStore) Insert(_ context.Context, rec *vehicle.Record) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.docs[rec.SourceURL] = *rec
	return nil
}

type notifications struct {
	events []vehicle.Saved
	err    error
}

func (n *notifications) Publish(_ context.Context, ev vehicle.Saved) error {
	n.events = append(n.events, ev)
	return n.err
}

func image(size int) vehicle.Image {
	return vehicle.EncodeJPEG(bytes.Repeat([]byte{1}, size))
}

func record(url string, sizes ...int) vehicle.Record {
	rec := vehicle.Record{ID: url, SourceURL: url, Make: "Toyota", Model: "Camry", Year: 2019}
	for _, s := range sizes {
		rec.Images = append(rec.Images, image(s))
	}
	return rec
}

func TestSaveInsertsOncePerSourceURL(t *testing.T) {
	store := newMemStore()
	g := NewGate(store, Config{MinImageBytes: threshold})

	res := g.Save(context.Background(), []vehicle.Record{
		record("https://d.example/vdp/1", threshold+1),
		record("https://d.example/vdp/1", threshold+1),
	})
	assert.Equal(t, Result{Saved: 1, Duplicates: 1}, res)
	assert.Len(t, store.docs, 1)

	res = g.Save(context.Background(), []vehicle.Record{record("https://d.example/vdp/1", threshold+5)})
	assert.Equal(t, Result{Duplicates: 1}, res)
}

func TestSaveRejectsSmallOrMissingImages(t *testing.T) {
	store := newMemStore()
	g := NewGate(store, Config{MinImageBytes: threshold})

	res := g.Save(context.Background(), []vehicle.Record{
		record("https://d.example/vdp/none"),
		record("https://d.example/vdp/small", threshold+1, threshold),
		record("https://d.example/vdp/ok", threshold+1, threshold*3),
	})
	assert.Equal(t, Result{Saved: 1, Rejected: 2}, res)
	_, ok := store.docs["https://d.example/vdp/ok"]
	assert.True(t, ok)
}

func TestCheck(t *testing.T) {
	g := NewGate(newMemStore(), Config{MinImageBytes: threshold})

	rec := record("u", threshold)
	err := g.Check(&rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSubstantialImages))

	rec = record("u", threshold+1)
	assert.NoError(t, g.Check(&rec))
}

func TestDefaultThreshold(t *testing.T) {
	store := newMemStore()
	g := NewGate(store, Config{})

	res := g.Save(context.Background(), []vehicle.Record{
		record("https://d.example/vdp/at", 50_000),
		record("https://d.example/vdp/over", 50_001),
	})
	assert.Equal(t, Result{Saved: 1, Rejected: 1}, res)
	_, ok := store.docs["https://d.example/vdp/over"]
	assert.True(t, ok)
}

func TestSaveContinuesAfterStoreError(t *testing.T) {
	store := newMemStore()
	store.insertErr = errors.New("write concern")
	g := NewGate(store, Config{MinImageBytes: threshold})

	res := g.Save(context.Background(), []vehicle.Record{
		record("https://d.example/vdp/1", threshold+1),
		record("https://d.example/vdp/2", threshold+1),
	})
	assert.Equal(t, Result{Failed: 2}, res)

	store.insertErr = nil
	store.existsErr = errors.New("timeout")
	res = g.Save(context.Background(), []vehicle.Record{record("https://d.example/vdp/3", threshold+1)})
	assert.Equal(t, Result{Failed: 1}, res)
	assert.Empty(t, store.docs)
}

func TestSaveNotifies(t *testing.T) {
	n := &notifications{err: errors.New("nats down")}
	g := NewGate(newMemStore(), Config{MinImageBytes: threshold, Notifier: n})

	res := g.Save(context.Background(), []vehicle.Record{
		record("https://d.example/vdp/1", threshold+1, threshold+2),
		record("https://d.example/vdp/1", threshold+1),
	})
	assert.Equal(t, 1, res.Saved, "publish failure must not undo the insert")
	require.Len(t, n.events, 1)
	assert.Equal(t, "https://d.example/vdp/1", n.events[0].SourceURL)
	assert.Equal(t, 2, n.events[0].ImageCount)
}

func TestResultAdd(t *testing.T) {
	total := Result{Saved: 1}
	total.Add(Result{Saved: 2, Duplicates: 1, Rejected: 3, Failed: 4})
	assert.Equal(t, Result{Saved: 3, Duplicates: 1, Rejected: 3, Failed: 4}, total)
}
