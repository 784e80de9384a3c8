package spatialhash

import (
	"context"
	"fmt"

	"github.com/hupe1980/spatialhash/blobstore"
)

// Save writes a snapshot of t to store under name.
//
// Snapshot bytes are charged to the table's resource controller I/O budget
// before the write.
func Save(ctx context.Context, store blobstore.BlobStore, name string, t *Table, optFns ...SnapshotOption) error {
	data, err := t.encode(t.applySnapshotOptions(optFns).compression)
	if err != nil {
		t.logger.LogSnapshot(ctx, name, 0, 0, err)
		return err
	}

	if err := t.resources.AcquireIO(ctx, len(data)); err != nil {
		t.logger.LogSnapshot(ctx, name, 0, 0, err)
		return err
	}

	if err := store.Put(ctx, name, data); err != nil {
		err = fmt.Errorf("spatialhash: save %q: %w", name, err)
		t.logger.LogSnapshot(ctx, name, 0, 0, err)
		return err
	}

	t.logger.LogSnapshot(ctx, name, t.count, len(data), nil)
	return nil
}

// Load replaces the contents of t with the snapshot stored under name.
//
// Returns an error satisfying errors.Is(err, blobstore.ErrNotFound) if the
// snapshot does not exist. See DecodeSnapshot for validation errors.
func Load(ctx context.Context, store blobstore.BlobStore, name string, t *Table) (err error) {
	defer func() {
		t.logger.LogLoad(ctx, name, t.count, err)
	}()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("spatialhash: load %q: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	if err := t.resources.AcquireIO(ctx, int(blob.Size())); err != nil {
		return err
	}

	// Mapped blobs decode straight from the mapping; decode copies every
	// entry into the arena before the blob is closed.
	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return fmt.Errorf("spatialhash: load %q: %w", name, err)
		}
		return t.decode(data)
	}

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return fmt.Errorf("spatialhash: load %q: %w", name, err)
	}
	return t.decode(data)
}

// Save writes a snapshot of t to store. See the package-level Save.
func (t *Table) Save(ctx context.Context, store blobstore.BlobStore, name string, optFns ...SnapshotOption) error {
	return Save(ctx, store, name, t, optFns...)
}

// Load reads a snapshot from store into t. See the package-level Load.
func (t *Table) Load(ctx context.Context, store blobstore.BlobStore, name string) error {
	return Load(ctx, store, name, t)
}
