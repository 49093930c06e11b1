// Package archive persists transferred messages to Lode storage.
//
// Each archived message produces a metadata Record written through a Lode
// Dataset (JSONL codec, Hive layout mailbox/day/direction) and a payload
// file written directly to the Store at:
//
//	datasets/<dataset>/partitions/mailbox=<m>/day=<d>/direction=<dir>/files/<message_id>
//
// Storage failures are returned as *StorageError classified with the
// sentinels in errors.go.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/mesh/iox"
	"github.com/pithecene-io/mesh/types"
)

// DefaultDataset is the dataset id used when Config.Dataset is empty.
const DefaultDataset = "mesh"

// ErrInvalidMessageID is returned for message ids that cannot name a payload file.
var ErrInvalidMessageID = errors.New("invalid message id for archive")

// partitionKeys is the Hive layout of the records dataset.
var partitionKeys = []string{"mailbox", "day", "direction"}

// Config configures an Archive.
type Config struct {
	// Dataset is the Lode dataset id (default "mesh").
	Dataset string
	// Mailbox is the local mailbox id, the first partition key.
	Mailbox string
}

// Filter narrows Records. Empty fields match everything.
type Filter struct {
	Mailbox   string
	Day       string
	Direction Direction
	MessageID string
}

// Archive writes and reads archived messages.
// Safe for concurrent use.
type Archive struct {
	dataset      lode.Dataset
	config       Config
	storeFactory lode.StoreFactory
	now          func() time.Time

	storeOnce sync.Once
	store     lode.Store
	storeErr  error
}

// New creates an Archive with filesystem storage rooted at root.
func New(cfg Config, root string) (*Archive, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, WrapInitError(err, cfg.Dataset)
	}
	return NewWithFactory(cfg, lode.NewFSFactory(root))
}

// NewWithFactory creates an Archive over a custom store factory.
// Use lode.NewMemoryFactory() for testing.
func NewWithFactory(cfg Config, factory lode.StoreFactory) (*Archive, error) {
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	if cfg.Mailbox == "" {
		return nil, errors.New("archive: mailbox is required")
	}

	ds, err := lode.NewDataset(
		lode.DatasetID(cfg.Dataset),
		factory,
		lode.WithHiveLayout(partitionKeys...),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
	if err != nil {
		return nil, WrapInitError(err, cfg.Dataset)
	}

	return &Archive{
		dataset:      ds,
		config:       cfg,
		storeFactory: factory,
		now:          time.Now,
	}, nil
}

// Put archives msg: the payload first, then its metadata record.
// chunks is the number of chunks the message travelled in.
func (a *Archive) Put(ctx context.Context, dir Direction, msg *types.Message, chunks int) (*Record, error) {
	if msg == nil {
		return nil, errors.New("archive: message is nil")
	}
	if err := validateMessageID(msg.MessageID); err != nil {
		return nil, err
	}

	rec := newRecord(a.config.Mailbox, dir, msg, chunks, a.now())
	rec.PayloadPath = a.payloadPath(rec)

	store, err := a.getOrCreateStore()
	if err != nil {
		return nil, WrapInitError(err, a.config.Dataset)
	}
	// Stores may refuse to overwrite; re-archiving replaces the payload.
	exists, err := store.Exists(ctx, rec.PayloadPath)
	if err != nil {
		return nil, WrapReadError(err, rec.PayloadPath)
	}
	if exists {
		if err := store.Delete(ctx, rec.PayloadPath); err != nil {
			return nil, WrapWriteError(err, rec.PayloadPath)
		}
	}
	if err := store.Put(ctx, rec.PayloadPath, bytes.NewReader(msg.Payload())); err != nil {
		return nil, WrapWriteError(err, rec.PayloadPath)
	}

	if _, err := a.dataset.Write(ctx, []any{rec.toMap()}, lode.Metadata{}); err != nil {
		return nil, WrapWriteError(err, a.config.Dataset+"/records")
	}

	return &rec, nil
}

// Records returns archived records matching f, oldest first. A message
// archived more than once is reported by its latest record.
func (a *Archive) Records(ctx context.Context, f Filter) ([]Record, error) {
	snapshots, err := a.dataset.Snapshots(ctx)
	if err != nil {
		return nil, WrapReadError(err, a.config.Dataset+"/snapshots")
	}

	index := make(map[string]int)
	var out []Record
	for _, snap := range snapshots {
		if !snapshotMatches(snap, f) {
			continue
		}

		data, err := a.dataset.Read(ctx, snap.ID)
		if err != nil {
			return nil, WrapReadError(err, fmt.Sprintf("%s/snapshot/%s", a.config.Dataset, snap.ID))
		}

		for _, item := range data {
			rec, ok := recordFromAny(item)
			if !ok || !f.matches(rec) {
				continue
			}
			key := string(rec.Direction) + "/" + rec.MessageID
			if i, seen := index[key]; seen {
				out[i] = rec
				continue
			}
			index[key] = len(out)
			out = append(out, rec)
		}
	}
	return out, nil
}

// Payload reads the archived payload of rec.
func (a *Archive) Payload(ctx context.Context, rec Record) ([]byte, error) {
	store, err := a.getOrCreateStore()
	if err != nil {
		return nil, WrapInitError(err, a.config.Dataset)
	}

	rc, err := store.Get(ctx, rec.PayloadPath)
	if err != nil {
		return nil, WrapReadError(err, rec.PayloadPath)
	}
	defer iox.DiscardClose(rc)

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, WrapReadError(err, rec.PayloadPath)
	}
	return data, nil
}

// Close releases archive resources.
func (a *Archive) Close() error {
	return nil
}

// getOrCreateStore lazily initializes the Store from the factory.
func (a *Archive) getOrCreateStore() (lode.Store, error) {
	a.storeOnce.Do(func() {
		a.store, a.storeErr = a.storeFactory()
	})
	return a.store, a.storeErr
}

// payloadPath computes the Hive-partitioned path of a payload file.
func (a *Archive) payloadPath(r Record) string {
	return fmt.Sprintf("datasets/%s/partitions/mailbox=%s/day=%s/direction=%s/files/%s",
		a.config.Dataset, r.Mailbox, r.Day, r.Direction, r.MessageID)
}

func (f Filter) matches(r Record) bool {
	return (f.Mailbox == "" || r.Mailbox == f.Mailbox) &&
		(f.Day == "" || r.Day == f.Day) &&
		(f.Direction == "" || r.Direction == f.Direction) &&
		(f.MessageID == "" || r.MessageID == f.MessageID)
}

// snapshotMatches is a coarse pre-filter on manifest paths. Record fields
// stay authoritative.
func snapshotMatches(snap *lode.Snapshot, f Filter) bool {
	return snapshotHasPartition(snap, "mailbox", f.Mailbox) &&
		snapshotHasPartition(snap, "day", f.Day) &&
		snapshotHasPartition(snap, "direction", string(f.Direction))
}

func snapshotHasPartition(snap *lode.Snapshot, key, value string) bool {
	if value == "" {
		return true
	}
	for _, file := range snap.Manifest.Files {
		if matchesPartitionValue(file.Path, key, value) {
			return true
		}
	}
	return false
}

// matchesPartitionValue checks if a Hive-partitioned path contains an exact
// key=value segment, so mailbox=A1 never matches mailbox=A10.
func matchesPartitionValue(path, key, value string) bool {
	segment := key + "=" + value
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}
