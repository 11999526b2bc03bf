package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tourdesk/accessor"
	"tourdesk/blob"
	"tourdesk/collections"
)

const defaultMaxDim = 1600

// Uploader writes fixtures into the live store. Image fields holding a local
// path are resized, re-encoded as JPEG and uploaded first; remote URLs are
// kept as they are.
//
// A run is all or nothing: if any record or image fails, everything the run
// wrote so far is removed again and the first error is returned.
type Uploader struct {
	Acc      *accessor.Accessor
	Blobs    blob.Store
	Registry collections.Registry
	Log      *zap.Logger

	Fixtures fs.FS              // defaults to Data
	Images   fs.FS              // local image paths resolve here; defaults to the working dir
	Kinds    []collections.Kind // defaults to collections.Content
	MaxDim   int
}

// Report counts what a successful run wrote.
type Report struct {
	Documents int
	Images    int
}

// written remembers what a record replaced. prev is nil when the id was
// free before the run.
type written struct {
	collection, id string
	prev           map[string]any
}

type run struct {
	u     *Uploader
	docs  []written
	blobs []string
}

func (u *Uploader) Run(ctx context.Context) (Report, error) {
	if u.Log == nil {
		u.Log = zap.NewNop()
	}
	if u.Fixtures == nil {
		u.Fixtures = Data
	}
	if u.Images == nil {
		u.Images = os.DirFS(".")
	}
	if u.MaxDim <= 0 {
		u.MaxDim = defaultMaxDim
	}
	kinds := u.Kinds
	if len(kinds) == 0 {
		kinds = collections.Content
	}

	r := &run{u: u}
	for _, kind := range kinds {
		if err := r.kind(ctx, kind); err != nil {
			u.Log.Error("seed failed, rolling back",
				zap.String("kind", string(kind)),
				zap.Int("documents", len(r.docs)),
				zap.Int("images", len(r.blobs)),
				zap.Error(err))
			r.rollback(ctx)
			return Report{}, err
		}
	}
	u.Log.Info("seed complete", zap.Int("documents", len(r.docs)), zap.Int("images", len(r.blobs)))
	return Report{Documents: len(r.docs), Images: len(r.blobs)}, nil
}

func (r *run) kind(ctx context.Context, kind collections.Kind) error {
	records, err := load[map[string]any](r.u.Fixtures, kind)
	if errors.Is(err, ErrNoFixtures) {
		r.u.Log.Debug("no fixtures", zap.String("kind", string(kind)))
		return nil
	}
	if err != nil {
		return err
	}
	coll := r.u.Registry.Name(kind)
	for i, rec := range records {
		id, _ := rec["id"].(string)
		if id == "" {
			id = uuid.NewString()
		}
		if err := r.images(ctx, kind, rec); err != nil {
			return fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
		old := accessor.Get[map[string]any](ctx, r.u.Acc, coll, id)
		if old.Err != nil {
			return fmt.Errorf("%s[%d]: %w", kind, i, old.Err)
		}
		w := written{collection: coll, id: id}
		if old.Value != nil {
			w.prev = *old.Value
		}
		if err := accessor.Set(ctx, r.u.Acc, coll, id, rec); err != nil {
			return fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
		r.docs = append(r.docs, w)
	}
	return nil
}

func (r *run) images(ctx context.Context, kind collections.Kind, rec map[string]any) error {
	if p, ok := rec["image"].(string); ok && isLocal(p) {
		url, err := r.upload(ctx, kind, p)
		if err != nil {
			return err
		}
		rec["image"] = url
	}
	gallery, ok := rec["gallery"].([]any)
	if !ok {
		return nil
	}
	for i, v := range gallery {
		p, ok := v.(string)
		if !ok || !isLocal(p) {
			continue
		}
		url, err := r.upload(ctx, kind, p)
		if err != nil {
			return err
		}
		gallery[i] = url
	}
	return nil
}

func (r *run) upload(ctx context.Context, kind collections.Kind, src string) (string, error) {
	f, err := r.u.Images.Open(path.Clean(strings.TrimPrefix(src, "/")))
	if err != nil {
		return "", fmt.Errorf("open image %s: %w", src, err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image %s: %w", src, err)
	}
	img = imaging.Fit(img, r.u.MaxDim, r.u.MaxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("encode image %s: %w", src, err)
	}
	key := string(kind) + "/" + uuid.NewString() + ".jpg"
	url, err := r.u.Blobs.Put(ctx, key, &buf, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("upload image %s: %w", src, err)
	}
	r.blobs = append(r.blobs, key)
	return url, nil
}

// rollback is best effort. It runs on a fresh deadline so a cancelled run
// still cleans up. Documents are undone newest first: replaced ones get
// their previous value back, new ones are deleted.
func (r *run) rollback(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	for i := len(r.docs) - 1; i >= 0; i-- {
		d := r.docs[i]
		var err error
		if d.prev != nil {
			err = accessor.Set(ctx, r.u.Acc, d.collection, d.id, d.prev)
		} else {
			err = accessor.Delete(ctx, r.u.Acc, d.collection, d.id)
		}
		if err != nil {
			r.u.Log.Warn("rollback document", zap.String("collection", d.collection), zap.String("id", d.id), zap.Error(err))
		}
	}
	for _, key := range r.blobs {
		if err := r.u.Blobs.Delete(ctx, key); err != nil {
			r.u.Log.Warn("rollback image", zap.String("key", key), zap.Error(err))
		}
	}
	r.docs, r.blobs = nil, nil
}

func isLocal(p string) bool {
	if p == "" {
		return false
	}
	return !strings.HasPrefix(p, "http://") && !strings.HasPrefix(p, "https://") && !strings.HasPrefix(p, "data:")
}
