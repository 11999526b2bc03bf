package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis keeps each collection in one hash: field = document id, value = JSON.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "docs"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(collection string) string {
	return r.prefix + ":" + collection
}

func (r *Redis) Get(ctx context.Context, collection, id string) (Document, error) {
	raw, err := r.client.HGet(ctx, r.key(collection), id).Result()
	if errors.Is(err, redis.Nil) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return decodeJSONDoc(id, raw)
}

func (r *Redis) List(ctx context.Context, collection string) ([]Document, error) {
	all, err := r.client.HGetAll(ctx, r.key(collection)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		doc, err := decodeJSONDoc(id, all[id])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *Redis) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := r.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (r *Redis) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if id == "" {
		return ErrInvalidID
	}
	raw, err := json.Marshal(withoutID(data))
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return r.client.HSet(ctx, r.key(collection), id, raw).Err()
}

// Update is a read-merge-write under WATCH so concurrent updates to the same
// hash retry instead of losing fields.
func (r *Redis) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if id == "" {
		return ErrInvalidID
	}
	key := r.key(collection)
	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, id).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		doc, err := decodeJSONDoc(id, raw)
		if err != nil {
			return err
		}
		for k, v := range withoutID(fields) {
			doc.Data[k] = v
		}
		merged, err := json.Marshal(doc.Data)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, id, merged)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < 5; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("update %s/%s: too much contention", collection, id)
}

func (r *Redis) Delete(ctx context.Context, collection, id string) error {
	return r.client.HDel(ctx, r.key(collection), id).Err()
}

// Close is a no-op; the client is owned by the caller.
func (r *Redis) Close(context.Context) error { return nil }

func decodeJSONDoc(id, raw string) (Document, error) {
	data := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return Document{ID: id, Data: data}, nil
}
